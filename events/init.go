package events

import "github.com/r3labs/sse/v2"

const (
	MediaActivity = "media-activity"
	System        = "system"
)

// New returns an SSE server with every stream the bridge publishes on.
func New() *sse.Server {
	server := sse.New()
	server.AutoReplay = false
	server.CreateStream(MediaActivity)
	server.CreateStream(System)
	return server
}
