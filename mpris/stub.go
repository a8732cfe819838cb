//go:build !linux

package mpris

import "github.com/marcus-crane/mediabridge/media"

// New returns a backend that reports no session support. MPRIS only exists
// on freedesktop systems.
func New(opts Options) media.Backend {
	return media.NoBackend{}
}
