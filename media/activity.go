package media

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

var ErrUnsupported = errors.New("no media session backend on this platform")

// RawInfo is what a Session hands to its callback for each notification.
// Any field may be unknown. It is only valid for the duration of the callback.
type RawInfo struct {
	IsPlaying  *bool
	Title      *string
	Artist     *string
	AppName    *string
	AppIcon    image.Image
	Album      *string
	AlbumCover image.Image
	Duration   *float64 // seconds
	Elapsed    *float64 // seconds
}

// Snapshot is the outward projection of a single notification. A new one is
// built for every notification and never mutated afterwards.
type Snapshot struct {
	InfoUpdateTime    *int64   `json:"infoUpdateTime"`
	IsPlaying         *bool    `json:"isPlaying"`
	Title             *string  `json:"title"`
	Artist            *string  `json:"artist"`
	AppName           *string  `json:"appName"`
	AppIcon           *string  `json:"appIcon"`
	Album             *string  `json:"album"`
	AlbumCover        *string  `json:"albumCover"`
	AlbumCoverColours []string `json:"albumCoverColours,omitempty"`
	Duration          *float64 `json:"duration"`
	Elapsed           *float64 `json:"elapsed"`
}

// Callback receives every notification from a Session. A nil RawInfo means
// no media session is active.
type Callback func(info *RawInfo)

// Session is a live subscription to the platform media-session source.
type Session interface {
	// Subscribe installs the single callback for this session. Only the first
	// call has any effect.
	Subscribe(cb Callback)

	// Close terminates the notification stream. Once it returns the callback
	// is not invoked again.
	Close() error
}

// Backend is the capability every platform integration provides.
type Backend interface {
	Name() string
	Open() (Session, error)
	Send(cmd Command) error
}

// Subscriber is the sink snapshots are forwarded to, usually the host
// application's event channel.
type Subscriber interface {
	Publish(snapshot Snapshot) error
}

type SubscriberFunc func(snapshot Snapshot) error

func (f SubscriberFunc) Publish(snapshot Snapshot) error {
	return f(snapshot)
}

type Command int

const (
	Play Command = iota
	Pause
	NextTrack
	PreviousTrack
)

func (c Command) String() string {
	switch c {
	case Play:
		return "play"
	case Pause:
		return "pause"
	case NextTrack:
		return "next"
	case PreviousTrack:
		return "previous"
	}
	return fmt.Sprintf("command(%d)", int(c))
}

func ParseCommand(s string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "play":
		return Play, nil
	case "pause":
		return Pause, nil
	case "next", "next-track", "nexttrack":
		return NextTrack, nil
	case "previous", "prev", "previous-track", "prev-track", "previoustrack":
		return PreviousTrack, nil
	}
	return 0, fmt.Errorf("unknown media command %q", s)
}

// NoBackend stands in on platforms without a media-session integration.
// Opening a session always fails so a registration releases itself, and
// commands are dropped.
type NoBackend struct{}

func (NoBackend) Name() string { return "none" }

func (NoBackend) Open() (Session, error) { return nil, ErrUnsupported }

func (NoBackend) Send(Command) error { return nil }
