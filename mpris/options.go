package mpris

import (
	"log/slog"
	"time"
)

type Options struct {
	// PreferredPlayer is matched against the bus name suffix, e.g. "spotify".
	PreferredPlayer string
	ArtTimeout      time.Duration
	ArtCacheSize    int
	Logger          *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.ArtTimeout <= 0 {
		o.ArtTimeout = 3 * time.Second
	}
	if o.ArtCacheSize <= 0 {
		o.ArtCacheSize = 32
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
