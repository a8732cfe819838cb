package cmd

import (
	"log/slog"

	"github.com/marcus-crane/mediabridge/config"
	"github.com/marcus-crane/mediabridge/media"
	"github.com/marcus-crane/mediabridge/mpris"
	"github.com/marcus-crane/mediabridge/utils"
)

func newBackend(cfg config.Config, logger *slog.Logger) media.Backend {
	return mpris.New(mpris.Options{
		PreferredPlayer: cfg.Media.PreferredPlayer,
		ArtTimeout:      cfg.ArtTimeout(),
		ArtCacheSize:    cfg.Media.ArtCacheSize,
		Logger:          logger,
	})
}

// newProjector leaves artwork out entirely when withArt is false.
func newProjector(cfg config.Config, withArt bool) media.Projector {
	projector := media.Projector{IncludeTimestamp: cfg.Media.IncludeTimestamp}
	if withArt {
		projector.Encoder = utils.NewImageEncoder(uint(cfg.Media.ArtMaxSize))
		projector.Palette = utils.DominantColours
	}
	return projector
}
