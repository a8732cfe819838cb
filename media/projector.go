package media

import (
	"image"
	"time"
)

type ImageEncoder interface {
	Encode(img image.Image) (string, error)
}

// Projector maps RawInfo to a Snapshot. It holds no state between calls.
type Projector struct {
	Encoder ImageEncoder
	// Palette, when set, extracts the dominant colours of the album cover.
	Palette          func(img image.Image) []string
	IncludeTimestamp bool
	Now              func() time.Time
}

// Project returns false when there is nothing to forward.
func (p Projector) Project(raw *RawInfo) (Snapshot, bool) {
	if raw == nil {
		return Snapshot{}, false
	}

	snapshot := Snapshot{
		IsPlaying: copyOf(raw.IsPlaying),
		Title:     copyOf(raw.Title),
		Artist:    copyOf(raw.Artist),
		AppName:   copyOf(raw.AppName),
		AppIcon:   p.encode(raw.AppIcon),
		Album:     copyOf(raw.Album),
		// Cover is re-encoded on every notification; the raw image is not ours to keep.
		AlbumCover: p.encode(raw.AlbumCover),
		Duration:   copyOf(raw.Duration),
		Elapsed:    copyOf(raw.Elapsed),
	}

	if p.Palette != nil && raw.AlbumCover != nil {
		snapshot.AlbumCoverColours = p.Palette(raw.AlbumCover)
	}

	if p.IncludeTimestamp {
		now := time.Now
		if p.Now != nil {
			now = p.Now
		}
		ts := now().Unix()
		snapshot.InfoUpdateTime = &ts
	}

	return snapshot, true
}

func (p Projector) encode(img image.Image) *string {
	if img == nil || p.Encoder == nil {
		return nil
	}
	encoded, err := p.Encoder.Encode(img)
	if err != nil {
		return nil
	}
	return &encoded
}

func copyOf[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
