package mpris

import (
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/marcus-crane/mediabridge/media"
)

const (
	busPrefix   = "org.mpris.MediaPlayer2."
	objectPath  = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	rootIface   = "org.mpris.MediaPlayer2"
	playerIface = "org.mpris.MediaPlayer2.Player"
)

// playerState is everything read from one player for a single notification.
type playerState struct {
	BusName      string
	Status       string
	Metadata     map[string]dbus.Variant
	Position     *int64 // microseconds
	Identity     string
	DesktopEntry string
}

type artwork struct {
	cover string
	icon  string
}

func (s playerState) artwork() artwork {
	return artwork{
		cover: variantString(s.Metadata, "mpris:artUrl"),
		icon:  s.DesktopEntry,
	}
}

// rawInfo converts what the player reported into the bridge's raw record.
// Lengths and positions arrive in microseconds and leave as seconds.
func (s playerState) rawInfo() *media.RawInfo {
	info := &media.RawInfo{}

	if s.Status != "" {
		playing := types.PlaybackStatus(s.Status) == types.PlaybackStatusPlaying
		info.IsPlaying = &playing
	}
	if title := variantString(s.Metadata, "xesam:title"); title != "" {
		info.Title = &title
	}
	if artist := variantStrings(s.Metadata, "xesam:artist"); len(artist) > 0 {
		joined := strings.Join(artist, ", ")
		info.Artist = &joined
	}
	if album := variantString(s.Metadata, "xesam:album"); album != "" {
		info.Album = &album
	}
	if name := s.appName(); name != "" {
		info.AppName = &name
	}
	if length, ok := variantInt(s.Metadata, "mpris:length"); ok {
		seconds := float64(length) / 1e6
		info.Duration = &seconds
	}
	if s.Position != nil {
		seconds := float64(*s.Position) / 1e6
		info.Elapsed = &seconds
	}
	return info
}

func (s playerState) appName() string {
	if s.Identity != "" {
		return s.Identity
	}
	name := strings.TrimPrefix(s.BusName, busPrefix)
	// Multiple instances register as e.g. vlc.instance1234.
	if i := strings.Index(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}

func variantString(m map[string]dbus.Variant, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	switch val := v.Value().(type) {
	case string:
		return val
	case dbus.ObjectPath:
		return string(val)
	}
	return ""
}

func variantStrings(m map[string]dbus.Variant, key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	switch val := v.Value().(type) {
	case []string:
		var out []string
		for _, s := range val {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if val != "" {
			return []string{val}
		}
	}
	return nil
}

func variantInt(m map[string]dbus.Variant, key string) (int64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	return toInt64(v.Value())
}

func toInt64(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case uint64:
		return int64(val), true
	case int32:
		return int64(val), true
	case uint32:
		return int64(val), true
	case int16:
		return int64(val), true
	case uint16:
		return int64(val), true
	case byte:
		return int64(val), true
	case float64:
		return int64(val), true
	}
	return 0, false
}
