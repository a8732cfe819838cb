package mpris

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/marcus-crane/mediabridge/media"
)

var ErrNoPlayer = errors.New("no mpris player on the session bus")

// selectPlayer picks the player whose session the bridge reports on. The
// preferred player wins if present, then the first one playing, then the
// first by name. It returns "" when no player is on the bus.
func selectPlayer(names []string, preferred string, status func(busName string) string) string {
	var players []string
	for _, name := range names {
		if strings.HasPrefix(name, busPrefix) {
			players = append(players, name)
		}
	}
	if len(players) == 0 {
		return ""
	}
	sort.Strings(players)

	if preferred != "" {
		for _, name := range players {
			suffix := strings.TrimPrefix(name, busPrefix)
			if suffix == preferred || strings.HasPrefix(suffix, preferred+".") {
				return name
			}
		}
	}
	for _, name := range players {
		if types.PlaybackStatus(status(name)) == types.PlaybackStatusPlaying {
			return name
		}
	}
	return players[0]
}

func methodFor(cmd media.Command) (string, error) {
	switch cmd {
	case media.Play:
		return playerIface + ".Play", nil
	case media.Pause:
		return playerIface + ".Pause", nil
	case media.NextTrack:
		return playerIface + ".Next", nil
	case media.PreviousTrack:
		return playerIface + ".Previous", nil
	}
	return "", fmt.Errorf("unknown command %d", cmd)
}
