package playback

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/marcus-crane/mediabridge/media"
)

// State remembers the most recent snapshot forwarded for the current
// registration so late clients can render something before the next
// notification arrives. Clear starts a new epoch; subscribers wrapped in an
// earlier epoch no longer record.
type State struct {
	latest    *media.Snapshot
	mediaID   string
	updatedAt time.Time
	epoch     uint64
	m         sync.RWMutex
}

func NewState() *State {
	return &State{}
}

// Record stores a snapshot and reports whether it started a different item.
func (s *State) Record(snapshot media.Snapshot) bool {
	s.m.Lock()
	defer s.m.Unlock()
	return s.record(snapshot)
}

func (s *State) recordIn(epoch uint64, snapshot media.Snapshot) (recorded, changed bool) {
	s.m.Lock()
	defer s.m.Unlock()
	if epoch != s.epoch {
		return false, false
	}
	return true, s.record(snapshot)
}

func (s *State) record(snapshot media.Snapshot) bool {
	id := GenerateMediaID(snapshot)
	changed := id != s.mediaID
	s.latest = &snapshot
	s.mediaID = id
	s.updatedAt = time.Now()
	return changed
}

func (s *State) Latest() (media.Snapshot, bool) {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.latest == nil {
		return media.Snapshot{}, false
	}
	return *s.latest, true
}

func (s *State) UpdatedAt() time.Time {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.updatedAt
}

func (s *State) Clear() {
	s.m.Lock()
	defer s.m.Unlock()
	s.epoch++
	s.latest = nil
	s.mediaID = ""
	s.updatedAt = time.Time{}
}

// Wrap records every snapshot before handing it to next. A nil next only
// records. Once Clear has been called the wrapper still forwards but stops
// recording, so a retiring worker cannot leak into the next registration.
func (s *State) Wrap(next media.Subscriber) media.Subscriber {
	s.m.RLock()
	epoch := s.epoch
	s.m.RUnlock()

	return media.SubscriberFunc(func(snapshot media.Snapshot) error {
		recorded, changed := s.recordIn(epoch, snapshot)
		if !recorded {
			slog.Debug("Dropped snapshot from a previous registration")
		} else if changed && snapshot.Title != nil {
			slog.Info("Now playing",
				slog.String("title", *snapshot.Title),
				slog.String("app", deref(snapshot.AppName)))
		}
		if next == nil {
			return nil
		}
		return next.Publish(snapshot)
	})
}

// GenerateMediaID is stable for a piece of media regardless of playback
// position or artwork.
func GenerateMediaID(snapshot media.Snapshot) string {
	hashString := fmt.Sprintf("%s-%s-%s-%s",
		deref(snapshot.AppName),
		deref(snapshot.Title),
		deref(snapshot.Artist),
		deref(snapshot.Album),
	)
	return fmt.Sprintf("%s:%d", deref(snapshot.AppName), xxhash.Sum64String(hashString))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
