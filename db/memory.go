package db

import (
	"sort"
	"sync"

	"github.com/marcus-crane/mediabridge/models"
)

type mapStore struct {
	m      *sync.Mutex
	nextID int64
	data   []models.SystemSample
}

func NewMemoryStore() Store {
	return newMapStore()
}

func newMapStore() *mapStore {
	return &mapStore{
		m:    new(sync.Mutex),
		data: []models.SystemSample{},
	}
}

func (ms *mapStore) InsertSample(sample models.SystemSample) (int64, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	ms.nextID++
	sample.ID = ms.nextID
	ms.data = append(ms.data, sample)
	return sample.ID, nil
}

func (ms *mapStore) RecentSamples(limit int) ([]models.SystemSample, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	samples := make([]models.SystemSample, len(ms.data))
	copy(samples, ms.data)
	sort.SliceStable(samples, func(i, j int) bool {
		if samples[i].SampledAt != samples[j].SampledAt {
			return samples[i].SampledAt > samples[j].SampledAt
		}
		return samples[i].ID > samples[j].ID
	})
	if limit >= 0 && limit < len(samples) {
		samples = samples[:limit]
	}
	return samples, nil
}

func (ms *mapStore) PruneSamples(before int64) (int64, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	kept := ms.data[:0]
	for _, s := range ms.data {
		if s.SampledAt >= before {
			kept = append(kept, s)
		}
	}
	removed := int64(len(ms.data) - len(kept))
	ms.data = kept
	return removed, nil
}

func (ms *mapStore) Close() error {
	return nil
}
