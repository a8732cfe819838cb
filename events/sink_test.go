package events

import (
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/r3labs/sse/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/mediabridge/media"
)

type fakeBroker struct {
	mu      sync.Mutex
	streams map[string]bool
	events  map[string][]*sse.Event
}

func newFakeBroker(streams ...string) *fakeBroker {
	b := &fakeBroker{streams: map[string]bool{}, events: map[string][]*sse.Event{}}
	for _, s := range streams {
		b.streams[s] = true
	}
	return b
}

func (b *fakeBroker) StreamExists(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streams[id]
}

func (b *fakeBroker) Publish(id string, event *sse.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[id] = append(b.events[id], event)
}

func TestSink_PublishSnapshot(t *testing.T) {
	broker := newFakeBroker(MediaActivity)
	sink := NewSink(broker, MediaActivity)

	title := "Roygbiv"
	require.NoError(t, sink.Publish(media.Snapshot{Title: &title}))

	require.Len(t, broker.events[MediaActivity], 1)
	event := broker.events[MediaActivity][0]
	assert.Equal(t, MediaActivity, string(event.Event))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(event.Data, &got))
	assert.Equal(t, "Roygbiv", got["title"])
	// Absent fields still appear as null.
	assert.Contains(t, got, "artist")
	assert.Nil(t, got["artist"])
	assert.NotContains(t, got, "albumCoverColours")
}

func TestSink_ClosedStream(t *testing.T) {
	broker := newFakeBroker()
	err := NewSink(broker, MediaActivity).Emit(map[string]string{"hello": "world"})
	assert.ErrorContains(t, err, "closed")
	assert.Empty(t, broker.events)
}

func TestSink_Unmarshalable(t *testing.T) {
	broker := newFakeBroker(System)
	err := NewSink(broker, System).Emit(func() {})
	assert.Error(t, err)
	assert.Empty(t, broker.events[System])
}

func TestNew_StreamsDelivered(t *testing.T) {
	server := New()
	defer server.Close()
	assert.True(t, server.StreamExists(MediaActivity))
	assert.True(t, server.StreamExists(System))

	ts := httptest.NewServer(server)
	defer ts.Close()

	client := sse.NewClient(ts.URL)
	received := make(chan *sse.Event, 1)
	require.NoError(t, client.SubscribeChan(System, received))
	defer client.Unsubscribe(received)

	require.NoError(t, NewSink(server, System).Emit(map[string]int{"processes": 42}))

	select {
	case event := <-received:
		assert.JSONEq(t, `{"processes":42}`, string(event.Data))
		assert.Equal(t, System, string(event.Event))
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}
}
