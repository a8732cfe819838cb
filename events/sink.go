package events

import (
	"encoding/json"
	"fmt"

	"github.com/r3labs/sse/v2"

	"github.com/marcus-crane/mediabridge/media"
)

// Broker is the part of *sse.Server a Sink publishes through.
type Broker interface {
	StreamExists(id string) bool
	Publish(id string, event *sse.Event)
}

// Sink publishes JSON payloads as named events on a single stream.
type Sink struct {
	broker Broker
	stream string
}

func NewSink(broker Broker, stream string) *Sink {
	return &Sink{broker: broker, stream: stream}
}

func (s *Sink) Emit(v any) error {
	if !s.broker.StreamExists(s.stream) {
		return fmt.Errorf("stream %s is closed", s.stream)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", s.stream, err)
	}
	s.broker.Publish(s.stream, &sse.Event{
		Event: []byte(s.stream),
		Data:  data,
	})
	return nil
}

// Publish makes a Sink usable as a media activity subscriber.
func (s *Sink) Publish(snapshot media.Snapshot) error {
	return s.Emit(snapshot)
}
