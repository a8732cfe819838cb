package media

import (
	"sync"
	"sync/atomic"
)

type fakeBackend struct {
	opens    atomic.Int32
	closes   atomic.Int32
	commands []Command
	openErr  error
	sendErr  error

	mu       sync.Mutex
	sessions []*fakeSession
	opened   chan *fakeSession
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{opened: make(chan *fakeSession, 16)}
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Open() (Session, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.opens.Add(1)
	s := &fakeSession{backend: b}
	b.mu.Lock()
	b.sessions = append(b.sessions, s)
	b.mu.Unlock()
	b.opened <- s
	return s, nil
}

func (b *fakeBackend) Send(cmd Command) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commands = append(b.commands, cmd)
	return b.sendErr
}

type fakeSession struct {
	backend *fakeBackend

	mu     sync.Mutex
	cb     Callback
	closed bool
}

func (s *fakeSession) Subscribe(cb Callback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cb == nil {
		s.cb = cb
	}
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.backend.closes.Add(1)
	}
	return nil
}

// emit delivers a notification the way a platform thread would. It reports
// false once the session is closed.
func (s *fakeSession) emit(raw *RawInfo) bool {
	s.mu.Lock()
	cb, closed := s.cb, s.closed
	s.mu.Unlock()
	if closed || cb == nil {
		return false
	}
	cb(raw)
	return true
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type recordingSubscriber struct {
	mu        sync.Mutex
	snapshots []Snapshot
	attempts  int
	err       error
}

func (r *recordingSubscriber) Publish(snapshot Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if r.err != nil {
		return r.err
	}
	r.snapshots = append(r.snapshots, snapshot)
	return nil
}

func (r *recordingSubscriber) count() (attempts, delivered int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts, len(r.snapshots)
}

func ptr[T any](v T) *T {
	return &v
}
