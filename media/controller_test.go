package media

import (
	"encoding/json"
	"errors"
	"image"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestController(b Backend) *Controller {
	return NewController(b, Projector{Encoder: stubEncoder{}}, quietLogger())
}

func waitOpened(t *testing.T, b *fakeBackend) *fakeSession {
	t.Helper()
	select {
	case s := <-b.opened:
		return s
	case <-time.After(waitFor):
		t.Fatal("monitor never opened a session")
	}
	return nil
}

func waitWorkers(t *testing.T, c *Controller) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("monitor did not exit in time")
	}
}

func TestController_ConcurrentRegisterSpawnsOneWorker(t *testing.T) {
	b := newFakeBackend()
	c := newTestController(b)
	sub := &recordingSubscriber{}

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Register(sub)
		}()
	}
	wg.Wait()

	waitOpened(t, b)
	assert.True(t, c.Running())

	// Give any stray worker a chance to show up.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), b.opens.Load())

	c.Unregister()
	waitWorkers(t, c)
	assert.Equal(t, int32(1), b.closes.Load())
}

func TestController_UnregisterWhenIdleIsNoop(t *testing.T) {
	b := newFakeBackend()
	c := newTestController(b)

	done := make(chan struct{})
	go func() {
		c.Unregister()
		c.Unregister()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("Unregister blocked")
	}
	assert.False(t, c.Running())
	assert.Equal(t, int32(0), b.opens.Load())
	waitWorkers(t, c)
}

func TestController_RegisterUnregisterRegisterCycle(t *testing.T) {
	b := newFakeBackend()
	c := newTestController(b)

	c.Register(&recordingSubscriber{})
	first := waitOpened(t, b)

	c.Unregister()
	c.Register(&recordingSubscriber{})
	second := waitOpened(t, b)

	assert.True(t, c.Running())
	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), b.opens.Load())

	require.Eventually(t, first.isClosed, waitFor, 5*time.Millisecond)
	assert.False(t, second.isClosed())
	assert.Equal(t, int32(1), b.closes.Load())

	c.Unregister()
	waitWorkers(t, c)
	assert.Equal(t, int32(2), b.closes.Load())
}

func TestController_WorkerStopsWhileNotificationsArrive(t *testing.T) {
	b := newFakeBackend()
	c := newTestController(b)
	sub := &recordingSubscriber{}

	c.Register(sub)
	session := waitOpened(t, b)

	stop := make(chan struct{})
	emitted := make(chan struct{})
	go func() {
		defer close(emitted)
		for {
			select {
			case <-stop:
				return
			default:
				session.emit(&RawInfo{Title: ptr("loop")})
			}
		}
	}()

	require.Eventually(t, func() bool {
		_, delivered := sub.count()
		return delivered > 0
	}, waitFor, 5*time.Millisecond)

	c.Unregister()
	waitWorkers(t, c)
	close(stop)
	<-emitted

	assert.True(t, session.isClosed())
	assert.False(t, session.emit(&RawInfo{Title: ptr("late")}))
}

func TestController_FailedOpenReleasesFlag(t *testing.T) {
	b := newFakeBackend()
	b.openErr = errors.New("no session bus")
	c := newTestController(b)

	c.Register(&recordingSubscriber{})
	waitWorkers(t, c)
	assert.False(t, c.Running())

	// The flag is free again so a later attempt gets its own worker.
	b.openErr = nil
	c.Register(&recordingSubscriber{})
	waitOpened(t, b)
	assert.True(t, c.Running())

	c.Unregister()
	waitWorkers(t, c)
}

func TestController_NoBackendReleasesFlag(t *testing.T) {
	c := newTestController(NoBackend{})

	c.Register(&recordingSubscriber{})
	waitWorkers(t, c)

	assert.False(t, c.Running())
	assert.Equal(t, "none", c.Status().Backend)
}

func TestController_ForwardsInDeliveryOrder(t *testing.T) {
	b := newFakeBackend()
	c := newTestController(b)
	sub := &recordingSubscriber{}

	c.Register(sub)
	session := waitOpened(t, b)
	require.Eventually(t, func() bool {
		return session.emit(&RawInfo{Title: ptr("one")})
	}, waitFor, 5*time.Millisecond)
	session.emit(nil)
	session.emit(&RawInfo{Title: ptr("two")})
	session.emit(&RawInfo{Title: ptr("three")})

	c.Unregister()
	waitWorkers(t, c)

	var titles []string
	for _, s := range sub.snapshots {
		titles = append(titles, *s.Title)
	}
	assert.Equal(t, []string{"one", "two", "three"}, titles)
}

func TestController_FailingSubscriberDoesNotStopMonitor(t *testing.T) {
	b := newFakeBackend()
	c := newTestController(b)
	sub := &recordingSubscriber{err: errors.New("channel closed")}

	c.Register(sub)
	session := waitOpened(t, b)
	require.Eventually(t, func() bool {
		return session.emit(&RawInfo{Title: ptr("a")})
	}, waitFor, 5*time.Millisecond)
	session.emit(&RawInfo{Title: ptr("b")})
	session.emit(&RawInfo{Title: ptr("c")})

	attempts, delivered := sub.count()
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 0, delivered)
	assert.True(t, c.Running())
	assert.False(t, session.isClosed())

	c.Unregister()
	waitWorkers(t, c)
}

func TestController_RegisterKeepsFirstSubscriber(t *testing.T) {
	b := newFakeBackend()
	c := newTestController(b)
	first := &recordingSubscriber{}
	second := &recordingSubscriber{}

	c.Register(first)
	session := waitOpened(t, b)
	c.Register(second)

	require.Eventually(t, func() bool {
		return session.emit(&RawInfo{Title: ptr("song")})
	}, waitFor, 5*time.Millisecond)

	_, delivered := first.count()
	assert.Equal(t, 1, delivered)
	attempts, _ := second.count()
	assert.Equal(t, 0, attempts)

	c.Unregister()
	waitWorkers(t, c)
}

func TestController_Status(t *testing.T) {
	b := newFakeBackend()
	c := newTestController(b)

	assert.Equal(t, Status{Backend: "fake"}, c.Status())

	c.Register(&recordingSubscriber{})
	waitOpened(t, b)
	status := c.Status()
	assert.True(t, status.Running)
	assert.NotEmpty(t, status.Registration)
	require.NotNil(t, status.StartedAt)
	assert.False(t, status.StartedAt.IsZero())

	encoded, err := json.Marshal(status)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(encoded, &fields))
	assert.Contains(t, fields, "startedAt")
	assert.NotContains(t, fields, "started_at")

	c.Unregister()
	waitWorkers(t, c)
	assert.Equal(t, Status{Backend: "fake"}, c.Status())
}

func TestController_SendReachesBackend(t *testing.T) {
	b := newFakeBackend()
	c := newTestController(b)

	c.Send(Play)
	c.Send(Pause)
	b.sendErr = errors.New("no player")
	c.Send(NextTrack)
	c.Send(PreviousTrack)

	assert.Equal(t, []Command{Play, Pause, NextTrack, PreviousTrack}, b.commands)
}

func TestSend_NoBackendIsNoop(t *testing.T) {
	for _, cmd := range []Command{Play, Pause, NextTrack, PreviousTrack} {
		assert.NoError(t, NoBackend{}.Send(cmd))
		Send(quietLogger(), NoBackend{}, cmd)
	}
}

type stubEncoder struct{}

func (stubEncoder) Encode(img image.Image) (string, error) {
	return "encoded", nil
}
