package media

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Controller owns the running flag for media activity monitoring. At most one
// monitor worker belongs to the current registration; Register and Unregister
// are linearised by mu.
type Controller struct {
	backend   Backend
	projector Projector
	logger    *slog.Logger

	mu           sync.Mutex
	cond         *sync.Cond
	running      bool
	generation   uint64
	registration string
	startedAt    time.Time

	workers sync.WaitGroup
}

type Status struct {
	Running      bool       `json:"running"`
	Registration string     `json:"registration,omitempty"`
	Backend      string     `json:"backend"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
}

func NewController(backend Backend, projector Projector, logger *slog.Logger) *Controller {
	if backend == nil {
		backend = NoBackend{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		backend:   backend,
		projector: projector,
		logger:    logger.With(slog.String("backend", backend.Name())),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Register starts monitoring and forwards every snapshot to sub. It returns
// straight away if monitoring is already running; the running worker keeps
// the subscriber it was started with.
func (c *Controller) Register(sub Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}

	c.running = true
	c.generation++
	c.registration = uuid.NewString()
	c.startedAt = time.Now()

	c.workers.Add(1)
	go c.monitor(c.generation, c.registration, sub)

	c.logger.Info("Registered media activity monitoring",
		slog.String("registration", c.registration))
}

// Unregister signals the worker to stop and returns without waiting for it.
func (c *Controller) Unregister() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		c.logger.Info("Unregistered media activity monitoring",
			slog.String("registration", c.registration))
	}
	c.running = false
	c.registration = ""
	c.cond.Broadcast()
}

func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	status := Status{
		Running: c.running,
		Backend: c.backend.Name(),
	}
	if c.running {
		status.Registration = c.registration
		startedAt := c.startedAt
		status.StartedAt = &startedAt
	}
	return status
}

// Wait blocks until every worker started so far has exited.
func (c *Controller) Wait() {
	c.workers.Wait()
}

func (c *Controller) Send(cmd Command) {
	Send(c.logger, c.backend, cmd)
}
