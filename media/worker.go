package media

import "log/slog"

// monitor runs for one registration: it opens the session, wires the callback
// chain and parks until the registration it belongs to is over.
func (c *Controller) monitor(generation uint64, registration string, sub Subscriber) {
	defer c.workers.Done()

	logger := c.logger.With(slog.String("registration", registration))

	session, err := c.backend.Open()
	if err != nil {
		logger.Warn("Media session unavailable, releasing registration",
			slog.String("error", err.Error()))
		c.release(generation)
		return
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Error("Failed to close media session",
				slog.String("error", err.Error()))
		}
		logger.Debug("Media monitor exited")
	}()

	session.Subscribe(func(raw *RawInfo) {
		snapshot, ok := c.projector.Project(raw)
		if !ok {
			return
		}
		Forward(logger, sub, snapshot)
	})

	logger.Debug("Media monitor subscribed")

	c.mu.Lock()
	for c.running && c.generation == generation {
		c.cond.Wait()
	}
	c.mu.Unlock()
}

// release clears the flag after a failed start, unless a newer registration
// has already taken over.
func (c *Controller) release(generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation == generation {
		c.running = false
		c.registration = ""
	}
}
