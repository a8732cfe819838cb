package media

import "log/slog"

// Send delivers a single remote command to the backend. Failures only show
// up in the log.
func Send(logger *slog.Logger, backend Backend, cmd Command) {
	if backend == nil {
		return
	}
	if err := backend.Send(cmd); err != nil {
		logger.Warn("Failed to send media command",
			slog.String("command", cmd.String()),
			slog.String("backend", backend.Name()),
			slog.String("error", err.Error()))
		return
	}
	logger.Debug("Sent media command",
		slog.String("command", cmd.String()),
		slog.String("backend", backend.Name()))
}
