package media

import "log/slog"

// Forward hands a snapshot to the subscriber. Delivery failures are logged
// and dropped so a vanished host channel never stops the monitor.
func Forward(logger *slog.Logger, sub Subscriber, snapshot Snapshot) {
	if sub == nil {
		return
	}
	if err := sub.Publish(snapshot); err != nil {
		logger.Debug("Failed to forward media activity",
			slog.String("error", err.Error()))
	}
}
