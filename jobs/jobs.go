package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/marcus-crane/mediabridge/config"
	"github.com/marcus-crane/mediabridge/db"
	"github.com/marcus-crane/mediabridge/telemetry"
)

type Sampler interface {
	Sample(ctx context.Context) telemetry.SystemInfo
}

type Emitter interface {
	Emit(v any) error
}

func SetupInBackground(cfg config.Config, sampler Sampler, store db.Store, emitter Emitter) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	interval := cfg.SampleInterval()

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(RecordSystemSample, sampler, store, emitter, interval),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(PruneSystemSamples, store, cfg.Retention()),
	)
	if err != nil {
		return nil, err
	}

	slog.Info("Jobs scheduled", slog.Duration("sample_interval", interval), slog.Duration("retention", cfg.Retention()))

	return s, nil
}

// RecordSystemSample takes one telemetry reading, publishes it to live
// clients and appends it to the history.
func RecordSystemSample(sampler Sampler, store db.Store, emitter Emitter, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	info := sampler.Sample(ctx)
	if emitter != nil {
		if err := emitter.Emit(info); err != nil {
			slog.Debug("Failed to publish system sample", slog.String("error", err.Error()))
		}
	}

	sample, err := info.Sample(time.Now())
	if err != nil {
		slog.Error("Failed to build system sample", slog.String("error", err.Error()))
		return
	}
	if _, err := store.InsertSample(sample); err != nil {
		slog.Error("Failed to save system sample", slog.String("error", err.Error()))
	}
}

func PruneSystemSamples(store db.Store, retention time.Duration) {
	cutoff := time.Now().Add(-retention).Unix()
	removed, err := store.PruneSamples(cutoff)
	if err != nil {
		slog.Error("Failed to prune system samples", slog.String("error", err.Error()))
		return
	}
	if removed > 0 {
		slog.Debug("Pruned system samples", slog.Int64("removed", removed))
	}
}
