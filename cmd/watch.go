package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus-crane/mediabridge/media"
)

var errSessionUnavailable = errors.New("media session unavailable")

var watchArt bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print media activity snapshots as JSON lines until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(cmd.OutOrStdout())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sub := media.SubscriberFunc(func(snapshot media.Snapshot) error {
			return enc.Encode(snapshot)
		})
		return runWatch(ctx, newBackend(cfg, logger), newProjector(cfg, watchArt), sub, logger, time.Second)
	},
}

// runWatch forwards snapshots to sub until ctx ends. It gives up early when
// the backend cannot open a session, since nothing would ever be printed.
func runWatch(ctx context.Context, backend media.Backend, projector media.Projector, sub media.Subscriber, logger *slog.Logger, poll time.Duration) error {
	if _, ok := backend.(media.NoBackend); ok {
		return media.ErrUnsupported
	}

	controller := media.NewController(backend, projector, logger)
	controller.Register(sub)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			controller.Unregister()
			controller.Wait()
			return nil
		case <-ticker.C:
			if !controller.Running() {
				controller.Wait()
				return errSessionUnavailable
			}
		}
	}
}

func init() {
	watchCmd.Flags().BoolVar(&watchArt, "art", false, "include base64 encoded artwork in each snapshot")
	rootCmd.AddCommand(watchCmd)
}
