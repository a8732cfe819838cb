package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus-crane/mediabridge/db"
	"github.com/marcus-crane/mediabridge/events"
	"github.com/marcus-crane/mediabridge/jobs"
	"github.com/marcus-crane/mediabridge/media"
	"github.com/marcus-crane/mediabridge/playback"
	"github.com/marcus-crane/mediabridge/routes"
	"github.com/marcus-crane/mediabridge/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and SSE service the host application talks to",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	store, err := db.Initialize(cfg.Bridge.DbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	server := events.New()
	controller := media.NewController(newBackend(cfg, logger), newProjector(cfg, true), logger)
	state := playback.NewState()
	collector := telemetry.NewCollector(cfg.Telemetry.DiskPath, telemetry.DefaultProbes())

	if cfg.Telemetry.Enabled {
		scheduler, err := jobs.SetupInBackground(cfg, collector, store, events.NewSink(server, events.System))
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Shutdown()
		slog.Info("Background jobs have started up in the background.")
	} else {
		slog.Info("Background jobs are disabled.")
	}

	if cfg.Media.AutoRegister {
		controller.Register(state.Wrap(events.NewSink(server, events.MediaActivity)))
	}

	handler := routes.Register(http.NewServeMux(), routes.Deps{
		Controller:     controller,
		Playback:       state,
		Events:         server,
		Sampler:        collector,
		Store:          store,
		AllowedOrigins: cfg.Origins(),
	})

	srv := &http.Server{
		Addr:              cfg.Bridge.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("mediabridge is running", slog.String("addr", cfg.Bridge.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			controller.Unregister()
			server.Close()
			return err
		}
	case <-ctx.Done():
	}

	slog.Info("Gracefully shutting down...")
	controller.Unregister()
	// Ends open event streams so Shutdown is not held up by them.
	server.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to shut down HTTP server", slog.String("error", err.Error()))
	}

	waitFor(controller, 5*time.Second)
	slog.Info("mediabridge has successfully shut down.")
	return nil
}

// waitFor gives the media worker a bounded window to close its session.
func waitFor(controller *media.Controller, timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		controller.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		slog.Warn("Media monitor did not exit in time")
	}
}
