package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/r3labs/sse/v2"
	"github.com/rs/cors"

	"github.com/marcus-crane/mediabridge/db"
	"github.com/marcus-crane/mediabridge/events"
	"github.com/marcus-crane/mediabridge/media"
	"github.com/marcus-crane/mediabridge/playback"
	"github.com/marcus-crane/mediabridge/telemetry"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

type Sampler interface {
	Sample(ctx context.Context) telemetry.SystemInfo
}

type Deps struct {
	Controller     *media.Controller
	Playback       *playback.State
	Events         *sse.Server
	Sampler        Sampler
	Store          db.Store
	AllowedOrigins []string
}

func renderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func renderJSONMessage(w http.ResponseWriter, message string) {
	renderJSON(w, http.StatusOK, map[string]string{"message": message})
}

func renderError(w http.ResponseWriter, status int, err error) {
	renderJSON(w, status, map[string]string{"error": err.Error()})
}

func Register(mux *http.ServeMux, deps Deps) http.Handler {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "mediabridge is running. Events are served from <a href=\"/events?stream=%s\">/events</a>\n", events.MediaActivity)
	})

	mux.HandleFunc("GET /api", func(w http.ResponseWriter, r *http.Request) {
		renderJSONMessage(w, "This is the base of the mediabridge API")
	})

	mux.HandleFunc("POST /api/media/register", func(w http.ResponseWriter, r *http.Request) {
		sink := events.NewSink(deps.Events, events.MediaActivity)
		deps.Controller.Register(deps.Playback.Wrap(sink))
		renderJSON(w, http.StatusAccepted, deps.Controller.Status())
	})

	mux.HandleFunc("POST /api/media/unregister", func(w http.ResponseWriter, r *http.Request) {
		// Clear first so a register racing this request wraps the new epoch.
		deps.Playback.Clear()
		deps.Controller.Unregister()
		renderJSON(w, http.StatusAccepted, deps.Controller.Status())
	})

	mux.HandleFunc("GET /api/media/status", func(w http.ResponseWriter, r *http.Request) {
		renderJSON(w, http.StatusOK, deps.Controller.Status())
	})

	mux.HandleFunc("GET /api/media/playing", func(w http.ResponseWriter, r *http.Request) {
		snapshot, ok := deps.Playback.Latest()
		if !ok {
			renderJSON(w, http.StatusOK, struct{}{})
			return
		}
		renderJSON(w, http.StatusOK, snapshot)
	})

	mux.HandleFunc("POST /api/media/{command}", func(w http.ResponseWriter, r *http.Request) {
		cmd, err := media.ParseCommand(r.PathValue("command"))
		if err != nil {
			renderError(w, http.StatusBadRequest, err)
			return
		}
		deps.Controller.Send(cmd)
		renderJSON(w, http.StatusAccepted, map[string]string{"command": cmd.String()})
	})

	mux.HandleFunc("GET /api/system", func(w http.ResponseWriter, r *http.Request) {
		renderJSON(w, http.StatusOK, deps.Sampler.Sample(r.Context()))
	})

	mux.HandleFunc("GET /api/system/history", func(w http.ResponseWriter, r *http.Request) {
		limit := defaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				renderError(w, http.StatusBadRequest, fmt.Errorf("limit must be a positive integer"))
				return
			}
			limit = min(n, maxHistoryLimit)
		}
		samples, err := deps.Store.RecentSamples(limit)
		if err != nil {
			slog.Error("Failed to load system history", slog.String("error", err.Error()))
			renderError(w, http.StatusInternalServerError, fmt.Errorf("failed to load system history"))
			return
		}
		renderJSON(w, http.StatusOK, samples)
	})

	mux.HandleFunc("GET /events", deps.Events.ServeHTTP)

	c := cors.New(cors.Options{
		AllowedOrigins: deps.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
	})

	handler := c.Handler(mux)

	return handler
}
