package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/marcus-crane/mediabridge/models"
)

// Store keeps the telemetry history.
type Store interface {
	InsertSample(sample models.SystemSample) (int64, error)
	RecentSamples(limit int) ([]models.SystemSample, error)
	// PruneSamples deletes samples taken before the given unix time.
	PruneSamples(before int64) (int64, error)
	Close() error
}

// Initialize opens the SQLite store at path and brings its schema up to
// date. An empty path keeps history in memory for the life of the process.
func Initialize(path string) (Store, error) {
	if path == "" {
		slog.Info("No database path set, keeping telemetry history in memory")
		return NewMemoryStore(), nil
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := NewSqliteStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.ApplyMigrations(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	slog.Info("Initialised DB connection", slog.String("path", path))
	return store, nil
}
