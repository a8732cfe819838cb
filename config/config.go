package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"
	"github.com/joho/godotenv"
)

type Config struct {
	Bridge    BridgeConfig
	Media     MediaConfig
	Telemetry TelemetryConfig
}

type BridgeConfig struct {
	Addr           string `env:"ADDR"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`
	DbPath         string `env:"DB_PATH"`
	LogLevel       string `env:"LOG_LEVEL"`
	LogFile        string `env:"LOG_FILE"`
}

type MediaConfig struct {
	AutoRegister      bool   `env:"MEDIA_AUTO_REGISTER"`
	PreferredPlayer   string `env:"MEDIA_PREFERRED_PLAYER"`
	IncludeTimestamp  bool   `env:"MEDIA_INCLUDE_TIMESTAMP"`
	ArtTimeoutSeconds int    `env:"MEDIA_ART_TIMEOUT_SECONDS"`
	ArtMaxSize        int    `env:"MEDIA_ART_MAX_SIZE"`
	ArtCacheSize      int    `env:"MEDIA_ART_CACHE_SIZE"`
}

type TelemetryConfig struct {
	Enabled               bool   `env:"TELEMETRY_ENABLED"`
	SampleIntervalSeconds int    `env:"TELEMETRY_SAMPLE_INTERVAL_SECONDS"`
	RetentionHours        int    `env:"TELEMETRY_RETENTION_HOURS"`
	DiskPath              string `env:"TELEMETRY_DISK_PATH"`
}

func Default() Config {
	return Config{
		Bridge: BridgeConfig{
			Addr:           "127.0.0.1:8080",
			AllowedOrigins: "http://localhost:1420,tauri://localhost",
			DbPath:         filepath.Join(xdg.StateHome, "mediabridge", "mediabridge.db"),
			LogLevel:       "info",
		},
		Media: MediaConfig{
			IncludeTimestamp:  true,
			ArtTimeoutSeconds: 3,
			ArtMaxSize:        256,
			ArtCacheSize:      32,
		},
		Telemetry: TelemetryConfig{
			Enabled:               true,
			SampleIntervalSeconds: 30,
			RetentionHours:        24,
			DiskPath:              "/",
		},
	}
}

// Load reads a .env file when one is present and then overlays the process
// environment on top of the defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", slog.String("error", err.Error()))
	}

	cfg := Default()
	if err := config.New().AddFeeder(feeder.Env{}).AddStruct(&cfg).Feed(); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Bridge.Addr == "" {
		return fmt.Errorf("ADDR must not be empty")
	}
	if c.Media.ArtTimeoutSeconds <= 0 {
		return fmt.Errorf("MEDIA_ART_TIMEOUT_SECONDS must be positive, got %d", c.Media.ArtTimeoutSeconds)
	}
	if c.Media.ArtMaxSize < 16 || c.Media.ArtMaxSize > 2048 {
		return fmt.Errorf("MEDIA_ART_MAX_SIZE must be between 16 and 2048, got %d", c.Media.ArtMaxSize)
	}
	if c.Media.ArtCacheSize <= 0 {
		return fmt.Errorf("MEDIA_ART_CACHE_SIZE must be positive, got %d", c.Media.ArtCacheSize)
	}
	if c.Telemetry.Enabled {
		if c.Telemetry.SampleIntervalSeconds < 1 {
			return fmt.Errorf("TELEMETRY_SAMPLE_INTERVAL_SECONDS must be at least 1, got %d", c.Telemetry.SampleIntervalSeconds)
		}
		if c.Telemetry.RetentionHours < 1 {
			return fmt.Errorf("TELEMETRY_RETENTION_HOURS must be at least 1, got %d", c.Telemetry.RetentionHours)
		}
	}
	return nil
}

func (c *Config) ArtTimeout() time.Duration {
	return time.Duration(c.Media.ArtTimeoutSeconds) * time.Second
}

func (c *Config) SampleInterval() time.Duration {
	return time.Duration(c.Telemetry.SampleIntervalSeconds) * time.Second
}

func (c *Config) Retention() time.Duration {
	return time.Duration(c.Telemetry.RetentionHours) * time.Hour
}

func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.Bridge.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) GetLogLevel() slog.Leveler {
	logLevel := strings.ToLower(c.Bridge.LogLevel)
	if logLevel == "error" {
		return slog.LevelError
	}
	if logLevel == "warning" || logLevel == "warn" {
		return slog.LevelWarn
	}
	if logLevel == "info" {
		return slog.LevelInfo
	}
	if logLevel == "debug" {
		return slog.LevelDebug
	}
	// default to info if unknown
	slog.With(slog.String("log_level", logLevel)).Info("Received invalid log level. Defaulting to INFO.")
	return slog.LevelInfo
}
