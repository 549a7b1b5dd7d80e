package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Config holds the server configuration, loaded from the environment.
type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Host      string `env:"HOST" default:"0.0.0.0"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// SessionTimeout is how long a session may go without a heartbeat before
	// the liveness sweeper evicts it.
	SessionTimeout time.Duration `env:"SESSION_TIMEOUT" default:"120s"`

	// SweepInterval is the period of the liveness sweep cycle.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" default:"30s"`

	// MaxSubscribers caps concurrent real-time subscribers.
	MaxSubscribers int `env:"MAX_SUBSCRIBERS" default:"10000"`

	// TracksPath points at the game's maps directory for the track catalog.
	// Empty means no local tracks are advertised.
	TracksPath string `env:"TRACKS_PATH"`
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive, got %v", cfg.SessionTimeout)
	}
	if cfg.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %v", cfg.SweepInterval)
	}
	if cfg.SweepInterval > cfg.SessionTimeout {
		return fmt.Errorf("SWEEP_INTERVAL (%v) must not exceed SESSION_TIMEOUT (%v)", cfg.SweepInterval, cfg.SessionTimeout)
	}
	if cfg.MaxSubscribers <= 0 {
		return fmt.Errorf("MAX_SUBSCRIBERS must be positive, got %d", cfg.MaxSubscribers)
	}
	return nil
}
