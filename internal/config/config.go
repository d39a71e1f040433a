package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/duel.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// MinPlayers is the smallest roster a leader can start a game with.
	MinPlayers int `env:"MIN_PLAYERS" envDefault:"2"`

	// CodeMaxAttempts bounds room-code generation retries on collision.
	CodeMaxAttempts int `env:"CODE_MAX_ATTEMPTS" envDefault:"5"`

	// ReconcileInterval is the fallback poll period for open event streams.
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"30s"`

	// RoomGracePeriod is how long a completed or cancelled room stays
	// resolvable before it is dropped from the registry.
	RoomGracePeriod time.Duration `env:"ROOM_GRACE_PERIOD" envDefault:"2m"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
