// Package config loads the server configuration from the environment.
// A .env file in the working directory is read first when present.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080" validate:"required,numeric"`
	DBPath   string `env:"DB_PATH,   default=billed.db" validate:"required"`
	LogLevel string `env:"LOG_LEVEL, default=info" validate:"oneof=debug info warn error"`

	// SessionBackend selects where session entries live: memory or redis.
	SessionBackend string `env:"SESSION_BACKEND, default=memory" validate:"oneof=memory redis"`
	// MaxReceiptBytes bounds the size of an uploaded receipt.
	MaxReceiptBytes int64 `env:"MAX_RECEIPT_BYTES, default=5242880" validate:"gt=0"`

	Redis RedisConfig
}

type RedisConfig struct {
	Addr       string        `env:"REDIS_ADDR,        default=localhost:6379" validate:"required_if=Enabled true"`
	DB         int           `env:"REDIS_DB,          default=0" validate:"gte=0"`
	SessionTTL time.Duration `env:"REDIS_SESSION_TTL, default=0s"`
	// Enabled is derived from SessionBackend.
	Enabled bool
}

// Load reads .env (if any) and the environment into a validated Config.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Redis.Enabled = cfg.SessionBackend == "redis"
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (%v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}
