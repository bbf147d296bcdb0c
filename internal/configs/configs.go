package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	TransportMemory = "memory"
	TransportRedis  = "redis"
)

type Config struct {
	AppHost                string `env:"APP_HOST" env-default:"127.0.0.1"`
	AppPort                string `env:"APP_PORT" env-default:"8080"`
	DatabaseDSN            string `env:"DATABASE_DSN" env-default:"tasks.db"`
	RedisHost              string `env:"REDIS_HOST" env-default:"127.0.0.1"`
	RedisPort              string `env:"REDIS_PORT" env-default:"6379"`
	NotifyTransport        string `env:"NOTIFY_TRANSPORT" env-default:"memory"`
	JWTSecret              string `env:"JWT_SECRET"`
	RateLimit              int    `env:"RATE_LIMIT_PER_MINUTE" env-default:"120"`
	ShutdownTimeoutSeconds int    `env:"SHUTDOWN_TIMEOUT_SECONDS" env-default:"20"`
	LogLevel               string `env:"LOG_LEVEL" env-default:"info"`
}

func (c Config) AppURL() string {
	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Load reads the configuration from the environment. Call godotenv first if
// a .env file should be honoured.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	var errs []error
	if cfg.AppHost == "" || cfg.AppPort == "" {
		errs = append(errs, errors.New("APP_HOST and APP_PORT must not be empty"))
	}
	if cfg.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must not be empty"))
	}
	if cfg.NotifyTransport != TransportMemory && cfg.NotifyTransport != TransportRedis {
		errs = append(errs, fmt.Errorf("NOTIFY_TRANSPORT must be %q or %q", TransportMemory, TransportRedis))
	}
	if cfg.RateLimit <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0"))
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0"))
	}
	return errors.Join(errs...)
}
