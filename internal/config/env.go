package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvConfig holds overrides read from the environment. Empty means unset.
type EnvConfig struct {
	Backend  string `env:"QUICKTEN_BACKEND"`
	DSN      string `env:"QUICKTEN_DSN"`
	URL      string `env:"QUICKTEN_URL"`
	PlayerID string `env:"QUICKTEN_PLAYER_ID"`
	LogLevel string `env:"QUICKTEN_LOG_LEVEL"`
}

// LoadEnv parses overrides from the process environment.
func LoadEnv() (EnvConfig, error) {
	cfg, err := env.ParseAs[EnvConfig]()
	if err != nil {
		return EnvConfig{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// LoadEnvFrom parses overrides from the given variables instead of the
// process environment.
func LoadEnvFrom(vars map[string]string) (EnvConfig, error) {
	cfg, err := env.ParseAsWithOptions[EnvConfig](env.Options{Environment: vars})
	if err != nil {
		return EnvConfig{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from .env files into the process environment
// without overriding variables that are already set. Missing files are
// skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}
