package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/quickten/internal/model"
	"github.com/verte-zerg/quickten/internal/session"
)

// Settings is the resolved configuration before CLI flags are applied.
type Settings struct {
	Game     model.Config
	Sync     model.SyncConfig
	LogLevel zerolog.Level
	LogPath  string
}

// Defaults returns built-in settings.
func Defaults() Settings {
	return Settings{
		Game: model.Config{
			RoundSeconds:   session.DefaultRoundSeconds,
			RewardSeconds:  session.DefaultRewardSeconds,
			WarningSeconds: session.DefaultWarningSeconds,
			Sound:          false,
		},
		Sync: model.SyncConfig{
			Backend:      model.BackendSQLite,
			RankingLimit: model.DefaultRankingLimit,
		},
		LogLevel: zerolog.InfoLevel,
		LogPath:  DefaultLogPath(),
	}
}

// Resolve layers file values and then environment values over the defaults.
func Resolve(file FileConfig, envCfg EnvConfig) (Settings, error) {
	s := Defaults()

	setInt(&s.Game.RoundSeconds, file.Game.RoundSeconds)
	setInt(&s.Game.RewardSeconds, file.Game.RewardSeconds)
	setInt(&s.Game.WarningSeconds, file.Game.WarningSeconds)
	if file.Feedback.Sound != nil {
		s.Game.Sound = *file.Feedback.Sound
	}

	backend := string(s.Sync.Backend)
	setString(&backend, file.Sync.Backend)
	setString(&s.Sync.DSN, file.Sync.DSN)
	setString(&s.Sync.URL, file.Sync.URL)
	setString(&s.Sync.PlayerID, file.Sync.PlayerID)
	setInt(&s.Sync.RankingLimit, file.Sync.RankingLimit)

	level := ""
	setString(&level, file.Log.Level)
	setString(&s.LogPath, file.Log.Path)

	overrideString(&backend, envCfg.Backend)
	overrideString(&s.Sync.DSN, envCfg.DSN)
	overrideString(&s.Sync.URL, envCfg.URL)
	overrideString(&s.Sync.PlayerID, envCfg.PlayerID)
	overrideString(&level, envCfg.LogLevel)

	b, err := ParseBackend(backend)
	if err != nil {
		return Settings{}, err
	}
	s.Sync.Backend = b
	if level != "" {
		lvl, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return Settings{}, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		s.LogLevel = lvl
	}
	return s, nil
}

// ParseBackend validates a backend name.
func ParseBackend(name string) (model.Backend, error) {
	switch b := model.Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case model.BackendSQLite, model.BackendPostgres, model.BackendRemote:
		return b, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want sqlite, postgres or remote)", name)
	}
}

// ValidateSync checks that the selected backend has what it needs.
func ValidateSync(cfg model.SyncConfig) error {
	switch cfg.Backend {
	case model.BackendPostgres:
		if cfg.DSN == "" {
			return fmt.Errorf("postgres backend requires --dsn or QUICKTEN_DSN")
		}
	case model.BackendRemote:
		if cfg.URL == "" {
			return fmt.Errorf("remote backend requires --url or QUICKTEN_URL")
		}
	}
	if cfg.RankingLimit < 0 {
		return fmt.Errorf("ranking limit must be >= 0")
	}
	return nil
}

func setInt(target, value *int) {
	if value != nil {
		*target = *value
	}
}

func setString(target, value *string) {
	if value != nil {
		*target = *value
	}
}

func overrideString(target *string, value string) {
	if value != "" {
		*target = value
	}
}
