package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/quickten/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Game.RoundSeconds != nil || cfg.Sync.Backend != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[game]
round = 90
warning = 5

[sync]
backend = "remote"
url = "http://scores.local"

[feedback]
sound = true

[log]
level = "debug"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Game.RoundSeconds == nil || *cfg.Game.RoundSeconds != 90 {
		t.Fatalf("unexpected round: %v", cfg.Game.RoundSeconds)
	}
	if cfg.Game.RewardSeconds != nil {
		t.Fatalf("reward should be unset")
	}
	if cfg.Sync.URL == nil || *cfg.Sync.URL != "http://scores.local" {
		t.Fatalf("unexpected url: %v", cfg.Sync.URL)
	}
	if cfg.Feedback.Sound == nil || !*cfg.Feedback.Sound {
		t.Fatalf("expected sound enabled")
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[game]\nrounds = 3\n")
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "game.rounds") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestTemplateDecodesWhenUncommented(t *testing.T) {
	var lines []string
	for _, line := range strings.Split(Template(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, " = ") {
			line = strings.TrimPrefix(line, "# ")
			if i := strings.Index(line, "  #"); i >= 0 {
				line = line[:i]
			}
		}
		lines = append(lines, line)
	}
	var cfg FileConfig
	md, err := toml.Decode(strings.Join(lines, "\n"), &cfg)
	if err != nil {
		t.Fatalf("decode template: %v", err)
	}
	if len(md.Undecoded()) != 0 {
		t.Fatalf("template has unknown keys: %v", md.Undecoded())
	}
	if cfg.Game.RoundSeconds == nil || *cfg.Game.RoundSeconds != 60 {
		t.Fatalf("unexpected template round %v", cfg.Game.RoundSeconds)
	}
}

func TestResolvePrecedence(t *testing.T) {
	round := 45
	backend := "postgres"
	dsn := "postgres://file"
	level := "warn"
	file := FileConfig{
		Game: GameConfig{RoundSeconds: &round},
		Sync: SyncConfig{Backend: &backend, DSN: &dsn},
		Log:  LogConfig{Level: &level},
	}
	envCfg, err := LoadEnvFrom(map[string]string{
		"QUICKTEN_DSN":       "postgres://env",
		"QUICKTEN_LOG_LEVEL": "DEBUG",
	})
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	s, err := Resolve(file, envCfg)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if s.Game.RoundSeconds != 45 || s.Game.RewardSeconds != 15 {
		t.Fatalf("unexpected game settings %+v", s.Game)
	}
	if s.Sync.Backend != model.BackendPostgres {
		t.Fatalf("expected postgres backend, got %q", s.Sync.Backend)
	}
	if s.Sync.DSN != "postgres://env" {
		t.Fatalf("env should override file dsn, got %q", s.Sync.DSN)
	}
	if s.LogLevel != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %v", s.LogLevel)
	}
	if s.Sync.RankingLimit != model.DefaultRankingLimit {
		t.Fatalf("expected default ranking limit, got %d", s.Sync.RankingLimit)
	}
}

func TestResolveRejectsBadValues(t *testing.T) {
	if _, err := Resolve(FileConfig{}, EnvConfig{Backend: "redis"}); err == nil {
		t.Fatalf("expected backend error")
	}
	if _, err := Resolve(FileConfig{}, EnvConfig{LogLevel: "loud"}); err == nil {
		t.Fatalf("expected log level error")
	}
}

func TestValidateSync(t *testing.T) {
	cases := []struct {
		name string
		cfg  model.SyncConfig
		ok   bool
	}{
		{"sqlite", model.SyncConfig{Backend: model.BackendSQLite}, true},
		{"postgres without dsn", model.SyncConfig{Backend: model.BackendPostgres}, false},
		{"postgres", model.SyncConfig{Backend: model.BackendPostgres, DSN: "postgres://x"}, true},
		{"remote without url", model.SyncConfig{Backend: model.BackendRemote}, false},
		{"negative limit", model.SyncConfig{Backend: model.BackendSQLite, RankingLimit: -1}, false},
	}
	for _, tc := range cases {
		err := ValidateSync(tc.cfg)
		if (err == nil) != tc.ok {
			t.Fatalf("%s: expected ok=%v, got %v", tc.name, tc.ok, err)
		}
	}
}

func TestLoadDotEnvSkipsMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	writeFile(t, path, "QUICKTEN_TEST_DOTENV=from-file\n")
	t.Setenv("QUICKTEN_TEST_DOTENV", "")
	if err := os.Unsetenv("QUICKTEN_TEST_DOTENV"); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}
	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("QUICKTEN_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_CONFIG_HOME", "/config")
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := DefaultDBPath(); got != filepath.Join("/data", "quickten", "quickten.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultIdentityPath(); got != filepath.Join("/data", "quickten", "player-id") {
		t.Fatalf("unexpected identity path %q", got)
	}
	if got := DefaultConfigPath(); got != filepath.Join("/config", "quickten", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/state", "quickten", "quickten.log") {
		t.Fatalf("unexpected log path %q", got)
	}
}
