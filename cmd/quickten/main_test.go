package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/quickten/internal/identity"
	"github.com/verte-zerg/quickten/internal/model"
	"github.com/verte-zerg/quickten/internal/store"
)

func isolateXDG(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	for _, name := range []string{"QUICKTEN_BACKEND", "QUICKTEN_DSN", "QUICKTEN_URL", "QUICKTEN_PLAYER_ID", "QUICKTEN_LOG_LEVEL"} {
		t.Setenv(name, "")
	}
	return dir
}

func TestLoadSettingsFlagsOverrideEnv(t *testing.T) {
	isolateXDG(t)
	t.Setenv("QUICKTEN_BACKEND", "postgres")
	t.Setenv("QUICKTEN_DSN", "postgres://env/db")

	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--backend", "remote", "--url", "http://localhost:8080"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	settings, err := loadSettings(cmd)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if settings.Sync.Backend != model.BackendRemote {
		t.Fatalf("expected remote backend, got %q", settings.Sync.Backend)
	}
	if settings.Sync.URL != "http://localhost:8080" {
		t.Fatalf("unexpected url %q", settings.Sync.URL)
	}
	if settings.Sync.DSN != "postgres://env/db" {
		t.Fatalf("expected dsn from env, got %q", settings.Sync.DSN)
	}
}

func TestLoadSettingsRejectsBadBackendFlag(t *testing.T) {
	isolateXDG(t)
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--backend", "redis"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if _, err := loadSettings(cmd); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestLoadSettingsRequiresDSNForPostgres(t *testing.T) {
	isolateXDG(t)
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--backend", "postgres"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if _, err := loadSettings(cmd); err == nil {
		t.Fatalf("expected error for missing dsn")
	}
}

func TestApplyFlagsOnlyWhenChanged(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--round", "90"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	round, reward := 45, 7
	applyIntFlag(cmd, "round", &round, playRound)
	applyIntFlag(cmd, "reward", &reward, playReward)
	if round != 90 {
		t.Fatalf("expected round 90, got %d", round)
	}
	if reward != 7 {
		t.Fatalf("expected untouched reward, got %d", reward)
	}
}

func TestIdentityForPrefersConfiguredID(t *testing.T) {
	isolateXDG(t)
	ids := identityFor(model.SyncConfig{PlayerID: "fixed"})
	if _, ok := ids.(identity.Static); !ok {
		t.Fatalf("expected static identity, got %T", ids)
	}
	id, err := ids.EnsureIdentity(context.Background())
	if err != nil || id != "fixed" {
		t.Fatalf("unexpected identity %q err=%v", id, err)
	}
	if _, ok := identityFor(model.SyncConfig{}).(*identity.FileProvider); !ok {
		t.Fatalf("expected file provider")
	}
}

func TestOpenBackendsSQLiteSharesLocalStore(t *testing.T) {
	isolateXDG(t)
	b, err := openBackends(context.Background(), model.SyncConfig{Backend: model.BackendSQLite}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open backends: %v", err)
	}
	defer b.Close()
	st, ok := b.scores.(*store.Store)
	if !ok || st != b.local {
		t.Fatalf("expected scores to use the local store")
	}
}

func TestOpenBackendsRemoteRejectsBadURL(t *testing.T) {
	isolateXDG(t)
	_, err := openBackends(context.Background(), model.SyncConfig{Backend: model.BackendRemote, URL: "ftp://example"}, zerolog.Nop())
	if err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}

func TestOpenFileLoggerCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "quickten.log")
	logger, closeFn, err := openFileLogger(path, zerolog.InfoLevel)
	if err != nil {
		t.Fatalf("open logger: %v", err)
	}
	logger.Info().Msg("hello")
	logger.Debug().Msg("hidden")
	closeFn()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"message":"hello"`) {
		t.Fatalf("expected info line, got %q", data)
	}
	if strings.Contains(string(data), "hidden") {
		t.Fatalf("debug line should be filtered, got %q", data)
	}
}

func TestWhoamiPrintsBest(t *testing.T) {
	isolateXDG(t)
	t.Setenv("QUICKTEN_PLAYER_ID", "player-1")

	st, err := openLocalStore()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := st.CommitIfBest(context.Background(), "player-1", 6, time.Now()); err != nil {
		t.Fatalf("seed score: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	out := runCLI(t, "whoami")
	if !strings.Contains(out, "player: player-1") || !strings.Contains(out, "best: 6") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRankingPlainEmpty(t *testing.T) {
	isolateXDG(t)
	t.Setenv("QUICKTEN_PLAYER_ID", "player-1")

	out := runCLI(t, "ranking", "--plain")
	if !strings.Contains(out, "No scores yet.") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestStatsRejectsBadSince(t *testing.T) {
	isolateXDG(t)
	cmd := newRootCmd()
	cmd.SetArgs([]string{"stats", "--since", "yesterday"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for bad --since")
	}
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("run %v: %v (stderr %q)", args, err, errOut.String())
	}
	return out.String()
}
