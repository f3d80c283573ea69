package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/quickten/internal/config"
	"github.com/verte-zerg/quickten/internal/identity"
	"github.com/verte-zerg/quickten/internal/model"
	"github.com/verte-zerg/quickten/internal/pgstore"
	"github.com/verte-zerg/quickten/internal/remote"
	"github.com/verte-zerg/quickten/internal/score"
	"github.com/verte-zerg/quickten/internal/server"
	"github.com/verte-zerg/quickten/internal/store"
)

// backends holds the stores a command talks to. local always points at the
// SQLite database that keeps round history; scores may be the same store.
type backends struct {
	local    *store.Store
	scores   score.Store
	health   server.Pinger
	identity score.IdentityProvider
	closers  []func() error
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			logErrf("failed to close backend: %v\n", err)
		}
	}
}

func openLocalStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func openBackends(ctx context.Context, cfg model.SyncConfig, logger zerolog.Logger) (*backends, error) {
	local, err := openLocalStore()
	if err != nil {
		return nil, err
	}
	b := &backends{
		local:    local,
		identity: identityFor(cfg),
		closers:  []func() error{local.Close},
	}

	switch cfg.Backend {
	case model.BackendPostgres:
		pg, err := pgstore.Open(ctx, cfg.DSN)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		b.scores = pg
		b.health = pg
		b.closers = append(b.closers, pg.Close)
	case model.BackendRemote:
		client, err := remote.New(cfg.URL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.scores = client
		b.health = client
		b.closers = append(b.closers, client.Close)
	default:
		b.scores = local
		b.health = local
	}
	logger.Debug().Str("backend", string(cfg.Backend)).Msg("score backend ready")
	return b, nil
}

func identityFor(cfg model.SyncConfig) score.IdentityProvider {
	if cfg.PlayerID != "" {
		return identity.Static(cfg.PlayerID)
	}
	return identity.NewFileProvider(config.DefaultIdentityPath())
}

// openFileLogger writes JSON logs to path so they stay out of the TUI.
func openFileLogger(path string, level zerolog.Level) (zerolog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), func() {}, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), func() {}, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := zerolog.New(f).Level(level).With().Timestamp().Logger()
	closeFn := func() {
		if cerr := f.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}
	return logger, closeFn, nil
}
