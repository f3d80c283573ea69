// Package pgstore keeps best scores in PostgreSQL so several devices can
// share one leaderboard.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verte-zerg/quickten/internal/model"
)

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and creates the schema if needed.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is empty")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return s, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scores (
			player_id TEXT PRIMARY KEY,
			best_score INTEGER NOT NULL CHECK (best_score >= 0),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_best ON scores (best_score DESC, updated_at ASC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// CommitIfBest creates or raises the player's record in one statement. The
// conflicting row is locked for the duration of the upsert, so concurrent
// commits for the same player serialize.
func (s *Store) CommitIfBest(ctx context.Context, playerID string, score int, now time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO scores (player_id, best_score, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (player_id) DO UPDATE
		SET best_score = EXCLUDED.best_score, updated_at = EXCLUDED.updated_at
		WHERE EXCLUDED.best_score > scores.best_score
	`, playerID, score, now.UTC())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// BestScore returns the stored best for a player.
func (s *Store) BestScore(ctx context.Context, playerID string) (int, bool, error) {
	var best int
	err := s.pool.QueryRow(ctx, `SELECT best_score FROM scores WHERE player_id = $1`, playerID).Scan(&best)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return best, true, nil
}

// TopScores returns the leaderboard. Ties go to the earlier achiever.
func (s *Store) TopScores(ctx context.Context, limit int) ([]model.RankingEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT player_id, best_score, updated_at
		FROM scores
		ORDER BY best_score DESC, updated_at ASC, player_id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.RankingEntry
	for rows.Next() {
		var entry model.RankingEntry
		if err := rows.Scan(&entry.PlayerID, &entry.BestScore, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
