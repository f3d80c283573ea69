// Package store handles SQLite persistence for scores and round history.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/quickten/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Fixed-width UTC timestamps keep text ordering chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store wraps SQLite access for scores and rounds.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scores (
			player_id TEXT PRIMARY KEY,
			best_score INTEGER NOT NULL CHECK (best_score >= 0),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS rounds (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			score INTEGER NOT NULL,
			failed_attempts INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			aborted INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_scores_best ON scores(best_score DESC, updated_at ASC);`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_ended_at ON rounds(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// CommitIfBest creates the player's record or raises its best score in a
// single conditional upsert.
func (s *Store) CommitIfBest(ctx context.Context, playerID string, score int, now time.Time) (bool, error) {
	ts := now.UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (player_id, best_score, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE
		 SET best_score = excluded.best_score, updated_at = excluded.updated_at
		 WHERE excluded.best_score > scores.best_score`,
		playerID, score, ts, ts,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// BestScore returns the stored best for a player.
func (s *Store) BestScore(ctx context.Context, playerID string) (int, bool, error) {
	var best int
	err := s.db.QueryRowContext(ctx,
		`SELECT best_score FROM scores WHERE player_id = ?`, playerID,
	).Scan(&best)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return best, true, nil
}

// Record returns the full score record for a player.
func (s *Store) Record(ctx context.Context, playerID string) (model.ScoreRecord, bool, error) {
	var rec model.ScoreRecord
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT player_id, best_score, created_at, updated_at FROM scores WHERE player_id = ?`, playerID,
	).Scan(&rec.PlayerID, &rec.BestScore, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ScoreRecord{}, false, nil
	}
	if err != nil {
		return model.ScoreRecord{}, false, err
	}
	if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return model.ScoreRecord{}, false, err
	}
	if rec.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return model.ScoreRecord{}, false, err
	}
	return rec, true, nil
}

// TopScores returns the leaderboard. Ties go to the earlier achiever.
func (s *Store) TopScores(ctx context.Context, limit int) ([]model.RankingEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, best_score, updated_at
		 FROM scores
		 ORDER BY best_score DESC, updated_at ASC, player_id ASC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.RankingEntry
	for rows.Next() {
		var entry model.RankingEntry
		var updatedAt string
		if err := rows.Scan(&entry.PlayerID, &entry.BestScore, &updatedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, updatedAt)
		if err != nil {
			return nil, err
		}
		entry.UpdatedAt = parsed
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// InsertRound stores a finished or aborted round.
func (s *Store) InsertRound(ctx context.Context, round model.RoundStats) (int64, error) {
	aborted := 0
	if round.Aborted {
		aborted = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rounds (started_at, ended_at, score, failed_attempts, duration_ms, aborted)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		round.StartedAt.UTC().Format(timeLayout),
		round.EndedAt.UTC().Format(timeLayout),
		round.Score,
		round.FailedAttempts,
		round.EndedAt.Sub(round.StartedAt).Milliseconds(),
		aborted,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRounds returns stored rounds filtered by stats config, oldest first.
func (s *Store) ListRounds(ctx context.Context, cfg model.StatsConfig) ([]model.RoundAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, score, failed_attempts, duration_ms, aborted
		FROM rounds
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var rounds []model.RoundAggregate
	for rows.Next() {
		var agg model.RoundAggregate
		var endedAt string
		var aborted int
		if err := rows.Scan(&agg.RoundID, &endedAt, &agg.Score, &agg.FailedAttempts, &agg.DurationMs, &aborted); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		agg.Aborted = aborted != 0
		rounds = append(rounds, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(rounds) > cfg.Last {
		rounds = rounds[len(rounds)-cfg.Last:]
	}
	return rounds, nil
}
