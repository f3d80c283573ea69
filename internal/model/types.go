// Package model defines shared data structures.
package model

import "time"

// DefaultRankingLimit is the leaderboard size when none is given.
const DefaultRankingLimit = 10

// Backend names a score store implementation.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendRemote   Backend = "remote"
)

// Config defines play settings.
type Config struct {
	RoundSeconds   int
	RewardSeconds  int
	WarningSeconds int
	Sound          bool
}

// SyncConfig selects and addresses the score backend.
type SyncConfig struct {
	Backend      Backend
	DSN          string
	URL          string
	PlayerID     string
	RankingLimit int
}

// StatsConfig defines filters for stats output.
type StatsConfig struct {
	Since *time.Time
	Last  int
}

// RoundStats captures a finished or aborted round.
type RoundStats struct {
	StartedAt      time.Time
	EndedAt        time.Time
	Score          int
	FailedAttempts int
	Aborted        bool
}

// RoundAggregate summarizes a stored round for reporting.
type RoundAggregate struct {
	RoundID        int64
	EndedAt        time.Time
	Score          int
	FailedAttempts int
	DurationMs     int64
	Aborted        bool
}

// ScoreRecord is the persisted best score of one player.
type ScoreRecord struct {
	PlayerID  string
	BestScore int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RankingEntry is one leaderboard row.
type RankingEntry struct {
	PlayerID  string    `json:"playerId"`
	BestScore int       `json:"bestScore"`
	UpdatedAt time.Time `json:"updatedAt"`
}
