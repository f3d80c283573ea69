// Package score synchronizes a player's best score with a shared store and
// reads the leaderboard.
package score

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/quickten/internal/model"
)

// Store is the persistent backend for best scores.
//
// CommitIfBest must be atomic per player: it creates the record when missing
// and raises it only when score is strictly greater than the stored value.
type Store interface {
	CommitIfBest(ctx context.Context, playerID string, score int, now time.Time) (bool, error)
	BestScore(ctx context.Context, playerID string) (int, bool, error)
	TopScores(ctx context.Context, limit int) ([]model.RankingEntry, error)
}

// IdentityProvider supplies the local player's id.
type IdentityProvider interface {
	EnsureIdentity(ctx context.Context) (string, error)
}

// CommitResult is delivered by CommitAsync.
type CommitResult struct {
	PlayerID string
	Score    int
	Updated  bool
	Err      error
}

// Standing is the local player's view of the leaderboard.
type Standing struct {
	PlayerID string
	Best     int
	HasBest  bool
	Rank     int // 1-based position in Entries, 0 when absent
	Entries  []model.RankingEntry
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithClock overrides the clock used for record timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(s *Synchronizer) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Synchronizer) { s.logger = l }
}

// Synchronizer commits and reads best scores.
type Synchronizer struct {
	store  Store
	ids    IdentityProvider
	clock  clockwork.Clock
	logger zerolog.Logger

	wg sync.WaitGroup
}

// NewSynchronizer wires a synchronizer. ids may be nil when callers always
// pass explicit player ids.
func NewSynchronizer(store Store, ids IdentityProvider, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:  store,
		ids:    ids,
		clock:  clockwork.NewRealClock(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Identity resolves the local player's id.
func (s *Synchronizer) Identity(ctx context.Context) (string, error) {
	if s.ids == nil {
		return "", ErrNotAuthenticated
	}
	id, err := s.ids.EnsureIdentity(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	if id == "" {
		return "", ErrNotAuthenticated
	}
	return id, nil
}

// CommitIfBest stores candidate as the player's best if it improves on the
// stored value. It returns true when candidate is the stored best afterwards
// because of this call.
func (s *Synchronizer) CommitIfBest(ctx context.Context, playerID string, candidate int) (bool, error) {
	if playerID == "" {
		return false, ErrNotAuthenticated
	}
	if candidate < 0 {
		return false, fmt.Errorf("%w: got %d", ErrInvalidScore, candidate)
	}
	updated, err := s.store.CommitIfBest(ctx, playerID, candidate, s.clock.Now().UTC())
	if err != nil {
		return false, &StoreError{Op: "commit", Err: err}
	}
	s.logger.Debug().
		Str("player_id", playerID).
		Int("score", candidate).
		Bool("updated", updated).
		Msg("committed score")
	return updated, nil
}

// Commit resolves the local identity and commits candidate.
func (s *Synchronizer) Commit(ctx context.Context, candidate int) (bool, error) {
	id, err := s.Identity(ctx)
	if err != nil {
		return false, err
	}
	return s.CommitIfBest(ctx, id, candidate)
}

// CommitAsync commits candidate in the background. The commit is detached
// from ctx cancellation so that leaving a later round does not cancel it.
// The returned channel receives exactly one result.
func (s *Synchronizer) CommitAsync(ctx context.Context, candidate int) <-chan CommitResult {
	out := make(chan CommitResult, 1)
	detached := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(out)
		res := CommitResult{Score: candidate}
		id, err := s.Identity(detached)
		if err != nil {
			res.Err = err
		} else {
			res.PlayerID = id
			res.Updated, res.Err = s.CommitIfBest(detached, id, candidate)
		}
		if res.Err != nil {
			s.logger.Warn().Err(res.Err).Int("score", candidate).Msg("failed to save score")
		}
		out <- res
	}()
	return out
}

// Wait blocks until in-flight asynchronous commits finish or ctx is done.
func (s *Synchronizer) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FetchBest returns the stored best for playerID, if any.
func (s *Synchronizer) FetchBest(ctx context.Context, playerID string) (int, bool, error) {
	if playerID == "" {
		return 0, false, ErrNotAuthenticated
	}
	best, ok, err := s.store.BestScore(ctx, playerID)
	if err != nil {
		return 0, false, &StoreError{Op: "fetch best", Err: err}
	}
	return best, ok, nil
}

// FetchTopRanking returns up to limit entries ordered by best score.
func (s *Synchronizer) FetchTopRanking(ctx context.Context, limit int) ([]model.RankingEntry, error) {
	if limit <= 0 {
		limit = model.DefaultRankingLimit
	}
	entries, err := s.store.TopScores(ctx, limit)
	if err != nil {
		return nil, &StoreError{Op: "fetch ranking", Err: err}
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Standing loads the local player's best and the top ranking concurrently.
func (s *Synchronizer) Standing(ctx context.Context, limit int) (Standing, error) {
	id, err := s.Identity(ctx)
	if err != nil {
		return Standing{}, err
	}
	st := Standing{PlayerID: id}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		best, ok, err := s.FetchBest(gctx, id)
		if err != nil {
			return err
		}
		st.Best, st.HasBest = best, ok
		return nil
	})
	g.Go(func() error {
		entries, err := s.FetchTopRanking(gctx, limit)
		if err != nil {
			return err
		}
		st.Entries = entries
		return nil
	})
	if err := g.Wait(); err != nil {
		return Standing{}, err
	}
	for i, e := range st.Entries {
		if e.PlayerID == id {
			st.Rank = i + 1
			break
		}
	}
	return st, nil
}
