package pgstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("QUICKTEN_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("QUICKTEN_TEST_PG_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	st, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return st
}

func TestCommitIfBestPostgres(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	player := "test-" + uuid.NewString()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	steps := []struct {
		score   int
		updated bool
		best    int
	}{
		{5, true, 5},
		{3, false, 5},
		{5, false, 5},
		{8, true, 8},
	}
	for i, step := range steps {
		updated, err := st.CommitIfBest(ctx, player, step.score, now.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatalf("commit %d: %v", step.score, err)
		}
		if updated != step.updated {
			t.Fatalf("commit %d: expected updated=%v, got %v", step.score, step.updated, updated)
		}
		best, ok, err := st.BestScore(ctx, player)
		if err != nil || !ok {
			t.Fatalf("best score: ok=%v err=%v", ok, err)
		}
		if best != step.best {
			t.Fatalf("expected best %d, got %d", step.best, best)
		}
	}
}

func TestBestScoreMissingPostgres(t *testing.T) {
	st := openTestStore(t)
	_, ok, err := st.BestScore(context.Background(), "missing-"+uuid.NewString())
	if err != nil {
		t.Fatalf("best score: %v", err)
	}
	if ok {
		t.Fatalf("expected no record")
	}
}

func TestTopScoresOrderPostgres(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	// Far above any real score so these rows lead the board.
	const base = 2_000_000_000
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a, b := "a-"+uuid.NewString(), "b-"+uuid.NewString()
	t.Cleanup(func() {
		if _, err := st.pool.Exec(context.Background(), `DELETE FROM scores WHERE player_id = ANY($1)`, []string{a, b}); err != nil {
			t.Errorf("cleanup: %v", err)
		}
	})
	if _, err := st.CommitIfBest(ctx, b, base, early.Add(time.Minute)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := st.CommitIfBest(ctx, a, base, early); err != nil {
		t.Fatalf("commit: %v", err)
	}
	entries, err := st.TopScores(ctx, 2)
	if err != nil {
		t.Fatalf("top scores: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].PlayerID != a || entries[1].PlayerID != b {
		t.Fatalf("expected earlier achiever first, got %+v", entries)
	}
}
