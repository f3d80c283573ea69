package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/quickten/internal/model"
)

const (
	trendWindow = 3
	recentRows  = 10
	bestRows    = 5
)

// RoundLister reads stored round history.
type RoundLister interface {
	ListRounds(ctx context.Context, cfg model.StatsConfig) ([]model.RoundAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Rounds  []model.RoundAggregate
	Summary Summary
	Best    []model.RoundAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src RoundLister, cfg model.StatsConfig) (Report, error) {
	rounds, err := src.ListRounds(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list rounds: %w", err)
	}
	if cfg.Last > 0 && len(rounds) > cfg.Last {
		rounds = rounds[len(rounds)-cfg.Last:]
	}
	return Report{
		Rounds:  rounds,
		Summary: Summarize(rounds),
		Best:    TopRounds(rounds, bestRows),
	}, nil
}

// Render prints the full stats report. width is the terminal width, or 0
// when unknown.
func (r Report) Render(w io.Writer, width int) error {
	if err := RenderSummary(w, r.Rounds); err != nil {
		return err
	}
	if err := RenderTrend(w, r.Rounds, trendWindow, width); err != nil {
		return err
	}
	if err := RenderRounds(w, "Best rounds", r.Best); err != nil {
		return err
	}
	recent := r.Rounds
	if len(recent) > recentRows {
		recent = recent[len(recent)-recentRows:]
	}
	return RenderRounds(w, "Recent rounds", recent)
}
