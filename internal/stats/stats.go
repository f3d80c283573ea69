// Package stats contains round statistics and text reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/quickten/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a set of rounds.
type Summary struct {
	Rounds         int
	Completed      int
	Aborted        int
	Best           int
	AvgScore       float64
	SolvedPerMin   float64
	FailedAttempts int
	Accuracy       float64
}

// Summarize computes a Summary. Aborted rounds count toward totals but not
// toward the score averages, since they never reached a final score.
func Summarize(rounds []model.RoundAggregate) Summary {
	var s Summary
	s.Rounds = len(rounds)
	var totalScore int
	var totalMs int64
	for _, r := range rounds {
		s.FailedAttempts += r.FailedAttempts
		if r.Aborted {
			s.Aborted++
			continue
		}
		s.Completed++
		totalScore += r.Score
		totalMs += r.DurationMs
		if r.Score > s.Best {
			s.Best = r.Score
		}
	}
	if s.Completed > 0 {
		s.AvgScore = float64(totalScore) / float64(s.Completed)
	}
	if totalMs > 0 {
		s.SolvedPerMin = float64(totalScore) / (float64(totalMs) / 60000.0)
	}
	var solved int
	for _, r := range rounds {
		solved += r.Score
	}
	if den := solved + s.FailedAttempts; den > 0 {
		s.Accuracy = float64(solved) / float64(den)
	}
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary block for rounds.
func RenderSummary(w io.Writer, rounds []model.RoundAggregate) error {
	if len(rounds) == 0 {
		_, err := fmt.Fprintln(w, "No rounds found.")
		return err
	}
	s := Summarize(rounds)
	lines := []string{
		"Summary",
		fmt.Sprintf("Rounds: %d (%d aborted)", s.Rounds, s.Aborted),
		fmt.Sprintf("Best score: %d", s.Best),
		fmt.Sprintf("Avg score: %.2f", s.AvgScore),
		fmt.Sprintf("Solved/min: %.2f", s.SolvedPerMin),
		fmt.Sprintf("Accuracy: %.2f%%", s.Accuracy*100),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTrend prints a sparkline of completed-round scores smoothed over
// window. width > 0 keeps only the most recent points that fit.
func RenderTrend(w io.Writer, rounds []model.RoundAggregate, window, width int) error {
	var scores []float64
	for _, r := range rounds {
		if !r.Aborted {
			scores = append(scores, float64(r.Score))
		}
	}
	if len(scores) < 2 {
		return nil
	}
	scores = MovingAverage(scores, window)
	const label = "Trend "
	if width > 0 {
		if avail := width - len(label); avail > 0 && len(scores) > avail {
			scores = scores[len(scores)-avail:]
		}
	}
	if _, err := fmt.Fprintf(w, "%s%s\n\n", label, Sparkline(scores)); err != nil {
		return err
	}
	return nil
}

// RenderRounds prints one row per round, most recent last.
func RenderRounds(w io.Writer, title string, rounds []model.RoundAggregate) error {
	if len(rounds) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	tbl := newTextTable(
		column{title: "Ended"},
		column{title: "Score", right: true},
		column{title: "Failed", right: true},
		column{title: "Duration", right: true},
		column{title: "Status"},
	)
	for _, r := range rounds {
		status := "done"
		if r.Aborted {
			status = "aborted"
		}
		tbl.add(
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(r.Score),
			strconv.Itoa(r.FailedAttempts),
			(time.Duration(r.DurationMs) * time.Millisecond).Round(time.Second).String(),
			status,
		)
	}
	if err := tbl.render(w); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
