package stats

import (
	"sort"

	"github.com/verte-zerg/quickten/internal/model"
)

// TopRounds returns the n best completed rounds, highest score first. Ties
// go to the round that ended first.
func TopRounds(rounds []model.RoundAggregate, n int) []model.RoundAggregate {
	if n <= 0 || len(rounds) == 0 {
		return nil
	}
	items := make([]model.RoundAggregate, 0, len(rounds))
	for _, r := range rounds {
		if !r.Aborted {
			items = append(items, r)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score == items[j].Score {
			return items[i].EndedAt.Before(items[j].EndedAt)
		}
		return items[i].Score > items[j].Score
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
