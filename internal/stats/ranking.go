package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/quickten/internal/model"
)

const playerColumnWidth = 12

// RenderRanking prints the leaderboard. The row for playerID is marked.
func RenderRanking(w io.Writer, entries []model.RankingEntry, playerID string) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No scores yet.")
		return err
	}
	tbl := newTextTable(
		column{title: "#", right: true},
		column{title: "Player"},
		column{title: "Best", right: true},
		column{title: "Achieved"},
		column{},
	)
	for i, e := range entries {
		marker := ""
		if playerID != "" && e.PlayerID == playerID {
			marker = "<- you"
		}
		tbl.add(
			strconv.Itoa(i+1),
			ShortID(e.PlayerID),
			strconv.Itoa(e.BestScore),
			e.UpdatedAt.Local().Format("2006-01-02 15:04"),
			marker,
		)
	}
	return tbl.render(w)
}

// ShortID trims a player id to a column-friendly width.
func ShortID(id string) string {
	return runewidth.Truncate(id, playerColumnWidth, "…")
}
