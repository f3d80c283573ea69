package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// column describes one text table column.
type column struct {
	title string
	right bool
}

// textTable accumulates rows and sizes columns by display width, so wide
// runes in player ids line up.
type textTable struct {
	cols   []column
	rows   [][]string
	widths []int
}

func newTextTable(cols ...column) *textTable {
	t := &textTable{cols: cols, widths: make([]int, len(cols))}
	for i, c := range cols {
		t.widths[i] = runewidth.StringWidth(c.title)
	}
	return t
}

// add appends a row. Missing cells render empty, extra cells are dropped.
func (t *textTable) add(cells ...string) {
	row := make([]string, len(t.cols))
	copy(row, cells)
	for i, cell := range row {
		if w := runewidth.StringWidth(cell); w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, row)
}

func (t *textTable) lines() []string {
	if len(t.cols) == 0 {
		return nil
	}
	header := make([]string, len(t.cols))
	for i, c := range t.cols {
		header[i] = c.title
	}
	out := make([]string, 0, len(t.rows)+1)
	out = append(out, t.line(header))
	for _, row := range t.rows {
		out = append(out, t.line(row))
	}
	return out
}

func (t *textTable) line(cells []string) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(pad(cell, t.widths[i], t.cols[i].right))
	}
	return strings.TrimRight(b.String(), " ")
}

func (t *textTable) render(w io.Writer) error {
	for _, l := range t.lines() {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func pad(value string, width int, right bool) string {
	gap := width - runewidth.StringWidth(value)
	if gap <= 0 {
		return value
	}
	if right {
		return strings.Repeat(" ", gap) + value
	}
	return value + strings.Repeat(" ", gap)
}
