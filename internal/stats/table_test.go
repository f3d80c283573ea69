package stats

import (
	"bytes"
	"testing"
)

func TestTextTableAlignsColumns(t *testing.T) {
	tbl := newTextTable(column{title: "Ended"}, column{title: "Score", right: true}, column{title: "Status"})
	tbl.add("2026-01-02", "12", "done")
	tbl.add("2026-01-03", "7", "aborted")

	lines := tbl.lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Ended      Score Status" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "2026-01-02    12 done" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "2026-01-03     7 aborted" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestTextTableShortAndWideRows(t *testing.T) {
	tbl := newTextTable(column{title: "Player"}, column{title: "Best", right: true})
	tbl.add("日本")
	tbl.add("ab", "3", "ignored")

	var buf bytes.Buffer
	if err := tbl.render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "Player Best\n日本\nab        3\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestPadCountsWideRunes(t *testing.T) {
	if got := pad("日", 3, false); got != "日 " {
		t.Fatalf("unexpected padding %q", got)
	}
	if got := pad("toolong", 3, true); got != "toolong" {
		t.Fatalf("expected value unchanged, got %q", got)
	}
}
