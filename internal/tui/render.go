package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/quickten/internal/puzzle"
)

type styledRune struct {
	s          string
	width      int
	breakAfter bool
}

// buildExpressionRunes styles digits and operators apart so the player can
// read the expression at a glance. Lines may wrap after an operator.
func buildExpressionRunes(expression string) []styledRune {
	out := make([]styledRune, 0, len(expression)+1)
	for _, r := range expression {
		style := operatorStyle
		if r >= '0' && r <= '9' {
			style = digitStyle
		}
		out = append(out, styledRune{
			s:          style.Render(string(r)),
			width:      runewidth.RuneWidth(r),
			breakAfter: strings.ContainsRune("+-*/", r),
		})
	}
	out = append(out, styledRune{s: cursorStyle.Render(" "), width: 1})
	return out
}

// renderTiles draws the challenge digits. Each digit dims once it has been
// used in the current expression.
func renderTiles(ch puzzle.Challenge, used []int) string {
	remaining := map[int]int{}
	for _, d := range used {
		remaining[d]++
	}
	tiles := make([]string, 0, puzzle.Size)
	for _, d := range ch {
		style := tileStyle
		if remaining[d] > 0 {
			remaining[d]--
			style = usedTileStyle
		}
		tiles = append(tiles, style.Render(fmt.Sprintf("%d", d)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tiles...)
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastBreak := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastBreak >= 0 && lastBreak < len(line)-1 {
				out.WriteString(renderStyledRunes(line[:lastBreak+1]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastBreak+1:]...)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
			}
			lineWidth = lineWidthOf(line)
			lastBreak = lastBreakIndex(line)
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.breakAfter {
			lastBreak = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastBreakIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].breakAfter {
			return i
		}
	}
	return -1
}
