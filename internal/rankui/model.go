// Package rankui provides the Bubble Tea leaderboard interface.
package rankui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/quickten/internal/score"
	"github.com/verte-zerg/quickten/internal/stats"
)

const loadTimeout = 10 * time.Second

var (
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle      = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// StandingSource loads the local player's view of the leaderboard.
type StandingSource interface {
	Standing(ctx context.Context, limit int) (score.Standing, error)
}

type standingMsg struct {
	standing score.Standing
	err      error
}

type keyMap struct {
	Refresh key.Binding
	Up      key.Binding
	Down    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// Model implements the Bubble Tea leaderboard UI.
type Model struct {
	src   StandingSource
	limit int

	standing score.Standing
	loaded   bool
	loading  bool
	errMsg   string

	table   table.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	width  int
	height int
}

// NewModel constructs a leaderboard model.
func NewModel(src StandingSource, limit int) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := &Model{
		src:     src,
		limit:   limit,
		spinner: sp,
		help:    help.New(),
		keys: keyMap{
			Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
			Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
			Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
			Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		},
	}
	m.table = table.New(
		table.WithColumns(columns()),
		table.WithFocused(true),
		table.WithHeight(1),
	)
	m.table.SetStyles(tableStyles())
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.load()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateLayout()
		return m, nil
	case standingMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.loaded = true
		m.standing = msg.standing
		m.table.SetRows(buildRows(msg.standing))
		if msg.standing.Rank > 0 {
			m.table.SetCursor(msg.standing.Rank - 1)
		}
		m.updateLayout()
		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			if m.loading {
				return m, nil
			}
			return m, m.load()
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch {
	case m.loading && !m.loaded:
		body = m.spinner.View() + " loading ranking…"
	case !m.loaded && m.errMsg != "":
		body = errorStyle.Render("failed to load ranking: " + m.errMsg)
	case len(m.standing.Entries) == 0:
		body = m.renderCards() + "\n\nNo scores yet. Play a round to get on the board."
	default:
		body = m.renderCards() + "\n\n" + m.table.View()
	}
	footer := m.help.View(m.keys)
	if m.loaded && m.errMsg != "" {
		footer = errorStyle.Render(m.errMsg) + "\n" + footer
	} else if m.loading && m.loaded {
		footer = m.spinner.View() + " refreshing…\n" + footer
	}
	if m.width == 0 || m.height == 0 {
		return body + "\n\n" + footer
	}
	footerHeight := lipgloss.Height(footer)
	bodyHeight := max(1, m.height-footerHeight)
	return lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body) + "\n" + footer
}

func (m *Model) load() tea.Cmd {
	m.loading = true
	return tea.Batch(func() tea.Msg { return m.fetch() }, m.spinner.Tick)
}

func (m *Model) fetch() standingMsg {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	st, err := m.src.Standing(ctx, m.limit)
	return standingMsg{standing: st, err: err}
}

func (m *Model) renderCards() string {
	best := "-"
	if m.standing.HasBest {
		best = fmt.Sprintf("%d", m.standing.Best)
	}
	rank := "unranked"
	if m.standing.Rank > 0 {
		rank = fmt.Sprintf("#%d", m.standing.Rank)
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		metricCard("Player", stats.ShortID(m.standing.PlayerID)),
		metricCard("Best", best),
		metricCard("Rank", rank),
	)
	return headerStyle.Render("Leaderboard") + "\n" + cards
}

func (m *Model) updateLayout() {
	rows := len(m.table.Rows())
	height := max(1, rows+1)
	if m.height > 0 {
		// Cards take five lines, the title one, the footer one to three.
		avail := m.height - 10
		height = max(2, min(height, avail))
	}
	m.table.SetHeight(height)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func columns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Player", Width: 13},
		{Title: "Best", Width: 6},
		{Title: "Achieved", Width: 17},
		{Title: "", Width: 4},
	}
}

func buildRows(st score.Standing) []table.Row {
	rows := make([]table.Row, 0, len(st.Entries))
	for i, e := range st.Entries {
		marker := ""
		if e.PlayerID == st.PlayerID {
			marker = "you"
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			stats.ShortID(e.PlayerID),
			fmt.Sprintf("%d", e.BestScore),
			e.UpdatedAt.Local().Format("2006-01-02 15:04"),
			marker,
		})
	}
	return rows
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#C89A3A")).
		Bold(true)
	return styles
}
