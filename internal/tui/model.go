// Package tui provides the Bubble Tea game interface.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/quickten/internal/feedback"
	"github.com/verte-zerg/quickten/internal/model"
	"github.com/verte-zerg/quickten/internal/puzzle"
	"github.com/verte-zerg/quickten/internal/score"
	"github.com/verte-zerg/quickten/internal/session"
)

const tickInterval = time.Second

// RoundRecorder stores finished rounds for the stats command.
type RoundRecorder interface {
	InsertRound(ctx context.Context, round model.RoundStats) (int64, error)
}

// Committer hands a final score to the synchronizer.
type Committer interface {
	CommitAsync(ctx context.Context, candidate int) <-chan score.CommitResult
}

// Deps are the collaborators of the game model. Rounds, Sync and Feedback
// may be nil.
type Deps struct {
	Generator session.ChallengeSource
	Rounds    RoundRecorder
	Sync      Committer
	Feedback  feedback.Player
	Logger    zerolog.Logger
	Options   []session.Option
}

type tickMsg struct {
	seq int
}

type commitMsg struct {
	seq    int
	result score.CommitResult
}

type roundSavedMsg struct {
	err error
}

type commitState int

const (
	commitNone commitState = iota
	commitPending
	commitDone
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	clockStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	scoreStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	digitStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	operatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle   = lipgloss.NewStyle().Underline(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	goodStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	badStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tileStyle     = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 2).
			Margin(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	usedTileStyle = tileStyle.
			Foreground(lipgloss.Color("#4A4A4A")).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// Model implements the Bubble Tea game UI.
type Model struct {
	engine   *session.Engine
	rounds   RoundRecorder
	sync     Committer
	feedback feedback.Player
	logger   zerolog.Logger

	keys keyMap
	help help.Model

	width  int
	height int

	// seq identifies the current round; ticks and commits from earlier
	// rounds carry an older value and are dropped.
	seq int

	status     string
	statusGood bool

	pending      <-chan score.CommitResult
	commit       commitState
	lastCommit   score.CommitResult
	roundSaveErr error
}

// NewModel constructs a game model and starts the first round.
func NewModel(cfg session.Config, deps Deps) *Model {
	m := &Model{
		rounds:   deps.Rounds,
		sync:     deps.Sync,
		feedback: deps.Feedback,
		logger:   deps.Logger,
		keys:     newKeyMap(),
		help:     help.New(),
	}
	if m.feedback == nil {
		m.feedback = feedback.Noop{}
	}
	opts := append([]session.Option{
		session.WithListener(m.onSignal),
		session.WithScoreSink(m.onFinalScore),
	}, deps.Options...)
	m.engine = session.New(cfg, deps.Generator, opts...)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

// Snapshot exposes the engine state.
func (m *Model) Snapshot() session.Snapshot {
	return m.engine.Snapshot()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		if msg.seq != m.seq || m.engine.Ended() {
			return m, nil
		}
		m.engine.Tick()
		if m.engine.Ended() {
			return m, m.finishRound()
		}
		return m, m.tick()
	case commitMsg:
		if msg.seq == m.seq {
			m.commit = commitDone
			m.lastCommit = msg.result
		}
		return m, nil
	case roundSavedMsg:
		m.roundSaveErr = msg.err
		return m, nil
	case tea.KeyMsg:
		if m.engine.Ended() {
			return m.updateEnded(msg)
		}
		return m.updatePlaying(msg)
	}
	return m, nil
}

func (m *Model) updatePlaying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		m.engine.Abort()
		return m, tea.Sequence(m.finishRound(), tea.Quit)
	case key.Matches(msg, m.keys.Abort):
		m.engine.Abort()
		return m, m.finishRound()
	case key.Matches(msg, m.keys.Digit):
		d := int(msg.String()[0] - '0')
		if !m.engine.PressDigit(d) {
			m.setStatus(fmt.Sprintf("%d is not available", d), false)
		} else {
			m.status = ""
		}
		return m, nil
	case key.Matches(msg, m.keys.Operator):
		m.engine.PressOperator(operatorToken(msg.String()))
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.engine.Clear()
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		out := m.engine.Submit()
		m.setStatus(out.Message(), out.Kind == session.OutcomeCorrect)
		return m, nil
	}
	return m, nil
}

func (m *Model) updateEnded(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Again):
		m.restart()
		return m, m.tick()
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	snap := m.engine.Snapshot()
	var content string
	var hints string
	if snap.Phase == session.PhaseEnded {
		content = m.renderResult(snap)
		hints = m.help.View(endKeys(m.keys))
	} else {
		content = m.renderRound(snap)
		hints = m.help.View(playKeys(m.keys))
	}
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + hints
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, hints)
	return body + "\n" + footer
}

func (m *Model) renderRound(snap session.Snapshot) string {
	clock := clockStyle
	if snap.Phase == session.PhaseWarning {
		clock = warningStyle
	}
	header := fmt.Sprintf("%s   %s   %s",
		titleStyle.Render(fmt.Sprintf("make %d", puzzle.Target)),
		clock.Render(formatClock(snap.TimeRemaining)),
		scoreStyle.Render(fmt.Sprintf("score %d", snap.Score)),
	)
	width := m.width * 7 / 10
	expression := wrapStyledRunes(buildExpressionRunes(snap.Expression), width)
	lines := []string{
		header,
		"",
		renderTiles(snap.Challenge, snap.UsedDigits),
		"",
		expression,
		"",
		m.renderStatus(),
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderResult(snap session.Snapshot) string {
	title := "time's up"
	if snap.EndReason == session.EndAborted {
		title = "round abandoned"
	}
	lines := []string{
		titleStyle.Render(title),
		"",
		scoreStyle.Render(fmt.Sprintf("solved %d", snap.Score)),
		mutedStyle.Render(fmt.Sprintf("%d wrong attempts", snap.FailedAttempts)),
		"",
	}
	if line := m.renderCommit(snap); line != "" {
		lines = append(lines, line)
	}
	if m.roundSaveErr != nil {
		lines = append(lines, badStyle.Render("history not saved: "+m.roundSaveErr.Error()))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderCommit(snap session.Snapshot) string {
	if snap.EndReason != session.EndTimeUp {
		return mutedStyle.Render("score not submitted")
	}
	switch m.commit {
	case commitPending:
		return mutedStyle.Render("saving score…")
	case commitDone:
		res := m.lastCommit
		switch {
		case res.Err != nil:
			return badStyle.Render("score not saved: " + res.Err.Error())
		case res.Updated:
			return goodStyle.Render("new personal best!")
		default:
			return mutedStyle.Render("personal best unchanged")
		}
	}
	return ""
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return " "
	}
	if m.statusGood {
		return goodStyle.Render(m.status)
	}
	return badStyle.Render(m.status)
}

func (m *Model) setStatus(text string, good bool) {
	m.status = text
	m.statusGood = good
}

func (m *Model) tick() tea.Cmd {
	seq := m.seq
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{seq: seq}
	})
}

func (m *Model) restart() {
	m.seq++
	m.status = ""
	m.commit = commitNone
	m.lastCommit = score.CommitResult{}
	m.pending = nil
	m.roundSaveErr = nil
	m.engine.Restart()
}

// finishRound collects the follow-up work of an ended round: waiting for
// the score commit and recording the round locally.
func (m *Model) finishRound() tea.Cmd {
	var cmds []tea.Cmd
	if m.pending != nil {
		cmds = append(cmds, waitCommit(m.seq, m.pending))
		m.pending = nil
	}
	if m.rounds != nil {
		cmds = append(cmds, saveRound(m.rounds, m.roundStats(), m.logger))
	}
	return tea.Batch(cmds...)
}

func (m *Model) roundStats() model.RoundStats {
	snap := m.engine.Snapshot()
	return model.RoundStats{
		StartedAt:      snap.StartedAt,
		EndedAt:        snap.EndedAt,
		Score:          snap.Score,
		FailedAttempts: snap.FailedAttempts,
		Aborted:        snap.EndReason == session.EndAborted,
	}
}

func (m *Model) onSignal(sig session.Signal) {
	m.feedback.Play(sig)
}

// onFinalScore runs inside the engine's Tick. The commit starts right away
// and its result is picked up by finishRound.
func (m *Model) onFinalScore(final int) {
	if m.sync == nil {
		return
	}
	m.commit = commitPending
	m.pending = m.sync.CommitAsync(context.Background(), final)
}

func waitCommit(seq int, ch <-chan score.CommitResult) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			res.Err = fmt.Errorf("commit was dropped")
		}
		return commitMsg{seq: seq, result: res}
	}
}

func saveRound(rounds RoundRecorder, stats model.RoundStats, logger zerolog.Logger) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := rounds.InsertRound(ctx, stats)
		if err != nil {
			logger.Error().Err(err).Msg("failed to save round")
		}
		return roundSavedMsg{err: err}
	}
}
