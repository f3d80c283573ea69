package session

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/verte-zerg/quickten/internal/expr"
	"github.com/verte-zerg/quickten/internal/puzzle"
)

type fixedSource struct {
	challenges []puzzle.Challenge
	calls      int
}

func (f *fixedSource) Generate() puzzle.Challenge {
	c := f.challenges[f.calls%len(f.challenges)]
	f.calls++
	return c
}

type recorder struct {
	signals []Signal
	sunk    []int
}

func (r *recorder) listen(s Signal) { r.signals = append(r.signals, s) }
func (r *recorder) sink(score int)  { r.sunk = append(r.sunk, score) }

func (r *recorder) count(kind SignalKind) int {
	n := 0
	for _, s := range r.signals {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

func newTestEngine(t *testing.T, challenges ...puzzle.Challenge) (*Engine, *recorder) {
	t.Helper()
	if len(challenges) == 0 {
		challenges = []puzzle.Challenge{{2, 3, 4, 1}, {2, 3, 4, 5}}
	}
	rec := &recorder{}
	e := New(DefaultConfig(), &fixedSource{challenges: challenges},
		WithListener(rec.listen),
		WithScoreSink(rec.sink),
		WithClock(clockwork.NewFakeClockAt(time.Unix(1000, 0))),
	)
	return e, rec
}

func press(e *Engine, input string) {
	for _, r := range input {
		if r >= '0' && r <= '9' {
			e.PressDigit(int(r - '0'))
			continue
		}
		e.PressOperator(string(r))
	}
}

func TestInitialState(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.Snapshot()
	if s.TimeRemaining != 60 || s.Score != 0 || s.Phase != PhaseRunning {
		t.Fatalf("unexpected initial snapshot: %+v", s)
	}
	if s.Expression != "" || len(s.UsedDigits) != 0 {
		t.Fatalf("expected empty input, got %+v", s)
	}
	if s.StartedAt.IsZero() {
		t.Fatalf("expected start time")
	}
}

func TestTimerWarningAndEnd(t *testing.T) {
	e, rec := newTestEngine(t)
	for i := 0; i < 50; i++ {
		e.Tick()
	}
	s := e.Snapshot()
	if s.TimeRemaining != 10 || s.Phase != PhaseWarning {
		t.Fatalf("expected 10s in warning, got %d %s", s.TimeRemaining, s.Phase)
	}
	for i := 0; i < 9; i++ {
		e.Tick()
	}
	if rec.count(SignalWarningEntered) != 1 {
		t.Fatalf("expected one warning signal, got %d", rec.count(SignalWarningEntered))
	}
	e.Tick()
	s = e.Snapshot()
	if s.Phase != PhaseEnded || s.EndReason != EndTimeUp || s.TimeRemaining != 0 {
		t.Fatalf("expected timed-out end, got %+v", s)
	}
	if len(rec.sunk) != 1 || rec.sunk[0] != 0 {
		t.Fatalf("expected final score handed off once, got %v", rec.sunk)
	}
	if rec.count(SignalRoundEnded) != 1 {
		t.Fatalf("expected round-ended signal")
	}

	if e.PressDigit(2) || e.PressOperator("+") {
		t.Fatalf("expected presses to be ignored after end")
	}
	e.Clear()
	e.Tick()
	if out := e.Submit(); out.Kind != OutcomeIgnored {
		t.Fatalf("expected ignored submit, got %+v", out)
	}
	after := e.Snapshot()
	if after.TimeRemaining != 0 || after.Expression != "" || after.Score != 0 {
		t.Fatalf("state changed after end: %+v", after)
	}
	if len(rec.sunk) != 1 {
		t.Fatalf("expected no second hand-off, got %v", rec.sunk)
	}
}

func TestCorrectSubmitRewards(t *testing.T) {
	e, rec := newTestEngine(t)
	for i := 0; i < 5; i++ {
		e.Tick()
	}
	press(e, "2*4+3-1")
	out := e.Submit()
	if out.Kind != OutcomeCorrect {
		t.Fatalf("expected correct, got %+v", out)
	}
	s := e.Snapshot()
	if s.TimeRemaining != 55+15 {
		t.Fatalf("expected 70s, got %d", s.TimeRemaining)
	}
	if s.Score != 1 {
		t.Fatalf("expected score 1, got %d", s.Score)
	}
	if s.Challenge != (puzzle.Challenge{2, 3, 4, 5}) {
		t.Fatalf("expected next challenge, got %v", s.Challenge)
	}
	if s.Expression != "" || len(s.UsedDigits) != 0 {
		t.Fatalf("expected input reset, got %+v", s)
	}
	if rec.count(SignalCorrect) != 1 {
		t.Fatalf("expected correct signal")
	}
}

func TestIncorrectSubmitResets(t *testing.T) {
	e, rec := newTestEngine(t, puzzle.Challenge{2, 3, 4, 5})
	press(e, "(4+3)*2-5")
	out := e.Submit()
	if out.Kind != OutcomeIncorrect || out.Value != 9 {
		t.Fatalf("expected incorrect 9, got %+v", out)
	}
	if out.Message() != "wrong answer, value was 9" {
		t.Fatalf("unexpected message %q", out.Message())
	}
	s := e.Snapshot()
	if s.Score != 0 || s.TimeRemaining != 60 || s.Expression != "" || s.FailedAttempts != 1 {
		t.Fatalf("unexpected state after incorrect: %+v", s)
	}
	if rec.count(SignalIncorrect) != 1 {
		t.Fatalf("expected incorrect signal")
	}
}

func TestRejectedSubmitSurfacesError(t *testing.T) {
	e, rec := newTestEngine(t, puzzle.Challenge{2, 3, 4, 5})
	press(e, "2+3+5")
	out := e.Submit()
	if out.Kind != OutcomeRejected || !errors.Is(out.Err, expr.ErrWrongDigits) {
		t.Fatalf("expected wrong digits, got %+v", out)
	}
	if s := e.Snapshot(); s.Expression != "" || len(s.UsedDigits) != 0 || s.Score != 0 {
		t.Fatalf("unexpected state after rejection: %+v", s)
	}
	if rec.count(SignalError) != 1 {
		t.Fatalf("expected error signal")
	}

	press(e, "2+3*4/5")
	if out := e.Submit(); out.Kind != OutcomeIncorrect {
		t.Fatalf("expected a well-formed retry to be evaluated, got %+v", out)
	}
}

func TestPressDigitUsageRules(t *testing.T) {
	e, _ := newTestEngine(t, puzzle.Challenge{2, 3, 4, 5})
	if e.PressDigit(9) {
		t.Fatalf("expected digit outside challenge to be rejected")
	}
	if !e.PressDigit(2) {
		t.Fatalf("expected first 2 to be accepted")
	}
	if e.PressDigit(2) {
		t.Fatalf("expected second 2 to be rejected")
	}
	e.PressOperator("+")
	s := e.Snapshot()
	if s.Expression != "2+" || len(s.UsedDigits) != 1 || s.UsedDigits[0] != 2 {
		t.Fatalf("unexpected input state: %+v", s)
	}
	e.Clear()
	s = e.Snapshot()
	if s.Expression != "" || len(s.UsedDigits) != 0 || s.Challenge != (puzzle.Challenge{2, 3, 4, 5}) {
		t.Fatalf("unexpected state after clear: %+v", s)
	}
	if !e.PressDigit(2) {
		t.Fatalf("expected 2 to be available after clear")
	}
}

func TestAbortIsDistinctFromTimeout(t *testing.T) {
	e, rec := newTestEngine(t)
	press(e, "2*4+3-1")
	e.Submit()
	e.Abort()
	s := e.Snapshot()
	if s.Phase != PhaseEnded || s.EndReason != EndAborted {
		t.Fatalf("expected aborted end, got %+v", s)
	}
	if len(rec.sunk) != 0 {
		t.Fatalf("abort must not hand off the score, got %v", rec.sunk)
	}
	if rec.count(SignalRoundAborted) != 1 || rec.count(SignalRoundEnded) != 0 {
		t.Fatalf("unexpected end signals: %+v", rec.signals)
	}
	e.Abort()
	if rec.count(SignalRoundAborted) != 1 {
		t.Fatalf("expected abort to be idempotent")
	}
}

func TestWarningIsStickyAfterReward(t *testing.T) {
	e, rec := newTestEngine(t)
	for i := 0; i < 52; i++ {
		e.Tick()
	}
	press(e, "2*4+3-1")
	e.Submit()
	s := e.Snapshot()
	if s.TimeRemaining != 23 || s.Phase != PhaseWarning {
		t.Fatalf("expected 23s in warning, got %d %s", s.TimeRemaining, s.Phase)
	}
	for i := 0; i < 15; i++ {
		e.Tick()
	}
	if rec.count(SignalWarningEntered) != 1 {
		t.Fatalf("expected a single warning signal, got %d", rec.count(SignalWarningEntered))
	}
}

func TestRestartResetsRound(t *testing.T) {
	e, _ := newTestEngine(t)
	press(e, "2*4+3-1")
	e.Submit()
	e.Abort()
	e.Restart()
	s := e.Snapshot()
	if s.Phase != PhaseRunning || s.Score != 0 || s.TimeRemaining != 60 || s.EndReason != EndNone {
		t.Fatalf("unexpected state after restart: %+v", s)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if err := (Config{RoundSeconds: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero round length")
	}
}
