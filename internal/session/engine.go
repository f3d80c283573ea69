package session

import (
	"github.com/jonboulle/clockwork"

	"github.com/verte-zerg/quickten/internal/expr"
	"github.com/verte-zerg/quickten/internal/puzzle"
)

// ChallengeSource supplies a fresh challenge for each puzzle.
type ChallengeSource interface {
	Generate() puzzle.Challenge
}

// Listener receives engine signals.
type Listener func(Signal)

// ScoreSink receives the final score when a round times out.
type ScoreSink func(score int)

// Option configures an Engine.
type Option func(*Engine)

// WithListener registers a signal listener.
func WithListener(l Listener) Option {
	return func(e *Engine) { e.listener = l }
}

// WithScoreSink registers the hand-off for final scores.
func WithScoreSink(s ScoreSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithClock overrides the clock used for round timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// Engine owns one round at a time. It is not safe for concurrent use; all
// events are expected to come from a single event loop.
type Engine struct {
	cfg      Config
	gen      ChallengeSource
	listener Listener
	sink     ScoreSink
	clock    clockwork.Clock

	timeRemaining int
	score         int
	challenge     puzzle.Challenge
	used          []int
	expression    []byte
	phase         Phase
	endReason     EndReason
	failed        int
	snap          Snapshot
}

// New creates an engine and starts its first round.
func New(cfg Config, gen ChallengeSource, opts ...Option) *Engine {
	e := &Engine{
		cfg:   cfg,
		gen:   gen,
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Restart()
	return e
}

// Restart discards the current round and starts a new one.
func (e *Engine) Restart() {
	e.timeRemaining = e.cfg.RoundSeconds
	e.score = 0
	e.challenge = e.gen.Generate()
	e.used = nil
	e.expression = nil
	e.phase = PhaseRunning
	e.endReason = EndNone
	e.failed = 0
	e.snap = Snapshot{StartedAt: e.clock.Now()}
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	s := e.snap
	s.TimeRemaining = e.timeRemaining
	s.Score = e.score
	s.Challenge = e.challenge
	s.UsedDigits = append([]int(nil), e.used...)
	s.Expression = string(e.expression)
	s.Phase = e.phase
	s.EndReason = e.endReason
	s.FailedAttempts = e.failed
	return s
}

// Ended reports whether the round is over.
func (e *Engine) Ended() bool {
	return e.phase == PhaseEnded
}

// Tick advances the countdown by one second.
func (e *Engine) Tick() {
	if e.Ended() {
		return
	}
	if e.timeRemaining > 0 {
		e.timeRemaining--
	}
	if e.timeRemaining <= 0 {
		e.end(EndTimeUp)
		return
	}
	if e.phase == PhaseRunning && e.timeRemaining <= e.cfg.WarningSeconds {
		e.phase = PhaseWarning
		e.emit(Signal{Kind: SignalWarningEntered, Score: e.score})
	}
}

// PressDigit appends d when the challenge still has an unused copy of it.
func (e *Engine) PressDigit(d int) bool {
	if e.Ended() {
		return false
	}
	available := e.challenge.Count(d)
	if available == 0 {
		return false
	}
	usedCount := 0
	for _, u := range e.used {
		if u == d {
			usedCount++
		}
	}
	if usedCount >= available {
		return false
	}
	e.used = append(e.used, d)
	e.expression = append(e.expression, byte('0'+d))
	return true
}

// PressOperator appends an operator or parenthesis token.
func (e *Engine) PressOperator(op string) bool {
	if e.Ended() {
		return false
	}
	e.expression = append(e.expression, op...)
	return true
}

// Clear empties the expression and the used digits.
func (e *Engine) Clear() {
	if e.Ended() {
		return
	}
	e.resetInput()
}

// Submit validates the current expression against the challenge.
func (e *Engine) Submit() Outcome {
	if e.Ended() {
		return Outcome{Kind: OutcomeIgnored}
	}
	res, err := expr.Validate(string(e.expression), e.challenge)
	e.resetInput()
	if err != nil {
		e.failed++
		e.emit(Signal{Kind: SignalError, Score: e.score, Err: err})
		return Outcome{Kind: OutcomeRejected, Err: err}
	}
	if !res.Correct {
		e.failed++
		e.emit(Signal{Kind: SignalIncorrect, Score: e.score, Value: res.Value})
		return Outcome{Kind: OutcomeIncorrect, Value: res.Value}
	}
	e.score++
	e.timeRemaining += e.cfg.RewardSeconds
	e.challenge = e.gen.Generate()
	e.emit(Signal{Kind: SignalCorrect, Score: e.score, Value: res.Value})
	return Outcome{Kind: OutcomeCorrect, Value: res.Value}
}

// Abort ends the round without handing the score to the sink.
func (e *Engine) Abort() {
	if e.Ended() {
		return
	}
	e.end(EndAborted)
}

func (e *Engine) end(reason EndReason) {
	e.phase = PhaseEnded
	e.endReason = reason
	e.snap.EndedAt = e.clock.Now()
	if reason == EndAborted {
		e.emit(Signal{Kind: SignalRoundAborted, Score: e.score})
		return
	}
	if e.sink != nil {
		e.sink(e.score)
	}
	e.emit(Signal{Kind: SignalRoundEnded, Score: e.score})
}

func (e *Engine) resetInput() {
	e.used = nil
	e.expression = nil
}

func (e *Engine) emit(s Signal) {
	if e.listener != nil {
		e.listener(s)
	}
}
