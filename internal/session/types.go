// Package session implements the timed round state machine.
package session

import (
	"fmt"
	"time"

	"github.com/verte-zerg/quickten/internal/puzzle"
)

// Default round timings in seconds.
const (
	DefaultRoundSeconds   = 60
	DefaultRewardSeconds  = 15
	DefaultWarningSeconds = 10
)

// Config holds round timings in seconds.
type Config struct {
	RoundSeconds   int
	RewardSeconds  int
	WarningSeconds int
}

// DefaultConfig returns the standard round timings.
func DefaultConfig() Config {
	return Config{
		RoundSeconds:   DefaultRoundSeconds,
		RewardSeconds:  DefaultRewardSeconds,
		WarningSeconds: DefaultWarningSeconds,
	}
}

// Validate checks that the timings are usable.
func (c Config) Validate() error {
	if c.RoundSeconds <= 0 {
		return fmt.Errorf("round length must be > 0")
	}
	if c.RewardSeconds < 0 {
		return fmt.Errorf("reward must be >= 0")
	}
	if c.WarningSeconds < 0 {
		return fmt.Errorf("warning threshold must be >= 0")
	}
	return nil
}

// Phase is the state of a round.
type Phase int

const (
	PhaseRunning Phase = iota
	PhaseWarning       // low on time; scoring is unchanged
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseWarning:
		return "warning"
	case PhaseEnded:
		return "ended"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// EndReason tells a natural time-out apart from an abort.
type EndReason int

const (
	EndNone EndReason = iota
	EndTimeUp
	EndAborted
)

// SignalKind identifies a notification emitted by the engine.
type SignalKind int

const (
	SignalCorrect SignalKind = iota
	SignalIncorrect
	SignalError
	SignalWarningEntered
	SignalRoundEnded
	SignalRoundAborted
)

func (k SignalKind) String() string {
	switch k {
	case SignalCorrect:
		return "correct"
	case SignalIncorrect:
		return "incorrect"
	case SignalError:
		return "error"
	case SignalWarningEntered:
		return "warning"
	case SignalRoundEnded:
		return "round-ended"
	case SignalRoundAborted:
		return "round-aborted"
	default:
		return fmt.Sprintf("signal(%d)", int(k))
	}
}

// Signal is a discrete notification for feedback collaborators.
type Signal struct {
	Kind  SignalKind
	Score int
	Value float64
	Err   error
}

// OutcomeKind classifies the result of a submit.
type OutcomeKind int

const (
	OutcomeIgnored OutcomeKind = iota
	OutcomeCorrect
	OutcomeIncorrect
	OutcomeRejected
)

// Outcome is the result of Submit. Err is set only for rejected submissions.
type Outcome struct {
	Kind  OutcomeKind
	Value float64
	Err   error
}

// Message renders the outcome for the player.
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeCorrect:
		return "correct!"
	case OutcomeIncorrect:
		return fmt.Sprintf("wrong answer, value was %s", formatValue(o.Value))
	case OutcomeRejected:
		return o.Err.Error()
	default:
		return ""
	}
}

// Snapshot is a read-only copy of the round state.
type Snapshot struct {
	TimeRemaining  int
	Score          int
	Challenge      puzzle.Challenge
	UsedDigits     []int
	Expression     string
	Phase          Phase
	EndReason      EndReason
	FailedAttempts int
	StartedAt      time.Time
	EndedAt        time.Time
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.4g", v)
}
