// Package feedback turns round signals into terminal cues.
package feedback

import (
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/quickten/internal/session"
)

// Player reacts to engine signals.
type Player interface {
	Play(sig session.Signal)
}

// Noop ignores every signal.
type Noop struct{}

// Play does nothing.
func (Noop) Play(session.Signal) {}

// Bell rings the terminal bell a signal-specific number of times.
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

// NewBell writes BEL characters to w, usually the controlling terminal.
func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

// Play rings for sig.
func (b *Bell) Play(sig session.Signal) {
	n := Rings(sig.Kind)
	if n == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := io.WriteString(b.w, strings.Repeat("\a", n)); err != nil {
		// Best-effort cue.
		_ = err
	}
}

// Rings is the number of bells played for a signal kind.
func Rings(kind session.SignalKind) int {
	switch kind {
	case session.SignalCorrect, session.SignalWarningEntered:
		return 1
	case session.SignalIncorrect, session.SignalError:
		return 2
	case session.SignalRoundEnded:
		return 3
	default:
		return 0
	}
}

// New returns a Bell on w when enabled, otherwise Noop.
func New(enabled bool, w io.Writer) Player {
	if !enabled || w == nil {
		return Noop{}
	}
	return NewBell(w)
}

type logged struct {
	next   Player
	logger zerolog.Logger
}

// WithLogging records every signal at debug level before forwarding it.
func WithLogging(next Player, logger zerolog.Logger) Player {
	return logged{next: next, logger: logger}
}

func (l logged) Play(sig session.Signal) {
	ev := l.logger.Debug().Str("signal", sig.Kind.String()).Int("score", sig.Score)
	if sig.Err != nil {
		ev = ev.Err(sig.Err)
	}
	ev.Msg("round signal")
	l.next.Play(sig)
}
