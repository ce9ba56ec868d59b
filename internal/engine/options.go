package engine

import (
	"log/slog"
	"time"

	"github.com/alienxp03/arena/internal/core"
	"github.com/alienxp03/arena/internal/style"
)

// DefaultCallTimeout bounds a single participant call.
const DefaultCallTimeout = 2 * time.Minute

// TurnCallback is called after each turn completes. It observes progress
// only; a debate that later fails still returns no result.
type TurnCallback func(turn core.TurnRecord)

// Option configures an Engine.
type Option func(*Engine)

// WithStyle selects the prompt templates. The classic style is the default.
func WithStyle(s *style.Style) Option {
	return func(e *Engine) {
		if s != nil {
			e.style = s
		}
	}
}

// WithWordLimits overrides the per-turn and summary word limits.
func WithWordLimits(turn, summary int) Option {
	return func(e *Engine) {
		e.wordLimit = turn
		e.summaryWordLimit = summary
	}
}

// WithCallTimeout bounds every participant call. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.callTimeout = d
	}
}

// WithLogger sets the logger used for debate diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTurnCallback registers a progress callback.
func WithTurnCallback(fn TurnCallback) Option {
	return func(e *Engine) {
		e.onTurn = fn
	}
}
