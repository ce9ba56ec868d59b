package engine

import (
	"fmt"

	"github.com/alienxp03/arena/internal/core"
)

// ErrorKind classifies why a debate was aborted.
type ErrorKind string

const (
	KindInvalid     ErrorKind = "invalid"
	KindParticipant ErrorKind = "participant"
	KindTimeout     ErrorKind = "timeout"
	KindCanceled    ErrorKind = "canceled"
	KindMalformed   ErrorKind = "malformed"
	KindPanic       ErrorKind = "panic"
)

// Stage is the part of the debate that was running when it failed.
type Stage string

const (
	StageSetup   Stage = "setup"
	StageRound   Stage = "round"
	StageSummary Stage = "summary"
)

// DebateError describes the call that aborted a debate.
type DebateError struct {
	Kind  ErrorKind
	Stage Stage
	Round int // 1-based; zero outside the round loop
	Side  core.Side
	Err   error
}

func (e *DebateError) Error() string {
	var where string
	switch e.Stage {
	case StageRound:
		where = fmt.Sprintf("round %d (%s)", e.Round, e.Side)
	case StageSummary:
		where = fmt.Sprintf("summary (%s)", e.Side)
	default:
		where = string(e.Stage)
	}
	return fmt.Sprintf("debate failed during %s: %s: %v", where, e.Kind, e.Err)
}

func (e *DebateError) Unwrap() error {
	return e.Err
}
