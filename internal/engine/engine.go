// Package engine runs scripted debates between two participants.
//
// A debate is strictly sequential: in every round the affirmative speaks
// first and the negative answers having seen that turn. Both participants
// share one conversation history for the whole debate. After the last round
// the affirmative participant produces a neutral summary. Any failure aborts
// the debate and no partial transcript is returned.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alienxp03/arena/internal/core"
	"github.com/alienxp03/arena/internal/style"
)

// Participant produces one reply given a prompt and the shared history.
// Implementations must not retain or modify history.
type Participant interface {
	Respond(ctx context.Context, prompt string, history []core.Message) (*core.Reply, error)
}

// Engine orchestrates debates between a fixed pair of participants. It
// holds no per-debate state, so one Engine can serve concurrent debates as
// long as the participants themselves are safe for concurrent use.
type Engine struct {
	affirmative Participant
	negative    Participant

	style            *style.Style
	wordLimit        int
	summaryWordLimit int
	callTimeout      time.Duration
	logger           *slog.Logger
	onTurn           TurnCallback

	prompts *style.Builder
}

// New creates an engine for the given participants.
func New(affirmative, negative Participant, opts ...Option) (*Engine, error) {
	if affirmative == nil || negative == nil {
		return nil, fmt.Errorf("both participants are required")
	}

	e := &Engine{
		affirmative: affirmative,
		negative:    negative,
		style:       style.Default(),
		callTimeout: DefaultCallTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	prompts, err := style.NewBuilder(e.style, e.wordLimit, e.summaryWordLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid style %q: %w", e.style.ID, err)
	}
	e.prompts = prompts
	return e, nil
}

// RunDebate runs a full debate and returns its result, or nil if any part
// of it failed. Details of the failure are logged.
func (e *Engine) RunDebate(ctx context.Context, req core.DebateRequest) *core.Result {
	result, err := e.Run(ctx, req)
	if err != nil {
		var de *DebateError
		if errors.As(err, &de) {
			e.logger.Error("Debate failed",
				"kind", de.Kind,
				"stage", de.Stage,
				"round", de.Round,
				"side", de.Side,
				"error", de.Err,
			)
		} else {
			e.logger.Error("Debate failed", "error", err)
		}
		return nil
	}
	return result
}

// Run is RunDebate with the failure reported as a *DebateError. The topic is
// passed through as given; callers validate it with DebateRequest.Validate.
func (e *Engine) Run(ctx context.Context, req core.DebateRequest) (*core.Result, error) {
	if req.Rounds < 0 {
		return nil, &DebateError{
			Kind:  KindInvalid,
			Stage: StageSetup,
			Err:   fmt.Errorf("rounds must not be negative: %d", req.Rounds),
		}
	}

	log := e.logger.With("topic", req.Topic)
	log.Info("Debate started", "rounds", req.Rounds, "style", e.style.ID)
	start := time.Now()

	var (
		history    []core.Message
		transcript = make(core.Transcript, 0, 2*req.Rounds)
	)

	for round := 0; round < req.Rounds; round++ {
		for _, side := range []core.Side{core.SideAffirmative, core.SideNegative} {
			prompt, err := e.prompts.Turn(round, side, req)
			if err != nil {
				return nil, &DebateError{Kind: KindInvalid, Stage: StageRound, Round: round + 1, Side: side, Err: err}
			}

			reply, callErr := e.call(ctx, e.participant(side), prompt, history)
			if callErr != nil {
				callErr.Stage, callErr.Round, callErr.Side = StageRound, round+1, side
				return nil, callErr
			}

			history = append(history, reply.Messages...)
			turn := core.TurnRecord{Round: round + 1, Side: side, Text: reply.Text}
			transcript = append(transcript, turn)
			log.Debug("Turn completed", "round", turn.Round, "side", side, "history", len(history))

			if e.onTurn != nil {
				e.onTurn(turn)
			}
		}
	}

	prompt, err := e.prompts.Summary(req)
	if err != nil {
		return nil, &DebateError{Kind: KindInvalid, Stage: StageSummary, Side: core.SideAffirmative, Err: err}
	}
	reply, callErr := e.call(ctx, e.affirmative, prompt, history)
	if callErr != nil {
		callErr.Stage, callErr.Side = StageSummary, core.SideAffirmative
		return nil, callErr
	}

	log.Info("Debate completed", "turns", len(transcript), "duration", time.Since(start))

	return &core.Result{
		Topic:      req.Topic,
		Transcript: transcript,
		Summary:    reply.Text,
	}, nil
}

func (e *Engine) participant(side core.Side) Participant {
	if side == core.SideNegative {
		return e.negative
	}
	return e.affirmative
}

type callResult struct {
	reply *core.Reply
	err   error
	panic any
}

// call invokes p once, bounded by the call timeout. The participant runs in
// its own goroutine so the bound holds even when it ignores ctx; a panic in
// the participant is converted into an error.
func (e *Engine) call(ctx context.Context, p Participant, prompt string, history []core.Message) (*core.Reply, *DebateError) {
	if err := ctx.Err(); err != nil {
		return nil, &DebateError{Kind: contextKind(err), Err: err}
	}

	callCtx := ctx
	if e.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
	}

	// Cap the slice so an append inside the participant cannot write into
	// our backing array.
	shared := history[:len(history):len(history)]

	done := make(chan callResult, 1)
	go func() {
		var res callResult
		defer func() {
			if r := recover(); r != nil {
				res = callResult{panic: r}
			}
			done <- res
		}()
		res.reply, res.err = p.Respond(callCtx, prompt, shared)
	}()

	var res callResult
	select {
	case res = <-done:
	case <-callCtx.Done():
		return nil, e.contextError(ctx, callCtx)
	}

	switch {
	case res.panic != nil:
		return nil, &DebateError{Kind: KindPanic, Err: fmt.Errorf("participant panicked: %v", res.panic)}
	case res.err != nil:
		if callCtx.Err() != nil {
			de := e.contextError(ctx, callCtx)
			de.Err = res.err
			return nil, de
		}
		return nil, &DebateError{Kind: KindParticipant, Err: res.err}
	case res.reply == nil:
		return nil, &DebateError{Kind: KindMalformed, Err: errors.New("participant returned no reply")}
	}
	return res.reply, nil
}

// contextError distinguishes the caller giving up from the call running out
// of time.
func (e *Engine) contextError(parent, call context.Context) *DebateError {
	if err := parent.Err(); err != nil {
		return &DebateError{Kind: contextKind(err), Err: err}
	}
	return &DebateError{Kind: KindTimeout, Err: fmt.Errorf("no reply within %s: %w", e.callTimeout, call.Err())}
}

func contextKind(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindCanceled
}
