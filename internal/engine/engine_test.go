package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/alienxp03/arena/internal/core"
	"github.com/alienxp03/arena/internal/style"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// call is one recorded invocation of a scripted participant.
type call struct {
	prompt  string
	history []core.Message
}

// scripted is a fake participant that replies "<side>-<n>" and records what
// it was given. fail, when set, decides per call index whether to fail.
type scripted struct {
	side core.Side

	mu    sync.Mutex
	calls []call

	fail  func(n int) error
	panic func(n int) bool
	block func(n int) bool
	nilAt func(n int) bool
}

func newScripted(side core.Side) *scripted {
	return &scripted{side: side}
}

func (s *scripted) Respond(ctx context.Context, prompt string, history []core.Message) (*core.Reply, error) {
	s.mu.Lock()
	n := len(s.calls)
	s.calls = append(s.calls, call{prompt: prompt, history: append([]core.Message(nil), history...)})
	s.mu.Unlock()

	if s.panic != nil && s.panic(n) {
		panic("participant exploded")
	}
	if s.block != nil && s.block(n) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.fail != nil {
		if err := s.fail(n); err != nil {
			return nil, err
		}
	}
	if s.nilAt != nil && s.nilAt(n) {
		return nil, nil
	}

	text := fmt.Sprintf("%s-%d", s.side, n)
	return &core.Reply{
		Text: text,
		Messages: []core.Message{
			{Side: s.side, Role: core.RolePrompt, Content: prompt},
			{Side: s.side, Role: core.RoleReply, Content: text},
		},
	}, nil
}

func (s *scripted) recorded() []call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]call(nil), s.calls...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(t *testing.T, aff, neg Participant, opts ...Option) *Engine {
	t.Helper()
	e, err := New(aff, neg, append([]Option{WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, err)
	return e
}

func request(topic string, rounds int) core.DebateRequest {
	req := core.NewDebateRequest(topic, "AFF-DOC", "NEG-DOC")
	req.Rounds = rounds
	return req
}

func TestNew(t *testing.T) {
	_, err := New(nil, newScripted(core.SideNegative))
	assert.Error(t, err)

	broken := &style.Style{ID: "broken", OpeningPrompt: "{{", RebuttalPrompt: "x", SummaryPrompt: "y"}
	_, err = New(newScripted(core.SideAffirmative), newScripted(core.SideNegative), WithStyle(broken))
	assert.Error(t, err)
}

func TestTranscriptShape(t *testing.T) {
	for rounds := 0; rounds <= 4; rounds++ {
		t.Run(fmt.Sprintf("rounds_%d", rounds), func(t *testing.T) {
			aff, neg := newScripted(core.SideAffirmative), newScripted(core.SideNegative)
			result := newEngine(t, aff, neg).RunDebate(context.Background(), request("X is good", rounds))
			require.NotNil(t, result)

			require.Len(t, result.Transcript, 2*rounds)
			for i, turn := range result.Transcript {
				wantSide := core.SideAffirmative
				if i%2 == 1 {
					wantSide = core.SideNegative
				}
				assert.Equal(t, wantSide, turn.Side, "entry %d", i)
				assert.Equal(t, i/2+1, turn.Round, "entry %d", i)
				assert.Equal(t, fmt.Sprintf("%s-%d", wantSide, i/2), turn.Text)
			}
			assert.Equal(t, rounds, result.Transcript.Rounds())
			assert.Equal(t, fmt.Sprintf("affirmative-%d", rounds), result.Summary)
			assert.Equal(t, "X is good", result.Topic)
		})
	}
}

func TestHistoryMonotonicity(t *testing.T) {
	aff, neg := newScripted(core.SideAffirmative), newScripted(core.SideNegative)
	result := newEngine(t, aff, neg).RunDebate(context.Background(), request("X", 3))
	require.NotNil(t, result)

	affCalls, negCalls := aff.recorded(), neg.recorded()
	require.Len(t, affCalls, 4) // three rounds plus the summary
	require.Len(t, negCalls, 3)

	// Interleave in call order: aff0 neg0 aff1 neg1 aff2 neg2 summary.
	var ordered []call
	for r := 0; r < 3; r++ {
		ordered = append(ordered, affCalls[r], negCalls[r])
	}
	ordered = append(ordered, affCalls[3])

	var produced []core.Message
	for i, c := range ordered {
		if diff := cmp.Diff(produced, c.history, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("call %d saw unexpected history (-want +got):\n%s", i, diff)
		}
		side := core.SideAffirmative
		if i%2 == 1 && i < len(ordered)-1 {
			side = core.SideNegative
		}
		produced = append(produced,
			core.Message{Side: side, Role: core.RolePrompt, Content: c.prompt},
			core.Message{Side: side, Role: core.RoleReply, Content: fmt.Sprintf("%s-%d", side, i/2)},
		)
	}

	// The negative in round r sees the affirmative's round r reply.
	for r := 0; r < 3; r++ {
		last := negCalls[r].history[len(negCalls[r].history)-1]
		assert.Equal(t, core.SideAffirmative, last.Side)
		assert.Equal(t, fmt.Sprintf("affirmative-%d", r), last.Content)
		assert.Greater(t, len(negCalls[r].history), len(affCalls[r].history))
	}
}

func TestAllOrNothing(t *testing.T) {
	// Three rounds: affirmative makes calls 0..3 (3 is the summary), negative 0..2.
	cases := []struct {
		name string
		side core.Side
		call int
	}{
		{"affirmative_round1", core.SideAffirmative, 0},
		{"negative_round1", core.SideNegative, 0},
		{"affirmative_round2", core.SideAffirmative, 1},
		{"negative_round3", core.SideNegative, 2},
		{"summary", core.SideAffirmative, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			aff, neg := newScripted(core.SideAffirmative), newScripted(core.SideNegative)
			target := aff
			if tc.side == core.SideNegative {
				target = neg
			}
			boom := errors.New("backend down")
			target.fail = func(n int) error {
				if n == tc.call {
					return boom
				}
				return nil
			}

			e := newEngine(t, aff, neg)
			assert.Nil(t, e.RunDebate(context.Background(), request("X", 3)))

			result, err := e.Run(context.Background(), request("X", 3))
			assert.Nil(t, result)
			var de *DebateError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, KindParticipant, de.Kind)
			assert.Equal(t, tc.side, de.Side)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestPromptFraming(t *testing.T) {
	for _, s := range style.DefaultStyles() {
		t.Run(s.ID, func(t *testing.T) {
			aff, neg := newScripted(core.SideAffirmative), newScripted(core.SideNegative)
			s := s
			result := newEngine(t, aff, neg, WithStyle(&s)).RunDebate(context.Background(), request("X", 3))
			require.NotNil(t, result)

			for _, p := range []*scripted{aff, neg} {
				calls := p.recorded()
				for r := 0; r < 3; r++ {
					if r == 0 {
						assert.NotContains(t, calls[r].prompt, "the latest argument from")
					} else {
						assert.Contains(t, calls[r].prompt, "the latest argument from")
					}
				}
			}

			for _, c := range aff.recorded()[:3] {
				assert.Contains(t, c.prompt, "AFF-DOC")
				assert.NotContains(t, c.prompt, "NEG-DOC")
			}
			for _, c := range neg.recorded() {
				assert.Contains(t, c.prompt, "NEG-DOC")
				assert.NotContains(t, c.prompt, "AFF-DOC")
			}
		})
	}
}

func TestScenarioSingleRoundNoDocuments(t *testing.T) {
	aff, neg := newScripted(core.SideAffirmative), newScripted(core.SideNegative)
	result := newEngine(t, aff, neg).RunDebate(context.Background(), core.DebateRequest{Topic: "X is good", Rounds: 1})
	require.NotNil(t, result)

	assert.Len(t, result.Transcript, 2)
	assert.NotEmpty(t, result.Summary)
	assert.True(t, strings.HasPrefix(aff.recorded()[0].prompt, "You are arguing FOR X is good."))
	assert.True(t, strings.HasPrefix(neg.recorded()[0].prompt, "You are arguing AGAINST X is good."))
	assert.True(t, strings.HasPrefix(aff.recorded()[1].prompt, "Summarize the key points"))
}

func TestScenarioFailureInLaterRound(t *testing.T) {
	aff, neg := newScripted(core.SideAffirmative), newScripted(core.SideNegative)
	neg.fail = func(n int) error {
		if n == 1 {
			return errors.New("rate limited")
		}
		return nil
	}

	result, err := newEngine(t, aff, neg).Run(context.Background(), request("X", 3))
	assert.Nil(t, result)

	var de *DebateError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, StageRound, de.Stage)
	assert.Equal(t, 2, de.Round)
	assert.Equal(t, core.SideNegative, de.Side)
	assert.Len(t, aff.recorded(), 2, "no further calls after the failure")
}

func TestScenarioMixedDocuments(t *testing.T) {
	aff, neg := newScripted(core.SideAffirmative), newScripted(core.SideNegative)
	req := core.DebateRequest{Topic: "X", NegativeDoc: "some text", Rounds: 2}
	require.False(t, req.DocumentsBalanced())

	result := newEngine(t, aff, neg).RunDebate(context.Background(), req)
	require.NotNil(t, result)
	assert.Len(t, result.Transcript, 4)
	assert.Contains(t, neg.recorded()[0].prompt, "some text")
}

func TestScenarioZeroRounds(t *testing.T) {
	aff, neg := newScripted(core.SideAffirmative), newScripted(core.SideNegative)
	result := newEngine(t, aff, neg).RunDebate(context.Background(), request("X", 0))
	require.NotNil(t, result)

	assert.Empty(t, result.Transcript)
	assert.Equal(t, "affirmative-0", result.Summary)
	require.Len(t, aff.recorded(), 1)
	assert.Empty(t, aff.recorded()[0].history)
	assert.Empty(t, neg.recorded())
}

func TestNegativeRounds(t *testing.T) {
	aff, neg := newScripted(core.SideAffirmative), newScripted(core.SideNegative)
	e := newEngine(t, aff, neg)

	req := core.DebateRequest{Topic: "X", Rounds: -1}
	_, err := e.Run(context.Background(), req)
	var de *DebateError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, KindInvalid, de.Kind)
	assert.Equal(t, StageSetup, de.Stage)
	assert.Nil(t, e.RunDebate(context.Background(), req))
	assert.Empty(t, aff.recorded())
}

func TestBlankTopicIsPassedThrough(t *testing.T) {
	aff, neg := newScripted(core.SideAffirmative), newScripted(core.SideNegative)
	result, err := newEngine(t, aff, neg).Run(context.Background(), core.DebateRequest{Topic: "", Rounds: 1})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "", result.Topic)
	assert.Len(t, result.Transcript, 2)
	assert.Equal(t, "affirmative-1", result.Summary)
}

func TestCallTimeout(t *testing.T) {
	aff, neg := newScripted(core.SideAffirmative), newScripted(core.SideNegative)
	neg.block = func(n int) bool { return n == 0 }

	e := newEngine(t, aff, neg, WithCallTimeout(20*time.Millisecond))
	result, err := e.Run(context.Background(), request("X", 2))
	assert.Nil(t, result)

	var de *DebateError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, KindTimeout, de.Kind)
	assert.Equal(t, core.SideNegative, de.Side)
	assert.Equal(t, 1, de.Round)
}

// ignoresContext never returns on its own; the engine must still give up.
type ignoresContext struct {
	release chan struct{}
}

func (p *ignoresContext) Respond(ctx context.Context, prompt string, history []core.Message) (*core.Reply, error) {
	<-p.release
	return &core.Reply{Text: "late"}, nil
}

func TestCallTimeoutWithUncooperativeParticipant(t *testing.T) {
	stuck := &ignoresContext{release: make(chan struct{})}
	defer close(stuck.release)

	e := newEngine(t, stuck, newScripted(core.SideNegative), WithCallTimeout(20*time.Millisecond))
	assert.Nil(t, e.RunDebate(context.Background(), request("X", 1)))
}

func TestCancellation(t *testing.T) {
	t.Run("before_start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		aff := newScripted(core.SideAffirmative)
		_, err := newEngine(t, aff, newScripted(core.SideNegative)).Run(ctx, request("X", 1))

		var de *DebateError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, KindCanceled, de.Kind)
		assert.Empty(t, aff.recorded())
	})

	t.Run("mid_call", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		aff, neg := newScripted(core.SideAffirmative), newScripted(core.SideNegative)
		neg.block = func(int) bool { return true }
		e := newEngine(t, aff, neg, WithTurnCallback(func(turn core.TurnRecord) {
			if turn.Side == core.SideAffirmative {
				cancel()
			}
		}))

		_, err := e.Run(ctx, request("X", 1))
		var de *DebateError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, KindCanceled, de.Kind)
	})
}

func TestPanickingParticipant(t *testing.T) {
	aff, neg := newScripted(core.SideAffirmative), newScripted(core.SideNegative)
	aff.panic = func(n int) bool { return n == 1 }

	e := newEngine(t, aff, neg)
	assert.Nil(t, e.RunDebate(context.Background(), request("X", 2)))

	aff2 := newScripted(core.SideAffirmative)
	aff2.panic = func(n int) bool { return n == 0 }
	_, err := newEngine(t, aff2, neg).Run(context.Background(), request("X", 2))
	var de *DebateError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, KindPanic, de.Kind)
}

func TestMalformedReply(t *testing.T) {
	aff, neg := newScripted(core.SideAffirmative), newScripted(core.SideNegative)
	neg.nilAt = func(n int) bool { return n == 0 }

	_, err := newEngine(t, aff, neg).Run(context.Background(), request("X", 1))
	var de *DebateError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, KindMalformed, de.Kind)
}

func TestTurnCallbackOrder(t *testing.T) {
	var seen []core.TurnRecord
	e := newEngine(t, newScripted(core.SideAffirmative), newScripted(core.SideNegative),
		WithTurnCallback(func(turn core.TurnRecord) { seen = append(seen, turn) }))

	result := e.RunDebate(context.Background(), request("X", 2))
	require.NotNil(t, result)
	if diff := cmp.Diff([]core.TurnRecord(result.Transcript), seen); diff != "" {
		t.Errorf("callback order mismatch (-transcript +callback):\n%s", diff)
	}
}

func TestEngineReuseAndConcurrentDebates(t *testing.T) {
	e := newEngine(t, &stateless{side: core.SideAffirmative}, &stateless{side: core.SideNegative})

	var wg sync.WaitGroup
	results := make([]*core.Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.RunDebate(context.Background(), request(fmt.Sprintf("topic %d", i), 2))
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		require.NotNil(t, r, "debate %d", i)
		assert.Equal(t, fmt.Sprintf("topic %d", i), r.Topic)
		require.Len(t, r.Transcript, 4)
		// Each reply encodes the history length it saw; debates must not
		// observe each other's messages.
		assert.Equal(t, "negative saw 6", r.Transcript[3].Text)
		assert.Equal(t, "affirmative saw 8", r.Summary)
	}
}

// stateless replies with the size of the history it received.
type stateless struct {
	side core.Side
}

func (s *stateless) Respond(ctx context.Context, prompt string, history []core.Message) (*core.Reply, error) {
	text := fmt.Sprintf("%s saw %d", s.side, len(history))
	return &core.Reply{
		Text: text,
		Messages: []core.Message{
			{Side: s.side, Role: core.RolePrompt, Content: prompt},
			{Side: s.side, Role: core.RoleReply, Content: text},
		},
	}, nil
}

func TestDebateErrorMessage(t *testing.T) {
	err := &DebateError{Kind: KindTimeout, Stage: StageRound, Round: 2, Side: core.SideNegative, Err: context.DeadlineExceeded}
	assert.Equal(t, "debate failed during round 2 (negative): timeout: context deadline exceeded", err.Error())
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	summary := &DebateError{Kind: KindParticipant, Stage: StageSummary, Side: core.SideAffirmative, Err: errors.New("x")}
	assert.Equal(t, "debate failed during summary (affirmative): participant: x", summary.Error())
}
