// Package core contains the core domain types for arena.
package core

import (
	"fmt"
	"strings"
	"time"
)

// DefaultRounds is the number of rounds a debate runs when none is given.
const DefaultRounds = 3

// Side identifies which stance a participant argues.
type Side string

const (
	SideAffirmative Side = "affirmative"
	SideNegative    Side = "negative"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideAffirmative {
		return SideNegative
	}
	return SideAffirmative
}

// Title returns the capitalized side name used in prompts and headings.
func (s Side) Title() string {
	switch s {
	case SideAffirmative:
		return "Affirmative"
	case SideNegative:
		return "Negative"
	default:
		return strings.ToUpper(string(s))
	}
}

// Valid reports whether s is one of the two debate sides.
func (s Side) Valid() bool {
	return s == SideAffirmative || s == SideNegative
}

// Role distinguishes the instruction sent to a participant from its answer.
type Role string

const (
	RolePrompt Role = "prompt"
	RoleReply  Role = "reply"
)

// Message is a single record in the shared conversation history.
type Message struct {
	Side      Side      `json:"side"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Reply is what a participant returns from one invocation.
type Reply struct {
	Text     string    // The participant's answer
	Messages []Message // History records produced by this call, in order
}

// TurnRecord is one visible entry of the debate.
type TurnRecord struct {
	Round int    `json:"round"` // 1-based
	Side  Side   `json:"side"`
	Text  string `json:"text"`
}

// Transcript is the ordered list of turns of a finished debate.
type Transcript []TurnRecord

// Rounds returns the number of complete rounds in the transcript.
func (t Transcript) Rounds() int {
	return len(t) / 2
}

// DebateRequest holds the inputs of a single debate invocation.
type DebateRequest struct {
	Topic          string `json:"topic"`
	AffirmativeDoc string `json:"affirmative_doc"`
	NegativeDoc    string `json:"negative_doc"`
	Rounds         int    `json:"rounds"`
}

// NewDebateRequest creates a request with the default number of rounds.
func NewDebateRequest(topic, affirmativeDoc, negativeDoc string) DebateRequest {
	return DebateRequest{
		Topic:          topic,
		AffirmativeDoc: affirmativeDoc,
		NegativeDoc:    negativeDoc,
		Rounds:         DefaultRounds,
	}
}

// Validate checks the caller-side preconditions of a debate.
func (r DebateRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	if r.Rounds < 0 {
		return fmt.Errorf("rounds must not be negative: %d", r.Rounds)
	}
	return nil
}

// DocumentsBalanced reports whether both sides were given background
// documents or neither was.
func (r DebateRequest) DocumentsBalanced() bool {
	return (r.AffirmativeDoc == "") == (r.NegativeDoc == "")
}

// Result is the outcome of a successful debate.
type Result struct {
	Topic      string     `json:"topic"`
	Transcript Transcript `json:"transcript"`
	Summary    string     `json:"summary"`
}

// DebateStatus represents the lifecycle state of a session's debate.
type DebateStatus string

const (
	StatusIdle      DebateStatus = "idle"
	StatusRunning   DebateStatus = "running"
	StatusCompleted DebateStatus = "completed"
	StatusFailed    DebateStatus = "failed"
)
