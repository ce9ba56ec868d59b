// Package storage keeps per-visitor debate state for the web interface.
package storage

import (
	"errors"
	"time"

	"github.com/alienxp03/arena/internal/core"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// Session is the state of one browser session: the last submitted inputs,
// the debate lifecycle flags and the sanitized outcome.
type Session struct {
	ID             string
	Topic          string
	AffirmativeDoc string
	NegativeDoc    string
	Rounds         int
	Status         core.DebateStatus
	Started        bool
	Finished       bool
	Transcript     core.Transcript
	Summary        string
	Notice         string // one-shot message shown on the next page render
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewSession returns an idle session with a fresh ID.
func NewSession() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        core.GenerateID(),
		Rounds:    core.DefaultRounds,
		Status:    core.StatusIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reset clears everything except identity.
func (s *Session) Reset() {
	*s = Session{
		ID:        s.ID,
		Rounds:    core.DefaultRounds,
		Status:    core.StatusIdle,
		CreatedAt: s.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}
}

// Result returns the stored debate outcome, or nil if none finished.
func (s *Session) Result() *core.Result {
	if !s.Finished {
		return nil
	}
	return &core.Result{Topic: s.Topic, Transcript: s.Transcript, Summary: s.Summary}
}

// Storage persists sessions.
type Storage interface {
	// Initialize sets up the storage (creates tables, etc.)
	Initialize() error

	// Close closes the storage connection.
	Close() error

	CreateSession(s *Session) error
	GetSession(id string) (*Session, error)
	UpdateSession(s *Session) error
	DeleteSession(id string) error

	// Touch marks a session as used now without changing its state.
	Touch(id string) error

	// PurgeExpired removes sessions not updated or touched since before and returns
	// how many were removed.
	PurgeExpired(before time.Time) (int64, error)
}
