package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/alienxp03/arena/internal/core"
	"github.com/alienxp03/arena/internal/storage"
)

// SessionCookie names the cookie that carries the visitor's session ID.
const SessionCookie = "arena_session"

// session loads the visitor's session, creating one and setting the cookie
// when the request has none or it has expired.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*storage.Session, error) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			sess, err := h.storage.GetSession(c.Value)
			if err == nil {
				// Reading a finished debate counts as activity for the janitor.
				if err := h.storage.Touch(sess.ID); err != nil {
					h.logger.Warn("Failed to touch session", "session", core.ShortID(sess.ID), "error", err)
				}
				return sess, nil
			}
			if !errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("failed to load session: %w", err)
			}
		}
	}

	sess := storage.NewSession()
	if err := h.storage.CreateSession(sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

// PurgeSessions removes sessions idle for longer than ttl.
func (h *Handler) PurgeSessions(ttl time.Duration) {
	n, err := h.storage.PurgeExpired(time.Now().Add(-ttl))
	if err != nil {
		h.logger.Warn("Failed to purge sessions", "error", err)
		return
	}
	if n > 0 {
		h.logger.Info("Purged idle sessions", "count", n)
	}
}

// RunJanitor purges idle sessions every interval until ctx is done.
func (h *Handler) RunJanitor(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = ttl / 2
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.PurgeSessions(ttl)
		}
	}
}
