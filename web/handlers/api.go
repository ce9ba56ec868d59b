package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/alienxp03/arena/internal/core"
	"github.com/alienxp03/arena/internal/sanitize"
	"github.com/alienxp03/arena/internal/style"
	"github.com/alienxp03/arena/provider"
)

type createDebateRequest struct {
	Topic          string `json:"topic"`
	AffirmativeDoc string `json:"affirmative_doc"`
	NegativeDoc    string `json:"negative_doc"`
	Rounds         *int   `json:"rounds,omitempty"`
}

type createDebateResponse struct {
	Topic      string          `json:"topic"`
	Transcript core.Transcript `json:"transcript"`
	Summary    string          `json:"summary"`
	Warning    string          `json:"warning,omitempty"`
}

func (h *Handler) handleAPICreateDebate(w http.ResponseWriter, r *http.Request) {
	var body createDebateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)).Decode(&body); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	req := core.NewDebateRequest(body.Topic, body.AffirmativeDoc, body.NegativeDoc)
	if body.Rounds != nil {
		req.Rounds = *body.Rounds
	}
	if err := req.Validate(); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Rounds > MaxRounds {
		h.jsonError(w, "too many rounds", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.DebateTimeout)
	defer cancel()

	result := h.engine.RunDebate(ctx, req)
	if result == nil {
		h.jsonError(w, "failed to generate debate", http.StatusBadGateway)
		return
	}
	result = sanitize.Result(result)

	resp := createDebateResponse{
		Topic:      result.Topic,
		Transcript: result.Transcript,
		Summary:    result.Summary,
	}
	if !req.DocumentsBalanced() {
		resp.Warning = noticeUnbalanced
	}
	h.json(w, resp)
}

type providerInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Available   bool   `json:"available"`
}

func (h *Handler) handleAPIProviders(w http.ResponseWriter, r *http.Request) {
	providers := h.registry.List()
	result := make([]providerInfo, 0, len(providers))
	for _, p := range providers {
		info := providerInfo{Name: p.Name(), Available: p.Available()}
		if d, ok := p.(interface{ DisplayName() string }); ok {
			info.DisplayName = d.DisplayName()
		}
		result = append(result, info)
	}
	h.json(w, map[string]any{"providers": result})
}

func (h *Handler) handleAPIProvidersHealth(w http.ResponseWriter, r *http.Request) {
	var (
		mu     sync.Mutex
		result = make(map[string]provider.HealthStatus)
	)

	g, ctx := errgroup.WithContext(r.Context())
	for _, p := range h.registry.List() {
		g.Go(func() error {
			status, ok := h.health.GetFresh(p.Name())
			if !ok {
				status = provider.Check(ctx, p)
				h.health.Set(p.Name(), status)
			}
			mu.Lock()
			result[p.Name()] = status
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	h.json(w, map[string]any{"providers": result})
}

func (h *Handler) handleAPIListStyles(w http.ResponseWriter, r *http.Request) {
	h.json(w, h.allStyles())
}

// allStyles returns the built-in styles followed by the configured ones.
func (h *Handler) allStyles() []style.Style {
	return append(style.DefaultStyles(), h.opts.CustomStyles...)
}
