// Package participant binds a model provider to one side of a debate.
package participant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alienxp03/arena/internal/core"
	"github.com/alienxp03/arena/provider"
)

// ErrNoResponse is returned when a provider yields neither a response nor
// an error.
var ErrNoResponse = errors.New("provider returned no response")

// Agent is a participant handle: a provider, an optional model and the side
// it argues. Agents hold no conversation state and can be reused across
// debates.
type Agent struct {
	side     core.Side
	provider provider.Provider
	model    string
}

// New creates an agent for side backed by p.
func New(side core.Side, p provider.Provider, model string) *Agent {
	return &Agent{side: side, provider: p, model: model}
}

// Side returns the stance this agent argues.
func (a *Agent) Side() core.Side { return a.side }

// Provider returns the backing provider.
func (a *Agent) Provider() provider.Provider { return a.provider }

// Model returns the configured model, which may be empty.
func (a *Agent) Model() string { return a.model }

// String identifies the agent in logs, e.g. "genai/gemini-2.0-flash".
func (a *Agent) String() string {
	if a.model == "" {
		return a.provider.Name()
	}
	return a.provider.Name() + "/" + a.model
}

// Respond sends prompt together with the shared history and returns the
// answer plus the two history records the call produced.
func (a *Agent) Respond(ctx context.Context, prompt string, history []core.Message) (*core.Reply, error) {
	req := &provider.Request{
		Prompt:  prompt,
		History: a.convertHistory(history),
		Model:   a.model,
	}

	start := time.Now()
	slog.Debug("Participant call started", "side", a.side, "participant", a.String(), "history", len(history))

	resp, err := a.provider.Execute(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s participant %s: %w", a.side, a.String(), err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%s participant %s: %w", a.side, a.String(), ErrNoResponse)
	}

	slog.Debug("Participant call finished",
		"side", a.side,
		"participant", a.String(),
		"duration", time.Since(start),
		"chars", len(resp.Content),
	)

	now := time.Now()
	return &core.Reply{
		Text: resp.Content,
		Messages: []core.Message{
			{Side: a.side, Role: core.RolePrompt, Content: prompt, CreatedAt: start},
			{Side: a.side, Role: core.RoleReply, Content: resp.Content, CreatedAt: now},
		},
	}, nil
}

// convertHistory labels each record with its speaker. Only this agent's own
// replies are assistant turns.
func (a *Agent) convertHistory(history []core.Message) []provider.Message {
	out := make([]provider.Message, 0, len(history))
	for _, m := range history {
		role := provider.RoleUser
		if m.Side == a.side && m.Role == core.RoleReply {
			role = provider.RoleAssistant
		}
		out = append(out, provider.Message{
			Role:    role,
			Speaker: m.Side.Title(),
			Content: m.Content,
		})
	}
	return out
}
