// Package mock provides an offline provider that produces deterministic
// replies. It backs the --mock flag and tests.
package mock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alienxp03/arena/provider"
)

// DefaultModel is reported when no model is requested.
const DefaultModel = "mock-v1"

// ErrInjected is returned once the configured failure point is reached.
var ErrInjected = errors.New("mock: injected failure")

// Provider returns canned text derived from the prompt and history size.
type Provider struct {
	name string

	// Delay simulates model latency. It honors context cancellation.
	Delay time.Duration

	// FailAfter makes every call after the first FailAfter calls fail.
	// Zero disables failures.
	FailAfter int

	mu    sync.Mutex
	calls int
}

// New creates a mock provider.
func New(name string) *Provider {
	if name == "" {
		name = "mock"
	}
	return &Provider{name: name}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return p.name }

// Available always returns true.
func (p *Provider) Available() bool { return true }

// Calls returns how many times Execute was invoked.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Execute produces a reply without contacting any backend.
func (p *Provider) Execute(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	p.mu.Lock()
	p.calls++
	call := p.calls
	p.mu.Unlock()

	if p.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.Delay):
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.FailAfter > 0 && call > p.FailAfter {
		return nil, &provider.CLIError{Provider: p.name, Message: fmt.Sprintf("call %d", call), Err: ErrInjected}
	}

	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	return &provider.Response{
		Content:  reply(req),
		Model:    model,
		Provider: p.name,
		Metadata: &provider.Metadata{
			InputTokens:  len(strings.Fields(provider.ComposePrompt(req))),
			OutputTokens: 16,
		},
	}, nil
}

func reply(req *provider.Request) string {
	if req.Prompt == provider.HealthCheckPrompt {
		return "2"
	}
	return fmt.Sprintf("Simulated point %d responding to: %s", len(req.History)/2+1, truncate(req.Prompt, 60))
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
