// Package claude provides a Claude CLI provider implementation.
package claude

import (
	"context"
	"time"

	"github.com/alienxp03/arena/provider"
)

// Provider implements provider.Provider for the Claude CLI.
type Provider struct {
	provider.BaseProvider
}

// New creates a new Claude provider with the given configuration.
func New(cfg provider.Config) *Provider {
	return &Provider{
		BaseProvider: provider.NewBaseProvider(cfg),
	}
}

// Execute pipes the request, with its history folded into the prompt, to
// the Claude CLI in print mode, which reads the prompt from stdin.
func (p *Provider) Execute(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	args := []string{"--output-format", "json"}

	model := req.Model
	if model == "" {
		model = p.DefaultModel()
	}
	if model != "" {
		args = append(args, "--model", model)
	}
	args = append(args, req.Args...)

	start := time.Now()
	rawOutput, err := p.ExecuteCommand(ctx, &provider.Request{
		Model:      model,
		WorkingDir: req.WorkingDir,
		Args:       args,
		Stdin:      provider.ComposePrompt(req),
	})
	if err != nil {
		return nil, err
	}

	resp := ParseJSON(rawOutput, time.Since(start))
	resp.Provider = p.Name()
	if resp.Model == "" {
		resp.Model = model
	}
	return resp, nil
}

// HealthCheck performs a quick health check using the provider execution path.
func (p *Provider) HealthCheck(ctx context.Context) provider.HealthStatus {
	return provider.HealthCheckWithExecute(ctx, p.DefaultModel(), p.Execute)
}
