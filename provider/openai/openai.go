// Package openai provides a provider backed by the Codex CLI, which gives
// command-line access to OpenAI models.
package openai

import (
	"context"
	"time"

	"github.com/alienxp03/arena/provider"
)

// Provider implements provider.Provider for the Codex CLI.
type Provider struct {
	provider.BaseProvider
}

// New creates a new Codex provider.
func New(cfg provider.Config) *Provider {
	return &Provider{BaseProvider: provider.NewBaseProvider(cfg)}
}

// Execute runs `codex exec --json -`, feeding the composed prompt on stdin.
func (p *Provider) Execute(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	model := req.Model
	if model == "" {
		model = p.DefaultModel()
	}

	args := []string{"exec", "--json", "--skip-git-repo-check"}
	if model != "" {
		args = append(args, "--model", model)
	}
	args = append(args, req.Args...)
	args = append(args, "-")

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
	resp.Model = model
	return resp, nil
}

// HealthCheck performs a quick health check using the provider execution path.
func (p *Provider) HealthCheck(ctx context.Context) provider.HealthStatus {
	return provider.HealthCheckWithExecute(ctx, p.DefaultModel(), p.Execute)
}
