// Package opencode drives the opencode CLI, which fronts many model vendors
// behind "vendor/model" identifiers.
package opencode

import (
	"context"
	"time"

	"github.com/alienxp03/arena/provider"
)

// Provider implements provider.Provider for the opencode CLI.
type Provider struct {
	provider.BaseProvider
}

// New creates a new opencode provider.
func New(cfg provider.Config) *Provider {
	return &Provider{BaseProvider: provider.NewBaseProvider(cfg)}
}

// Execute runs "opencode run" with JSON event output. The message is read
// from stdin.
func (p *Provider) Execute(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	model := req.Model
	if model == "" {
		model = p.DefaultModel()
	}

	args := []string{"run", "--format", "json"}
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

	resp := ParseEvents(rawOutput, time.Since(start))
	resp.Provider = p.Name()
	resp.Model = model
	return resp, nil
}

// HealthCheck asks the CLI the standard health question.
func (p *Provider) HealthCheck(ctx context.Context) provider.HealthStatus {
	return provider.HealthCheckWithExecute(ctx, p.DefaultModel(), p.Execute)
}
