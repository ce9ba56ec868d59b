// Package gemini provides a Gemini CLI provider implementation.
//
// For direct API access without the CLI, see the genai package.
package gemini

import (
	"context"
	"time"

	"github.com/alienxp03/arena/provider"
)

// Provider implements provider.Provider for the Gemini CLI.
type Provider struct {
	provider.BaseProvider
}

// New creates a new Gemini CLI provider.
func New(cfg provider.Config) *Provider {
	return &Provider{BaseProvider: provider.NewBaseProvider(cfg)}
}

// Execute runs the Gemini CLI in non-interactive JSON mode. Piped stdin
// without --prompt is read as the prompt.
func (p *Provider) Execute(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	model := req.Model
	if model == "" {
		model = p.DefaultModel()
	}

	args := []string{"--output-format", "json"}
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
