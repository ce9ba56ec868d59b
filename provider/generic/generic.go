// Package generic provides a provider for arbitrary command-line tools that
// read a prompt on stdin and print plain text.
package generic

import (
	"context"
	"strings"
	"time"

	"github.com/alienxp03/arena/provider"
)

// Provider is a configurable provider for custom CLI tools.
type Provider struct {
	provider.BaseProvider

	// ModelFlag is the flag used to pass the model. Empty disables it.
	ModelFlag string
}

// New creates a generic provider from configuration.
func New(cfg provider.Config) *Provider {
	return &Provider{
		BaseProvider: provider.NewBaseProvider(cfg),
		ModelFlag:    "--model",
	}
}

// Execute writes the composed prompt to stdin and returns stdout unparsed.
func (p *Provider) Execute(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	model := req.Model
	if model == "" {
		model = p.DefaultModel()
	}

	var args []string
	if model != "" && p.ModelFlag != "" {
		args = append(args, p.ModelFlag, model)
	}
	args = append(args, req.Args...)

	start := time.Now()
	content, err := p.ExecuteCommand(ctx, &provider.Request{
		Model:      model,
		WorkingDir: req.WorkingDir,
		Args:       args,
		Stdin:      provider.ComposePrompt(req),
	})
	if err != nil {
		return nil, err
	}

	return &provider.Response{
		Content:  strings.TrimSpace(content),
		Model:    model,
		Provider: p.Name(),
		Metadata: &provider.Metadata{Duration: time.Since(start)},
		Raw:      content,
	}, nil
}

// HealthCheck performs a quick health check using the provider execution path.
func (p *Provider) HealthCheck(ctx context.Context) provider.HealthStatus {
	return provider.HealthCheckWithExecute(ctx, p.DefaultModel(), p.Execute)
}
