// Package genai provides a Gemini API provider built on the Google GenAI
// SDK. Unlike the CLI providers it sends the debate history as structured
// contents instead of folding it into one prompt.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/alienxp03/arena/provider"
)

// DefaultModel is used when neither the request nor the config names one.
const DefaultModel = "gemini-2.0-flash"

// generator is the subset of *genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Provider implements provider.Provider against the Gemini API.
type Provider struct {
	name         string
	apiKey       string
	defaultModel string
	timeout      time.Duration
	maxRetries   int

	mu     sync.Mutex
	models generator
}

// New creates a Gemini API provider. The client is created on first use so
// a missing key only matters when the provider is actually called.
func New(cfg provider.Config) *Provider {
	name := cfg.Name
	if name == "" {
		name = "genai"
	}
	model := cfg.DefaultModel
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = provider.DefaultTimeout
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = provider.DefaultMaxRetries
	}
	return &Provider{
		name:         name,
		apiKey:       cfg.APIKey,
		defaultModel: model,
		timeout:      timeout,
		maxRetries:   retries,
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return p.name }

// DefaultModel returns the model used when a request names none.
func (p *Provider) DefaultModel() string { return p.defaultModel }

// Available reports whether an API key is configured.
func (p *Provider) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.apiKey != "" || p.models != nil
}

func (p *Provider) client(ctx context.Context) (generator, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.models != nil {
		return p.models, nil
	}
	if p.apiKey == "" {
		return nil, &provider.CLIError{Provider: p.name, Message: "GEMINI_API_KEY is not set", Err: provider.ErrUnavailable}
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	p.models = c.Models
	return p.models, nil
}

// Execute sends the history plus prompt to the model.
func (p *Provider) Execute(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	models, err := p.client(ctx)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = p.defaultModel
	}
	contents := BuildContents(req)

	var (
		result  *genai.GenerateContentResponse
		lastErr error
	)
	start := time.Now()
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(1<<attempt) * time.Second
			slog.Info("Retrying Gemini API call", "provider", p.name, "attempt", attempt+1, "backoff", wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		result, lastErr = models.GenerateContent(callCtx, model, contents, nil)
		cancel()
		if lastErr == nil {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("Gemini API call failed", "provider", p.name, "attempt", attempt+1, "error", lastErr)
	}
	if lastErr != nil {
		return nil, &provider.CLIError{Provider: p.name, Message: "generate content failed", Err: lastErr}
	}

	return toResponse(p.name, model, result, time.Since(start)), nil
}

// HealthCheck performs a quick health check using the provider execution path.
func (p *Provider) HealthCheck(ctx context.Context) provider.HealthStatus {
	return provider.HealthCheckWithExecute(ctx, p.defaultModel, p.Execute)
}

func toResponse(name, model string, result *genai.GenerateContentResponse, d time.Duration) *provider.Response {
	resp := &provider.Response{
		Provider: name,
		Model:    model,
		Metadata: &provider.Metadata{Duration: d},
	}
	if result == nil {
		return resp
	}

	resp.Content = result.Text()
	if result.ModelVersion != "" {
		resp.Model = result.ModelVersion
	}
	if len(result.Candidates) > 0 {
		resp.Metadata.StopReason = string(result.Candidates[0].FinishReason)
	}
	if u := result.UsageMetadata; u != nil {
		resp.Metadata.InputTokens = int(u.PromptTokenCount)
		resp.Metadata.OutputTokens = int(u.CandidatesTokenCount)
		resp.Metadata.TotalTokens = int(u.TotalTokenCount)
	}
	return resp
}
