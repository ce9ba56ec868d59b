package config

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/alienxp03/arena/internal/core"
	"github.com/alienxp03/arena/internal/engine"
	"github.com/alienxp03/arena/internal/participant"
	"github.com/alienxp03/arena/provider"
	"github.com/alienxp03/arena/provider/claude"
	"github.com/alienxp03/arena/provider/gemini"
	"github.com/alienxp03/arena/provider/genai"
	"github.com/alienxp03/arena/provider/generic"
	"github.com/alienxp03/arena/provider/mock"
	"github.com/alienxp03/arena/provider/openai"
	"github.com/alienxp03/arena/provider/opencode"
	"github.com/alienxp03/arena/provider/qwen"
)

// GetProvider returns the configuration for a specific provider.
func (c *Config) GetProvider(name string) (ProviderConfig, bool) {
	p, ok := c.Providers[name]
	return p, ok
}

// ToProviderConfig converts to the provider package's Config type.
func (p ProviderConfig) ToProviderConfig(name string) provider.Config {
	return provider.Config{
		Name:         name,
		Command:      p.Command,
		Args:         p.Args,
		APIKey:       p.APIKey,
		DefaultModel: p.DefaultModel,
		Models:       p.Models,
		Timeout:      p.Timeout,
		MaxRetries:   p.MaxRetries,
	}
}

func createProviderFromName(name string, cfg provider.Config) provider.Provider {
	switch name {
	case "claude":
		cfg.DisplayName = "Claude"
		return claude.New(cfg)
	case "gemini":
		cfg.DisplayName = "Gemini CLI"
		return gemini.New(cfg)
	case "codex", "openai":
		cfg.DisplayName = "OpenAI Codex"
		return openai.New(cfg)
	case "genai":
		cfg.DisplayName = "Gemini API"
		return genai.New(cfg)
	case "qwen":
		cfg.DisplayName = "Qwen Code"
		return qwen.New(cfg)
	case "opencode":
		cfg.DisplayName = "OpenCode"
		return opencode.New(cfg)
	case "mock":
		return mock.New(name)
	default:
		if cfg.Command == "" {
			return nil
		}
		return generic.New(cfg)
	}
}

// CreateProvider creates a provider instance from configuration.
func (c *Config) CreateProvider(name string) (provider.Provider, error) {
	pcfg, ok := c.GetProvider(name)
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
	if !pcfg.Enabled {
		return nil, fmt.Errorf("provider %s is disabled", name)
	}

	p := createProviderFromName(name, pcfg.ToProviderConfig(name))
	if p == nil {
		return nil, fmt.Errorf("provider %s has no command configured", name)
	}
	return p, nil
}

// CreateRegistry creates a provider registry with all enabled providers.
func (c *Config) CreateRegistry() *provider.Registry {
	registry := provider.NewRegistry()

	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !c.Providers[name].Enabled {
			continue
		}
		p, err := c.CreateProvider(name)
		if err != nil {
			slog.Warn("Skipping provider", "name", name, "error", err)
			continue
		}
		registry.Register(p)
	}
	return registry
}

// BuildParticipant resolves a provider[/model] spec against the registry.
func BuildParticipant(registry *provider.Registry, spec string, side core.Side) (*participant.Agent, error) {
	name, model, err := core.ParseParticipantSpec(spec)
	if err != nil {
		return nil, fmt.Errorf("%s participant: %w", side, err)
	}
	p, err := registry.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%s participant: %w", side, err)
	}
	return participant.New(side, p, model), nil
}

// BuildParticipants resolves both configured participants.
func (c *Config) BuildParticipants(registry *provider.Registry) (aff, neg *participant.Agent, err error) {
	aff, err = BuildParticipant(registry, c.Participants.Affirmative, core.SideAffirmative)
	if err != nil {
		return nil, nil, err
	}
	neg, err = BuildParticipant(registry, c.Participants.Negative, core.SideNegative)
	if err != nil {
		return nil, nil, err
	}
	return aff, neg, nil
}

// EngineOptions translates the debate section into engine options.
func (c *Config) EngineOptions(logger *slog.Logger) []engine.Option {
	opts := []engine.Option{
		engine.WithWordLimits(c.Debate.WordLimit, c.Debate.SummaryWordLimit),
		engine.WithCallTimeout(c.Debate.CallTimeout),
	}
	if s := c.Style(); s != nil {
		opts = append(opts, engine.WithStyle(s))
	}
	if logger != nil {
		opts = append(opts, engine.WithLogger(logger))
	}
	return opts
}

// NewEngine builds an engine for the configured participants.
func (c *Config) NewEngine(registry *provider.Registry, logger *slog.Logger) (*engine.Engine, error) {
	aff, neg, err := c.BuildParticipants(registry)
	if err != nil {
		return nil, err
	}
	return engine.New(aff, neg, c.EngineOptions(logger)...)
}
