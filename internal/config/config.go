// Package config handles application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alienxp03/arena/internal/core"
	"github.com/alienxp03/arena/internal/engine"
	"github.com/alienxp03/arena/internal/style"
)

// Config represents the application configuration.
type Config struct {
	Debate       DebateConfig              `yaml:"debate"`
	Participants ParticipantsConfig        `yaml:"participants"`
	Providers    map[string]ProviderConfig `yaml:"providers"`
	Server       ServerConfig              `yaml:"server,omitempty"`
	Styles       []style.Style             `yaml:"styles,omitempty"`
}

// DebateConfig holds debate defaults.
type DebateConfig struct {
	Rounds           int           `yaml:"rounds"`
	Style            string        `yaml:"style"`
	CallTimeout      time.Duration `yaml:"call_timeout"`
	WordLimit        int           `yaml:"word_limit,omitempty"`
	SummaryWordLimit int           `yaml:"summary_word_limit,omitempty"`
}

// ParticipantsConfig names the backend of each side as provider[/model].
type ParticipantsConfig struct {
	Affirmative string `yaml:"affirmative"`
	Negative    string `yaml:"negative"`
}

// ServerConfig holds web server settings.
type ServerConfig struct {
	Port          int           `yaml:"port"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	DebateTimeout time.Duration `yaml:"debate_timeout"`
	DB            string        `yaml:"db"` // empty keeps sessions in memory
	MaxUploadMB   int           `yaml:"max_upload_mb"`
}

// ProviderConfig holds provider-specific settings.
type ProviderConfig struct {
	Command      string        `yaml:"command,omitempty"`
	Args         []string      `yaml:"args,omitempty"`
	APIKey       string        `yaml:"api_key,omitempty"`
	DefaultModel string        `yaml:"default_model,omitempty"`
	Models       []string      `yaml:"models,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
	MaxRetries   int           `yaml:"max_retries,omitempty"`
	Enabled      bool          `yaml:"enabled"`
}

// Built-in provider defaults.
var defaultProviders = map[string]ProviderConfig{
	"genai": {
		DefaultModel: "gemini-2.0-flash",
		Models:       []string{"gemini-2.0-flash", "gemini-2.5-flash", "gemini-2.5-pro"},
	},
	"claude": {
		Command:      "claude",
		Args:         []string{"--print"},
		DefaultModel: "sonnet",
		Models:       []string{"opus", "sonnet", "haiku"},
	},
	"gemini": {
		Command:      "gemini",
		DefaultModel: "gemini-2.5-flash",
		Models:       []string{"gemini-2.5-pro", "gemini-2.5-flash"},
	},
	"codex": {
		Command:      "codex",
		DefaultModel: "gpt-5",
		Models:       []string{"gpt-5", "gpt-5-mini"},
	},
	"qwen": {
		Command:      "qwen",
		DefaultModel: "qwen3-coder-plus",
	},
	"opencode": {
		Command:      "opencode",
		DefaultModel: "opencode/grok-code",
	},
	"mock": {
		DefaultModel: "mock-v1",
		Models:       []string{"mock-v1"},
	},
}

// Default returns the default configuration.
func Default() *Config {
	providers := make(map[string]ProviderConfig, len(defaultProviders))
	for name, p := range defaultProviders {
		p.Timeout = 5 * time.Minute
		p.MaxRetries = 2
		p.Enabled = true
		providers[name] = p
	}
	mock := providers["mock"]
	mock.Timeout = time.Minute
	providers["mock"] = mock

	return &Config{
		Debate: DebateConfig{
			Rounds:           core.DefaultRounds,
			Style:            "classic",
			CallTimeout:      engine.DefaultCallTimeout,
			WordLimit:        style.DefaultWordLimit,
			SummaryWordLimit: style.DefaultSummaryWordLimit,
		},
		Participants: ParticipantsConfig{
			Affirmative: "codex",
			Negative:    "genai",
		},
		Server: ServerConfig{
			Port:          8182,
			SessionTTL:    2 * time.Hour,
			DebateTimeout: 15 * time.Minute,
			MaxUploadMB:   32,
		},
		Providers: providers,
	}
}

// Load loads configuration from the default path and applies .env and
// environment overrides.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from a specific path. A missing file is not
// an error.
func LoadFrom(path string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	ApplyEnvOverrides(cfg, Environment(".env"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile merges the YAML file at path over Default, without environment
// overrides.
func ReadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// A partial providers section must not hide the built-ins.
	for name, p := range Default().Providers {
		if _, exists := cfg.Providers[name]; !exists {
			cfg.Providers[name] = p
		}
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail at debate time.
func (c *Config) Validate() error {
	if c.Debate.Rounds < 0 {
		return fmt.Errorf("debate.rounds must not be negative: %d", c.Debate.Rounds)
	}
	if c.Style() == nil {
		return fmt.Errorf("unknown debate style: %s", c.Debate.Style)
	}
	for side, spec := range map[string]string{"affirmative": c.Participants.Affirmative, "negative": c.Participants.Negative} {
		if _, _, err := core.ParseParticipantSpec(spec); err != nil {
			return fmt.Errorf("participants.%s: %w", side, err)
		}
	}
	return nil
}

// Style resolves the configured debate style, custom styles first.
func (c *Config) Style() *style.Style {
	return style.Lookup(c.Debate.Style, c.Styles)
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo saves the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Redacted returns a copy safe to print, with API keys masked.
func (c *Config) Redacted() *Config {
	out := *c
	out.Providers = make(map[string]ProviderConfig, len(c.Providers))
	for name, p := range c.Providers {
		if p.APIKey != "" {
			p.APIKey = "********"
		}
		out.Providers[name] = p
	}
	return &out
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "arena.yaml"
	}
	return filepath.Join(home, ".arena", "config.yaml")
}

// GenerateExample returns an annotated example configuration file.
func GenerateExample() string {
	return `# arena configuration file
# Place this file at ~/.arena/config.yaml

debate:
  rounds: 3                 # Rounds per debate (each round: affirmative, then negative)
  style: classic            # classic | formal | any custom style id below
  call_timeout: 2m          # Upper bound for a single model call
  word_limit: 100
  summary_word_limit: 200

participants:
  affirmative: codex                  # provider[/model]
  negative: genai/gemini-2.0-flash

server:
  port: 8182
  session_ttl: 2h
  debate_timeout: 15m
  db: ""                    # empty keeps sessions in memory only
  max_upload_mb: 32

providers:
  genai:
    api_key: ""             # or set GEMINI_API_KEY
    default_model: gemini-2.0-flash
    timeout: 5m
    enabled: true

  claude:
    command: claude
    args: ["--print"]
    default_model: sonnet
    timeout: 5m
    max_retries: 2
    enabled: true

  codex:
    command: codex
    default_model: gpt-5
    timeout: 5m
    enabled: true

  gemini:
    command: gemini
    timeout: 5m
    enabled: true

# Custom styles (optional)
styles:
  - id: socratic
    name: Socratic
    description: Each turn ends with a question for the opponent
    opening_prompt: |
      Argue {{.Stance}} {{.Topic}} in at most {{.WordLimit}} words and end with a question for the {{.Opponent}}.
      Background: {{.Document}}
    rebuttal_prompt: |
      Answer the latest argument from the {{.Opponent}}, keep arguing {{.Stance}} {{.Topic}},
      and end with a new question. At most {{.WordLimit}} words.
    summary_prompt: |
      Summarize the exchange about {{.Topic}} and give a balanced conclusion in {{.WordLimit}} words.
`
}
