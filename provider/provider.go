// Package provider provides a reusable abstraction over language-model
// backends.
//
// Backends are either command-line tools (Claude, Gemini, Codex, ...) driven
// through BaseProvider, or API clients such as the genai subpackage. All of
// them accept a prompt plus the prior conversation and return a structured
// response.
package provider

import (
	"context"
	"time"
)

// Provider defines the interface for model backends.
type Provider interface {
	// Name returns the provider's unique identifier (e.g., "claude", "genai").
	Name() string

	// Available reports whether the backend can be used (CLI installed,
	// API key present).
	Available() bool

	// Execute sends a request to the provider and returns a structured response.
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// Role identifies who authored a history message from the point of view of
// the provider being called.
type Role string

const (
	// RoleUser is an instruction or another speaker's contribution.
	RoleUser Role = "user"

	// RoleAssistant is a previous answer of the calling speaker.
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation passed along with a request.
type Message struct {
	Role Role `json:"role"`

	// Speaker labels the message author (e.g., "Affirmative").
	Speaker string `json:"speaker,omitempty"`

	Content string `json:"content"`
}

// Request represents a generation request to a provider.
type Request struct {
	// Prompt is the instruction for this call.
	Prompt string

	// History is the conversation preceding Prompt, oldest first.
	History []Message

	// Model is the specific model to use. If empty, the provider's default
	// model is used.
	Model string

	// WorkingDir is the directory to execute a CLI command in.
	WorkingDir string

	// Args are additional command-line arguments for CLI providers.
	Args []string

	// Stdin is written to a CLI provider's standard input. Prompts travel
	// here rather than in Args, which the kernel caps per argument.
	Stdin string
}

// Response represents a provider's response with metadata.
type Response struct {
	// Content is the generated text.
	Content string `json:"content"`

	// Model is the model that was used for this response.
	Model string `json:"model,omitempty"`

	// Provider is the name of the provider that generated this response.
	Provider string `json:"provider,omitempty"`

	// Metadata contains usage statistics.
	Metadata *Metadata `json:"metadata,omitempty"`

	// Raw is the unprocessed output (for debugging).
	Raw string `json:"-"`
}

// Metadata contains usage statistics and additional response information.
type Metadata struct {
	InputTokens  int           `json:"input_tokens,omitempty"`
	OutputTokens int           `json:"output_tokens,omitempty"`
	TotalTokens  int           `json:"total_tokens,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	StopReason   string        `json:"stop_reason,omitempty"`
	SessionID    string        `json:"session_id,omitempty"`
}

// Config holds configuration for creating a provider.
type Config struct {
	// Name is the unique identifier for this provider.
	Name string

	// DisplayName is a human-friendly name. If empty, Name is used.
	DisplayName string

	// Command is the CLI executable name (CLI providers only).
	Command string

	// Args are default arguments to pass to the CLI command.
	Args []string

	// APIKey authenticates API-backed providers.
	APIKey string

	// DefaultModel is the model to use when Request.Model is empty.
	DefaultModel string

	// Models is a list of available models for this provider.
	Models []string

	// Timeout is the maximum duration for a request. Default: 5 minutes.
	Timeout time.Duration

	// MaxRetries is the number of retries for transient failures.
	// Negative values select the default (2).
	MaxRetries int
}
