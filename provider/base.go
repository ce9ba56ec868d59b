package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const (
	// MaxOutputSize is the maximum size of CLI output (10MB).
	MaxOutputSize = 10 * 1024 * 1024

	// DefaultTimeout is the default timeout for a single request.
	DefaultTimeout = 5 * time.Minute

	// DefaultMaxRetries is used when Config.MaxRetries is negative.
	DefaultMaxRetries = 2
)

// BaseProvider provides common functionality for CLI-based providers.
// Specific providers embed it to inherit command execution and retries.
type BaseProvider struct {
	name         string
	displayName  string
	command      string
	args         []string
	defaultModel string
	models       []string
	timeout      time.Duration
	maxRetries   int

	// backoff returns the wait before the given retry attempt (1-based).
	backoff func(attempt int) time.Duration
}

// NewBaseProvider creates a new base provider from configuration.
func NewBaseProvider(cfg Config) BaseProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	displayName := cfg.DisplayName
	if displayName == "" {
		displayName = cfg.Name
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}

	return BaseProvider{
		name:         cfg.Name,
		displayName:  displayName,
		command:      cfg.Command,
		args:         cfg.Args,
		defaultModel: cfg.DefaultModel,
		models:       cfg.Models,
		timeout:      timeout,
		maxRetries:   maxRetries,
		backoff:      exponentialBackoff,
	}
}

func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

// Name returns the provider identifier.
func (p *BaseProvider) Name() string { return p.name }

// DisplayName returns the human-friendly name.
func (p *BaseProvider) DisplayName() string { return p.displayName }

// Models returns available models.
func (p *BaseProvider) Models() []string { return p.models }

// DefaultModel returns the default model.
func (p *BaseProvider) DefaultModel() string { return p.defaultModel }

// Timeout returns the configured timeout.
func (p *BaseProvider) Timeout() time.Duration { return p.timeout }

// Available checks if the CLI tool is installed and accessible.
func (p *BaseProvider) Available() bool {
	if p.command == "" {
		return false
	}
	_, err := exec.LookPath(p.command)
	return err == nil
}

// ValidateExecutable returns an error if the CLI is not on PATH.
func (p *BaseProvider) ValidateExecutable() error {
	if _, err := exec.LookPath(p.command); err != nil {
		return &CLIError{
			Provider: p.name,
			Message:  fmt.Sprintf("executable '%s' not found in PATH", p.command),
			Err:      errors.Join(ErrUnavailable, err),
		}
	}
	return nil
}

// limitedWriter wraps an io.Writer and limits total bytes written.
type limitedWriter struct {
	w       io.Writer
	n       int64
	limit   int64
	limited bool
}

func newLimitedWriter(w io.Writer, limit int64) *limitedWriter {
	return &limitedWriter{w: w, limit: limit}
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if l.n >= l.limit {
		l.limited = true
		return len(p), nil
	}

	written := len(p)
	if remaining := l.limit - l.n; int64(len(p)) > remaining {
		p = p[:remaining]
		l.limited = true
	}

	n, err := l.w.Write(p)
	l.n += int64(n)
	if err != nil {
		return n, err
	}
	return written, nil
}

// executeOnce runs the CLI command once with the request's arguments.
func (p *BaseProvider) executeOnce(ctx context.Context, req *Request) (string, error) {
	if err := p.ValidateExecutable(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	allArgs := append([]string{}, p.args...)
	allArgs = append(allArgs, req.Args...)

	slog.Debug("Executing CLI command",
		"provider", p.name,
		"command", p.command,
		"arg_count", len(allArgs),
		"dir", req.WorkingDir,
	)

	cmd := exec.CommandContext(ctx, p.command, allArgs...)
	if req.WorkingDir != "" {
		cmd.Dir = req.WorkingDir
	}
	if req.Stdin != "" {
		cmd.Stdin = strings.NewReader(req.Stdin)
	}

	var stdout, stderr bytes.Buffer
	stdoutLimited := newLimitedWriter(&stdout, MaxOutputSize)
	stderrLimited := newLimitedWriter(&stderr, MaxOutputSize)
	cmd.Stdout = stdoutLimited
	cmd.Stderr = stderrLimited

	if err := cmd.Run(); err != nil {
		slog.Error("CLI command failed",
			"provider", p.name,
			"error", err,
			"stderr", stderr.String(),
		)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &CLIError{
				Provider: p.name,
				Message:  "command timed out",
				Err:      ctx.Err(),
			}
		}
		if stderr.Len() > 0 {
			msg := stderr.String()
			if stderrLimited.limited {
				msg += "\n... (output truncated)"
			}
			return "", &CLIError{Provider: p.name, Message: msg, Err: err}
		}
		return "", &CLIError{Provider: p.name, Message: "command failed", Err: err}
	}

	result := strings.TrimSpace(stdout.String())
	if stdoutLimited.limited {
		result += "\n... (output truncated at 10MB)"
	}
	slog.Debug("CLI command successful", "provider", p.name, "output_len", len(result))

	return result, nil
}

// ExecuteCommand runs the CLI command, retrying transient failures with
// exponential backoff.
func (p *BaseProvider) ExecuteCommand(ctx context.Context, req *Request) (string, error) {
	return p.retry(ctx, func(ctx context.Context) (string, error) {
		return p.executeOnce(ctx, req)
	})
}

func (p *BaseProvider) retry(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			wait := p.backoff(attempt)
			slog.Info("Retrying command after backoff",
				"provider", p.name,
				"attempt", attempt+1,
				"max_attempts", p.maxRetries+1,
				"backoff", wait,
			)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				slog.Info("Command succeeded after retry", "provider", p.name, "attempt", attempt+1)
			}
			return result, nil
		}
		lastErr = err

		if !IsRetriable(err) {
			return "", err
		}
		slog.Warn("Command failed, will retry",
			"provider", p.name,
			"attempt", attempt+1,
			"error", err,
		)
	}

	return "", fmt.Errorf("failed after %d attempts: %w", p.maxRetries+1, lastErr)
}

// IsRetriable reports whether an error is worth retrying.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var cliErr *CLIError
	if !errors.As(err, &cliErr) {
		return false
	}

	msg := strings.ToLower(cliErr.Message)
	for _, hint := range []string{"timeout", "timed out", "connection", "network", "temporary", "unavailable", "rate limit", "429", "503"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
