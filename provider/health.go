package provider

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// HealthCheckPrompt is the prompt sent to providers for health checks.
	HealthCheckPrompt = "1+1? One digit answer only"

	// HealthCheckTimeout bounds a single health probe.
	HealthCheckTimeout = 30 * time.Second
)

// HealthStatus is the outcome of a provider health probe.
type HealthStatus struct {
	Available    bool          `json:"available"`
	ResponseTime time.Duration `json:"response_time"`
	Error        string        `json:"error,omitempty"`
	CheckedAt    time.Time     `json:"checked_at"`
}

// HealthChecker is implemented by providers that can probe themselves.
type HealthChecker interface {
	HealthCheck(ctx context.Context) HealthStatus
}

// ExecuteFunc is the signature of Provider.Execute.
type ExecuteFunc func(context.Context, *Request) (*Response, error)

// HealthCheckWithExecute asks the backend a trivial arithmetic question and
// checks the answer.
func HealthCheckWithExecute(ctx context.Context, model string, exec ExecuteFunc) HealthStatus {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()

	resp, err := exec(ctx, &Request{Prompt: HealthCheckPrompt, Model: model})
	status := HealthStatus{ResponseTime: time.Since(start), CheckedAt: time.Now()}

	switch {
	case err != nil:
		status.Error = err.Error()
	case resp == nil:
		status.Error = "empty response"
	default:
		if err := validateHealthResponse(resp.Content); err != nil {
			status.Error = err.Error()
		} else {
			status.Available = true
		}
	}
	return status
}

// Check probes p, using its own HealthCheck when it has one.
func Check(ctx context.Context, p Provider) HealthStatus {
	if hc, ok := p.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	if !p.Available() {
		return HealthStatus{Error: ErrUnavailable.Error(), CheckedAt: time.Now()}
	}
	return HealthCheckWithExecute(ctx, "", p.Execute)
}

func validateHealthResponse(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "2" {
		return nil
	}
	if trimmed == "" {
		return fmt.Errorf("unexpected response: empty")
	}
	if len(trimmed) > 120 {
		trimmed = trimmed[:120] + "..."
	}
	return fmt.Errorf("unexpected response: %q", trimmed)
}
