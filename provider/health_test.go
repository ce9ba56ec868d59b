package provider

import (
	"context"
	"errors"
	"testing"
)

func TestHealthCheckWithExecuteSuccess(t *testing.T) {
	var prompt string
	status := HealthCheckWithExecute(context.Background(), "", func(ctx context.Context, req *Request) (*Response, error) {
		prompt = req.Prompt
		return &Response{Content: " 2\n"}, nil
	})

	if prompt != HealthCheckPrompt {
		t.Fatalf("expected prompt %q, got %q", HealthCheckPrompt, prompt)
	}
	if !status.Available {
		t.Fatalf("expected available=true, got false with error %q", status.Error)
	}
	if status.CheckedAt.IsZero() {
		t.Fatalf("expected CheckedAt to be set")
	}
}

func TestHealthCheckWithExecuteFailures(t *testing.T) {
	tests := []struct {
		name string
		exec ExecuteFunc
	}{
		{
			name: "invalid_response",
			exec: func(ctx context.Context, req *Request) (*Response, error) {
				return &Response{Content: "two"}, nil
			},
		},
		{
			name: "empty_response",
			exec: func(ctx context.Context, req *Request) (*Response, error) {
				return &Response{}, nil
			},
		},
		{
			name: "nil_response",
			exec: func(ctx context.Context, req *Request) (*Response, error) {
				return nil, nil
			},
		},
		{
			name: "error",
			exec: func(ctx context.Context, req *Request) (*Response, error) {
				return nil, errors.New("boom")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := HealthCheckWithExecute(context.Background(), "m", tt.exec)
			if status.Available {
				t.Fatalf("expected available=false")
			}
			if status.Error == "" {
				t.Fatalf("expected error message")
			}
		})
	}
}

func TestCheckUnavailableProvider(t *testing.T) {
	status := Check(context.Background(), &stubProvider{name: "off"})
	if status.Available {
		t.Fatalf("expected unavailable provider to fail the check")
	}
}
