package gemini

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantContent string
		wantModel   string
		wantInput   int
		wantOutput  int
		wantTotal   int
		wantStop    string
	}{
		{
			name: "cli_stats",
			input: `{"session_id":"e3ecf3fe","response":"Cities need cars less every year.",
				"stats":{"models":{"gemini-3-flash-preview":{"api":{"totalRequests":1},
				"tokens":{"input":6126,"prompt":6126,"candidates":6,"total":6346,"thoughts":214}}}}}`,
			wantContent: "Cities need cars less every year.",
			wantModel:   "gemini-3-flash-preview",
			wantInput:   6126,
			wantOutput:  6,
			wantTotal:   6346,
		},
		{
			name: "stats_across_models",
			input: `{"response":"ok","stats":{"models":{
				"b-model":{"tokens":{"prompt":10,"candidates":5,"total":15}},
				"a-model":{"tokens":{"prompt":20,"candidates":10,"total":30}}}}}`,
			wantContent: "ok",
			wantModel:   "a-model",
			wantInput:   30,
			wantOutput:  15,
			wantTotal:   45,
		},
		{
			name: "api_candidates",
			input: `{"candidates":[{"content":{"parts":[{"text":"Part one. "},{"text":"Part two."}]},"finishReason":"STOP"}],
				"usageMetadata":{"promptTokenCount":12,"candidatesTokenCount":4,"totalTokenCount":16}}`,
			wantContent: "Part one. Part two.",
			wantInput:   12,
			wantOutput:  4,
			wantTotal:   16,
			wantStop:    "STOP",
		},
		{
			name:        "plain_text",
			input:       "just text",
			wantContent: "just text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ParseJSON(tt.input, time.Second)

			assert.Equal(t, tt.wantContent, resp.Content)
			assert.Equal(t, tt.wantModel, resp.Model)
			if tt.wantTotal == 0 && tt.wantStop == "" {
				return
			}
			require.NotNil(t, resp.Metadata)
			assert.Equal(t, tt.wantInput, resp.Metadata.InputTokens)
			assert.Equal(t, tt.wantOutput, resp.Metadata.OutputTokens)
			assert.Equal(t, tt.wantTotal, resp.Metadata.TotalTokens)
			assert.Equal(t, tt.wantStop, resp.Metadata.StopReason)
			assert.Equal(t, time.Second, resp.Metadata.Duration)
		})
	}
}
