package opencode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alienxp03/arena/provider"
)

func TestParseEvents(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		wantMeta *provider.Metadata
	}{
		{
			name: "chunks and usage",
			input: `{"type":"text","sessionID":"s1","part":{"type":"text","text":"Cars "}}
{"type":"text","sessionID":"s1","part":{"type":"text","text":"pollute."}}
{"type":"step_finish","sessionID":"s1","part":{"type":"finish","reason":"stop","tokens":{"input":30,"output":12}}}`,
			want: "Cars pollute.",
			wantMeta: &provider.Metadata{
				InputTokens: 30, OutputTokens: 12, TotalTokens: 42,
				Duration: time.Second, StopReason: "stop", SessionID: "s1",
			},
		},
		{
			name: "usage summed over steps and blank lines skipped",
			input: `{"type":"text","sessionID":"s2","part":{"type":"text","text":"One."}}

{"type":"step_finish","sessionID":"s2","part":{"type":"finish","reason":"tool","tokens":{"input":10,"output":5}}}
not json
{"type":"step_finish","sessionID":"s2","part":{"type":"finish","reason":"stop","tokens":{"input":4,"output":1}}}`,
			want: "One.",
			wantMeta: &provider.Metadata{
				InputTokens: 14, OutputTokens: 6, TotalTokens: 20,
				Duration: time.Second, StopReason: "stop", SessionID: "s2",
			},
		},
		{
			name:  "plain text falls back to raw output",
			input: "  just words \n",
			want:  "just words",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ParseEvents(tt.input, time.Second)
			require.NotNil(t, resp)
			assert.Equal(t, tt.want, resp.Content)
			assert.Equal(t, tt.wantMeta, resp.Metadata)
			assert.Equal(t, tt.input, resp.Raw)
		})
	}
}

func TestExecuteMissingExecutable(t *testing.T) {
	p := New(provider.Config{Name: "opencode", Command: "arena-no-such-opencode"})

	_, err := p.Execute(t.Context(), &provider.Request{Prompt: "hi"})
	assert.ErrorIs(t, err, provider.ErrUnavailable)
	assert.False(t, p.Available())
}
