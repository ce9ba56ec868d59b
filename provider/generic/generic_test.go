package generic

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alienxp03/arena/provider"
)

func TestExecuteWithCat(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}

	p := New(provider.Config{Name: "cat", Command: "cat", MaxRetries: 0})
	p.ModelFlag = ""
	require.True(t, p.Available())

	resp, err := p.Execute(context.Background(), &provider.Request{
		Prompt: "rebut",
		History: []provider.Message{
			{Role: provider.RoleAssistant, Speaker: "Negative", Content: "no"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Debate history:\n[Negative] no\n\nrebut", resp.Content)
	assert.Equal(t, "cat", resp.Provider)
	require.NotNil(t, resp.Metadata)
}

// A document-grounded prompt easily exceeds the 128KB the kernel allows for a
// single argv element; it must reach the CLI intact.
func TestExecuteLargePrompt(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}

	p := New(provider.Config{Name: "cat", Command: "cat", MaxRetries: 0})
	p.ModelFlag = ""

	document := strings.Repeat("evidence line ", 16*1024)
	require.Greater(t, len(document), 200*1024)

	req := &provider.Request{
		Prompt: "Reference material:\n" + document + "\nOpen the debate.",
		History: []provider.Message{
			{Role: provider.RoleUser, Speaker: "Moderator", Content: "Topic: solar"},
		},
	}

	resp, err := p.Execute(context.Background(), req)
	require.NoError(t, err)

	want := strings.TrimSpace(provider.ComposePrompt(req))
	assert.Equal(t, len(want), len(resp.Content))
	assert.Equal(t, want, resp.Content)
}

func TestExecuteMissingCommand(t *testing.T) {
	p := New(provider.Config{Name: "ghost", Command: "arena-no-such-tool", MaxRetries: 0})
	assert.False(t, p.Available())

	_, err := p.Execute(context.Background(), &provider.Request{Prompt: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrUnavailable)

	status := p.HealthCheck(context.Background())
	assert.False(t, status.Available)
}
