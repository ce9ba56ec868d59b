package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentReadsDotEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := `
# Comment
ARENA_TEST_KEY1=value1
ARENA_TEST_KEY2="value 2"
ARENA_TEST_OVERRIDE=from-file
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0644))
	t.Setenv("ARENA_TEST_OVERRIDE", "from-process")

	env := Environment(envFile)

	assert.Equal(t, "value1", env["ARENA_TEST_KEY1"])
	assert.Equal(t, "value 2", env["ARENA_TEST_KEY2"])
	assert.Equal(t, "from-process", env["ARENA_TEST_OVERRIDE"])
}

func TestEnvironmentMissingFile(t *testing.T) {
	t.Setenv("ARENA_TEST_ONLY_PROCESS", "yes")

	env := Environment(filepath.Join(t.TempDir(), "missing.env"))
	assert.Equal(t, "yes", env["ARENA_TEST_ONLY_PROCESS"])
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()

	env := map[string]string{
		"SERVER_PORT":             "9090",
		"ARENA_DB":                "/tmp/arena.db",
		"ARENA_ROUNDS":            "5",
		"ARENA_STYLE":             "formal",
		"ARENA_AFFIRMATIVE":       "claude/opus",
		"ARENA_NEGATIVE":          "mock",
		"ARENA_CALL_TIMEOUT":      "45s",
		"GEMINI_API_KEY":          "secret",
		"PROVIDER_CLAUDE_ENABLED": "false",
		"PROVIDER_TIMEOUT":        "300",
	}
	ApplyEnvOverrides(cfg, env)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/arena.db", cfg.Server.DB)
	assert.Equal(t, 5, cfg.Debate.Rounds)
	assert.Equal(t, "formal", cfg.Debate.Style)
	assert.Equal(t, "claude/opus", cfg.Participants.Affirmative)
	assert.Equal(t, "mock", cfg.Participants.Negative)
	assert.Equal(t, 45*time.Second, cfg.Debate.CallTimeout)
	assert.Equal(t, "secret", cfg.Providers["genai"].APIKey)
	assert.False(t, cfg.Providers["claude"].Enabled)
	assert.True(t, cfg.Providers["gemini"].Enabled)
	assert.Equal(t, 300*time.Second, cfg.Providers["gemini"].Timeout)
}

func TestApplyEnvOverridesKeepsConfiguredAPIKey(t *testing.T) {
	cfg := Default()
	p := cfg.Providers["genai"]
	p.APIKey = "from-file"
	cfg.Providers["genai"] = p

	ApplyEnvOverrides(cfg, map[string]string{"GEMINI_API_KEY": "from-env"})

	assert.Equal(t, "from-file", cfg.Providers["genai"].APIKey)
}

func TestApplyEnvOverridesIgnoresGarbage(t *testing.T) {
	cfg := Default()

	ApplyEnvOverrides(cfg, map[string]string{
		"SERVER_PORT":      "not-a-port",
		"ARENA_ROUNDS":     "many",
		"PROVIDER_TIMEOUT": "soon",
	})

	assert.Equal(t, 8182, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Debate.Rounds)
	assert.Equal(t, 5*time.Minute, cfg.Providers["claude"].Timeout)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"", 0, false},
		{"90", 90 * time.Second, true},
		{"1m30s", 90 * time.Second, true},
		{"later", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseDuration(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
