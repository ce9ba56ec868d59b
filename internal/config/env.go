package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment returns the variables from the .env file at path overlaid
// with the process environment, which wins on conflicts.
func Environment(path string) map[string]string {
	env, err := godotenv.Read(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read env file", "path", path, "error", err)
		}
		env = make(map[string]string)
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// ApplyEnvOverrides updates the configuration from environment variables.
func ApplyEnvOverrides(cfg *Config, env map[string]string) {
	if val, ok := env["SERVER_PORT"]; ok {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = port
		}
	}
	if val, ok := env["ARENA_DB"]; ok {
		cfg.Server.DB = val
	}

	if val, ok := env["ARENA_ROUNDS"]; ok {
		if rounds, err := strconv.Atoi(val); err == nil {
			cfg.Debate.Rounds = rounds
		}
	}
	if val, ok := env["ARENA_STYLE"]; ok && val != "" {
		cfg.Debate.Style = val
	}
	if val, ok := env["ARENA_AFFIRMATIVE"]; ok && val != "" {
		cfg.Participants.Affirmative = val
	}
	if val, ok := env["ARENA_NEGATIVE"]; ok && val != "" {
		cfg.Participants.Negative = val
	}
	if val, ok := env["ARENA_CALL_TIMEOUT"]; ok {
		if d, ok := parseDuration(val); ok {
			cfg.Debate.CallTimeout = d
		}
	}

	if val, ok := env["GEMINI_API_KEY"]; ok && val != "" {
		if p, exists := cfg.Providers["genai"]; exists && p.APIKey == "" {
			p.APIKey = val
			cfg.Providers["genai"] = p
		}
	}

	timeout, hasTimeout := parseDuration(env["PROVIDER_TIMEOUT"])
	for name, p := range cfg.Providers {
		key := fmt.Sprintf("PROVIDER_%s_ENABLED", strings.ToUpper(name))
		if val, ok := env[key]; ok {
			if enabled, err := strconv.ParseBool(val); err == nil {
				p.Enabled = enabled
			}
		}
		if hasTimeout {
			p.Timeout = timeout
		}
		cfg.Providers[name] = p
	}
}

// parseDuration accepts Go durations ("90s") or bare seconds ("90").
func parseDuration(val string) (time.Duration, bool) {
	if val == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(val); err == nil {
		return time.Duration(seconds) * time.Second, true
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d, true
	}
	return 0, false
}
