package core

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID returns a new random identifier.
func GenerateID() string {
	return uuid.NewString()
}

// ShortID returns the first segment of an ID for display.
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ParseParticipantSpec parses a participant specification string.
// Format: provider[/model]
//
// Examples:
//   - "codex" -> ("codex", "")
//   - "genai/gemini-2.0-flash" -> ("genai", "gemini-2.0-flash")
//   - "opencode/google/gemini-3-flash" -> ("opencode", "google/gemini-3-flash")
func ParseParticipantSpec(spec string) (providerName, model string, err error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", "", errEmptySpec
	}

	parts := strings.SplitN(spec, "/", 2)
	providerName = strings.TrimSpace(parts[0])
	if providerName == "" {
		return "", "", &SpecError{Spec: spec}
	}
	if len(parts) == 2 {
		model = strings.TrimSpace(parts[1])
	}
	return providerName, model, nil
}

var errEmptySpec = &SpecError{}

// SpecError reports a malformed participant specification.
type SpecError struct {
	Spec string
}

func (e *SpecError) Error() string {
	if e.Spec == "" {
		return "participant spec cannot be empty"
	}
	return "provider cannot be empty in spec: " + e.Spec
}
