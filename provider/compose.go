package provider

import (
	"strings"
)

// ComposePrompt folds the request history into a single prompt for
// backends that only accept one block of text.
func ComposePrompt(req *Request) string {
	if len(req.History) == 0 {
		return req.Prompt
	}

	var b strings.Builder
	b.WriteString("Debate history:\n")
	for _, m := range req.History {
		speaker := m.Speaker
		if speaker == "" {
			speaker = string(m.Role)
		}
		b.WriteString("[")
		b.WriteString(speaker)
		b.WriteString("] ")
		b.WriteString(strings.TrimSpace(m.Content))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(req.Prompt)
	return b.String()
}
