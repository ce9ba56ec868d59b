package opencode

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/alienxp03/arena/provider"
)

// event is one line of opencode's JSON event stream.
type event struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionID"`
	Part      *struct {
		Type   string `json:"type"`
		Text   string `json:"text,omitempty"`
		Reason string `json:"reason,omitempty"`
		Tokens *struct {
			Input  int `json:"input"`
			Output int `json:"output"`
		} `json:"tokens,omitempty"`
	} `json:"part,omitempty"`
}

// ParseEvents concatenates the text parts of an opencode event stream and
// takes usage from step_finish events, summed across steps. Output without
// any text events is returned verbatim.
func ParseEvents(data string, duration time.Duration) *provider.Response {
	var (
		content strings.Builder
		meta    *provider.Metadata
	)

	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var ev event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			slog.Debug("Skipping non-JSON opencode line", "error", err)
			continue
		}
		if ev.Part == nil {
			continue
		}

		switch ev.Type {
		case "text":
			content.WriteString(ev.Part.Text)
		case "step_finish":
			if meta == nil {
				meta = &provider.Metadata{Duration: duration}
			}
			meta.StopReason = ev.Part.Reason
			meta.SessionID = ev.SessionID
			if t := ev.Part.Tokens; t != nil {
				meta.InputTokens += t.Input
				meta.OutputTokens += t.Output
				meta.TotalTokens = meta.InputTokens + meta.OutputTokens
			}
		}
	}

	if content.Len() == 0 {
		return &provider.Response{Content: strings.TrimSpace(data), Raw: data}
	}
	return &provider.Response{
		Content:  strings.TrimSpace(content.String()),
		Metadata: meta,
		Raw:      data,
	}
}
