package qwen

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/alienxp03/arena/provider"
)

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens,omitempty"`
}

func (u *usage) metadata(duration time.Duration) *provider.Metadata {
	total := u.TotalTokens
	if total == 0 {
		total = u.InputTokens + u.OutputTokens
	}
	return &provider.Metadata{
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		TotalTokens:  total,
		Duration:     duration,
	}
}

// event is one element of the event array printed by current qwen releases.
type event struct {
	Type    string `json:"type"`
	Result  string `json:"result,omitempty"`
	Message *struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message,omitempty"`
	Usage *usage `json:"usage,omitempty"`
}

// legacyResponse is the single object printed by older releases.
type legacyResponse struct {
	Output struct {
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason,omitempty"`
	} `json:"output"`
	Text  string `json:"text,omitempty"`
	Usage *usage `json:"usage,omitempty"`
}

// ParseJSON reads qwen output in either the event array or the legacy
// object format. Anything else is returned as plain text.
func ParseJSON(data string, duration time.Duration) *provider.Response {
	if resp := parseEvents(data, duration); resp != nil {
		return resp
	}

	var legacy legacyResponse
	if err := json.Unmarshal([]byte(data), &legacy); err != nil {
		return &provider.Response{Content: strings.TrimSpace(data), Raw: data}
	}

	resp := &provider.Response{Raw: data, Content: legacy.Output.Text}
	if resp.Content == "" {
		resp.Content = legacy.Text
	}
	if legacy.Usage != nil {
		resp.Metadata = legacy.Usage.metadata(duration)
	}
	if legacy.Output.FinishReason != "" {
		if resp.Metadata == nil {
			resp.Metadata = &provider.Metadata{Duration: duration}
		}
		resp.Metadata.StopReason = legacy.Output.FinishReason
	}
	return resp
}

// parseEvents prefers the final result event and falls back to the
// concatenated assistant text. It returns nil when data is not an event
// array or carries no text.
func parseEvents(data string, duration time.Duration) *provider.Response {
	var events []event
	if err := json.Unmarshal([]byte(data), &events); err != nil || len(events) == 0 {
		return nil
	}

	var (
		result    string
		assistant strings.Builder
		meta      *provider.Metadata
	)
	for _, ev := range events {
		switch ev.Type {
		case "result":
			result = ev.Result
			if ev.Usage != nil {
				meta = ev.Usage.metadata(duration)
			}
		case "assistant":
			if ev.Message == nil {
				continue
			}
			for _, c := range ev.Message.Content {
				if c.Type == "text" {
					assistant.WriteString(c.Text)
				}
			}
			if meta == nil && ev.Usage != nil {
				meta = ev.Usage.metadata(duration)
			}
		}
	}

	content := result
	if content == "" {
		content = assistant.String()
	}
	if content == "" {
		return nil
	}
	return &provider.Response{Content: content, Metadata: meta, Raw: data}
}
