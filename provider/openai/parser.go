package openai

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/alienxp03/arena/provider"
)

// Event is one line of Codex CLI --json output.
type Event struct {
	Type     string `json:"type"`
	ThreadID string `json:"thread_id,omitempty"`
	Item     *struct {
		Type string `json:"type"`
		Role string `json:"role,omitempty"`
		Text string `json:"text"`
	} `json:"item,omitempty"`
	Message *struct {
		Role    string `json:"role,omitempty"`
		Content string `json:"content,omitempty"`
	} `json:"message,omitempty"`
	Usage *struct {
		InputTokens       int `json:"input_tokens"`
		CachedInputTokens int `json:"cached_input_tokens,omitempty"`
		OutputTokens      int `json:"output_tokens"`
	} `json:"usage,omitempty"`
}

// legacyResponse is a single chat-completions style object.
type legacyResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

// ParseJSON converts Codex output to a response. JSONL event streams are
// tried first, then a single chat-completions object, then plain text.
func ParseJSON(data string, duration time.Duration) *provider.Response {
	if resp := parseEvents(data, duration); resp != nil {
		return resp
	}

	resp := &provider.Response{Raw: data}

	var legacy legacyResponse
	if err := json.Unmarshal([]byte(data), &legacy); err != nil || len(legacy.Choices) == 0 {
		resp.Content = data
		return resp
	}

	resp.Content = legacy.Choices[0].Message.Content
	resp.Metadata = &provider.Metadata{
		StopReason: legacy.Choices[0].FinishReason,
		Duration:   duration,
	}
	if legacy.Usage != nil {
		resp.Metadata.InputTokens = legacy.Usage.PromptTokens
		resp.Metadata.OutputTokens = legacy.Usage.CompletionTokens
		resp.Metadata.TotalTokens = legacy.Usage.TotalTokens
	}
	return resp
}

func parseEvents(data string, duration time.Duration) *provider.Response {
	resp := &provider.Response{Raw: data}
	meta := &provider.Metadata{Duration: duration}

	var messages []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil || ev.Type == "" {
			continue
		}

		switch {
		case ev.ThreadID != "":
			meta.SessionID = ev.ThreadID
		case ev.Item != nil && (ev.Item.Type == "agent_message" || ev.Item.Role == "assistant"):
			messages = append(messages, ev.Item.Text)
		case ev.Message != nil && ev.Message.Content != "":
			messages = append(messages, ev.Message.Content)
		}

		if ev.Usage != nil {
			meta.InputTokens = ev.Usage.InputTokens
			meta.OutputTokens = ev.Usage.OutputTokens
			meta.TotalTokens = ev.Usage.InputTokens + ev.Usage.OutputTokens
		}
	}

	if len(messages) == 0 {
		return nil
	}
	// The final agent message is the answer; earlier ones are progress notes.
	resp.Content = messages[len(messages)-1]
	resp.Metadata = meta
	return resp
}
