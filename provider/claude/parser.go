package claude

import (
	"encoding/json"
	"time"

	"github.com/alienxp03/arena/provider"
)

// JSONResponse is the shape of `claude --output-format json` output.
type JSONResponse struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`
	Model   string `json:"model,omitempty"`
	IsError bool   `json:"is_error,omitempty"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content,omitempty"`
	StopReason string `json:"stop_reason,omitempty"`
	Usage      *struct {
		InputTokens              int `json:"input_tokens"`
		OutputTokens             int `json:"output_tokens"`
		CacheCreationInputTokens int `json:"cache_creation_input_tokens,omitempty"`
		CacheReadInputTokens     int `json:"cache_read_input_tokens,omitempty"`
	} `json:"usage,omitempty"`
	Result     string `json:"result,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// ParseJSON converts Claude CLI output to a response. Output that is not
// JSON is returned verbatim as the content.
func ParseJSON(data string, duration time.Duration) *provider.Response {
	resp := &provider.Response{Raw: data}

	var raw JSONResponse
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		resp.Content = data
		return resp
	}
	resp.Model = raw.Model

	for _, c := range raw.Content {
		if c.Type == "text" {
			resp.Content += c.Text
		}
	}
	if resp.Content == "" {
		resp.Content = raw.Result
	}

	if raw.Usage != nil {
		input := raw.Usage.InputTokens + raw.Usage.CacheCreationInputTokens + raw.Usage.CacheReadInputTokens
		if raw.DurationMs > 0 {
			duration = time.Duration(raw.DurationMs) * time.Millisecond
		}
		resp.Metadata = &provider.Metadata{
			InputTokens:  input,
			OutputTokens: raw.Usage.OutputTokens,
			TotalTokens:  input + raw.Usage.OutputTokens,
			StopReason:   raw.StopReason,
			SessionID:    raw.SessionID,
			Duration:     duration,
		}
	} else if raw.StopReason != "" || raw.SessionID != "" {
		resp.Metadata = &provider.Metadata{
			StopReason: raw.StopReason,
			SessionID:  raw.SessionID,
			Duration:   duration,
		}
	}

	return resp
}
