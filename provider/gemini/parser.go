package gemini

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/alienxp03/arena/provider"
)

type tokenStats struct {
	Prompt     int `json:"prompt"`
	Candidates int `json:"candidates"`
	Total      int `json:"total"`
}

// JSONResponse is the shape of `gemini --output-format json` output. The
// candidates/usageMetadata fields cover raw API payloads piped through.
type JSONResponse struct {
	Response string `json:"response,omitempty"`
	Stats    *struct {
		Models map[string]struct {
			Tokens *tokenStats `json:"tokens,omitempty"`
		} `json:"models,omitempty"`
	} `json:"stats,omitempty"`
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason,omitempty"`
	} `json:"candidates,omitempty"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// ParseJSON converts Gemini CLI output to a response. Output that is not
// JSON is returned verbatim.
func ParseJSON(data string, duration time.Duration) *provider.Response {
	resp := &provider.Response{Raw: data}

	var raw JSONResponse
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		resp.Content = data
		return resp
	}

	meta := &provider.Metadata{Duration: duration, SessionID: raw.SessionID}

	switch {
	case raw.Response != "":
		resp.Content = raw.Response
	case len(raw.Candidates) > 0:
		var b strings.Builder
		for _, part := range raw.Candidates[0].Content.Parts {
			b.WriteString(part.Text)
		}
		resp.Content = b.String()
		meta.StopReason = raw.Candidates[0].FinishReason
	}

	if raw.Stats != nil && len(raw.Stats.Models) > 0 {
		names := make([]string, 0, len(raw.Stats.Models))
		for name, stats := range raw.Stats.Models {
			names = append(names, name)
			if stats.Tokens != nil {
				meta.InputTokens += stats.Tokens.Prompt
				meta.OutputTokens += stats.Tokens.Candidates
				meta.TotalTokens += stats.Tokens.Total
			}
		}
		sort.Strings(names)
		resp.Model = names[0]
	} else if raw.UsageMetadata != nil {
		meta.InputTokens = raw.UsageMetadata.PromptTokenCount
		meta.OutputTokens = raw.UsageMetadata.CandidatesTokenCount
		meta.TotalTokens = raw.UsageMetadata.TotalTokenCount
	}

	resp.Metadata = meta
	return resp
}
