// Package sanitize reduces model output to plain text for display.
package sanitize

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/alienxp03/arena/internal/core"
)

var (
	strict   = bluemonday.StrictPolicy()
	markdown = regexp.MustCompile("\\*\\*|__|\\*|_|`|#")
)

// Text removes HTML tags, decodes entities and strips markdown control
// characters (**, __, *, _, backtick, #).
func Text(s string) string {
	s = strict.Sanitize(s)
	s = html.UnescapeString(strings.TrimSpace(s))
	return markdown.ReplaceAllString(s, "")
}

// Result returns a sanitized copy of r. A nil result stays nil.
func Result(r *core.Result) *core.Result {
	if r == nil {
		return nil
	}
	out := &core.Result{
		Topic:      r.Topic,
		Transcript: make(core.Transcript, len(r.Transcript)),
		Summary:    Text(r.Summary),
	}
	for i, turn := range r.Transcript {
		turn.Text = Text(turn.Text)
		out.Transcript[i] = turn
	}
	return out
}
