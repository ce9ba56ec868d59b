// Package style defines the prompt templates that frame each debate turn.
package style

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/alienxp03/arena/internal/core"
)

const (
	// DefaultWordLimit bounds each debate turn.
	DefaultWordLimit = 100

	// DefaultSummaryWordLimit bounds the closing summary.
	DefaultSummaryWordLimit = 200
)

// Style is a set of prompt templates for one debate format.
//
// OpeningPrompt is used in the first round, RebuttalPrompt in every later
// round and SummaryPrompt once after the last round.
type Style struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Description    string `json:"description" yaml:"description"`
	OpeningPrompt  string `json:"opening_prompt" yaml:"opening_prompt"`
	RebuttalPrompt string `json:"rebuttal_prompt" yaml:"rebuttal_prompt"`
	SummaryPrompt  string `json:"summary_prompt" yaml:"summary_prompt"`
}

// DefaultStyles returns the built-in debate styles.
func DefaultStyles() []Style {
	return []Style{
		{
			ID:             "classic",
			Name:           "Classic",
			Description:    "Short positional openings followed by direct rebuttals",
			OpeningPrompt:  `You are arguing {{.Stance}} {{.Topic}}. Refer to the following background document: {{.Document}}. Be concise (within {{.WordLimit}} words).`,
			RebuttalPrompt: `Review the full debate history and respond to the latest argument from the {{.Opponent}}. Refer to {{.Document}} and attack points that might support the {{.OpponentSide}} side. Continue arguing {{.Stance}} {{.Topic}}. Be concise (within {{.WordLimit}} words).`,
			SummaryPrompt:  `Summarize the key points from both sides of this debate about {{.Topic}}, and provide a balanced conclusion. Be concise (within {{.WordLimit}} words).`,
		},
		{
			ID:          "formal",
			Name:        "Formal",
			Description: "Parliamentary wording with the same opening/rebuttal structure",
			OpeningPrompt: `You are the {{.Side}} speaker in a formal debate on the motion: "{{.Topic}}".
Argue {{.Stance}} the motion.
{{if .Document}}Ground your case in this background material:
---
{{.Document}}
---
{{end}}Deliver your opening speech in no more than {{.WordLimit}} words.`,
			RebuttalPrompt: `You are the {{.Side}} speaker in a formal debate on the motion: "{{.Topic}}".
Review the full debate history and answer the latest argument from the {{.Opponent}}.
{{if .Document}}Search your background material for points the {{.Opponent}} might rely on and turn them against their case:
---
{{.Document}}
---
{{end}}Keep arguing {{.Stance}} the motion, in no more than {{.WordLimit}} words.`,
			SummaryPrompt: `Act as a neutral chair. Summarize the key points made by both the Affirmative and the Negative on the motion "{{.Topic}}", then give a balanced conclusion in no more than {{.WordLimit}} words.`,
		},
	}
}

// Get returns a built-in style by ID.
func Get(id string) *Style {
	for _, s := range DefaultStyles() {
		if s.ID == id {
			return &s
		}
	}
	return nil
}

// Lookup returns a style by ID, checking custom styles before built-ins.
func Lookup(id string, custom []Style) *Style {
	for _, s := range custom {
		if s.ID == id {
			return &s
		}
	}
	return Get(id)
}

// List returns all built-in style IDs.
func List() []string {
	styles := DefaultStyles()
	ids := make([]string, len(styles))
	for i, s := range styles {
		ids[i] = s.ID
	}
	return ids
}

// Valid checks if a built-in style ID exists.
func Valid(id string) bool {
	return Get(id) != nil
}

// Default returns the default debate style.
func Default() *Style {
	return Get("classic")
}

// turnData is the template data for opening and rebuttal prompts.
type turnData struct {
	Topic        string
	Side         string // "Affirmative" / "Negative"
	Stance       string // "FOR" / "AGAINST"
	Opponent     string // "Negative" / "Affirmative"
	OpponentSide string // "negative" / "affirmative"
	Document     string
	WordLimit    int
}

type summaryData struct {
	Topic     string
	WordLimit int
}

// Builder renders the prompts of one style.
type Builder struct {
	opening          *template.Template
	rebuttal         *template.Template
	summary          *template.Template
	wordLimit        int
	summaryWordLimit int
}

// NewBuilder parses the style's templates. Zero limits fall back to the
// defaults.
func NewBuilder(s *Style, wordLimit, summaryWordLimit int) (*Builder, error) {
	if s == nil {
		return nil, fmt.Errorf("style is required")
	}
	if wordLimit <= 0 {
		wordLimit = DefaultWordLimit
	}
	if summaryWordLimit <= 0 {
		summaryWordLimit = DefaultSummaryWordLimit
	}

	b := &Builder{wordLimit: wordLimit, summaryWordLimit: summaryWordLimit}

	var err error
	if b.opening, err = parse(s.ID+"/opening", s.OpeningPrompt); err != nil {
		return nil, err
	}
	if b.rebuttal, err = parse(s.ID+"/rebuttal", s.RebuttalPrompt); err != nil {
		return nil, err
	}
	if b.summary, err = parse(s.ID+"/summary", s.SummaryPrompt); err != nil {
		return nil, err
	}
	return b, nil
}

func parse(name, text string) (*template.Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("template %s is empty", name)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

// Turn renders the prompt for side in the given 0-based round. Round 0 uses
// positional framing, later rounds use rebuttal framing.
func (b *Builder) Turn(round int, side core.Side, req core.DebateRequest) (string, error) {
	if !side.Valid() {
		return "", fmt.Errorf("invalid side: %q", side)
	}

	data := turnData{
		Topic:        req.Topic,
		Side:         side.Title(),
		Stance:       "FOR",
		Opponent:     side.Opponent().Title(),
		OpponentSide: string(side.Opponent()),
		Document:     req.AffirmativeDoc,
		WordLimit:    b.wordLimit,
	}
	if side == core.SideNegative {
		data.Stance = "AGAINST"
		data.Document = req.NegativeDoc
	}

	tmpl := b.rebuttal
	if round == 0 {
		tmpl = b.opening
	}
	return execute(tmpl, data)
}

// Summary renders the stance-neutral closing prompt.
func (b *Builder) Summary(req core.DebateRequest) (string, error) {
	return execute(b.summary, summaryData{Topic: req.Topic, WordLimit: b.summaryWordLimit})
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
