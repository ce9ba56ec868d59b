package export

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownExporter exports debates to Markdown format.
type MarkdownExporter struct{}

// Export writes the debate as Markdown.
func (e *MarkdownExporter) Export(doc *Document, w io.Writer) error {
	var sb strings.Builder
	r := doc.Result

	fmt.Fprintf(&sb, "# %s\n\n", r.Topic)

	sb.WriteString("## Debate Information\n\n")
	if doc.Affirmative != "" {
		fmt.Fprintf(&sb, "- **Affirmative:** %s\n", doc.Affirmative)
	}
	if doc.Negative != "" {
		fmt.Fprintf(&sb, "- **Negative:** %s\n", doc.Negative)
	}
	if doc.Style != "" {
		fmt.Fprintf(&sb, "- **Style:** %s\n", doc.Style)
	}
	fmt.Fprintf(&sb, "- **Rounds:** %d\n", r.Transcript.Rounds())
	if !doc.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "- **Created:** %s\n", doc.CreatedAt.Format("January 2, 2006 at 3:04 PM"))
	}
	sb.WriteString("\n## Debate\n\n")

	if len(r.Transcript) == 0 {
		sb.WriteString("*No turns recorded.*\n\n")
	}
	for _, turn := range r.Transcript {
		fmt.Fprintf(&sb, "### %s\n\n", turnHeading(turn))
		sb.WriteString(strings.TrimSpace(turn.Text))
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString(strings.TrimSpace(r.Summary))
	sb.WriteString("\n\n---\n\n*Exported from arena*\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return "md"
}
