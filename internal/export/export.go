// Package export writes finished debates to shareable formats.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alienxp03/arena/internal/core"
)

// Format represents an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatJSON     Format = "json"
)

// Formats lists the supported export formats.
func Formats() []Format {
	return []Format{FormatMarkdown, FormatJSON, FormatPDF}
}

// Document is a finished debate plus the context needed to present it.
type Document struct {
	Result      *core.Result
	Affirmative string // participant label, e.g. "genai/gemini-2.0-flash"
	Negative    string
	Style       string
	CreatedAt   time.Time
}

// Exporter renders a document.
type Exporter interface {
	Export(doc *Document, w io.Writer) error
	FileExtension() string
}

// GetExporter returns an exporter for the given format.
func GetExporter(format Format) (Exporter, error) {
	switch format {
	case FormatMarkdown, "md":
		return &MarkdownExporter{}, nil
	case FormatPDF:
		return &PDFExporter{}, nil
	case FormatJSON:
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

var filenameReplacer = strings.NewReplacer(
	" ", "_",
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// GenerateFilename returns debate_YYYYMMDD_<topic>.<ext> with the topic
// shortened and made filesystem safe.
func GenerateFilename(doc *Document, ext string) string {
	topic := strings.TrimSpace(doc.Result.Topic)
	if r := []rune(topic); len(r) > 50 {
		topic = string(r[:50])
	}
	topic = filenameReplacer.Replace(topic)
	if topic == "" {
		topic = "untitled"
	}

	created := doc.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return fmt.Sprintf("debate_%s_%s.%s", created.Format("20060102"), topic, ext)
}

// turnHeading is the label shown above each turn.
func turnHeading(t core.TurnRecord) string {
	return fmt.Sprintf("Round %d - %s", t.Round, t.Side.Title())
}
