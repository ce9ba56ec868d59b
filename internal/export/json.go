package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/alienxp03/arena/internal/core"
)

// JSONExporter exports debates to JSON format.
type JSONExporter struct{}

// ExportData is the JSON document layout.
type ExportData struct {
	Topic       string          `json:"topic"`
	Affirmative string          `json:"affirmative,omitempty"`
	Negative    string          `json:"negative,omitempty"`
	Style       string          `json:"style,omitempty"`
	Rounds      int             `json:"rounds"`
	Transcript  core.Transcript `json:"transcript"`
	Summary     string          `json:"summary"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Export writes the debate as indented JSON.
func (e *JSONExporter) Export(doc *Document, w io.Writer) error {
	transcript := doc.Result.Transcript
	if transcript == nil {
		transcript = core.Transcript{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{
		Topic:       doc.Result.Topic,
		Affirmative: doc.Affirmative,
		Negative:    doc.Negative,
		Style:       doc.Style,
		Rounds:      transcript.Rounds(),
		Transcript:  transcript,
		Summary:     doc.Result.Summary,
		CreatedAt:   doc.CreatedAt,
	})
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return "json"
}
