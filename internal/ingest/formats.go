package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
)

var errInvalidUTF8 = errors.New("text is not valid UTF-8")

func extractText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errInvalidUTF8
	}
	return string(data), nil
}

// extractPDF joins the plain text of every page with a space.
func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, " "), nil
}

// extractDOCX joins the text of every body paragraph with a space. Table
// cells contribute their paragraphs in reading order.
func extractDOCX(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}
	// Parse only names the document after decoding word/document.xml.
	if doc.Document.XMLName.Local != "document" {
		return "", errors.New("docx has no word/document.xml")
	}

	var paras []string
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			paras = append(paras, it.String())
		case *docx.Table:
			paras = append(paras, tableText(it)...)
		}
	}
	return strings.Join(paras, " "), nil
}

func tableText(t *docx.Table) []string {
	var out []string
	for _, row := range t.TableRows {
		for _, cell := range row.TableCells {
			for _, p := range cell.Paragraphs {
				out = append(out, p.String())
			}
		}
	}
	return out
}
