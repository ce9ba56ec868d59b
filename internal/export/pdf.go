package export

import (
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/alienxp03/arena/internal/core"
)

// PDFExporter exports debates to PDF format.
type PDFExporter struct{}

var sideFill = map[core.Side][3]int{
	core.SideAffirmative: {200, 230, 255},
	core.SideNegative:    {255, 220, 200},
}

// Export writes the debate as PDF.
func (e *PDFExporter) Export(doc *Document, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	r := doc.Result

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, "Exported from arena", "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(0, 10, tr(r.Topic), "", "C", false)
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Debate Information")
	pdf.Ln(8)
	if doc.Affirmative != "" {
		metadataRow(pdf, "Affirmative:", tr(doc.Affirmative))
	}
	if doc.Negative != "" {
		metadataRow(pdf, "Negative:", tr(doc.Negative))
	}
	if doc.Style != "" {
		metadataRow(pdf, "Style:", tr(doc.Style))
	}
	if !doc.CreatedAt.IsZero() {
		metadataRow(pdf, "Created:", doc.CreatedAt.Format("January 2, 2006 at 3:04 PM"))
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Debate")
	pdf.Ln(8)

	if len(r.Transcript) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, "No turns recorded.")
		pdf.Ln(6)
	}
	for _, turn := range r.Transcript {
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}
		fill := sideFill[turn.Side]
		pdf.SetFillColor(fill[0], fill[1], fill[2])
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 7, turnHeading(turn), "", 1, "", true, 0, "")

		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, tr(turn.Text), "", "", false)
		pdf.Ln(5)
	}

	if pdf.GetY() > 230 {
		pdf.AddPage()
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 5, tr(r.Summary), "", "", false)

	return pdf.Output(w)
}

// FileExtension returns the file extension for PDF.
func (e *PDFExporter) FileExtension() string {
	return "pdf"
}

func metadataRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(30, 5, label)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 5, value)
	pdf.Ln(5)
}
