package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a printable tabular PDF, one section per
// dataset.
type PDFExporter struct {
	// Landscape switches to A4 landscape, used for the wide match sheets.
	Landscape bool
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{Landscape: true}
}

// Render creates a PDF document with an optional title and one table per dataset.
func (e *PDFExporter) Render(title string, datasets ...Dataset) ([]byte, error) {
	if len(datasets) == 0 {
		return nil, fmt.Errorf("pdf requires at least one dataset")
	}
	orientation, width := "P", 190.0
	if e.Landscape {
		orientation, width = "L", 277.0
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	for i, data := range datasets {
		if len(data.Headers) == 0 {
			return nil, fmt.Errorf("dataset %q has no headers", data.Name)
		}
		if i > 0 {
			pdf.Ln(6)
		}
		if data.Name != "" {
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(0, 8, tr(data.Name), "", 1, "L", false, 0, "")
		}
		pdf.SetFont("Arial", "B", 8)
		colWidth := width / float64(len(data.Headers))
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, tr(header), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 8)
		for _, rec := range data.Records() {
			for _, value := range rec {
				pdf.CellFormat(colWidth, 6, tr(value), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
