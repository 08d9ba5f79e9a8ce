package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const studentColumnWidth = 50.0

// PDFExporter renders datasets into a landscape tabular PDF.
type PDFExporter struct {
	fontFamily string
	fontPath   string
}

// PDFOption customises a PDFExporter.
type PDFOption func(*PDFExporter)

// WithUTF8Font registers a TrueType font so non-Latin names render. Without
// it the exporter falls back to the core Arial font.
func WithUTF8Font(family, path string) PDFOption {
	return func(e *PDFExporter) {
		e.fontFamily = family
		e.fontPath = path
	}
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter(opts ...PDFOption) *PDFExporter {
	e := &PDFExporter{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render creates a PDF document with an optional title and table body. The
// first column is wider; the remaining width is split evenly.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)

	family := "Arial"
	if e.fontPath != "" {
		pdf.AddUTF8Font(e.fontFamily, "", e.fontPath)
		pdf.AddUTF8Font(e.fontFamily, "B", e.fontPath)
		family = e.fontFamily
	}
	pdf.AddPage()

	if title != "" {
		pdf.SetFont(family, "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right
	widths := make([]float64, len(data.Headers))
	widths[0] = usable
	if len(data.Headers) > 1 {
		widths[0] = studentColumnWidth
		rest := (usable - studentColumnWidth) / float64(len(data.Headers)-1)
		for i := 1; i < len(widths); i++ {
			widths[i] = rest
		}
	}

	pdf.SetFont(family, "B", 8)
	for i, header := range data.Headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 8)
	for _, record := range data.Records() {
		for i, value := range record {
			align := "C"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 7, value, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
