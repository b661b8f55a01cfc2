package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidthLandscape = 277.0
	minColumnWidth     = 14.0
)

// PDFExporter renders tables on landscape A4 pages.
type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

func (e *PDFExporter) Render(table Table) ([]byte, error) {
	if len(table.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if table.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 9, tr(table.Title), "", 1, "C", false, 0, "")
	}
	if len(table.Notes) > 0 {
		pdf.SetFont("Arial", "", 9)
		for _, note := range table.Notes {
			pdf.CellFormat(0, 5, tr(note), "", 1, "C", false, 0, "")
		}
	}
	pdf.Ln(4)

	widths := columnWidths(table)
	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range table.Headers {
			pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range table.Rows {
		if pdf.GetY()+7 > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		for i := range table.Headers {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			pdf.CellFormat(widths[i], 7, tr(value), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths splits the page proportionally to the longest cell per column.
func columnWidths(table Table) []float64 {
	longest := make([]int, len(table.Headers))
	for i, h := range table.Headers {
		longest[i] = len(h)
	}
	for _, row := range table.Rows {
		for i := 0; i < len(row) && i < len(longest); i++ {
			if len(row[i]) > longest[i] {
				longest[i] = len(row[i])
			}
		}
	}
	total := 0
	for _, l := range longest {
		total += l
	}
	widths := make([]float64, len(longest))
	for i, l := range longest {
		widths[i] = pageWidthLandscape * float64(l) / float64(total)
		if widths[i] < minColumnWidth {
			widths[i] = minColumnWidth
		}
	}
	return widths
}
