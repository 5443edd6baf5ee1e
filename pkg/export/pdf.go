package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pdfContentWidth = 190.0 // A4 portrait minus 10mm margins

// PDF renders the table as a single A4 portrait document: the title as a
// heading, then a bordered grid whose column widths follow the column
// weights.
func PDF(t Table) ([]byte, error) {
	if len(t.Columns) == 0 {
		return nil, ErrNoColumns
	}

	widths := columnWidths(t.Columns)

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(10, 15, 10)
	doc.AddPage()

	if t.Title != "" {
		doc.SetFont("Arial", "B", 14)
		doc.CellFormat(0, 10, t.Title, "", 1, "L", false, 0, "")
		doc.Ln(3)
	}

	doc.SetFont("Arial", "B", 10)
	doc.SetFillColor(235, 235, 235)
	for i, col := range t.Columns {
		doc.CellFormat(widths[i], 8, col.Label, "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Arial", "", 9)
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			doc.CellFormat(widths[i], 7, row[col.Key], "1", 0, "", false, 0, "")
		}
		doc.Ln(-1)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(columns []Column) []float64 {
	total := 0.0
	for _, col := range columns {
		total += weightOf(col)
	}

	widths := make([]float64, len(columns))
	for i, col := range columns {
		widths[i] = pdfContentWidth * weightOf(col) / total
	}
	return widths
}

func weightOf(col Column) float64 {
	if col.Weight <= 0 {
		return 1
	}
	return col.Weight
}
