package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth  = 190.0
	rowHeight  = 7.0
	headHeight = 8.0
)

// PDF renders a portrait A4 table, repeating the header under each group title.
// Core fonts cover cp1252 only; other runes are replaced.
func PDF(sheet Sheet) ([]byte, error) {
	if err := sheet.validate(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	widths := columnWidths(sheet.Columns)

	pdf.AddPage()
	if sheet.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(sheet.Title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	header := func() {
		pdf.SetFont("Arial", "B", 10)
		for i, col := range sheet.Columns {
			pdf.CellFormat(widths[i], headHeight, tr(col.Title), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}

	group := ""
	for i, row := range sheet.Rows {
		if i == 0 || row.Group != group {
			group = row.Group
			if group != "" {
				pdf.Ln(2)
				pdf.SetFont("Arial", "B", 11)
				pdf.CellFormat(0, headHeight, tr(group), "", 1, "L", false, 0, "")
			}
			header()
		}
		for j, value := range sheet.record(row) {
			pdf.CellFormat(widths[j], rowHeight, tr(value), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(sheet.Rows) == 0 {
		header()
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths shares whatever fixed widths leave over among unsized columns.
func columnWidths(cols []Column) []float64 {
	out := make([]float64, len(cols))
	fixed, unsized := 0.0, 0
	for i, col := range cols {
		if col.Width > 0 {
			out[i] = col.Width
			fixed += col.Width
			continue
		}
		unsized++
	}
	if unsized == 0 {
		return out
	}

	share := (pageWidth - fixed) / float64(unsized)
	if share < 10 {
		share = 10
	}
	for i := range out {
		if out[i] == 0 {
			out[i] = share
		}
	}
	return out
}
