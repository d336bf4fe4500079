// Package export renders tabular schedule data as CSV or PDF.
package export

import "fmt"

// Column describes one output field. Width is in millimetres and only used by PDF.
type Column struct {
	Key   string
	Title string
	Width float64
}

// Sheet is an ordered table. Rows whose Group differs from the previous row
// start a new section in PDF output.
type Sheet struct {
	Title   string
	Columns []Column
	Rows    []Row
}

// Row holds values by column key.
type Row struct {
	Group  string
	Values map[string]string
}

func (s Sheet) validate() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("sheet %q has no columns", s.Title)
	}
	return nil
}

func (s Sheet) record(row Row) []string {
	out := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		out[i] = row.Values[col.Key]
	}
	return out
}
