package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSV writes a header line of column titles followed by one record per row.
func CSV(sheet Sheet) ([]byte, error) {
	if err := sheet.validate(); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	headers := make([]string, len(sheet.Columns))
	for i, col := range sheet.Columns {
		headers[i] = col.Title
	}
	if err := w.Write(headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range sheet.Rows {
		if err := w.Write(sheet.record(row)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
