package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSV renders the table as RFC 4180 CSV with a label header row. The title
// is omitted; CSV consumers get it from the download filename.
func CSV(t Table) ([]byte, error) {
	if len(t.Columns) == 0 {
		return nil, ErrNoColumns
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.labels())
	for _, row := range t.Rows {
		records = append(records, t.record(row))
	}
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}

	return buf.Bytes(), nil
}
