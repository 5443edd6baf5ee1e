// Package export renders tabular reports, currently the per-course
// enrollment statistics, as downloadable CSV or PDF payloads.
package export

import "errors"

// ErrNoColumns is returned when a table carries no column definitions.
var ErrNoColumns = errors.New("export: table has no columns")

// Column describes one table column. Weight apportions horizontal space in
// paged output relative to the other columns; zero counts as 1.
type Column struct {
	Key    string
	Label  string
	Weight float64
}

// Table is an ordered set of columns plus rows keyed by column. Column order
// is the render order for every output format.
type Table struct {
	Title   string
	Columns []Column
	Rows    []map[string]string
}

func (t Table) labels() []string {
	labels := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		labels[i] = col.Label
	}
	return labels
}

func (t Table) record(row map[string]string) []string {
	record := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		record[i] = row[col.Key]
	}
	return record
}
