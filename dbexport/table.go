// Package dbexport runs an operator-supplied SQL command and materializes
// its result set into a Table, the in-memory model shared by the
// renderers.
package dbexport

import "strings"

// Table is a rectangular result set. Every row holds exactly one value per
// column, in column order. Cell values are nil, string, int64, float64,
// bool or time.Time (see normalizeValue).
type Table struct {
	Columns []string
	Rows    [][]any
}

// NewTable returns an empty table with the given column names.
func NewTable(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// AddRow appends a row, padding with nil or truncating so the row always
// matches the column count. Values are normalized like scanned values.
func (t *Table) AddRow(values ...any) *Table {
	row := make([]any, len(t.Columns))
	for i := range row {
		if i < len(values) {
			row[i] = normalizeValue(values[i])
		}
	}
	t.Rows = append(t.Rows, row)
	return t
}

// ColumnIndex returns the zero-based index of the named column, or -1.
// Names are compared case-insensitively.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

func (t *Table) NumColumns() int { return len(t.Columns) }
func (t *Table) NumRows() int    { return len(t.Rows) }
