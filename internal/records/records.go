// Package records decodes spreadsheet exports into ordered records keyed by
// column header.
//
// Two inputs are supported: delimited text as served by a spreadsheet CSV
// export ([ParseCSV]) and xlsx workbooks read from disk ([ParseXLSX]). Both
// produce the same [Record] shape and fail as a whole on structural problems;
// there is no best-effort recovery of partial rows.
package records

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed reports tabular data that cannot be decoded into records.
var ErrMalformed = errors.New("malformed tabular data")

// Record is one spreadsheet row: an ordered mapping from column header to
// cell value.
type Record struct {
	columns []string
	values  []string
}

// NewRecord builds a record from parallel column and value slices.
// Missing values are treated as blank cells.
func NewRecord(columns, values []string) Record {
	rec := Record{
		columns: append([]string(nil), columns...),
		values:  make([]string, len(columns)),
	}

	copy(rec.values, values)

	return rec
}

// Get returns the value of column.
// The bool is false when the column does not exist, which is distinct from
// an existing column holding a blank cell.
func (r Record) Get(column string) (string, bool) {
	for i, name := range r.columns {
		if name == column {
			return r.values[i], true
		}
	}

	return "", false
}

// Columns returns the column headers in sheet order.
func (r Record) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Len returns the number of columns.
func (r Record) Len() int {
	return len(r.columns)
}

// row is a decoded line plus the 1-based source line (or sheet row) it
// started on, kept for error messages.
type row struct {
	line  int
	cells []string
}

// build turns decoded rows into records. Rows must already exclude blank
// lines. Cell values are trimmed.
func build(rows []row, header bool) ([]Record, error) {
	if len(rows) == 0 {
		return []Record{}, nil
	}

	width := len(rows[0].cells)

	var columns []string

	if header {
		columns = make([]string, width)
		for i, cell := range rows[0].cells {
			columns[i] = strings.TrimSpace(cell)
		}

		rows = rows[1:]
	} else {
		columns = make([]string, width)
		for i := range columns {
			columns[i] = strconv.Itoa(i + 1)
		}
	}

	out := make([]Record, 0, len(rows))

	for _, r := range rows {
		if len(r.cells) != width {
			return nil, fieldCountErr(r.line, width, len(r.cells))
		}

		values := make([]string, width)
		for i, cell := range r.cells {
			values[i] = strings.TrimSpace(cell)
		}

		out = append(out, Record{columns: columns, values: values})
	}

	return out, nil
}

func isBlankRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

func fieldCountErr(line, want, got int) error {
	return fmt.Errorf("%w: line %d: expected %d fields, got %d", ErrMalformed, line, want, got)
}
