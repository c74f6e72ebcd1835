package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const utf8BOM = "\ufeff"

// ParseCSV decodes comma-separated text into records.
//
// When header is true the first non-blank row names the columns; otherwise
// columns are named by their 1-based position ("1", "2", ...). Blank lines
// are skipped and values are trimmed. Rows whose column count differs from
// the first row, and unterminated quotes, fail the whole parse with an error
// wrapping [ErrMalformed].
func ParseCSV(text string, header bool) ([]Record, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(text, utf8BOM)))
	reader.FieldsPerRecord = -1 // counts are checked in build, after blank rows are dropped
	reader.TrimLeadingSpace = true

	var rows []row

	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}

		line, _ := reader.FieldPos(0)

		if len(cells) == 1 && strings.TrimSpace(cells[0]) == "" {
			continue
		}

		rows = append(rows, row{line: line, cells: cells})
	}

	return build(rows, header)
}
