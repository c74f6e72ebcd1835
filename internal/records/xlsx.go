package records

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX decodes one worksheet of an xlsx workbook into records.
//
// sheet selects the worksheet by name; empty means the first sheet. The
// header flag and the blank-row, trimming and column-count rules match
// [ParseCSV]. Rows shorter than the header are padded with blank cells,
// since xlsx storage drops trailing empty cells.
func ParseXLSX(r io.Reader, sheet string, header bool) ([]Record, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %w", ErrMalformed, err)
	}

	defer func() { _ = book.Close() }()

	if sheet == "" {
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformed)
		}

		sheet = sheets[0]
	}

	if idx, idxErr := book.GetSheetIndex(sheet); idxErr != nil || idx < 0 {
		return nil, fmt.Errorf("%w: sheet %q not found", ErrMalformed, sheet)
	}

	cells, err := book.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %w", ErrMalformed, sheet, err)
	}

	var rows []row

	width := 0

	for i, cellRow := range cells {
		if isBlankRow(cellRow) {
			continue
		}

		if width == 0 {
			width = len(cellRow)
		}

		rows = append(rows, row{line: i + 1, cells: padRow(cellRow, width)})
	}

	return build(rows, header)
}

// padRow extends short rows to width. Longer rows keep their extra cells so
// build reports them, unless the extras are blank.
func padRow(cells []string, width int) []string {
	if len(cells) > width && isBlankRow(cells[width:]) {
		return cells[:width]
	}

	for len(cells) < width {
		cells = append(cells, "")
	}

	return cells
}
