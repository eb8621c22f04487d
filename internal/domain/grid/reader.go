package grid

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNotSpreadsheet marks input that is not a readable workbook container.
// It blocks the whole import; there is no partial recovery at file level.
var ErrNotSpreadsheet = fmt.Errorf("not a valid spreadsheet file")

// Read parses an XLSX stream into a Workbook. Cells are typed as numbers
// when the raw value parses as one, otherwise as text; date-formatted cells
// surface as their raw day serial, which the date normalizer understands.
func Read(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSpreadsheet, err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}

		sheet := Sheet{Name: name, Rows: make([]Row, 0, len(rows))}
		for _, raw := range rows {
			row := make(Row, 0, len(raw))
			for _, value := range raw {
				row = append(row, typeCell(value))
			}
			sheet.Rows = append(sheet.Rows, row)
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}

	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrNotSpreadsheet)
	}
	return wb, nil
}

func typeCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Empty()
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Number(f)
	}
	return Text(trimmed)
}
