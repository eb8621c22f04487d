package grid

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Write serializes a Workbook to XLSX. Merged regions (title bands) get a
// bold, centered style; everything else keeps the default style.
func Write(w io.Writer, wb *Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create title style: %w", err)
	}

	for i, sheet := range wb.Sheets {
		if i == 0 {
			// excelize always creates "Sheet1"; rename it for the first sheet.
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet.Name); err != nil {
				return fmt.Errorf("create sheet %q: %w", sheet.Name, err)
			}
		}

		for ri, row := range sheet.Rows {
			for ci, cell := range row {
				if cell.IsEmpty() {
					continue
				}
				axis, err := excelize.CoordinatesToCellName(ci+1, ri+1)
				if err != nil {
					return fmt.Errorf("cell coordinates (%d,%d): %w", ri, ci, err)
				}
				if err := setCell(f, sheet.Name, axis, cell); err != nil {
					return err
				}
			}
		}

		for _, m := range sheet.Merges {
			first, err := excelize.CoordinatesToCellName(m.FirstCol+1, m.FirstRow+1)
			if err != nil {
				return fmt.Errorf("merge coordinates: %w", err)
			}
			last, err := excelize.CoordinatesToCellName(m.LastCol+1, m.LastRow+1)
			if err != nil {
				return fmt.Errorf("merge coordinates: %w", err)
			}
			if err := f.MergeCell(sheet.Name, first, last); err != nil {
				return fmt.Errorf("merge %s:%s on %q: %w", first, last, sheet.Name, err)
			}
			if err := f.SetCellStyle(sheet.Name, first, last, titleStyle); err != nil {
				return fmt.Errorf("style merge on %q: %w", sheet.Name, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, sheet, axis string, cell Cell) error {
	var err error
	switch cell.Kind {
	case CellText:
		err = f.SetCellStr(sheet, axis, cell.Text)
	case CellNumber:
		err = f.SetCellValue(sheet, axis, cell.Number)
	case CellDate:
		err = f.SetCellValue(sheet, axis, cell.Date)
	}
	if err != nil {
		return fmt.Errorf("set cell %s on %q: %w", axis, sheet, err)
	}
	return nil
}
