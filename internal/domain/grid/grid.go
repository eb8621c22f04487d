// Package grid provides the in-memory workbook model shared by the import
// and export pipelines: named sheets holding 2-D grids of scalar cells.
package grid

import (
	"strconv"
	"time"
)

// CellKind discriminates the scalar variants a cell can hold.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

// Cell is a single scalar spreadsheet value.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Date   time.Time
}

// Empty returns an empty cell.
func Empty() Cell { return Cell{Kind: CellEmpty} }

// Text returns a text cell. An empty string yields an empty cell so that
// blank cells compare equal regardless of how the source encoded them.
func Text(s string) Cell {
	if s == "" {
		return Empty()
	}
	return Cell{Kind: CellText, Text: s}
}

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{Kind: CellNumber, Number: f} }

// Date returns a date cell holding a civil date (time component discarded).
func Date(t time.Time) Cell {
	y, m, d := t.Date()
	return Cell{Kind: CellDate, Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }

// String renders the cell for display and keyword matching.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDate:
		return c.Date.Format("2006-01-02")
	default:
		return ""
	}
}

// Row is one horizontal slice of a sheet.
type Row []Cell

// Cell returns the cell at col, or an empty cell when col is out of range.
// Source rows are ragged; callers never need to bounds-check.
func (r Row) Cell(col int) Cell {
	if col < 0 || col >= len(r) {
		return Empty()
	}
	return r[col]
}

// Merge describes a rectangular merged region, used for title bands.
// Coordinates are zero-based and inclusive.
type Merge struct {
	FirstRow, FirstCol int
	LastRow, LastCol   int
}

// Sheet is a named grid of rows plus the merged regions to apply on write.
type Sheet struct {
	Name   string
	Rows   []Row
	Merges []Merge
}

// Cell returns the cell at (row, col), bounds-safe.
func (s *Sheet) Cell(row, col int) Cell {
	if row < 0 || row >= len(s.Rows) {
		return Empty()
	}
	return s.Rows[row].Cell(col)
}

// Workbook is an ordered collection of sheets. It is immutable once read
// from a source file; the export assembler builds fresh instances.
type Workbook struct {
	Sheets []Sheet
}

// Sheet returns the named sheet, or nil.
func (w *Workbook) Sheet(name string) *Sheet {
	for i := range w.Sheets {
		if w.Sheets[i].Name == name {
			return &w.Sheets[i]
		}
	}
	return nil
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.Sheets))
	for i := range w.Sheets {
		names[i] = w.Sheets[i].Name
	}
	return names
}
