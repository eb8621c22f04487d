// Package session drives one user import as a small state machine:
// upload, then sheet selection or column mapping, then preview, then
// commit. One session per interaction; nothing here is shared.
package session

import (
	"errors"
	"fmt"

	"github.com/armadaops/truck-ledger/internal/domain/grid"
	"github.com/armadaops/truck-ledger/internal/domain/imports/normalizer"
	"github.com/armadaops/truck-ledger/internal/domain/imports/sniffer"
	"github.com/armadaops/truck-ledger/internal/domain/transactions"
	"github.com/armadaops/truck-ledger/internal/domain/trucks"
)

// Stage is the current position in the import workflow.
type Stage string

const (
	StageUpload         Stage = "upload"
	StageSheetSelection Stage = "sheet_selection"
	StageColumnMapping  Stage = "column_mapping"
	StagePreview        Stage = "preview"
	StageCommitted      Stage = "committed"
	StageCancelled      Stage = "cancelled"
)

// ErrStageViolation is returned when an operation is attempted outside
// the stage it belongs to.
var ErrStageViolation = errors.New("operation not allowed in current stage")

// ErrNoUsableSheet is the structural upload failure: nothing in the
// workbook could be classified and headered. The session stays in Upload.
var ErrNoUsableSheet = errors.New("no classifiable sheet with a header row")

// ErrNoValidRecords blocks commit when the preview holds nothing valid.
var ErrNoValidRecords = errors.New("no valid records to commit")

// SheetError reports a per-sheet failure. Other sheets in the same file
// keep processing.
type SheetError struct {
	Sheet string
	Err   error
}

func (e SheetError) Error() string {
	return fmt.Sprintf("sheet %q: %v", e.Sheet, e.Err)
}

// sheetPlan is everything resolved for one usable sheet at upload time.
type sheetPlan struct {
	truck     trucks.Truck
	headerRow int
	mapping   sniffer.ColumnMapping
}

// Session holds one import in flight. Zero value is not usable; create
// with New.
type Session struct {
	Flow  sniffer.Flow
	Stage Stage

	Grid     *grid.Workbook
	Selected map[string]bool

	// AutoMapping seeds the manual form in the generic flow; Manual holds
	// the user's overrides, including explicit clears.
	AutoMapping sniffer.ColumnMapping
	Manual      sniffer.ColumnMapping

	Candidates  []normalizer.Candidate
	SheetErrors []SheetError

	plans map[string]sheetPlan
}

// New creates a session in the Upload stage.
func New(flow sniffer.Flow) *Session {
	return &Session{
		Flow:     flow,
		Stage:    StageUpload,
		Selected: map[string]bool{},
		Manual:   sniffer.ColumnMapping{},
		plans:    map[string]sheetPlan{},
	}
}

// Upload accepts the parsed workbook. On structural failure the session
// stays in Upload with the error; per-sheet problems are collected in
// SheetErrors and do not block the sheets that worked.
func (s *Session) Upload(wb *grid.Workbook) error {
	if s.Stage != StageUpload {
		return fmt.Errorf("%w: upload in %s", ErrStageViolation, s.Stage)
	}
	if s.Flow == sniffer.FlowTemplate {
		return s.uploadTemplate(wb)
	}
	return s.uploadGeneric(wb)
}

func (s *Session) uploadTemplate(wb *grid.Workbook) error {
	s.SheetErrors = nil
	plans := map[string]sheetPlan{}
	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		truck, ok := trucks.ClassifySheetName(sheet.Name)
		if !ok {
			// Unclassifiable sheets are not importable in this flow and are
			// excluded from selection entirely.
			continue
		}
		headerRow, err := sniffer.LocateHeaderRow(sheet)
		if err != nil {
			s.SheetErrors = append(s.SheetErrors, SheetError{Sheet: sheet.Name, Err: err})
			continue
		}
		mapping := sniffer.MapColumns(sheet.Rows[headerRow])
		if err := sniffer.Validate(mapping, sniffer.FlowTemplate); err != nil {
			s.SheetErrors = append(s.SheetErrors, SheetError{Sheet: sheet.Name, Err: err})
			continue
		}
		plans[sheet.Name] = sheetPlan{
			truck:     truck,
			headerRow: headerRow,
			mapping:   mapping,
		}
	}
	if len(plans) == 0 {
		return ErrNoUsableSheet
	}

	s.Grid = wb
	s.plans = plans
	s.Selected = map[string]bool{}
	for name := range plans {
		s.Selected[name] = true
	}
	s.Stage = StageSheetSelection
	return nil
}

func (s *Session) uploadGeneric(wb *grid.Workbook) error {
	if len(wb.Sheets) == 0 {
		return ErrNoUsableSheet
	}
	sheet := &wb.Sheets[0]
	headerRow, err := sniffer.LocateHeaderRow(sheet)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoUsableSheet, SheetError{Sheet: sheet.Name, Err: err})
	}

	s.Grid = wb
	s.plans = map[string]sheetPlan{
		sheet.Name: {headerRow: headerRow},
	}
	s.Selected = map[string]bool{sheet.Name: true}
	s.AutoMapping = sniffer.MapColumns(sheet.Rows[headerRow])
	s.Manual = sniffer.ColumnMapping{}
	s.Stage = StageColumnMapping
	return nil
}

// ToggleSheet flips a sheet in or out of the import set.
func (s *Session) ToggleSheet(name string) error {
	if s.Stage != StageSheetSelection {
		return fmt.Errorf("%w: toggle sheet in %s", ErrStageViolation, s.Stage)
	}
	if _, ok := s.plans[name]; !ok {
		return fmt.Errorf("sheet %q is not importable", name)
	}
	s.Selected[name] = !s.Selected[name]
	return nil
}

// SetColumn records a manual column override in the generic flow. A
// negative column is an explicit clear; it is stored as-is so Merge can
// drop the auto-detected column rather than let it survive the override.
func (s *Session) SetColumn(field sniffer.Field, col int) error {
	if s.Stage != StageColumnMapping {
		return fmt.Errorf("%w: set column in %s", ErrStageViolation, s.Stage)
	}
	s.Manual[field] = col
	return nil
}

// Mapping is the effective generic-flow mapping: auto-detect seeded,
// manual overrides applied.
func (s *Session) Mapping() sniffer.ColumnMapping {
	return sniffer.Merge(s.AutoMapping, s.Manual)
}

// BuildPreview normalizes the selected sheets into candidates and
// advances to Preview. In the generic flow the effective mapping must
// pass validation first.
func (s *Session) BuildPreview() error {
	switch {
	case s.Flow == sniffer.FlowTemplate && s.Stage == StageSheetSelection:
	case s.Flow == sniffer.FlowGeneric && s.Stage == StageColumnMapping:
	default:
		return fmt.Errorf("%w: build preview in %s", ErrStageViolation, s.Stage)
	}

	s.Candidates = nil
	for i := range s.Grid.Sheets {
		sheet := &s.Grid.Sheets[i]
		if !s.Selected[sheet.Name] {
			continue
		}
		plan, ok := s.plans[sheet.Name]
		if !ok {
			continue
		}

		mapping := plan.mapping
		if s.Flow == sniffer.FlowGeneric {
			mapping = s.Mapping()
			if err := sniffer.Validate(mapping, s.Flow); err != nil {
				return err
			}
		}

		n := &normalizer.SheetNormalizer{
			Flow:    s.Flow,
			Mapping: mapping,
			Truck:   plan.truck,
		}
		s.Candidates = append(s.Candidates, n.Normalize(sheet, plan.headerRow)...)
	}
	s.Stage = StagePreview
	return nil
}

// Back returns from Preview to the adjustment stage of the flow.
func (s *Session) Back() error {
	if s.Stage != StagePreview {
		return fmt.Errorf("%w: back in %s", ErrStageViolation, s.Stage)
	}
	if s.Flow == sniffer.FlowTemplate {
		s.Stage = StageSheetSelection
	} else {
		s.Stage = StageColumnMapping
	}
	return nil
}

// Cancel releases the workbook and ends the session. Allowed from any
// non-terminal stage.
func (s *Session) Cancel() error {
	if s.Stage == StageCommitted || s.Stage == StageCancelled {
		return fmt.Errorf("%w: cancel in %s", ErrStageViolation, s.Stage)
	}
	s.Grid = nil
	s.Candidates = nil
	s.plans = nil
	s.Stage = StageCancelled
	return nil
}

// ValidRecords filters the preview down to the records commit will send.
func (s *Session) ValidRecords() []transactions.Record {
	var records []transactions.Record
	for _, c := range s.Candidates {
		if c.Valid {
			records = append(records, c.Record)
		}
	}
	return records
}

// ValidCount and InvalidCount summarize the preview for display.
func (s *Session) ValidCount() int {
	n := 0
	for _, c := range s.Candidates {
		if c.Valid {
			n++
		}
	}
	return n
}

func (s *Session) InvalidCount() int {
	return len(s.Candidates) - s.ValidCount()
}
