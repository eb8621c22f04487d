package session

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaops/truck-ledger/internal/domain/grid"
	"github.com/armadaops/truck-ledger/internal/domain/imports/sniffer"
	"github.com/armadaops/truck-ledger/internal/domain/transactions"
)

// fakeRepo records BulkCreate calls and fails the configured indexes.
type fakeRepo struct {
	failIdx map[int]bool
	got     []transactions.Record
}

func (f *fakeRepo) BulkCreate(_ context.Context, records []transactions.Record) (*transactions.BulkCreateResult, error) {
	f.got = records
	result := &transactions.BulkCreateResult{}
	for i := range records {
		if f.failIdx[i] {
			result.Failed++
			result.Errors = append(result.Errors, transactions.RecordError{Index: i, Message: "duplicate"})
			continue
		}
		result.Imported++
	}
	return result, nil
}

func (f *fakeRepo) FindAll(context.Context) ([]transactions.Record, error) { return nil, nil }
func (f *fakeRepo) FindByPeriod(context.Context, time.Time, time.Time) ([]transactions.Record, error) {
	return nil, nil
}
func (f *fakeRepo) Delete(context.Context, string) error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func row(cells ...grid.Cell) grid.Row { return grid.Row(cells) }

func templateWorkbook() *grid.Workbook {
	header := row(grid.Text("Tanggal"), grid.Text("Muatan"), grid.Text("Qty"), grid.Text("Harga"))
	return &grid.Workbook{Sheets: []grid.Sheet{
		{Name: "TRONTON", Rows: []grid.Row{
			header,
			row(grid.Text("01-05-2024"), grid.Text("Pasir"), grid.Number(2), grid.Number(250000)),
			row(grid.Empty(), grid.Text("Batu"), grid.Number(0), grid.Number(100000)), // invalid: qty 0
		}},
		{Name: "FUSO", Rows: []grid.Row{
			header,
			row(grid.Text("02-05-2024"), grid.Text("Semen"), grid.Number(1), grid.Number(400000)),
		}},
		{Name: "Rekap", Rows: []grid.Row{row(grid.Text("ringkasan"))}}, // unclassifiable
	}}
}

func genericWorkbook() *grid.Workbook {
	return &grid.Workbook{Sheets: []grid.Sheet{
		{Name: "Ledger", Rows: []grid.Row{
			row(grid.Text("Tanggal"), grid.Text("Kategori"), grid.Text("Nominal")),
			row(grid.Text("2024-05-01"), grid.Text("Tronton"), grid.Number(500000)),
			row(grid.Text("2024-05-02"), grid.Text("Solar"), grid.Number(0)), // invalid
		}},
	}}
}

func TestTemplateUpload(t *testing.T) {
	t.Run("classifiable sheets selected", func(t *testing.T) {
		sess := New(sniffer.FlowTemplate)
		require.NoError(t, sess.Upload(templateWorkbook()))

		assert.Equal(t, StageSheetSelection, sess.Stage)
		assert.True(t, sess.Selected["TRONTON"])
		assert.True(t, sess.Selected["FUSO"])
		_, rekap := sess.Selected["Rekap"]
		assert.False(t, rekap, "unclassifiable sheet must not be offered")
	})

	t.Run("headerless classified sheet reported not fatal", func(t *testing.T) {
		wb := templateWorkbook()
		wb.Sheets[1].Rows = []grid.Row{row(grid.Text("catatan bebas"))}

		sess := New(sniffer.FlowTemplate)
		require.NoError(t, sess.Upload(wb))
		require.Len(t, sess.SheetErrors, 1)
		assert.Equal(t, "FUSO", sess.SheetErrors[0].Sheet)
		assert.True(t, sess.Selected["TRONTON"])
	})

	t.Run("sheet missing a mandatory column reported not fatal", func(t *testing.T) {
		wb := templateWorkbook()
		// FUSO header resolves date and quantity but no product column.
		wb.Sheets[1].Rows = []grid.Row{
			row(grid.Text("Tanggal"), grid.Text("Qty"), grid.Text("Harga")),
			row(grid.Text("02-05-2024"), grid.Number(1), grid.Number(400000)),
		}

		sess := New(sniffer.FlowTemplate)
		require.NoError(t, sess.Upload(wb))
		require.Len(t, sess.SheetErrors, 1)
		assert.Equal(t, "FUSO", sess.SheetErrors[0].Sheet)
		var missing *sniffer.MissingFieldsError
		require.ErrorAs(t, sess.SheetErrors[0].Err, &missing)
		assert.Contains(t, missing.Fields, sniffer.FieldProductName)
		_, offered := sess.Selected["FUSO"]
		assert.False(t, offered, "incomplete sheet must not be offered for import")
	})

	t.Run("nothing usable stays in upload", func(t *testing.T) {
		wb := &grid.Workbook{Sheets: []grid.Sheet{{Name: "Rekap", Rows: []grid.Row{row(grid.Text("x"))}}}}
		sess := New(sniffer.FlowTemplate)
		err := sess.Upload(wb)
		assert.ErrorIs(t, err, ErrNoUsableSheet)
		assert.Equal(t, StageUpload, sess.Stage)
	})
}

func TestTemplatePreviewAndToggle(t *testing.T) {
	sess := New(sniffer.FlowTemplate)
	require.NoError(t, sess.Upload(templateWorkbook()))

	require.NoError(t, sess.ToggleSheet("FUSO"))
	require.NoError(t, sess.BuildPreview())

	assert.Equal(t, StagePreview, sess.Stage)
	// TRONTON only: one valid row plus one invalid kept for visibility.
	assert.Equal(t, 1, sess.ValidCount())
	assert.Equal(t, 1, sess.InvalidCount())
	for _, c := range sess.Candidates {
		assert.Equal(t, "TRONTON", c.Sheet)
	}

	t.Run("back is re-entrant", func(t *testing.T) {
		require.NoError(t, sess.Back())
		assert.Equal(t, StageSheetSelection, sess.Stage)
		require.NoError(t, sess.ToggleSheet("FUSO"))
		require.NoError(t, sess.BuildPreview())
		assert.Equal(t, 2, sess.ValidCount())
	})
}

func TestGenericFlow(t *testing.T) {
	sess := New(sniffer.FlowGeneric)
	require.NoError(t, sess.Upload(genericWorkbook()))
	assert.Equal(t, StageColumnMapping, sess.Stage)
	assert.Equal(t, 0, sess.AutoMapping.Col(sniffer.FieldDate))
	assert.Equal(t, 2, sess.AutoMapping.Col(sniffer.FieldAmount))

	t.Run("missing mandatory field blocks preview", func(t *testing.T) {
		require.NoError(t, sess.SetColumn(sniffer.FieldCategory, -1))
		err := sess.BuildPreview()
		var missing *sniffer.MissingFieldsError
		require.ErrorAs(t, err, &missing)
		assert.Contains(t, missing.Fields, sniffer.FieldCategory)
		assert.Equal(t, StageColumnMapping, sess.Stage)
	})

	t.Run("explicit clear drops the auto-detected column", func(t *testing.T) {
		assert.False(t, sess.Mapping().Resolved(sniffer.FieldCategory),
			"cleared field must not fall back to auto-detect")
		assert.Equal(t, -1, sess.Manual[sniffer.FieldCategory],
			"the clear itself must be recorded, not discarded")
	})

	t.Run("manual fix unblocks", func(t *testing.T) {
		require.NoError(t, sess.SetColumn(sniffer.FieldCategory, 1))
		require.NoError(t, sess.BuildPreview())
		assert.Equal(t, StagePreview, sess.Stage)
		assert.Equal(t, 1, sess.ValidCount())
		assert.Equal(t, 1, sess.InvalidCount())
	})
}

func TestStageViolations(t *testing.T) {
	sess := New(sniffer.FlowTemplate)

	assert.ErrorIs(t, sess.ToggleSheet("TRONTON"), ErrStageViolation)
	assert.ErrorIs(t, sess.BuildPreview(), ErrStageViolation)
	assert.ErrorIs(t, sess.Back(), ErrStageViolation)

	require.NoError(t, sess.Upload(templateWorkbook()))
	assert.ErrorIs(t, sess.Upload(templateWorkbook()), ErrStageViolation)
	assert.ErrorIs(t, sess.SetColumn(sniffer.FieldDate, 0), ErrStageViolation)
}

func TestCancel(t *testing.T) {
	sess := New(sniffer.FlowTemplate)
	require.NoError(t, sess.Upload(templateWorkbook()))
	require.NoError(t, sess.BuildPreview())

	require.NoError(t, sess.Cancel())
	assert.Equal(t, StageCancelled, sess.Stage)
	assert.Nil(t, sess.Grid, "cancel releases the workbook")
	assert.ErrorIs(t, sess.Cancel(), ErrStageViolation)
}

func TestServiceCommit(t *testing.T) {
	t.Run("commits only valid records", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := NewService(repo, discardLogger())

		sess := New(sniffer.FlowTemplate)
		require.NoError(t, sess.Upload(templateWorkbook()))
		require.NoError(t, sess.BuildPreview())
		require.Equal(t, 2, sess.ValidCount())

		result, err := svc.Commit(context.Background(), sess)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Imported)
		assert.Equal(t, StageCommitted, sess.Stage)
		assert.Len(t, repo.got, 2, "invalid rows must not reach the store")
	})

	t.Run("partial failure is reported not retried", func(t *testing.T) {
		rows := []grid.Row{
			row(grid.Text("Tanggal"), grid.Text("Muatan"), grid.Text("Qty"), grid.Text("Harga")),
		}
		for i := 0; i < 10; i++ {
			rows = append(rows, row(
				grid.Text(fmt.Sprintf("%02d-05-2024", i+1)),
				grid.Text("Pasir"), grid.Number(1), grid.Number(100000),
			))
		}
		wb := &grid.Workbook{Sheets: []grid.Sheet{{Name: "TRONTON", Rows: rows}}}

		repo := &fakeRepo{failIdx: map[int]bool{3: true, 7: true}}
		svc := NewService(repo, discardLogger())

		sess := New(sniffer.FlowTemplate)
		require.NoError(t, sess.Upload(wb))
		require.NoError(t, sess.BuildPreview())
		require.Equal(t, 10, sess.ValidCount())

		result, err := svc.Commit(context.Background(), sess)
		require.NoError(t, err)
		assert.Equal(t, 8, result.Imported)
		assert.Equal(t, 2, result.Failed)
		require.Len(t, result.Errors, 2)
		assert.Equal(t, 3, result.Errors[0].Index)
		assert.Equal(t, 7, result.Errors[1].Index)
		assert.Equal(t, StageCommitted, sess.Stage, "partial commit still completes the session")
	})

	t.Run("empty preview blocked", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := NewService(repo, discardLogger())

		wb := templateWorkbook()
		wb.Sheets = wb.Sheets[:1]
		wb.Sheets[0].Rows = wb.Sheets[0].Rows[:1] // header only

		sess := New(sniffer.FlowTemplate)
		require.NoError(t, sess.Upload(wb))
		require.NoError(t, sess.BuildPreview())

		_, err := svc.Commit(context.Background(), sess)
		assert.ErrorIs(t, err, ErrNoValidRecords)
	})

	t.Run("wrong stage blocked", func(t *testing.T) {
		svc := NewService(&fakeRepo{}, discardLogger())
		_, err := svc.Commit(context.Background(), New(sniffer.FlowTemplate))
		assert.ErrorIs(t, err, ErrStageViolation)
	})
}

func TestServiceOpen(t *testing.T) {
	svc := NewService(&fakeRepo{}, discardLogger())

	t.Run("not a spreadsheet", func(t *testing.T) {
		_, err := svc.Open(sniffer.FlowTemplate, badReader{})
		assert.ErrorIs(t, err, grid.ErrNotSpreadsheet)
	})
}

type badReader struct{}

func (badReader) Read(p []byte) (int, error) {
	copy(p, "nope")
	return 4, fmt.Errorf("broken stream")
}
