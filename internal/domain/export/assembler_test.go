package export

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaops/truck-ledger/internal/domain/grid"
	"github.com/armadaops/truck-ledger/internal/domain/payload"
	"github.com/armadaops/truck-ledger/internal/domain/transactions"
)

func incomeRecord(t *testing.T, date time.Time, truckKey, truckLabel, product string, qty int, unitPrice, loadingRate string) transactions.Record {
	t.Helper()
	p := payload.Income{
		ProductKey:   product,
		ProductLabel: product,
		TruckKey:     truckKey,
		TruckLabel:   truckLabel,
		Quantity:     qty,
		UnitPrice:    decimal.RequireFromString(unitPrice),
	}
	if loadingRate != "" {
		p.PerLoadDeductions = map[string]decimal.Decimal{
			payload.DeductionLoading: decimal.RequireFromString(loadingRate),
		}
	}
	payload.ComputeTotals(&p)
	encoded, err := payload.Encode(p)
	require.NoError(t, err)
	return transactions.Record{
		ID:          uuid.New(),
		TransDate:   date,
		Category:    truckLabel,
		Description: encoded,
		Amount:      p.Net.Round(2),
	}
}

func TestAssemble(t *testing.T) {
	d1 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	records := []transactions.Record{
		incomeRecord(t, d2, "tronton", "Tronton", "Pasir", 2, "250000", "10000"),
		incomeRecord(t, d1, "tronton", "Tronton", "Batu", 1, "300000", ""),
		incomeRecord(t, d1, "fuso", "Fuso", "Semen", 3, "100000", ""),
		{TransDate: d1, Category: "Solar", Description: "isi solar", Amount: decimal.RequireFromString("400000")},
	}

	wb := NewAssembler().Assemble(records)

	t.Run("group order and membership", func(t *testing.T) {
		// Tronton before Fuso per the classification table, unclassified last.
		assert.Equal(t, []string{"Tronton", "Fuso", "Lain-lain"}, wb.SheetNames())
	})

	t.Run("income sheet layout", func(t *testing.T) {
		sheet := wb.Sheet("Tronton")
		require.NotNil(t, sheet)

		// title band + header + 2 data rows + totals
		require.Len(t, sheet.Rows, 5)
		assert.Equal(t, "TRONTON", sheet.Cell(0, 0).Text)
		require.Len(t, sheet.Merges, 1)
		assert.Equal(t, len(incomeHeader)-1, sheet.Merges[0].LastCol, "title band spans the section width")
		assert.Equal(t, "Tanggal", sheet.Cell(1, 0).Text)
		assert.Equal(t, "Netto", sheet.Cell(1, 9).Text)

		// First record in input order (d2 before d1, as read from the store).
		assert.Equal(t, "Pasir", sheet.Cell(2, 1).Text)
		assert.Equal(t, float64(2), sheet.Cell(2, 2).Number)
		assert.Equal(t, float64(500000), sheet.Cell(2, 4).Number)
		assert.Equal(t, float64(20000), sheet.Cell(2, 5).Number, "loading column shows rate times loads")
		assert.Equal(t, float64(480000), sheet.Cell(2, 9).Number)

		// Totals row: qty 3, gross 800000, net 780000.
		totals := sheet.Rows[4]
		assert.Equal(t, "TOTAL", totals.Cell(0).Text)
		assert.Equal(t, float64(3), totals.Cell(2).Number)
		assert.Equal(t, float64(800000), totals.Cell(4).Number)
		assert.Equal(t, float64(20000), totals.Cell(5).Number)
		assert.Equal(t, float64(780000), totals.Cell(9).Number)
	})

	t.Run("unclassified sheet", func(t *testing.T) {
		sheet := wb.Sheet("Lain-lain")
		require.NotNil(t, sheet)
		require.Len(t, sheet.Rows, 4)
		assert.Equal(t, "Solar", sheet.Cell(2, 1).Text)
		assert.Equal(t, "isi solar", sheet.Cell(2, 2).Text)
		assert.Equal(t, float64(400000), sheet.Cell(3, 3).Number)
	})

	t.Run("empty groups emit no sheet", func(t *testing.T) {
		assert.Nil(t, wb.Sheet("Trailer"))
	})
}

func TestAssembleFreeTextInIncomeGroup(t *testing.T) {
	d := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	records := []transactions.Record{
		incomeRecord(t, d, "fuso", "Fuso", "Semen", 1, "100000", ""),
		{TransDate: d, Category: "sewa fuso", Description: "catatan lama", Amount: decimal.RequireFromString("50000")},
	}

	wb := NewAssembler().Assemble(records)
	sheet := wb.Sheet("Fuso")
	require.NotNil(t, sheet)
	require.Len(t, sheet.Rows, 5)

	// Fallback row keeps the raw description and counts into net.
	assert.Equal(t, "catatan lama", sheet.Cell(3, 1).Text)
	assert.Equal(t, float64(50000), sheet.Cell(3, 9).Number)
	assert.Equal(t, float64(150000), sheet.Rows[4].Cell(9).Number)
}

func TestAssembleSummary(t *testing.T) {
	d := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	records := []transactions.Record{
		incomeRecord(t, d, "tronton", "Tronton", "Pasir", 1, "100000", ""),
		{TransDate: d, Category: "Solar", Description: "isi solar", Amount: decimal.RequireFromString("50000")},
	}

	a := NewAssembler()
	a.Summary = true
	a.Title = "Mei 2024"
	wb := a.Assemble(records)

	require.Equal(t, []string{"Tronton", "Lain-lain", "Ringkasan"}, wb.SheetNames())
	sheet := wb.Sheet("Ringkasan")
	require.NotNil(t, sheet)
	assert.Equal(t, "MEI 2024 RINGKASAN", sheet.Cell(0, 0).Text)

	assert.Equal(t, "Tronton", sheet.Cell(2, 0).Text)
	assert.Equal(t, float64(100000), sheet.Cell(2, 1).Number)
	assert.Equal(t, "Lain-lain", sheet.Cell(3, 0).Text)
	assert.Equal(t, "TOTAL", sheet.Cell(4, 0).Text)
	assert.Equal(t, float64(150000), sheet.Cell(4, 1).Number)
}

func TestAssembleDeterminism(t *testing.T) {
	d := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	records := []transactions.Record{
		incomeRecord(t, d, "tronton", "Tronton", "Pasir", 1, "100000", ""),
		incomeRecord(t, d, "fuso", "Fuso", "Semen", 1, "200000", ""),
	}

	first := NewAssembler().Assemble(records)
	second := NewAssembler().Assemble(records)
	assert.Equal(t, first, second)
}

type stubRepo struct {
	records []transactions.Record
}

func (s *stubRepo) BulkCreate(context.Context, []transactions.Record) (*transactions.BulkCreateResult, error) {
	return nil, nil
}
func (s *stubRepo) FindAll(context.Context) ([]transactions.Record, error) {
	return s.records, nil
}
func (s *stubRepo) FindByPeriod(_ context.Context, from, to time.Time) ([]transactions.Record, error) {
	var out []transactions.Record
	for _, r := range s.records {
		if !r.TransDate.Before(from) && r.TransDate.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}
func (s *stubRepo) Delete(context.Context, string) error { return nil }

func TestServiceExport(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	d := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	repo := &stubRepo{records: []transactions.Record{
		incomeRecord(t, d, "tronton", "Tronton", "Pasir", 1, "100000", ""),
	}}
	svc := NewService(repo, logger)

	t.Run("writes a readable workbook", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.Export(context.Background(), &buf, Options{}))

		wb, err := grid.Read(&buf)
		require.NoError(t, err)
		assert.Equal(t, []string{"Tronton"}, wb.SheetNames())
	})

	t.Run("period filter", func(t *testing.T) {
		from, to := MonthRange(2024, time.June)
		var buf bytes.Buffer
		err := svc.Export(context.Background(), &buf, Options{From: from, To: to})
		assert.ErrorContains(t, err, "no records to export")
	})
}
