package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/armadaops/truck-ledger/internal/domain/grid"
	"github.com/armadaops/truck-ledger/internal/domain/transactions"
)

// Options configure one export run.
type Options struct {
	// From/To bound the export period; zero values mean everything.
	From, To time.Time
	// Title prefixes every sheet's title band.
	Title string
	// Summary appends the cross-group summary sheet.
	Summary bool
}

// Service reads persisted records and writes report workbooks.
type Service struct {
	repo   transactions.Repository
	logger *slog.Logger
}

// NewService creates an export service.
func NewService(repo transactions.Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Export assembles a report for the requested period and serializes it
// to w as an XLSX workbook.
func (s *Service) Export(ctx context.Context, w io.Writer, opts Options) error {
	var (
		records []transactions.Record
		err     error
	)
	if opts.From.IsZero() && opts.To.IsZero() {
		records, err = s.repo.FindAll(ctx)
	} else {
		records, err = s.repo.FindByPeriod(ctx, opts.From, opts.To)
	}
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no records to export")
	}

	assembler := NewAssembler()
	assembler.Title = opts.Title
	assembler.Summary = opts.Summary
	wb := assembler.Assemble(records)

	if err := grid.Write(w, wb); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	s.logger.Info("report exported",
		"records", len(records),
		"sheets", len(wb.Sheets))
	return nil
}

// MonthRange returns the half-open period covering one calendar month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
