package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/armadaops/truck-ledger/internal/domain/grid"
	"github.com/armadaops/truck-ledger/internal/domain/imports/sniffer"
	"github.com/armadaops/truck-ledger/internal/domain/transactions"
)

// Service opens sessions from raw files and commits their previews to
// the transaction repository.
type Service struct {
	repo   transactions.Repository
	logger *slog.Logger
}

// NewService creates an import service.
func NewService(repo transactions.Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Open reads one spreadsheet and runs the upload transition. The session
// comes back in SheetSelection or ColumnMapping depending on the flow.
func (s *Service) Open(flow sniffer.Flow, r io.Reader) (*Session, error) {
	wb, err := grid.Read(r)
	if err != nil {
		filesRejected.Inc()
		return nil, err
	}

	sess := New(flow)
	if err := sess.Upload(wb); err != nil {
		filesRejected.Inc()
		return nil, err
	}

	for _, se := range sess.SheetErrors {
		s.logger.Warn("sheet skipped", "sheet", se.Sheet, "error", se.Err)
	}
	s.logger.Info("import opened",
		"flow", flow,
		"sheets", len(sess.Selected),
		"skipped", len(sess.SheetErrors))
	return sess, nil
}

// Commit sends the valid subset of the preview to the repository. The
// bulk create is not transactional: partial success is expected and is
// reported, never retried. The session reaches Committed once the call
// has been issued, whatever the per-record outcome.
func (s *Service) Commit(ctx context.Context, sess *Session) (*transactions.BulkCreateResult, error) {
	if sess.Stage != StagePreview {
		return nil, fmt.Errorf("%w: commit in %s", ErrStageViolation, sess.Stage)
	}
	records := sess.ValidRecords()
	if len(records) == 0 {
		return nil, ErrNoValidRecords
	}

	result, err := s.repo.BulkCreate(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("bulk create: %w", err)
	}
	sess.Stage = StageCommitted
	sess.Grid = nil

	recordsImported.Add(float64(result.Imported))
	recordsFailed.Add(float64(result.Failed))
	if result.Failed > 0 {
		s.logger.Warn("import committed with failures",
			"imported", result.Imported,
			"failed", result.Failed)
	} else {
		s.logger.Info("import committed", "imported", result.Imported)
	}
	return result, nil
}
