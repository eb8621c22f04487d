// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/armadaops/truck-ledger/internal/domain/export"
	"github.com/armadaops/truck-ledger/pkg/config"
)

// Scheduler runs the periodic report export using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	exporter *export.Service
	cfg      config.ExportConfig
	logger   *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(exporter *export.Service, cfg config.ExportConfig, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		exporter: exporter,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.Schedule, s.exportPreviousMonth)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", s.cfg.Schedule, err)
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("schedule", s.cfg.Schedule),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the export job (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.exportPreviousMonth()
}

// exportPreviousMonth writes last month's report into the export dir.
func (s *Scheduler) exportPreviousMonth() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	now := time.Now().UTC()
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	from, to := export.MonthRange(prev.Year(), prev.Month())

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		s.logger.Error("failed to create export dir", slog.Any("error", err))
		return
	}
	path := filepath.Join(s.cfg.Dir, fmt.Sprintf("laporan-%s.xlsx", from.Format("2006-01")))

	f, err := os.Create(path)
	if err != nil {
		s.logger.Error("failed to create report file", slog.Any("error", err))
		return
	}
	defer f.Close()

	opts := export.Options{
		From:    from,
		To:      to,
		Title:   fmt.Sprintf("Laporan %s", from.Format("January 2006")),
		Summary: s.cfg.Summary,
	}
	if err := s.exporter.Export(ctx, f, opts); err != nil {
		s.logger.Error("monthly export failed", slog.Any("error", err))
		// Leave no half-written workbook behind.
		os.Remove(path)
		return
	}
	s.logger.Info("monthly report exported", slog.String("path", path))
}
