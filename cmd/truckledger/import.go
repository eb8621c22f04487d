package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/armadaops/truck-ledger/internal/domain/imports/csvio"
	"github.com/armadaops/truck-ledger/internal/domain/imports/session"
	"github.com/armadaops/truck-ledger/internal/domain/imports/sniffer"
	"github.com/armadaops/truck-ledger/internal/domain/transactions"
	"github.com/armadaops/truck-ledger/pkg/config"
	"github.com/armadaops/truck-ledger/pkg/storage"
)

var (
	importFlow   string
	importDryRun bool
	importSheets []string
	importCols   = map[sniffer.Field]*int{
		sniffer.FieldDate:        new(int),
		sniffer.FieldCategory:    new(int),
		sniffer.FieldDescription: new(int),
		sniffer.FieldAmount:      new(int),
	}
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a ledger spreadsheet or CSV",
	Long: `Import reads an XLSX workbook (truck-template or generic layout) or a
flat CSV ledger, normalizes the rows, and inserts the valid records.
Invalid rows are reported and skipped; inserts are per-record, so a
failure on one row never blocks the rest.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFlow, "flow", "template", "import flow: template or generic")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "preview only, insert nothing")
	importCmd.Flags().StringSliceVar(&importSheets, "sheet", nil, "restrict the template flow to these sheets")
	for field, dst := range importCols {
		importCmd.Flags().IntVar(dst, colFlag(field), -1, "override the detected "+string(field)+" column (0-based)")
	}
}

func colFlag(field sniffer.Field) string {
	return strings.ToLower(string(field)) + "-col"
}

// applyOverrides narrows the sheet selection and applies manual column
// choices before the preview is built.
func applyOverrides(cmd *cobra.Command, sess *session.Session) error {
	if len(importSheets) > 0 {
		wanted := make(map[string]bool, len(importSheets))
		for _, name := range importSheets {
			wanted[name] = true
		}
		for name, selected := range sess.Selected {
			if selected && !wanted[name] {
				if err := sess.ToggleSheet(name); err != nil {
					return err
				}
			}
		}
	}
	for field, dst := range importCols {
		if !cmd.Flags().Changed(colFlag(field)) {
			continue
		}
		if err := sess.SetColumn(field, *dst); err != nil {
			return err
		}
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, database, logger, err := setup()
	if err != nil {
		return err
	}
	defer database.Close()
	repo := transactions.NewPostgresRepository(database.Pool)

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		if err := importCSV(cmd, path, repo); err != nil {
			return err
		}
		if !importDryRun {
			archiveSource(cmd, cfg, logger, path)
		}
		return nil
	}

	flow := sniffer.Flow(importFlow)
	if flow != sniffer.FlowTemplate && flow != sniffer.FlowGeneric {
		return fmt.Errorf("unknown flow %q", importFlow)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	svc := session.NewService(repo, logger)
	sess, err := svc.Open(flow, f)
	if err != nil {
		return err
	}
	for _, se := range sess.SheetErrors {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %v\n", se)
	}
	if err := applyOverrides(cmd, sess); err != nil {
		return err
	}
	if err := sess.BuildPreview(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "preview: %d valid, %d invalid rows\n",
		sess.ValidCount(), sess.InvalidCount())
	if importDryRun {
		return nil
	}

	result, err := svc.Commit(cmd.Context(), sess)
	if err != nil {
		return err
	}
	printResult(cmd, result)
	archiveSource(cmd, cfg, logger, path)
	return nil
}

// archiveSource keeps a copy of the committed ledger for later audits.
// Failure to archive never fails the import that already landed.
func archiveSource(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, path string) {
	if !cfg.Archive.Enabled {
		return
	}
	archive, err := storage.NewLocalArchive(cfg.Archive.Dir)
	if err != nil {
		logger.Warn("archive unavailable", "error", err)
		return
	}
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("source file not archived", "error", err)
		return
	}
	defer f.Close()
	info, err := archive.Store(cmd.Context(), filepath.Base(path), f)
	if err != nil {
		logger.Warn("source file not archived", "error", err)
		return
	}
	logger.Info("source file archived", "id", info.ID, "name", info.Name)
}

func importCSV(cmd *cobra.Command, path string, repo transactions.Repository) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cands, err := csvio.Read(f)
	if err != nil {
		return err
	}

	var records []transactions.Record
	invalid := 0
	for _, c := range cands {
		if c.Valid {
			records = append(records, c.Record)
		} else {
			invalid++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "preview: %d valid, %d invalid rows\n", len(records), invalid)
	if importDryRun {
		return nil
	}
	if len(records) == 0 {
		return fmt.Errorf("no valid records to import")
	}

	result, err := repo.BulkCreate(cmd.Context(), records)
	if err != nil {
		return err
	}
	printResult(cmd, result)
	return nil
}

func printResult(cmd *cobra.Command, result *transactions.BulkCreateResult) {
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d, failed %d\n", result.Imported, result.Failed)
	for _, re := range result.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "record %d: %s\n", re.Index, re.Message)
	}
}
