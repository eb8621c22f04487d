package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/armadaops/truck-ledger/internal/domain/export"
	"github.com/armadaops/truck-ledger/internal/domain/transactions"
)

var (
	exportOut     string
	exportMonth   string
	exportFrom    string
	exportTo      string
	exportTitle   string
	exportSummary bool
)

var exportCmd = &cobra.Command{
	Use:   "export [out.xlsx]",
	Short: "Export persisted records as a report workbook",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "laporan.xlsx", "output file")
	exportCmd.Flags().StringVar(&exportMonth, "month", "", "restrict to one month (YYYY-MM)")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "start date, inclusive (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "end date, exclusive (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTitle, "title", "", "title band prefix")
	exportCmd.Flags().BoolVar(&exportSummary, "summary", true, "append the summary sheet")
}

func runExport(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		exportOut = args[0]
	}

	_, database, logger, err := setup()
	if err != nil {
		return err
	}
	defer database.Close()

	opts := export.Options{Title: exportTitle, Summary: exportSummary}
	switch {
	case exportMonth != "":
		month, err := time.Parse("2006-01", exportMonth)
		if err != nil {
			return fmt.Errorf("invalid month %q, want YYYY-MM", exportMonth)
		}
		opts.From, opts.To = export.MonthRange(month.Year(), month.Month())
		if opts.Title == "" {
			opts.Title = fmt.Sprintf("Laporan %s", month.Format("January 2006"))
		}
	case exportFrom != "" || exportTo != "":
		if exportFrom == "" || exportTo == "" {
			return fmt.Errorf("--from and --to must be given together")
		}
		opts.From, err = time.Parse("2006-01-02", exportFrom)
		if err != nil {
			return fmt.Errorf("invalid from date %q, want YYYY-MM-DD", exportFrom)
		}
		opts.To, err = time.Parse("2006-01-02", exportTo)
		if err != nil {
			return fmt.Errorf("invalid to date %q, want YYYY-MM-DD", exportTo)
		}
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return err
	}
	defer f.Close()

	repo := transactions.NewPostgresRepository(database.Pool)
	svc := export.NewService(repo, logger)
	if err := svc.Export(cmd.Context(), f, opts); err != nil {
		os.Remove(exportOut)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", exportOut)
	return nil
}
