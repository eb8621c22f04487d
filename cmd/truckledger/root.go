package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/armadaops/truck-ledger/pkg/config"
	"github.com/armadaops/truck-ledger/pkg/db"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "truckledger",
	Short:         "Truck haulage bookkeeping: import ledgers, export reports",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(importCmd, exportCmd, migrateCmd, scheduleCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// setup loads config and connects the database. Callers own the close.
func setup() (*config.Config, *db.DB, *slog.Logger, error) {
	logger := newLogger()
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	database, err := db.New(db.Config{
		DSN:             cfg.Database.DSN(),
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, database, logger, nil
}
