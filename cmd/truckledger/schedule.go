package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/armadaops/truck-ledger/internal/domain/export"
	"github.com/armadaops/truck-ledger/internal/domain/transactions"
	"github.com/armadaops/truck-ledger/pkg/cron"
)

var scheduleNow bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the monthly report exporter in the foreground",
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleNow, "now", false, "export last month immediately on start")
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	cfg, database, logger, err := setup()
	if err != nil {
		return err
	}
	defer database.Close()

	repo := transactions.NewPostgresRepository(database.Pool)
	exporter := export.NewService(repo, logger)
	scheduler := cron.NewScheduler(exporter, cfg.Export, logger)
	if err := scheduler.Start(); err != nil {
		return err
	}

	if cfg.Observability.MetricsEnabled {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Observability.MetricsPort)
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info("metrics listening", "addr", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	if scheduleNow {
		scheduler.RunNow()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	done := scheduler.Stop()
	select {
	case <-done.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("scheduler stop timed out")
	}
	return nil
}
