package main

import (
	"context"
	"errors"
	"os"
	"time"

	"homefin/internal/amqp"
	"homefin/internal/cli"
	"homefin/internal/config"
	applog "homefin/internal/log"
	"homefin/internal/sheets"
	gsheet "homefin/internal/sheets/google"
	"homefin/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting homefin-worker")

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	// the worker mirrors from the same database the server writes to
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	mirror, err := gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, gsheet.Credentials{
		JSON: cfg.GoogleServiceAccountJSON,
		File: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	tabs := sheets.Tabs{
		Balances: cfg.SheetsBalancesTab,
		Income:   cfg.SheetsIncomeTab,
		Taxes:    cfg.SheetsTaxesTab,
	}
	syncWorker := worker.NewSyncWorker(repo, mirror, tabs, cfg.SyncConcurrency)

	var scheduler *worker.Scheduler
	if cfg.SyncSchedule != "" {
		scheduler = worker.NewScheduler(cfg.SyncSchedule, syncWorker.FullResync)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if scheduler != nil {
			if err := scheduler.Stop(ctx); err != nil {
				logger.Warn("Scheduler stop error", "error", err)
			}
		}
	})

	// catch up on anything published while the worker was down
	logger.Info("Performing startup resync")
	if err := syncWorker.FullResync(ctx); err != nil {
		logger.Error("Startup resync failed", "error", err)
	}

	if scheduler != nil {
		if err := scheduler.Start(ctx); err != nil {
			logger.Error("Failed to start resync scheduler", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("Periodic resync disabled - SYNC_SCHEDULE is empty")
	}

	go func() {
		err := amqpClient.ConsumeRecordSync(ctx, syncWorker.HandleSyncMessage)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
