package main

import (
	"context"
	"flag"
	"os"
	"time"

	"homefin/internal/cli"
	applog "homefin/internal/log"
	"homefin/internal/seed"
	"homefin/internal/storage"
)

func main() {
	reset := flag.Bool("reset", false, "drop every stored record before loading")
	dbPath := flag.String("db", "", "SQLite database path (defaults to SQLITE_DB_PATH)")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)
	if *dbPath == "" {
		*dbPath = cfg.SQLiteDBPath
	}

	if *reset {
		if err := storage.ResetSchema(*dbPath); err != nil {
			logger.Error("Failed to reset database", "error", err, "path", *dbPath)
			os.Exit(1)
		}
		logger.Info("Database reset", "path", *dbPath)
	}

	repo := cli.InitSQLite(logger, *dbPath)
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// written straight to the store, so nothing is published for mirroring;
	// the worker's next full resync picks the data up
	data, err := seed.Load(ctx, repo)
	if err != nil {
		logger.Error("Failed to load demo data", "error", err, "path", *dbPath)
		os.Exit(1)
	}
	logger.Info("Loaded demo data",
		"path", *dbPath,
		"balances", len(data.Balances),
		"income", len(data.Incomes),
		"taxes", len(data.Taxes))
}
