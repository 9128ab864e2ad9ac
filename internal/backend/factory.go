package backend

import (
	"context"
	"fmt"
	"log/slog"

	"homefin/internal/adapters"
	"homefin/internal/amqp"
	"homefin/internal/memory"
	"homefin/internal/ports"
	"homefin/internal/seed"
	"homefin/internal/services"
	"homefin/internal/storage"
)

type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateBackend opens the configured store and fronts it with the record
// service.
func (f *Factory) CreateBackend(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var store ports.Store
	switch cfg.Type {
	case SQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		store = repo
	case Memory:
		mem := memory.New()
		// Seed before wrapping so demo rows are not published.
		if cfg.DemoData {
			data, err := seed.Load(ctx, mem)
			if err != nil {
				return nil, fmt.Errorf("load demo data: %w", err)
			}
			f.logger.Info("Loaded demo data",
				"balances", len(data.Balances),
				"income", len(data.Incomes),
				"taxes", len(data.Taxes))
		}
		store = mem
	}

	records := services.NewRecordService(store, f.publisher(cfg))
	f.logger.Info("Backend ready", "type", cfg.Type, "db_path", cfg.SQLiteDBPath, "demo_data", cfg.DemoData)
	return &Result{
		Backend: adapters.NewStoreAdapter(store, records),
		Records: records,
		Cleanup: records.Close,
	}, nil
}

// publisher returns nil when AMQP is off or unreachable; the app then runs
// without mirroring.
func (f *Factory) publisher(cfg Config) services.Publisher {
	if cfg.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		f.logger.Warn("AMQP unavailable, continuing without sync", "error", err)
		return nil
	}
	f.logger.Info("Publishing record changes", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}
