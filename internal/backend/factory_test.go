package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"homefin/internal/config"
	"homefin/internal/core"
	"homefin/internal/ports"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "/tmp/x.db",
		AMQPURL:      "amqp://localhost/",
		AMQPQueue:    "q",
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLite || cfg.SQLiteDBPath != "/tmp/x.db" || cfg.AMQPQueue != "q" {
		t.Errorf("FromAppConfig() = %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: Memory}, false},
		{"sqlite", Config{Type: SQLite, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLite}, true},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFactory_RejectsInvalidConfig(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLite})
	if err == nil {
		t.Fatal("expected error for sqlite without a path")
	}
}

func TestFactory_MemoryDemoData(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: Memory, DemoData: true})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Cleanup()

	years, err := res.Backend.ListDistinctYears(ctx, core.KindBalance)
	if err != nil || len(years) != 2 {
		t.Errorf("years = %v, err = %v", years, err)
	}
	if err := res.Backend.Ping(ctx); err != nil {
		t.Errorf("Ping() = %v", err)
	}
}

func TestFactory_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "homefin.db")
	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: SQLite, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Cleanup()

	var changed []core.Kind
	res.Records.OnChange(func(k core.Kind) { changed = append(changed, k) })

	if err := res.Backend.SaveTaxReturn(ctx, core.TaxReturnSummary{Year: 2023}); err != nil {
		t.Fatalf("SaveTaxReturn: %v", err)
	}
	if _, ok, err := res.Backend.FindTaxReturn(ctx, 2023); err != nil || !ok {
		t.Errorf("FindTaxReturn = %v, %v", ok, err)
	}
	if len(changed) != 1 || changed[0] != core.KindTax {
		t.Errorf("changed = %v", changed)
	}
	if err := res.Backend.DeleteTaxReturn(ctx, 1999); err == nil {
		t.Error("expected not found")
	} else if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if err := res.Backend.Ping(ctx); err != nil {
		t.Errorf("Ping() = %v", err)
	}
}
