//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"homefin/internal/core"
	"homefin/internal/sheets"
)

// Needs a scratch spreadsheet and service account key:
// go test -tags=integration ./internal/sheets/google

func TestIntegration_MirrorRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if os.Getenv("GOOGLE_SPREADSHEET_ID") == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := New(ctx, os.Getenv("GOOGLE_SPREADSHEET_ID"), Credentials{
		JSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		File: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tab := sheets.Tab{Name: "IntegrationTest", Header: []string{"Period", "Value"}}
	rows := []sheets.Row{
		{Key: "2024-01", Values: []core.Money{core.Dollars(1)}},
		{Key: "2024-02", Values: []core.Money{core.Dollars(2)}},
	}
	if err := client.ReplaceAll(ctx, tab, rows); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if err := client.UpsertRow(ctx, tab, sheets.Row{Key: "2024-02", Values: []core.Money{core.Dollars(3)}}); err != nil {
		t.Fatalf("UpsertRow: %v", err)
	}
	if err := client.DeleteRow(ctx, tab, "2024-01"); err != nil {
		t.Fatalf("DeleteRow: %v", err)
	}

	keys, err := client.keyColumn(ctx, tab.Name)
	if err != nil {
		t.Fatalf("keyColumn: %v", err)
	}
	if findRow(keys, "2024-02") != 3 {
		t.Errorf("2024-02 should stay on row 3, keys=%v", keys)
	}
	if findRow(keys, "2024-01") != 0 {
		t.Errorf("2024-01 should be cleared, keys=%v", keys)
	}
}
