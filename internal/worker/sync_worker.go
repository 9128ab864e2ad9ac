// Package worker keeps the spreadsheet mirror in step with the record store.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"homefin/internal/amqp"
	"homefin/internal/core"
	"homefin/internal/ports"
	"homefin/internal/sheets"
)

// Source is the read side the worker mirrors from.
type Source interface {
	ports.RecordReader
	ports.TaxReader
}

// SyncWorker applies record sync messages and full resyncs to a mirror.
type SyncWorker struct {
	store       Source
	mirror      sheets.Mirror
	tabs        sheets.Tabs
	concurrency int
}

func NewSyncWorker(store Source, mirror sheets.Mirror, tabs sheets.Tabs, concurrency int) *SyncWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SyncWorker{
		store:       store,
		mirror:      mirror,
		tabs:        tabs,
		concurrency: concurrency,
	}
}

// HandleSyncMessage mirrors the current state of the record named by msg.
// Upserts of records deleted in the meantime become row deletions.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"op", msg.Op,
		"kind", msg.Kind,
		"year", msg.Year,
		"month", msg.Month)

	tab := w.tabs.Tab(msg.Kind)

	var (
		row   sheets.Row
		found bool
		key   string
		err   error
	)
	switch msg.Kind {
	case core.KindBalance:
		key = sheets.PeriodKey(msg.Period())
		if msg.Op == amqp.OpUpsert {
			var b core.BalanceSnapshot
			b, found, err = w.store.FindBalanceSnapshot(ctx, msg.Period())
			row = sheets.BalanceRow(b)
		}
	case core.KindIncome:
		key = sheets.PeriodKey(msg.Period())
		if msg.Op == amqp.OpUpsert {
			var r core.IncomeExpenseRecord
			r, found, err = w.store.FindIncomeRecord(ctx, msg.Period())
			row = sheets.IncomeRow(r)
		}
	case core.KindTax:
		key = sheets.YearKey(msg.Year)
		if msg.Op == amqp.OpUpsert {
			var t core.TaxReturnSummary
			t, found, err = w.store.FindTaxReturn(ctx, msg.Year)
			row = sheets.TaxRow(t)
		}
	default:
		return fmt.Errorf("unknown record kind %q", msg.Kind)
	}
	if err != nil {
		return fmt.Errorf("read %s %s: %w", msg.Kind, key, err)
	}

	if !found {
		if err := w.mirror.DeleteRow(ctx, tab, key); err != nil {
			return fmt.Errorf("delete %s row %s: %w", tab.Name, key, err)
		}
		slog.InfoContext(ctx, "Removed mirrored row", "tab", tab.Name, "key", key)
		return nil
	}

	if err := w.mirror.UpsertRow(ctx, tab, row); err != nil {
		return fmt.Errorf("upsert %s row %s: %w", tab.Name, key, err)
	}
	slog.InfoContext(ctx, "Mirrored row", "tab", tab.Name, "key", key)
	return nil
}

// FullResync rewrites every tab from one consistent read of the store.
// Tabs are written concurrently up to the configured limit.
func (w *SyncWorker) FullResync(ctx context.Context) error {
	set, err := w.store.LoadRecordSet(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	taxes, err := w.store.ListTaxReturns(ctx)
	if err != nil {
		return fmt.Errorf("list tax returns: %w", err)
	}

	balanceRows := make([]sheets.Row, 0, len(set.Balances))
	for _, b := range set.Balances {
		balanceRows = append(balanceRows, sheets.BalanceRow(b))
	}
	incomeRows := make([]sheets.Row, 0, len(set.Incomes))
	for _, r := range set.Incomes {
		incomeRows = append(incomeRows, sheets.IncomeRow(r))
	}
	// oldest year first, matching the monthly tabs
	taxRows := make([]sheets.Row, 0, len(taxes))
	for i := len(taxes) - 1; i >= 0; i-- {
		taxRows = append(taxRows, sheets.TaxRow(taxes[i]))
	}

	jobs := []struct {
		kind core.Kind
		rows []sheets.Row
	}{
		{core.KindBalance, balanceRows},
		{core.KindIncome, incomeRows},
		{core.KindTax, taxRows},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, job := range jobs {
		tab := w.tabs.Tab(job.kind)
		rows := job.rows
		g.Go(func() error {
			if err := w.mirror.ReplaceAll(gctx, tab, rows); err != nil {
				return fmt.Errorf("rewrite %s: %w", tab.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Full resync completed",
		"balances", len(balanceRows),
		"income", len(incomeRows),
		"taxes", len(taxRows))
	return nil
}
