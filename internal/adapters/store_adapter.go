// Package adapters joins a record store with the record service so callers
// see a single ports.Store whose writes are published for mirroring.
package adapters

import (
	"context"

	"homefin/internal/core"
	"homefin/internal/ports"
	"homefin/internal/services"
)

var _ ports.Store = (*StoreAdapter)(nil)

// StoreAdapter reads straight from the store and writes through the record
// service. The HTTP handlers work against it unchanged for every backend.
type StoreAdapter struct {
	ports.Store
	service *services.RecordService
}

func NewStoreAdapter(store ports.Store, service *services.RecordService) *StoreAdapter {
	return &StoreAdapter{Store: store, service: service}
}

// Ping checks the underlying store when it supports health checks.
func (a *StoreAdapter) Ping(ctx context.Context) error {
	if p, ok := a.Store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (a *StoreAdapter) SaveBalanceSnapshot(ctx context.Context, b core.BalanceSnapshot) error {
	return a.service.SaveBalanceSnapshot(ctx, b)
}

func (a *StoreAdapter) SaveIncomeRecord(ctx context.Context, r core.IncomeExpenseRecord) error {
	return a.service.SaveIncomeRecord(ctx, r)
}

func (a *StoreAdapter) SaveTaxReturn(ctx context.Context, t core.TaxReturnSummary) error {
	return a.service.SaveTaxReturn(ctx, t)
}

func (a *StoreAdapter) SaveMetricConstant(ctx context.Context, c core.MetricConstant) (core.MetricConstant, error) {
	return a.service.SaveMetricConstant(ctx, c)
}

func (a *StoreAdapter) DeleteBalanceSnapshot(ctx context.Context, p core.Period) error {
	return a.service.DeleteBalanceSnapshot(ctx, p)
}

func (a *StoreAdapter) DeleteIncomeRecord(ctx context.Context, p core.Period) error {
	return a.service.DeleteIncomeRecord(ctx, p)
}

func (a *StoreAdapter) DeleteTaxReturn(ctx context.Context, year int) error {
	return a.service.DeleteTaxReturn(ctx, year)
}

func (a *StoreAdapter) DeleteMetricConstant(ctx context.Context, id int64) error {
	return a.service.DeleteMetricConstant(ctx, id)
}
