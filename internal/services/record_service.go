// Package services orchestrates record writes and builds reports for the web
// boundary.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"homefin/internal/amqp"
	"homefin/internal/core"
	"homefin/internal/ports"
)

// Publisher announces record changes to the sync worker.
type Publisher interface {
	PublishRecordSync(ctx context.Context, op amqp.Op, kind core.Kind, year, month int) error
}

var _ Publisher = (*amqp.Client)(nil)

var _ ports.RecordWriter = (*RecordService)(nil)

// RecordService writes records to the store, then notifies change listeners
// and publishes a sync message. Publish failures never fail the write.
type RecordService struct {
	store     ports.Store
	publisher Publisher

	mu        sync.RWMutex
	listeners []func(core.Kind)
}

func NewRecordService(store ports.Store, publisher Publisher) *RecordService {
	return &RecordService{store: store, publisher: publisher}
}

// OnChange registers fn to run after every successful record write.
func (s *RecordService) OnChange(fn func(core.Kind)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *RecordService) changed(ctx context.Context, op amqp.Op, kind core.Kind, year, month int) {
	s.mu.RLock()
	listeners := slices.Clone(s.listeners)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(kind)
	}

	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping sync message", "kind", kind)
		return
	}
	if err := s.publisher.PublishRecordSync(ctx, op, kind, year, month); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"op", op, "kind", kind, "year", year, "month", month, "error", err)
	}
}

func (s *RecordService) SaveBalanceSnapshot(ctx context.Context, b core.BalanceSnapshot) error {
	if err := s.store.SaveBalanceSnapshot(ctx, b); err != nil {
		return fmt.Errorf("save balance snapshot %s: %w", b.Period.Label(), err)
	}
	s.changed(ctx, amqp.OpUpsert, core.KindBalance, b.Period.Year, b.Period.Month)
	return nil
}

func (s *RecordService) SaveIncomeRecord(ctx context.Context, r core.IncomeExpenseRecord) error {
	if err := s.store.SaveIncomeRecord(ctx, r); err != nil {
		return fmt.Errorf("save income record %s: %w", r.Period.Label(), err)
	}
	s.changed(ctx, amqp.OpUpsert, core.KindIncome, r.Period.Year, r.Period.Month)
	return nil
}

func (s *RecordService) SaveTaxReturn(ctx context.Context, t core.TaxReturnSummary) error {
	if err := s.store.SaveTaxReturn(ctx, t); err != nil {
		return fmt.Errorf("save tax return %d: %w", t.Year, err)
	}
	s.changed(ctx, amqp.OpUpsert, core.KindTax, t.Year, 0)
	return nil
}

// SaveMetricConstant stores a constant. Constants feed no report or mirror.
func (s *RecordService) SaveMetricConstant(ctx context.Context, c core.MetricConstant) (core.MetricConstant, error) {
	saved, err := s.store.SaveMetricConstant(ctx, c)
	if err != nil {
		return core.MetricConstant{}, fmt.Errorf("save metric constant: %w", err)
	}
	return saved, nil
}

func (s *RecordService) DeleteBalanceSnapshot(ctx context.Context, p core.Period) error {
	if err := s.store.DeleteBalanceSnapshot(ctx, p); err != nil {
		return fmt.Errorf("delete balance snapshot %s: %w", p.Label(), err)
	}
	s.changed(ctx, amqp.OpDelete, core.KindBalance, p.Year, p.Month)
	return nil
}

func (s *RecordService) DeleteIncomeRecord(ctx context.Context, p core.Period) error {
	if err := s.store.DeleteIncomeRecord(ctx, p); err != nil {
		return fmt.Errorf("delete income record %s: %w", p.Label(), err)
	}
	s.changed(ctx, amqp.OpDelete, core.KindIncome, p.Year, p.Month)
	return nil
}

func (s *RecordService) DeleteTaxReturn(ctx context.Context, year int) error {
	if err := s.store.DeleteTaxReturn(ctx, year); err != nil {
		return fmt.Errorf("delete tax return %d: %w", year, err)
	}
	s.changed(ctx, amqp.OpDelete, core.KindTax, year, 0)
	return nil
}

func (s *RecordService) DeleteMetricConstant(ctx context.Context, id int64) error {
	if err := s.store.DeleteMetricConstant(ctx, id); err != nil {
		return fmt.Errorf("delete metric constant %d: %w", id, err)
	}
	return nil
}

// Close closes the publisher and the store when they hold resources.
func (s *RecordService) Close() error {
	var errs []error

	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if c, ok := s.store.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %w", errors.Join(errs...))
	}
	return nil
}
