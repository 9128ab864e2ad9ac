// Package ports declares the record store interfaces consumed by the
// reporting layer and the web boundary.
package ports

import (
	"context"
	"errors"

	"homefin/internal/core"
)

// ErrNotFound is returned by writers when updating or deleting a record that
// does not exist.
var ErrNotFound = errors.New("record not found")

// Filter narrows list queries. Zero fields are unset.
type Filter struct {
	Year  int
	Month int
}

// Matches reports whether p passes the filter.
func (f Filter) Matches(p core.Period) bool {
	if f.Year != 0 && p.Year != f.Year {
		return false
	}
	if f.Month != 0 && p.Month != f.Month {
		return false
	}
	return true
}

type (
	// RecordReader reads monthly records. Lists are newest first.
	RecordReader interface {
		ListBalanceSnapshots(ctx context.Context, f Filter) ([]core.BalanceSnapshot, error)
		ListIncomeRecords(ctx context.Context, f Filter) ([]core.IncomeExpenseRecord, error)
		FindBalanceSnapshot(ctx context.Context, p core.Period) (core.BalanceSnapshot, bool, error)
		FindIncomeRecord(ctx context.Context, p core.Period) (core.IncomeExpenseRecord, bool, error)
		// ListDistinctYears returns the years holding records of kind, descending.
		ListDistinctYears(ctx context.Context, kind core.Kind) ([]int, error)
		// LoadRecordSet returns every balance and income record from a single
		// consistent read.
		LoadRecordSet(ctx context.Context) (core.RecordSet, error)
	}

	// TaxReader reads tax return summaries, newest year first.
	TaxReader interface {
		ListTaxReturns(ctx context.Context) ([]core.TaxReturnSummary, error)
		FindTaxReturn(ctx context.Context, year int) (core.TaxReturnSummary, bool, error)
	}

	// ConstantReader reads metric constants, newest date first.
	ConstantReader interface {
		ListMetricConstants(ctx context.Context) ([]core.MetricConstant, error)
	}

	// RecordWriter upserts and deletes records by key.
	RecordWriter interface {
		SaveBalanceSnapshot(ctx context.Context, s core.BalanceSnapshot) error
		SaveIncomeRecord(ctx context.Context, r core.IncomeExpenseRecord) error
		SaveTaxReturn(ctx context.Context, t core.TaxReturnSummary) error
		SaveMetricConstant(ctx context.Context, c core.MetricConstant) (core.MetricConstant, error)
		DeleteBalanceSnapshot(ctx context.Context, p core.Period) error
		DeleteIncomeRecord(ctx context.Context, p core.Period) error
		DeleteTaxReturn(ctx context.Context, year int) error
		DeleteMetricConstant(ctx context.Context, id int64) error
	}

	// Store is the full record store.
	Store interface {
		RecordReader
		TaxReader
		ConstantReader
		RecordWriter
	}
)
