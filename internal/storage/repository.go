package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"homefin/internal/core"
	"homefin/internal/ports"

	_ "modernc.org/sqlite"
)

var _ ports.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks database connectivity for readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(r.queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// saveMonthly replaces the record and all its amounts in one transaction.
// Zero amounts are not stored since a missing field reads as zero.
func (r *SQLiteRepository) saveMonthly(ctx context.Context, kind core.Kind, p core.Period, amounts map[string]core.Money) error {
	key := UpsertMonthlyRecordParams{Kind: string(kind), Year: int64(p.Year), Month: int64(p.Month)}
	return r.withTx(ctx, func(q *Queries) error {
		if err := q.UpsertMonthlyRecord(ctx, key); err != nil {
			return fmt.Errorf("upsert %s record: %w", kind, err)
		}
		if err := q.DeleteMonthlyAmounts(ctx, DeleteMonthlyAmountsParams(key)); err != nil {
			return fmt.Errorf("clear %s amounts: %w", kind, err)
		}
		for field, m := range amounts {
			if m.IsZero() {
				continue
			}
			if err := q.InsertMonthlyAmount(ctx, InsertMonthlyAmountParams{
				Kind:        key.Kind,
				Year:        key.Year,
				Month:       key.Month,
				Field:       field,
				AmountCents: m.Cents,
			}); err != nil {
				return fmt.Errorf("insert %s amount %s: %w", kind, field, err)
			}
		}
		return nil
	})
}

type monthlyRow struct {
	period  core.Period
	amounts map[string]core.Money
}

// listMonthly groups joined rows into records, preserving the query order.
func listMonthly(ctx context.Context, q *Queries, kind core.Kind, f ports.Filter) ([]monthlyRow, error) {
	rows, err := q.ListMonthlyRows(ctx, ListMonthlyRowsParams{
		Kind:  string(kind),
		Year:  int64(f.Year),
		Month: int64(f.Month),
	})
	if err != nil {
		return nil, fmt.Errorf("list %s rows: %w", kind, err)
	}
	var out []monthlyRow
	for _, row := range rows {
		p := core.NewPeriod(int(row.Year), int(row.Month))
		if len(out) == 0 || out[len(out)-1].period != p {
			out = append(out, monthlyRow{period: p, amounts: make(map[string]core.Money)})
		}
		if row.Field.Valid {
			out[len(out)-1].amounts[row.Field.String] = core.Cents(row.AmountCents.Int64)
		}
	}
	return out, nil
}

func toBalances(rows []monthlyRow) []core.BalanceSnapshot {
	out := make([]core.BalanceSnapshot, len(rows))
	for i, row := range rows {
		out[i] = core.BalanceSnapshot{Period: row.period, Amounts: row.amounts}
	}
	return out
}

func toIncomes(rows []monthlyRow) []core.IncomeExpenseRecord {
	out := make([]core.IncomeExpenseRecord, len(rows))
	for i, row := range rows {
		out[i] = core.IncomeExpenseRecord{Period: row.period, Amounts: row.amounts}
	}
	return out
}

func (r *SQLiteRepository) ListBalanceSnapshots(ctx context.Context, f ports.Filter) ([]core.BalanceSnapshot, error) {
	rows, err := listMonthly(ctx, r.queries, core.KindBalance, f)
	if err != nil {
		return nil, err
	}
	return toBalances(rows), nil
}

func (r *SQLiteRepository) ListIncomeRecords(ctx context.Context, f ports.Filter) ([]core.IncomeExpenseRecord, error) {
	rows, err := listMonthly(ctx, r.queries, core.KindIncome, f)
	if err != nil {
		return nil, err
	}
	return toIncomes(rows), nil
}

func (r *SQLiteRepository) FindBalanceSnapshot(ctx context.Context, p core.Period) (core.BalanceSnapshot, bool, error) {
	rows, err := listMonthly(ctx, r.queries, core.KindBalance, ports.Filter{Year: p.Year, Month: p.Month})
	if err != nil || len(rows) == 0 {
		return core.BalanceSnapshot{}, false, err
	}
	return toBalances(rows)[0], true, nil
}

func (r *SQLiteRepository) FindIncomeRecord(ctx context.Context, p core.Period) (core.IncomeExpenseRecord, bool, error) {
	rows, err := listMonthly(ctx, r.queries, core.KindIncome, ports.Filter{Year: p.Year, Month: p.Month})
	if err != nil || len(rows) == 0 {
		return core.IncomeExpenseRecord{}, false, err
	}
	return toIncomes(rows)[0], true, nil
}

func (r *SQLiteRepository) ListDistinctYears(ctx context.Context, kind core.Kind) ([]int, error) {
	var years []int64
	var err error
	switch kind {
	case core.KindBalance, core.KindIncome:
		years, err = r.queries.ListMonthlyYears(ctx, string(kind))
	case core.KindTax:
		var returns []TaxReturn
		returns, err = r.queries.ListTaxReturns(ctx)
		for _, t := range returns {
			years = append(years, t.Year)
		}
	default:
		return nil, core.ErrInvalidKind
	}
	if err != nil {
		return nil, fmt.Errorf("list %s years: %w", kind, err)
	}
	out := make([]int, len(years))
	for i, y := range years {
		out[i] = int(y)
	}
	return out, nil
}

// LoadRecordSet reads balances and incomes inside one transaction so a
// concurrent write cannot land between the two reads.
func (r *SQLiteRepository) LoadRecordSet(ctx context.Context) (core.RecordSet, error) {
	var set core.RecordSet
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return set, fmt.Errorf("begin read transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	bals, err := listMonthly(ctx, q, core.KindBalance, ports.Filter{})
	if err != nil {
		return set, err
	}
	incs, err := listMonthly(ctx, q, core.KindIncome, ports.Filter{})
	if err != nil {
		return set, err
	}

	// rows arrive newest first; the record set is oldest first
	set.Balances = toBalances(bals)
	set.Incomes = toIncomes(incs)
	reverse(set.Balances)
	reverse(set.Incomes)
	return set, nil
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func (r *SQLiteRepository) SaveBalanceSnapshot(ctx context.Context, b core.BalanceSnapshot) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := r.saveMonthly(ctx, core.KindBalance, b.Period, b.Amounts); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Balance snapshot saved to SQLite", "year", b.Period.Year, "month", b.Period.Month)
	return nil
}

func (r *SQLiteRepository) SaveIncomeRecord(ctx context.Context, rec core.IncomeExpenseRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := r.saveMonthly(ctx, core.KindIncome, rec.Period, rec.Amounts); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Income record saved to SQLite", "year", rec.Period.Year, "month", rec.Period.Month)
	return nil
}

func (r *SQLiteRepository) deleteMonthly(ctx context.Context, kind core.Kind, p core.Period) error {
	key := DeleteMonthlyRecordParams{Kind: string(kind), Year: int64(p.Year), Month: int64(p.Month)}
	return r.withTx(ctx, func(q *Queries) error {
		n, err := q.DeleteMonthlyRecord(ctx, key)
		if err != nil {
			return fmt.Errorf("delete %s record: %w", kind, err)
		}
		if n == 0 {
			return ports.ErrNotFound
		}
		if err := q.DeleteMonthlyAmounts(ctx, DeleteMonthlyAmountsParams(key)); err != nil {
			return fmt.Errorf("delete %s amounts: %w", kind, err)
		}
		return nil
	})
}

func (r *SQLiteRepository) DeleteBalanceSnapshot(ctx context.Context, p core.Period) error {
	return r.deleteMonthly(ctx, core.KindBalance, p)
}

func (r *SQLiteRepository) DeleteIncomeRecord(ctx context.Context, p core.Period) error {
	return r.deleteMonthly(ctx, core.KindIncome, p)
}

func taxFromRow(t TaxReturn) core.TaxReturnSummary {
	return core.TaxReturnSummary{
		Year:                 int(t.Year),
		JobWages:             core.Cents(t.JobWagesCents),
		FederalWages:         core.Cents(t.FederalWagesCents),
		TotalIncome:          core.Cents(t.TotalIncomeCents),
		AdjustedGrossIncome:  core.Cents(t.AdjustedGrossIncomeCents),
		ItemizedDeductions:   core.Cents(t.ItemizedDeductionsCents),
		FederalTaxableIncome: core.Cents(t.FederalTaxableIncomeCents),
		FederalTaxOwed:       core.Cents(t.FederalTaxOwedCents),
		FederalPayments:      core.Cents(t.FederalPaymentsCents),
		StateTaxableIncome:   core.Cents(t.StateTaxableIncomeCents),
		StateTaxOwed:         core.Cents(t.StateTaxOwedCents),
		StatePayments:        core.Cents(t.StatePaymentsCents),
	}
}

func (r *SQLiteRepository) ListTaxReturns(ctx context.Context) ([]core.TaxReturnSummary, error) {
	rows, err := r.queries.ListTaxReturns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tax returns: %w", err)
	}
	out := make([]core.TaxReturnSummary, len(rows))
	for i, t := range rows {
		out[i] = taxFromRow(t)
	}
	return out, nil
}

func (r *SQLiteRepository) FindTaxReturn(ctx context.Context, year int) (core.TaxReturnSummary, bool, error) {
	row, err := r.queries.GetTaxReturn(ctx, int64(year))
	if errors.Is(err, sql.ErrNoRows) {
		return core.TaxReturnSummary{}, false, nil
	}
	if err != nil {
		return core.TaxReturnSummary{}, false, fmt.Errorf("get tax return %d: %w", year, err)
	}
	return taxFromRow(row), true, nil
}

func (r *SQLiteRepository) SaveTaxReturn(ctx context.Context, t core.TaxReturnSummary) error {
	if err := t.Validate(); err != nil {
		return err
	}
	err := r.queries.UpsertTaxReturn(ctx, UpsertTaxReturnParams{
		Year:                      int64(t.Year),
		JobWagesCents:             t.JobWages.Cents,
		FederalWagesCents:         t.FederalWages.Cents,
		TotalIncomeCents:          t.TotalIncome.Cents,
		AdjustedGrossIncomeCents:  t.AdjustedGrossIncome.Cents,
		ItemizedDeductionsCents:   t.ItemizedDeductions.Cents,
		FederalTaxableIncomeCents: t.FederalTaxableIncome.Cents,
		FederalTaxOwedCents:       t.FederalTaxOwed.Cents,
		FederalPaymentsCents:      t.FederalPayments.Cents,
		StateTaxableIncomeCents:   t.StateTaxableIncome.Cents,
		StateTaxOwedCents:         t.StateTaxOwed.Cents,
		StatePaymentsCents:        t.StatePayments.Cents,
	})
	if err != nil {
		return fmt.Errorf("upsert tax return %d: %w", t.Year, err)
	}
	slog.InfoContext(ctx, "Tax return saved to SQLite", "year", t.Year)
	return nil
}

func (r *SQLiteRepository) DeleteTaxReturn(ctx context.Context, year int) error {
	n, err := r.queries.DeleteTaxReturn(ctx, int64(year))
	if err != nil {
		return fmt.Errorf("delete tax return %d: %w", year, err)
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func constantFromRow(m MetricConstant) (core.MetricConstant, error) {
	d, err := core.ParseDate(m.Date)
	if err != nil {
		return core.MetricConstant{}, err
	}
	return core.MetricConstant{ID: m.ID, Date: d, Value: core.Cents(m.ValueCents)}, nil
}

func (r *SQLiteRepository) ListMetricConstants(ctx context.Context) ([]core.MetricConstant, error) {
	rows, err := r.queries.ListMetricConstants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list metric constants: %w", err)
	}
	out := make([]core.MetricConstant, 0, len(rows))
	for _, row := range rows {
		c, err := constantFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("metric constant %d: %w", row.ID, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *SQLiteRepository) SaveMetricConstant(ctx context.Context, c core.MetricConstant) (core.MetricConstant, error) {
	if err := c.Validate(); err != nil {
		return core.MetricConstant{}, err
	}
	if c.ID == 0 {
		row, err := r.queries.CreateMetricConstant(ctx, CreateMetricConstantParams{
			Date:       c.Date.ISO(),
			ValueCents: c.Value.Cents,
		})
		if err != nil {
			return core.MetricConstant{}, fmt.Errorf("create metric constant: %w", err)
		}
		return constantFromRow(row)
	}
	n, err := r.queries.UpdateMetricConstant(ctx, UpdateMetricConstantParams{
		Date:       c.Date.ISO(),
		ValueCents: c.Value.Cents,
		ID:         c.ID,
	})
	if err != nil {
		return core.MetricConstant{}, fmt.Errorf("update metric constant %d: %w", c.ID, err)
	}
	if n == 0 {
		return core.MetricConstant{}, ports.ErrNotFound
	}
	return c, nil
}

func (r *SQLiteRepository) DeleteMetricConstant(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteMetricConstant(ctx, id)
	if err != nil {
		return fmt.Errorf("delete metric constant %d: %w", id, err)
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}
