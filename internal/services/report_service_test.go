package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"homefin/internal/aggregate"
	"homefin/internal/core"
	"homefin/internal/memory"
	"homefin/internal/seed"
)

// countingStore counts consistent record set loads.
type countingStore struct {
	*memory.Store
	loads atomic.Int64
}

func (s *countingStore) LoadRecordSet(ctx context.Context) (core.RecordSet, error) {
	s.loads.Add(1)
	return s.Store.LoadRecordSet(ctx)
}

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }
}

func seededStore(t *testing.T) *countingStore {
	t.Helper()
	s := &countingStore{Store: memory.New()}
	if _, err := seed.Load(context.Background(), s.Store); err != nil {
		t.Fatalf("seed.Load: %v", err)
	}
	return s
}

func TestReportService_DashboardEmpty(t *testing.T) {
	svc := NewReportService(memory.New(), nil, 0)
	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.LatestBalance != nil || d.LatestIncome != nil || len(d.Chart.Labels) != 0 {
		t.Errorf("empty store dashboard = %+v", d)
	}
}

func TestReportService_Dashboard(t *testing.T) {
	svc := NewReportService(seededStore(t), nil, 0)
	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.LatestBalance == nil || d.LatestBalance.Period != core.NewPeriod(2024, 12) {
		t.Fatalf("latest balance = %+v", d.LatestBalance)
	}
	if d.LatestIncome == nil || d.LatestIncome.Period != core.NewPeriod(2024, 12) {
		t.Fatalf("latest income = %+v", d.LatestIncome)
	}
	if len(d.Chart.Labels) != 12 || len(d.Chart.NetWorth) != 12 {
		t.Fatalf("chart has %d labels", len(d.Chart.Labels))
	}
	if d.Chart.Labels[0] != "Jan 2024" || d.Chart.Labels[11] != "Dec 2024" {
		t.Errorf("chart labels = %v", d.Chart.Labels)
	}
	if d.Chart.NetWorth[11] != d.LatestBalance.NetWorth {
		t.Errorf("last chart point %v != latest net worth %v", d.Chart.NetWorth[11], d.LatestBalance.NetWorth)
	}
	for i := range d.Chart.Labels {
		if d.Chart.Assets[i].Sub(d.Chart.Liabilities[i]) != d.Chart.NetWorth[i] {
			t.Errorf("point %d: assets - liabilities != net worth", i)
		}
	}
}

func TestReportService_Lists(t *testing.T) {
	ctx := context.Background()
	svc := NewReportService(seededStore(t), nil, 0)

	bl, err := svc.BalanceList(ctx, 2023)
	if err != nil {
		t.Fatalf("BalanceList: %v", err)
	}
	if len(bl.Rows) != 12 || bl.Rows[0].Period != core.NewPeriod(2023, 12) {
		t.Errorf("balance rows: %d, first %v", len(bl.Rows), bl.Rows[0].Period)
	}
	if len(bl.Years) != 2 || bl.Years[0] != 2024 {
		t.Errorf("balance years = %v", bl.Years)
	}

	il, err := svc.IncomeList(ctx, 0)
	if err != nil {
		t.Fatalf("IncomeList: %v", err)
	}
	if len(il.Rows) != 24 {
		t.Errorf("income rows = %d, want 24", len(il.Rows))
	}

	taxes, err := svc.TaxList(ctx)
	if err != nil {
		t.Fatalf("TaxList: %v", err)
	}
	if len(taxes) != 3 || taxes[0].Summary.Year != 2023 || taxes[0].TotalRefund != core.Dollars(1800) {
		t.Errorf("taxes = %+v", taxes)
	}
}

func TestReportService_CompareQuartersCachesUntilWrite(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	svc := NewReportService(store, nil, time.Minute)

	first, err := svc.CompareQuarters(ctx, 2, 2024)
	if err != nil {
		t.Fatalf("CompareQuarters: %v", err)
	}
	if _, err := svc.CompareQuarters(ctx, 2, 2024); err != nil {
		t.Fatalf("CompareQuarters: %v", err)
	}
	if n := store.loads.Load(); n != 1 {
		t.Errorf("loads = %d, want 1 (second call cached)", n)
	}

	want := aggregate.CompareQuarters(2, 2024, mustSet(t, store))
	if first.Target.TotalIncome != want.Target.TotalIncome || first.Target.NetWorth != want.Target.NetWorth {
		t.Errorf("cached comparison differs from a direct computation")
	}

	svc.Invalidate(core.KindIncome)
	if _, err := svc.CompareQuarters(ctx, 2, 2024); err != nil {
		t.Fatalf("CompareQuarters: %v", err)
	}
	if n := store.loads.Load(); n != 2 {
		t.Errorf("loads = %d, want 2 after invalidation", n)
	}
}

func TestReportService_TaxWritesKeepCache(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	svc := NewReportService(store, nil, time.Minute)

	_, _ = svc.Series(ctx, core.KindBalance, "net_worth", 0)
	svc.Invalidate(core.KindTax)
	_, _ = svc.Series(ctx, core.KindBalance, "net_worth", 0)
	if n := store.loads.Load(); n != 1 {
		t.Errorf("loads = %d, want 1", n)
	}
}

func TestReportService_NoCache(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	svc := NewReportService(store, nil, 0)

	_, _ = svc.CompareQuarters(ctx, 1, 2024)
	_, _ = svc.CompareQuarters(ctx, 1, 2024)
	if n := store.loads.Load(); n != 2 {
		t.Errorf("loads = %d, want 2 with caching disabled", n)
	}
	if svc.Caches() != nil {
		t.Error("Caches() should be nil when caching is disabled")
	}
}

func TestReportService_CompareQuartersRejectsInvalid(t *testing.T) {
	svc := NewReportService(memory.New(), nil, 0)
	_, err := svc.CompareQuarters(context.Background(), 5, 2024)
	if !errors.Is(err, core.ErrInvalidQuarter) {
		t.Errorf("error = %v, want ErrInvalidQuarter", err)
	}
}

func TestReportService_SeriesFallback(t *testing.T) {
	ctx := context.Background()
	svc := NewReportService(seededStore(t), nil, time.Minute)

	unknown, err := svc.Series(ctx, core.KindBalance, "no_such_metric", 2024)
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	nw, _ := svc.Series(ctx, core.KindBalance, "net_worth", 2024)
	if unknown.Metric.Key != "net_worth" || len(unknown.Points) != len(nw.Points) {
		t.Fatalf("fallback series = %+v", unknown.Metric)
	}
	for i := range nw.Points {
		if unknown.Points[i] != nw.Points[i] {
			t.Errorf("point %d differs", i)
		}
	}

	inc, _ := svc.Series(ctx, core.KindIncome, "", 0)
	if inc.Metric.Key != "total_income" || len(inc.Points) != 24 {
		t.Errorf("income default series = %s with %d points", inc.Metric.Key, len(inc.Points))
	}

	years, err := svc.SeriesYears(ctx, core.Kind("bogus"))
	if err != nil || len(years) != 2 {
		t.Errorf("SeriesYears = %v, %v", years, err)
	}
}

func TestReportService_DefaultQuarter(t *testing.T) {
	svc := NewReportService(memory.New(), fixedClock(2024, time.February, 10), 0)
	q, y := svc.DefaultQuarter()
	if q != 4 || y != 2023 {
		t.Errorf("DefaultQuarter() = Q%d %d, want Q4 2023", q, y)
	}
}

func TestParseQuarterSelector(t *testing.T) {
	now := time.Date(2024, time.August, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		quarter string
		year    string
		wantQ   core.Quarter
		wantY   int
		wantErr error
	}{
		{"defaults", "", "", 2, 2024, nil},
		{"explicit", "3", "2023", 3, 2023, nil},
		{"prefixed", "q1", "2022", 1, 2022, nil},
		{"quarter only", "4", "", 4, 2024, nil},
		{"year only", "", "2020", 2, 2020, nil},
		{"quarter out of range", "5", "2024", 0, 0, core.ErrInvalidQuarter},
		{"quarter garbage", "x", "2024", 0, 0, core.ErrInvalidQuarter},
		{"year garbage", "1", "20x4", 0, 0, core.ErrInvalidYear},
		{"year out of range", "1", "99", 0, 0, core.ErrInvalidYear},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, y, err := ParseQuarterSelector(tt.quarter, tt.year, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q != tt.wantQ || y != tt.wantY {
				t.Errorf("got Q%d %d, want Q%d %d", q, y, tt.wantQ, tt.wantY)
			}
		})
	}
}

func mustSet(t *testing.T, s *countingStore) core.RecordSet {
	t.Helper()
	set, err := s.Store.LoadRecordSet(context.Background())
	if err != nil {
		t.Fatalf("LoadRecordSet: %v", err)
	}
	return set
}

func TestReportService_SeriesResultsAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	svc := NewReportService(store, nil, time.Minute)

	first, err := svc.Series(ctx, core.KindBalance, "net_worth", 2024)
	if err != nil || len(first.Points) == 0 {
		t.Fatalf("Series: %v (%d points)", err, len(first.Points))
	}
	want := first.Points[0].Value
	first.Points[0].Value = core.Dollars(-1)

	second, err := svc.Series(ctx, core.KindBalance, "net_worth", 2024)
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if second.Points[0].Value != want {
		t.Errorf("cached point = %s, want %s", second.Points[0].Value, want)
	}
	if n := store.loads.Load(); n != 1 {
		t.Errorf("loads = %d, want 1", n)
	}
}

// cancelAwareStore fails loads whose context is already done.
type cancelAwareStore struct {
	*memory.Store
}

func (s cancelAwareStore) LoadRecordSet(ctx context.Context) (core.RecordSet, error) {
	if err := ctx.Err(); err != nil {
		return core.RecordSet{}, err
	}
	return s.Store.LoadRecordSet(ctx)
}

func TestReportService_SharedLoadIgnoresCallerCancel(t *testing.T) {
	store := seededStore(t)
	svc := NewReportService(cancelAwareStore{Store: store.Store}, nil, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		call func() error
	}{
		{"compare", func() error {
			_, err := svc.CompareQuarters(ctx, 1, 2024)
			return err
		}},
		{"series", func() error {
			_, err := svc.Series(ctx, core.KindIncome, "total_income", 2024)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err != nil {
				t.Errorf("error = %v, want nil", err)
			}
		})
	}
}
