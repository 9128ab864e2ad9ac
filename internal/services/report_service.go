package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"homefin/internal/aggregate"
	"homefin/internal/cache"
	"homefin/internal/core"
	applog "homefin/internal/log"
	"homefin/internal/ports"
)

// ReportReader is the read side the report service needs.
type ReportReader interface {
	ports.RecordReader
	ports.TaxReader
	ports.ConstantReader
}

const (
	dashboardChartLen = 12
	reportCacheSize   = 256
)

// Dashboard is the landing page model.
type Dashboard struct {
	LatestBalance *aggregate.BalanceTotals
	LatestIncome  *aggregate.IncomeTotals
	Chart         DashboardChart
}

// DashboardChart holds the last snapshots, oldest first.
type DashboardChart struct {
	Labels      []string     `json:"labels"`
	NetWorth    []core.Money `json:"net_worth"`
	Assets      []core.Money `json:"assets"`
	Liabilities []core.Money `json:"liabilities"`
}

// BalanceList is a year-filtered list of snapshots with their totals.
type BalanceList struct {
	Year  int
	Years []int
	Rows  []aggregate.BalanceTotals
}

// IncomeList is a year-filtered list of income records with their totals.
type IncomeList struct {
	Year  int
	Years []int
	Rows  []aggregate.IncomeTotals
}

// ReportService is the reporting layer between the store and the web
// boundary. Quarter comparisons and series are cached until the next write.
type ReportService struct {
	store  ReportReader
	now    func() time.Time
	logger *applog.Logger

	comparisons *cache.LRUCache[aggregate.QuarterComparison]
	series      *cache.LRUCache[aggregate.Series]
	group       singleflight.Group
	// generation is bumped on every write so flights started earlier never
	// share keys with later requests.
	generation atomic.Uint64
}

// NewReportService builds the service. now defaults to time.Now and ttl <= 0
// disables caching.
func NewReportService(store ReportReader, now func() time.Time, ttl time.Duration) *ReportService {
	if now == nil {
		now = time.Now
	}
	s := &ReportService{
		store:  store,
		now:    now,
		logger: applog.FromContext(context.Background()).WithComponent(applog.ComponentReport),
	}
	if ttl > 0 {
		s.comparisons = cache.NewLRUCache[aggregate.QuarterComparison](reportCacheSize, ttl)
		s.series = cache.NewLRUCache[aggregate.Series](reportCacheSize, ttl)
	}
	return s
}

// Caches returns the report caches for periodic expiry.
func (s *ReportService) Caches() []cache.Cleaner {
	if s.comparisons == nil {
		return nil
	}
	return []cache.Cleaner{s.comparisons, s.series}
}

// Invalidate drops cached reports. It is registered as a write listener.
func (s *ReportService) Invalidate(kind core.Kind) {
	if kind == core.KindTax {
		return
	}
	s.generation.Add(1)
	if s.comparisons == nil {
		return
	}
	s.comparisons.Purge()
	s.series.Purge()
	s.logger.Debug("Report cache purged", applog.FieldKind, kind)
}

// Now returns the injected clock reading.
func (s *ReportService) Now() time.Time {
	return s.now()
}

// DefaultQuarter is the last complete quarter relative to the injected clock.
func (s *ReportService) DefaultQuarter() (core.Quarter, int) {
	return aggregate.LastCompleteQuarter(s.now())
}

// Dashboard returns the latest totals and the net worth chart.
func (s *ReportService) Dashboard(ctx context.Context) (Dashboard, error) {
	balances, err := s.store.ListBalanceSnapshots(ctx, ports.Filter{})
	if err != nil {
		return Dashboard{}, fmt.Errorf("list balances: %w", err)
	}
	incomes, err := s.store.ListIncomeRecords(ctx, ports.Filter{})
	if err != nil {
		return Dashboard{}, fmt.Errorf("list income: %w", err)
	}

	var d Dashboard
	if len(balances) > 0 {
		t := aggregate.ComputeBalanceTotals(balances[0])
		d.LatestBalance = &t
	}
	if len(incomes) > 0 {
		t := aggregate.ComputeIncomeTotals(incomes[0])
		d.LatestIncome = &t
	}

	recent := balances
	if len(recent) > dashboardChartLen {
		recent = recent[:dashboardChartLen]
	}
	for i := len(recent) - 1; i >= 0; i-- {
		t := aggregate.ComputeBalanceTotals(recent[i])
		d.Chart.Labels = append(d.Chart.Labels, recent[i].Period.Label())
		d.Chart.NetWorth = append(d.Chart.NetWorth, t.NetWorth)
		d.Chart.Assets = append(d.Chart.Assets, t.TotalAssets)
		d.Chart.Liabilities = append(d.Chart.Liabilities, t.TotalLiabilities)
	}
	return d, nil
}

// BalanceList lists snapshots newest first, filtered by year when non-zero.
func (s *ReportService) BalanceList(ctx context.Context, year int) (BalanceList, error) {
	snaps, err := s.store.ListBalanceSnapshots(ctx, ports.Filter{Year: year})
	if err != nil {
		return BalanceList{}, fmt.Errorf("list balances: %w", err)
	}
	years, err := s.store.ListDistinctYears(ctx, core.KindBalance)
	if err != nil {
		return BalanceList{}, fmt.Errorf("list balance years: %w", err)
	}
	out := BalanceList{Year: year, Years: years, Rows: make([]aggregate.BalanceTotals, 0, len(snaps))}
	for _, b := range snaps {
		out.Rows = append(out.Rows, aggregate.ComputeBalanceTotals(b))
	}
	return out, nil
}

// IncomeList lists income records newest first, filtered by year when non-zero.
func (s *ReportService) IncomeList(ctx context.Context, year int) (IncomeList, error) {
	recs, err := s.store.ListIncomeRecords(ctx, ports.Filter{Year: year})
	if err != nil {
		return IncomeList{}, fmt.Errorf("list income: %w", err)
	}
	years, err := s.store.ListDistinctYears(ctx, core.KindIncome)
	if err != nil {
		return IncomeList{}, fmt.Errorf("list income years: %w", err)
	}
	out := IncomeList{Year: year, Years: years, Rows: make([]aggregate.IncomeTotals, 0, len(recs))}
	for _, r := range recs {
		out.Rows = append(out.Rows, aggregate.ComputeIncomeTotals(r))
	}
	return out, nil
}

// TaxList returns every tax return with refunds, newest year first.
func (s *ReportService) TaxList(ctx context.Context) ([]aggregate.TaxTotals, error) {
	taxes, err := s.store.ListTaxReturns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tax returns: %w", err)
	}
	out := make([]aggregate.TaxTotals, 0, len(taxes))
	for _, t := range taxes {
		out = append(out, aggregate.ComputeTaxTotals(t))
	}
	return out, nil
}

// Constants lists metric constants newest first.
func (s *ReportService) Constants(ctx context.Context) ([]core.MetricConstant, error) {
	out, err := s.store.ListMetricConstants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list metric constants: %w", err)
	}
	return out, nil
}

// CompareQuarters returns the comparison for quarter q of year from one
// consistent record set. q must be valid.
func (s *ReportService) CompareQuarters(ctx context.Context, q core.Quarter, year int) (aggregate.QuarterComparison, error) {
	if !q.Valid() {
		return aggregate.QuarterComparison{}, fmt.Errorf("%w: %d", core.ErrInvalidQuarter, int(q))
	}
	key := fmt.Sprintf("%d:quarter:%d:%d", s.generation.Load(), q, year)
	if s.comparisons != nil {
		if c, ok := s.comparisons.Get(key); ok {
			return c, nil
		}
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		set, err := s.store.LoadRecordSet(context.WithoutCancel(ctx))
		if err != nil {
			return nil, fmt.Errorf("load records: %w", err)
		}
		c := aggregate.CompareQuarters(q, year, set)
		if s.comparisons != nil {
			s.comparisons.Set(key, c)
		}
		return c, nil
	})
	if err != nil {
		return aggregate.QuarterComparison{}, err
	}
	s.logger.DebugContext(ctx, "Quarter comparison computed",
		applog.FieldQuarter, int(q), applog.FieldYear, year, "shared", shared)
	return v.(aggregate.QuarterComparison), nil
}

// Series builds the chart series for metric key over kind's records.
// Unknown keys fall back to the kind default; year 0 means every year.
func (s *ReportService) Series(ctx context.Context, kind core.Kind, key string, year int) (aggregate.Series, error) {
	m := aggregate.ResolveMetric(kind, key)
	cacheKey := fmt.Sprintf("%d:series:%s:%s:%d", s.generation.Load(), m.Kind, m.Key, year)
	if s.series != nil {
		if sr, ok := s.series.Get(cacheKey); ok {
			return cloneSeries(sr), nil
		}
	}

	v, err, _ := s.group.Do(cacheKey, func() (any, error) {
		set, err := s.store.LoadRecordSet(context.WithoutCancel(ctx))
		if err != nil {
			return nil, fmt.Errorf("load records: %w", err)
		}
		sr := aggregate.BuildMetricSeries(m.Key, m.Kind, year, set)
		if s.series != nil {
			s.series.Set(cacheKey, sr)
		}
		return sr, nil
	})
	if err != nil {
		return aggregate.Series{}, err
	}
	return cloneSeries(v.(aggregate.Series)), nil
}

// cloneSeries copies the points so callers never share the cached slice.
func cloneSeries(sr aggregate.Series) aggregate.Series {
	sr.Points = slices.Clone(sr.Points)
	return sr
}

// SeriesYears lists the years available for kind's charts, newest first.
func (s *ReportService) SeriesYears(ctx context.Context, kind core.Kind) ([]int, error) {
	if kind != core.KindIncome {
		kind = core.KindBalance
	}
	years, err := s.store.ListDistinctYears(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s years: %w", kind, err)
	}
	return years, nil
}

// ParseQuarterSelector parses the quarter and year query values. A blank
// value takes its part from the last complete quarter before now.
func ParseQuarterSelector(quarter, year string, now time.Time) (core.Quarter, int, error) {
	dq, dy := aggregate.LastCompleteQuarter(now)

	q := dq
	if strings.TrimSpace(quarter) != "" {
		parsed, err := core.ParseQuarter(quarter)
		if err != nil {
			return 0, 0, err
		}
		q = parsed
	}

	y := dy
	if s := strings.TrimSpace(year); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, fmt.Errorf("%w %q", core.ErrInvalidYear, year)
		}
		if err := core.ValidateYear(n); err != nil {
			return 0, 0, err
		}
		y = n
	}
	return q, y, nil
}
