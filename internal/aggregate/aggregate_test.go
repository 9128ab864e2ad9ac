package aggregate

import (
	"reflect"
	"testing"
	"time"

	"homefin/internal/catalog"
	"homefin/internal/core"
)

func snapshot(y, m int, amounts map[string]int64) core.BalanceSnapshot {
	s := core.BalanceSnapshot{Period: core.NewPeriod(y, m)}
	for k, v := range amounts {
		s.Set(k, core.Dollars(v))
	}
	return s
}

func income(y, m int, amounts map[string]int64) core.IncomeExpenseRecord {
	r := core.IncomeExpenseRecord{Period: core.NewPeriod(y, m)}
	for k, v := range amounts {
		r.Set(k, core.Dollars(v))
	}
	return r
}

func TestComputeBalanceTotals(t *testing.T) {
	s := snapshot(2024, 1, map[string]int64{
		"huntington_check": 1000,
		"capone_save":      2000,
		"amex_credit":      500,
	})
	got := ComputeBalanceTotals(s)
	if got.TotalAssets != core.Dollars(3000) {
		t.Fatalf("assets %s", got.TotalAssets)
	}
	if got.TotalLiabilities != core.Dollars(500) {
		t.Fatalf("liabilities %s", got.TotalLiabilities)
	}
	if got.NetWorth.String() != "2500.00" {
		t.Fatalf("net worth %s", got.NetWorth)
	}
	if got.Subtotal(catalog.Savings) != core.Dollars(2000) {
		t.Fatalf("savings subtotal %s", got.Subtotal(catalog.Savings))
	}
	if len(got.Subtotals) != len(catalog.Balance.Categories()) {
		t.Fatalf("expected one subtotal per category")
	}
}

func TestBalanceTotalsAdditivityWithNegatives(t *testing.T) {
	s := snapshot(2024, 1, nil)
	var wantAssets, wantLiab int64
	for i, key := range catalog.Balance.Keys() {
		v := int64(i*37 - 300)
		s.Set(key, core.Cents(v))
		role, _ := catalog.Balance.RoleOf(key)
		if role == catalog.RoleAsset {
			wantAssets += v
		} else {
			wantLiab += v
		}
	}
	got := ComputeBalanceTotals(s)
	if got.TotalAssets.Cents != wantAssets || got.TotalLiabilities.Cents != wantLiab {
		t.Fatalf("got assets=%d liab=%d, want %d %d", got.TotalAssets.Cents, got.TotalLiabilities.Cents, wantAssets, wantLiab)
	}
	if got.NetWorth.Cents != wantAssets-wantLiab {
		t.Fatalf("net worth %d", got.NetWorth.Cents)
	}
}

func TestComputeIncomeTotals(t *testing.T) {
	r := income(2024, 3, map[string]int64{
		"cdm_salary":         5000,
		"federal_tax":        1000,
		"aep_electric":       300,
		"daycare":            700,
		"four01k_retirement": 1500,
	})
	got := ComputeIncomeTotals(r)
	if got.TotalIncome != core.Dollars(5000) {
		t.Fatalf("income %s", got.TotalIncome)
	}
	if got.TotalExpenses != core.Dollars(2000) {
		t.Fatalf("expenses %s", got.TotalExpenses)
	}
	if got.TotalAllSavings != core.Dollars(1500) {
		t.Fatalf("savings %s", got.TotalAllSavings)
	}
	if got.TotalSurplus.String() != "1500.00" {
		t.Fatalf("surplus %s", got.TotalSurplus)
	}
	if len(got.Ungrouped) != 4 {
		t.Fatalf("expected 4 ungrouped expense lines, got %d", len(got.Ungrouped))
	}
}

func TestIncomeSurplusScenarios(t *testing.T) {
	tests := []struct {
		name    string
		amounts map[string]int64
		want    string
	}{
		{"no savings", map[string]int64{"cdm_salary": 6000, "federal_tax": 1000, "hoa_fees": 3500}, "1500.00"},
		{"with savings", map[string]int64{"cdm_salary": 5000, "federal_tax": 2000, "four01k_retirement": 1500}, "1500.00"},
		{"income only", map[string]int64{"cdm_salary": 6000}, "6000.00"},
		{"empty", map[string]int64{}, "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeIncomeTotals(income(2024, 5, tt.amounts))
			if got.TotalSurplus.String() != tt.want {
				t.Errorf("surplus = %s, want %s", got.TotalSurplus, tt.want)
			}
		})
	}
}

func TestIncomeSurplusNotClamped(t *testing.T) {
	r := income(2024, 3, map[string]int64{"cdm_salary": 100, "hoa_fees": 400})
	if got := ComputeIncomeTotals(r).TotalSurplus; got != core.Dollars(-300) {
		t.Fatalf("surplus %s", got)
	}
}

func TestUngroupedExpensesCountOnce(t *testing.T) {
	r := income(2024, 1, map[string]int64{
		"auto_insurance":        1,
		"cashorcheck_purchases": 2,
		"daycare":               3,
		"taxdeductible_giving":  4,
	})
	got := ComputeIncomeTotals(r)
	if got.TotalExpenses != core.Dollars(10) {
		t.Fatalf("expenses %s", got.TotalExpenses)
	}
	for _, s := range got.Subtotals {
		if !s.Amount.IsZero() {
			t.Fatalf("category %s should be zero, got %s", s.Key, s.Amount)
		}
	}
}

func TestComputeTaxTotals(t *testing.T) {
	tr := core.TaxReturnSummary{
		Year:            2023,
		FederalTaxOwed:  core.Dollars(14000),
		FederalPayments: core.Dollars(15500),
		StateTaxOwed:    core.Dollars(4500),
		StatePayments:   core.Dollars(4200),
	}
	got := ComputeTaxTotals(tr)
	if got.FederalRefund != core.Dollars(1500) {
		t.Fatalf("federal %s", got.FederalRefund)
	}
	if got.StateRefund != core.Dollars(-300) {
		t.Fatalf("state %s", got.StateRefund)
	}
	if got.TotalRefund != core.Dollars(1200) {
		t.Fatalf("total %s", got.TotalRefund)
	}
}

func TestBalanceBoundary(t *testing.T) {
	cases := []struct {
		q    core.Quarter
		year int
		want core.Period
	}{
		{1, 2023, core.NewPeriod(2023, 4)},
		{2, 2023, core.NewPeriod(2023, 7)},
		{3, 2023, core.NewPeriod(2023, 10)},
		{4, 2023, core.NewPeriod(2024, 1)},
	}
	for _, tc := range cases {
		if got := BalanceBoundary(tc.q, tc.year); got != tc.want {
			t.Fatalf("%v %d: got %+v want %+v", tc.q, tc.year, got, tc.want)
		}
	}
}

func TestQuarterReportUsesNextQuarterSnapshot(t *testing.T) {
	set := core.RecordSet{
		Balances: []core.BalanceSnapshot{
			snapshot(2023, 12, map[string]int64{"main_home": 1}),
			snapshot(2024, 1, map[string]int64{"main_home": 300000, "main_mortgage": 200000, "huntington_save": 5000}),
			snapshot(2023, 7, map[string]int64{"main_home": 99}),
		},
		Incomes: []core.IncomeExpenseRecord{
			income(2023, 10, map[string]int64{"cdm_salary": 1000, "ohio_tax": 50}),
			income(2023, 11, map[string]int64{"cdm_salary": 1000, "aep_electric": 20}),
			income(2023, 12, map[string]int64{"cdm_salary": 1000, "hoa_fees": 100, "amex_creditcard": 30}),
			income(2024, 1, map[string]int64{"cdm_salary": 999999}),
		},
	}

	rep := ComputeQuarterReport(4, 2023, set)
	if rep.Records != 3 {
		t.Fatalf("expected 3 records, got %d", rep.Records)
	}
	if rep.TotalIncome != core.Dollars(3000) {
		t.Fatalf("income %s", rep.TotalIncome)
	}
	if rep.TotalTaxes != core.Dollars(50) || rep.TotalUtilities != core.Dollars(20) ||
		rep.TotalHousing != core.Dollars(100) || rep.TotalPersonalCreditCards != core.Dollars(30) {
		t.Fatalf("category totals wrong: %+v", rep)
	}
	if rep.TotalExpenses != core.Dollars(200) || rep.TotalSurplus != core.Dollars(2800) {
		t.Fatalf("expenses=%s surplus=%s", rep.TotalExpenses, rep.TotalSurplus)
	}
	if rep.BalanceAsOf != core.NewPeriod(2024, 1) {
		t.Fatalf("boundary %+v", rep.BalanceAsOf)
	}
	if !rep.NetWorth.Valid || rep.NetWorth.Money != core.Dollars(105000) {
		t.Fatalf("net worth %+v", rep.NetWorth)
	}
	if rep.LoanBalance.Money != core.Dollars(200000) || rep.SavingsBalance.Money != core.Dollars(5000) {
		t.Fatalf("loan=%s savings=%s", rep.LoanBalance.Format(), rep.SavingsBalance.Format())
	}

	q2 := ComputeQuarterReport(2, 2023, set)
	if q2.BalanceAsOf != core.NewPeriod(2023, 7) || q2.NetWorth.Money != core.Dollars(99) {
		t.Fatalf("Q2 should read the July snapshot, got %+v", q2.NetWorth)
	}
}

func TestQuarterReportEmpty(t *testing.T) {
	rep := ComputeQuarterReport(3, 2030, core.RecordSet{})
	if rep.Records != 0 || !rep.TotalIncome.IsZero() || !rep.TotalSurplus.IsZero() {
		t.Fatalf("expected zero flows, got %+v", rep)
	}
	if rep.HasBalance() || rep.TotalAssets.Valid || rep.LoanBalance.Valid {
		t.Fatalf("expected absent balance fields")
	}
}

func TestQuarterReportPanicsOnInvalidQuarter(t *testing.T) {
	for _, q := range []core.Quarter{0, 5, -1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("quarter %d should panic", q)
				}
			}()
			ComputeQuarterReport(q, 2024, core.RecordSet{})
		}()
	}
}

func TestQuarterReportIdempotent(t *testing.T) {
	set := demoSet()
	a := ComputeQuarterReport(2, 2024, set)
	b := ComputeQuarterReport(2, 2024, set)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("repeated calls differ:\n%+v\n%+v", a, b)
	}
}

func TestCompareQuartersIndependentOfLaterMutation(t *testing.T) {
	set := demoSet()
	cmp := CompareQuarters(1, 2024, set)
	before := cmp.YearAgo

	for i := range set.Incomes {
		set.Incomes[i].Set("cdm_salary", core.Dollars(1))
	}
	for i := range set.Balances {
		set.Balances[i].Set("main_home", core.Dollars(1))
	}

	if !reflect.DeepEqual(before, cmp.YearAgo) {
		t.Fatalf("earlier result changed after input mutation")
	}
	again := CompareQuarters(1, 2024, set)
	if again.YearAgo.TotalIncome == before.TotalIncome {
		t.Fatalf("recomputation should reflect the mutated input")
	}
}

func TestCompareQuarters(t *testing.T) {
	set := core.RecordSet{
		Balances: []core.BalanceSnapshot{
			snapshot(2024, 1, map[string]int64{"main_home": 1000}),
			snapshot(2024, 4, map[string]int64{"main_home": 1500}),
		},
		Incomes: []core.IncomeExpenseRecord{
			income(2023, 2, map[string]int64{"cdm_salary": 100}),
			income(2023, 11, map[string]int64{"cdm_salary": 200}),
			income(2024, 2, map[string]int64{"cdm_salary": 350}),
		},
	}
	cmp := CompareQuarters(1, 2024, set)
	if cmp.Previous.Quarter != 4 || cmp.Previous.Year != 2023 {
		t.Fatalf("previous %s", cmp.Previous.Label())
	}
	if cmp.YearAgo.Quarter != 1 || cmp.YearAgo.Year != 2023 {
		t.Fatalf("year ago %s", cmp.YearAgo.Label())
	}
	if cmp.VsPrevious.TotalIncome != core.Dollars(150) || cmp.VsYearAgo.TotalIncome != core.Dollars(250) {
		t.Fatalf("deltas %+v %+v", cmp.VsPrevious.TotalIncome, cmp.VsYearAgo.TotalIncome)
	}
	if !cmp.VsPrevious.NetWorth.Valid || cmp.VsPrevious.NetWorth.Money != core.Dollars(500) {
		t.Fatalf("net worth delta %+v", cmp.VsPrevious.NetWorth)
	}
	if cmp.VsYearAgo.NetWorth.Valid {
		t.Fatalf("year-ago net worth delta should be absent without an Apr 2023 snapshot")
	}
}

func TestPreviousQuarter(t *testing.T) {
	cases := []struct {
		q     core.Quarter
		y     int
		wantQ core.Quarter
		wantY int
	}{
		{1, 2024, 4, 2023},
		{2, 2024, 1, 2024},
		{4, 2024, 3, 2024},
	}
	for _, tc := range cases {
		q, y := PreviousQuarter(tc.q, tc.y)
		if q != tc.wantQ || y != tc.wantY {
			t.Fatalf("%v %d: got %v %d", tc.q, tc.y, q, y)
		}
	}
}

func TestLastCompleteQuarter(t *testing.T) {
	cases := []struct {
		now   time.Time
		wantQ core.Quarter
		wantY int
	}{
		{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 4, 2023},
		{time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC), 4, 2023},
		{time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), 1, 2024},
		{time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC), 2, 2024},
		{time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), 3, 2024},
	}
	for _, tc := range cases {
		q, y := LastCompleteQuarter(tc.now)
		if q != tc.wantQ || y != tc.wantY {
			t.Fatalf("%s: got %v %d want %v %d", tc.now.Format("2006-01-02"), q, y, tc.wantQ, tc.wantY)
		}
	}
}

func TestMetricFallback(t *testing.T) {
	set := demoSet()
	cases := []struct {
		kind    core.Kind
		def     string
		unknown string
	}{
		{core.KindBalance, DefaultBalanceMetric, "not_a_real_key"},
		{core.KindIncome, DefaultIncomeMetric, "not_a_real_key"},
		{core.KindBalance, DefaultBalanceMetric, ""},
	}
	for _, tc := range cases {
		got := BuildMetricSeries(tc.unknown, tc.kind, 0, set)
		want := BuildMetricSeries(tc.def, tc.kind, 0, set)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("%s fallback differs from %s", tc.kind, tc.def)
		}
		if got.Metric.Key != tc.def {
			t.Fatalf("resolved to %s", got.Metric.Key)
		}
	}
	if m := ResolveMetric("nonsense", "total_assets"); m.ID != MetricTotalAssets {
		t.Fatalf("unknown kind should use the balance registry, got %+v", m)
	}
}

func TestMetricRegistries(t *testing.T) {
	for _, kind := range []core.Kind{core.KindBalance, core.KindIncome} {
		seen := map[string]bool{}
		for _, m := range Metrics(kind) {
			if seen[m.Key] {
				t.Fatalf("duplicate key %s", m.Key)
			}
			seen[m.Key] = true
			if ResolveMetric(kind, m.Key).ID != m.ID {
				t.Fatalf("%s does not resolve to itself", m.Key)
			}
		}
	}
}

func TestBuildMetricSeriesOrderAndFilter(t *testing.T) {
	set := core.RecordSet{
		Balances: []core.BalanceSnapshot{
			snapshot(2024, 3, map[string]int64{"huntington_check": 3}),
			snapshot(2023, 12, map[string]int64{"huntington_check": 1}),
			snapshot(2024, 1, map[string]int64{"huntington_check": 2}),
		},
		Incomes: []core.IncomeExpenseRecord{
			income(2024, 2, map[string]int64{"gift_income": 20}),
			income(2024, 1, map[string]int64{"gift_income": 10}),
		},
	}
	all := BuildMetricSeries("total_check", core.KindBalance, 0, set)
	if got := all.Labels(); !reflect.DeepEqual(got, []string{"Dec 2023", "Jan 2024", "Mar 2024"}) {
		t.Fatalf("labels %v", got)
	}
	if got := all.Values(); got[0] != core.Dollars(1) || got[2] != core.Dollars(3) {
		t.Fatalf("values %v", got)
	}

	only2024 := BuildMetricSeries("net_worth", core.KindBalance, 2024, set)
	if len(only2024.Points) != 2 || only2024.Points[0].Label != "Jan 2024" {
		t.Fatalf("filtered points %+v", only2024.Points)
	}

	inc := BuildMetricSeries("total_other_income", core.KindIncome, 2024, set)
	if len(inc.Points) != 2 || inc.Points[0].Value != core.Dollars(10) {
		t.Fatalf("income points %+v", inc.Points)
	}

	if set.Balances[0].Period != core.NewPeriod(2024, 3) {
		t.Fatalf("series building must not reorder the input")
	}
}

func demoSet() core.RecordSet {
	var set core.RecordSet
	p := core.NewPeriod(2023, 1)
	for i := 0; i < 24; i++ {
		set.Balances = append(set.Balances, snapshot(p.Year, p.Month, map[string]int64{
			"main_home":     300000 + int64(i)*1000,
			"main_mortgage": 250000 - int64(i)*800,
		}))
		set.Incomes = append(set.Incomes, income(p.Year, p.Month, map[string]int64{
			"cdm_salary":   6000 + int64(i),
			"federal_tax":  900,
			"aep_electric": 120,
		}))
		p = p.Next()
	}
	return set
}
