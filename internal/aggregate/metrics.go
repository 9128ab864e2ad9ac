package aggregate

import (
	"sort"

	"homefin/internal/catalog"
	"homefin/internal/core"
)

// MetricID enumerates every chartable metric.
type MetricID int

const (
	MetricNetWorth MetricID = iota + 1
	MetricTotalAssets
	MetricTotalLiabilities
	MetricTotalChecking
	MetricTotalSavings
	MetricTotalInvestments
	MetricTotalRetirement
	MetricTotalProperty
	MetricTotalCreditBalance
	MetricTotalLoanBalance

	MetricTotalIncome
	MetricTotalExpenses
	MetricTotalAllSavings
	MetricTotalSurplus
	MetricTotalInterest
	MetricTotalDividends
	MetricTotalSalary
	MetricTotalOtherIncome
	MetricRetirementContributions
	MetricInvestmentContributions
	MetricSavingsContributions
	MetricTotalTaxes
	MetricTotalBenefits
	MetricTotalHousing
	MetricTotalUtilities
	MetricTotalLoanPayments
	MetricTotalCreditCardPayments
)

// Metric describes a registry entry.
type Metric struct {
	ID    MetricID
	Key   string
	Label string
	Kind  core.Kind
}

type balanceMetric struct {
	Metric
	value func(BalanceTotals) core.Money
}

type incomeMetric struct {
	Metric
	value func(IncomeTotals) core.Money
}

func balanceSubtotal(key string) func(BalanceTotals) core.Money {
	return func(t BalanceTotals) core.Money { return t.Subtotal(key) }
}

func incomeSubtotal(key string) func(IncomeTotals) core.Money {
	return func(t IncomeTotals) core.Money { return t.Subtotal(key) }
}

func bm(id MetricID, key, label string, fn func(BalanceTotals) core.Money) balanceMetric {
	return balanceMetric{Metric: Metric{ID: id, Key: key, Label: label, Kind: core.KindBalance}, value: fn}
}

func im(id MetricID, key, label string, fn func(IncomeTotals) core.Money) incomeMetric {
	return incomeMetric{Metric: Metric{ID: id, Key: key, Label: label, Kind: core.KindIncome}, value: fn}
}

var balanceMetrics = []balanceMetric{
	bm(MetricNetWorth, "net_worth", "Net Worth", func(t BalanceTotals) core.Money { return t.NetWorth }),
	bm(MetricTotalAssets, "total_assets", "Total Assets", func(t BalanceTotals) core.Money { return t.TotalAssets }),
	bm(MetricTotalLiabilities, "total_liabilities", "Total Liabilities", func(t BalanceTotals) core.Money { return t.TotalLiabilities }),
	bm(MetricTotalChecking, "total_check", "Checking", balanceSubtotal(catalog.Checking)),
	bm(MetricTotalSavings, "total_save", "Savings", balanceSubtotal(catalog.Savings)),
	bm(MetricTotalInvestments, "total_invest", "Investments", balanceSubtotal(catalog.Investments)),
	bm(MetricTotalRetirement, "total_retire", "Retirement", balanceSubtotal(catalog.Retirement)),
	bm(MetricTotalProperty, "total_property", "Property", balanceSubtotal(catalog.Property)),
	bm(MetricTotalCreditBalance, "total_credit", "Credit Card Balances", balanceSubtotal(catalog.CreditCards)),
	bm(MetricTotalLoanBalance, "total_loan", "Loan Balances", balanceSubtotal(catalog.Loans)),
}

var incomeMetrics = []incomeMetric{
	im(MetricTotalIncome, "total_income", "Total Income", func(t IncomeTotals) core.Money { return t.TotalIncome }),
	im(MetricTotalExpenses, "total_expenses", "Total Expenses", func(t IncomeTotals) core.Money { return t.TotalExpenses }),
	im(MetricTotalAllSavings, "total_allsavings", "Total Savings", func(t IncomeTotals) core.Money { return t.TotalAllSavings }),
	im(MetricTotalSurplus, "total_surplus", "Total Surplus", func(t IncomeTotals) core.Money { return t.TotalSurplus }),
	im(MetricTotalInterest, "total_interest", "Interest", incomeSubtotal(catalog.Interest)),
	im(MetricTotalDividends, "total_dividends", "Dividends", incomeSubtotal(catalog.Dividends)),
	im(MetricTotalSalary, "total_salary", "Salary", incomeSubtotal(catalog.Salary)),
	im(MetricTotalOtherIncome, "total_other_income", "Other Income", incomeSubtotal(catalog.OtherIncome)),
	im(MetricRetirementContributions, "total_retirement_contributions", "Retirement Contributions", incomeSubtotal(catalog.RetirementContributions)),
	im(MetricInvestmentContributions, "total_investment_contributions", "Investment Contributions", incomeSubtotal(catalog.InvestmentContributions)),
	im(MetricSavingsContributions, "total_savings_contributions", "Savings Contributions", incomeSubtotal(catalog.SavingsContributions)),
	im(MetricTotalTaxes, "total_taxes", "Taxes", incomeSubtotal(catalog.Taxes)),
	im(MetricTotalBenefits, "total_benefits", "Benefits", incomeSubtotal(catalog.Benefits)),
	im(MetricTotalHousing, "total_housing", "Housing", incomeSubtotal(catalog.Housing)),
	im(MetricTotalUtilities, "total_utilities", "Utilities", incomeSubtotal(catalog.Utilities)),
	im(MetricTotalLoanPayments, "total_loans", "Loan Payments", incomeSubtotal(catalog.Loans)),
	im(MetricTotalCreditCardPayments, "total_personal_creditcards", "Credit Card Payments", incomeSubtotal(catalog.CreditCards)),
}

// Default metric keys used when a requested key is unknown.
const (
	DefaultBalanceMetric = "net_worth"
	DefaultIncomeMetric  = "total_income"
)

// Metrics lists the registry for kind in display order. Any kind other than
// income selects the balance registry.
func Metrics(kind core.Kind) []Metric {
	if kind == core.KindIncome {
		out := make([]Metric, len(incomeMetrics))
		for i, m := range incomeMetrics {
			out[i] = m.Metric
		}
		return out
	}
	out := make([]Metric, len(balanceMetrics))
	for i, m := range balanceMetrics {
		out[i] = m.Metric
	}
	return out
}

// ResolveMetric maps a key to its registry entry, falling back to the kind's
// default for unknown keys. It never fails.
func ResolveMetric(kind core.Kind, key string) Metric {
	if kind == core.KindIncome {
		return resolveIncome(key).Metric
	}
	return resolveBalance(key).Metric
}

func resolveBalance(key string) balanceMetric {
	for _, m := range balanceMetrics {
		if m.Key == key {
			return m
		}
	}
	return balanceMetrics[0]
}

func resolveIncome(key string) incomeMetric {
	for _, m := range incomeMetrics {
		if m.Key == key {
			return m
		}
	}
	return incomeMetrics[0]
}

// Point is one chart sample.
type Point struct {
	Period core.Period `json:"-"`
	Label  string      `json:"label"`
	Value  core.Money  `json:"value"`
}

// Series is an ordered chart series for one metric.
type Series struct {
	Metric Metric
	Year   int
	Points []Point
}

// Labels returns the point labels in order.
func (s Series) Labels() []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Label
	}
	return out
}

// Values returns the point values in order.
func (s Series) Values() []core.Money {
	out := make([]core.Money, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// BuildMetricSeries projects one metric over the records of kind, oldest
// first. year 0 means no year filter. Unknown keys use the kind's default.
func BuildMetricSeries(key string, kind core.Kind, year int, set core.RecordSet) Series {
	if kind == core.KindIncome {
		m := resolveIncome(key)
		recs := make([]core.IncomeExpenseRecord, 0, len(set.Incomes))
		for _, r := range set.Incomes {
			if year == 0 || r.Period.Year == year {
				recs = append(recs, r)
			}
		}
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].Period.Before(recs[j].Period) })
		pts := make([]Point, 0, len(recs))
		for _, r := range recs {
			pts = append(pts, Point{Period: r.Period, Label: r.Period.Label(), Value: m.value(ComputeIncomeTotals(r))})
		}
		return Series{Metric: m.Metric, Year: year, Points: pts}
	}

	m := resolveBalance(key)
	snaps := make([]core.BalanceSnapshot, 0, len(set.Balances))
	for _, b := range set.Balances {
		if year == 0 || b.Period.Year == year {
			snaps = append(snaps, b)
		}
	}
	sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].Period.Before(snaps[j].Period) })
	pts := make([]Point, 0, len(snaps))
	for _, b := range snaps {
		pts = append(pts, Point{Period: b.Period, Label: b.Period.Label(), Value: m.value(ComputeBalanceTotals(b))})
	}
	return Series{Metric: m.Metric, Year: year, Points: pts}
}
