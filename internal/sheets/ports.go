// Package sheets mirrors stored records into spreadsheet tabs, one row per
// record keyed by its period or tax year.
package sheets

import (
	"context"
	"strconv"

	"homefin/internal/aggregate"
	"homefin/internal/catalog"
	"homefin/internal/core"
)

type (
	// Tab describes a destination tab and its header row.
	Tab struct {
		Name   string
		Header []string
	}

	// Row is one record rendered as cells. Key is the first column.
	Row struct {
		Key    string
		Values []core.Money
	}

	// Mirror is the outbound port implemented by spreadsheet adapters.
	Mirror interface {
		// UpsertRow replaces the row with the same key or appends it.
		UpsertRow(ctx context.Context, tab Tab, row Row) error
		// DeleteRow removes the row with key. Missing rows are not an error.
		DeleteRow(ctx context.Context, tab Tab, key string) error
		// ReplaceAll rewrites the whole tab: header first, then rows in order.
		ReplaceAll(ctx context.Context, tab Tab, rows []Row) error
	}
)

// Default tab names.
const (
	BalancesTab = "Balances"
	IncomeTab   = "Income"
	TaxesTab    = "Taxes"
)

// Tabs names the three destination tabs.
type Tabs struct {
	Balances string
	Income   string
	Taxes    string
}

// DefaultTabs returns the default tab names.
func DefaultTabs() Tabs {
	return Tabs{Balances: BalancesTab, Income: IncomeTab, Taxes: TaxesTab}
}

// Tab returns the tab description for kind.
func (t Tabs) Tab(kind core.Kind) Tab {
	switch kind {
	case core.KindIncome:
		return Tab{Name: t.Income, Header: IncomeHeader()}
	case core.KindTax:
		return Tab{Name: t.Taxes, Header: TaxHeader()}
	default:
		return Tab{Name: t.Balances, Header: BalanceHeader()}
	}
}

// PeriodKey is the row key of a monthly record, e.g. "2024-01".
func PeriodKey(p core.Period) string {
	return p.Time().Format("2006-01")
}

// YearKey is the row key of a tax return.
func YearKey(year int) string {
	return strconv.Itoa(year)
}

var balanceTotals = []string{"Total Assets", "Total Liabilities", "Net Worth"}

var incomeTotals = []string{"Total Income", "Total Savings", "Total Expenses", "Total Surplus"}

var taxTotals = []string{"Federal Refund", "State Refund", "Total Refund"}

func catalogHeader(first string, c *catalog.Catalog, totals []string) []string {
	out := []string{first}
	for _, cat := range c.Categories() {
		for _, f := range cat.Fields {
			out = append(out, f.Label)
		}
	}
	for _, f := range c.Ungrouped() {
		out = append(out, f.Label)
	}
	return append(out, totals...)
}

func catalogValues(c *catalog.Catalog, amounts map[string]core.Money) []core.Money {
	var out []core.Money
	for _, cat := range c.Categories() {
		for _, f := range cat.Fields {
			out = append(out, amounts[f.Key])
		}
	}
	for _, f := range c.Ungrouped() {
		out = append(out, amounts[f.Key])
	}
	return out
}

func BalanceHeader() []string { return catalogHeader("Period", catalog.Balance, balanceTotals) }

func IncomeHeader() []string { return catalogHeader("Period", catalog.Income, incomeTotals) }

func TaxHeader() []string {
	out := []string{"Year"}
	for _, f := range catalog.TaxFields {
		out = append(out, f.Label)
	}
	return append(out, taxTotals...)
}

// BalanceRow renders a snapshot with its derived totals.
func BalanceRow(b core.BalanceSnapshot) Row {
	t := aggregate.ComputeBalanceTotals(b)
	vals := append(catalogValues(catalog.Balance, b.Amounts), t.TotalAssets, t.TotalLiabilities, t.NetWorth)
	return Row{Key: PeriodKey(b.Period), Values: vals}
}

// IncomeRow renders an income record with its derived totals.
func IncomeRow(r core.IncomeExpenseRecord) Row {
	t := aggregate.ComputeIncomeTotals(r)
	vals := append(catalogValues(catalog.Income, r.Amounts), t.TotalIncome, t.TotalAllSavings, t.TotalExpenses, t.TotalSurplus)
	return Row{Key: PeriodKey(r.Period), Values: vals}
}

// TaxRow renders a tax return with its refunds.
func TaxRow(s core.TaxReturnSummary) Row {
	t := aggregate.ComputeTaxTotals(s)
	vals := make([]core.Money, 0, len(catalog.TaxFields)+len(taxTotals))
	for _, f := range catalog.TaxFields {
		vals = append(vals, s.Amount(f.Key))
	}
	vals = append(vals, t.FederalRefund, t.StateRefund, t.TotalRefund)
	return Row{Key: YearKey(s.Year), Values: vals}
}
