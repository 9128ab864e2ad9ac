// Package aggregate derives totals, quarter reports and chart series from
// monthly records.
//
// Every function here is pure: inputs are borrowed, never mutated, and each
// call allocates fresh results. Callers own the current date; nothing in this
// package reads the clock.
package aggregate

import (
	"homefin/internal/catalog"
	"homefin/internal/core"
)

// Subtotal is the sum of one catalog category, or a single ungrouped field.
type Subtotal struct {
	Key    string
	Label  string
	Role   catalog.Role
	Amount core.Money
}

// BalanceTotals are the derived figures of one balance snapshot.
type BalanceTotals struct {
	Period           core.Period
	Subtotals        []Subtotal
	TotalAssets      core.Money
	TotalLiabilities core.Money
	NetWorth         core.Money
}

// Subtotal returns the subtotal for a balance category key, zero if unknown.
func (t BalanceTotals) Subtotal(key string) core.Money {
	return findSubtotal(t.Subtotals, key)
}

// IncomeTotals are the derived figures of one income/expense record.
// Ungrouped lists the expense fields that have no category subtotal.
type IncomeTotals struct {
	Period          core.Period
	Subtotals       []Subtotal
	Ungrouped       []Subtotal
	TotalIncome     core.Money
	TotalAllSavings core.Money
	TotalExpenses   core.Money
	TotalSurplus    core.Money
}

// Subtotal returns the subtotal for an income category key, zero if unknown.
func (t IncomeTotals) Subtotal(key string) core.Money {
	return findSubtotal(t.Subtotals, key)
}

// TaxTotals adds refund figures to a tax return. A negative refund is an
// amount owed.
type TaxTotals struct {
	Summary       core.TaxReturnSummary
	FederalRefund core.Money
	StateRefund   core.Money
	TotalRefund   core.Money
}

func findSubtotal(subs []Subtotal, key string) core.Money {
	for _, s := range subs {
		if s.Key == key {
			return s.Amount
		}
	}
	return core.Money{}
}

// sumCatalog computes per-category subtotals and per-role totals for amounts.
func sumCatalog(c *catalog.Catalog, amounts map[string]core.Money) ([]Subtotal, []Subtotal, map[catalog.Role]core.Money) {
	cats := c.Categories()
	subs := make([]Subtotal, 0, len(cats))
	roles := make(map[catalog.Role]core.Money)
	for _, cat := range cats {
		var sum core.Money
		for _, f := range cat.Fields {
			sum = sum.Add(amounts[f.Key])
		}
		subs = append(subs, Subtotal{Key: cat.Key, Label: cat.Label, Role: cat.Role, Amount: sum})
		roles[cat.Role] = roles[cat.Role].Add(sum)
	}
	ungrouped := make([]Subtotal, 0, len(c.Ungrouped()))
	role := c.UngroupedRole()
	for _, f := range c.Ungrouped() {
		v := amounts[f.Key]
		ungrouped = append(ungrouped, Subtotal{Key: f.Key, Label: f.Label, Role: role, Amount: v})
		roles[role] = roles[role].Add(v)
	}
	return subs, ungrouped, roles
}

// ComputeBalanceTotals derives subtotals, assets, liabilities and net worth.
func ComputeBalanceTotals(s core.BalanceSnapshot) BalanceTotals {
	subs, _, roles := sumCatalog(catalog.Balance, s.Amounts)
	assets := roles[catalog.RoleAsset]
	liabilities := roles[catalog.RoleLiability]
	return BalanceTotals{
		Period:           s.Period,
		Subtotals:        subs,
		TotalAssets:      assets,
		TotalLiabilities: liabilities,
		NetWorth:         assets.Sub(liabilities),
	}
}

// ComputeIncomeTotals derives subtotals, income, savings, expenses and
// surplus. Surplus is income - expenses - savings and may be negative.
func ComputeIncomeTotals(r core.IncomeExpenseRecord) IncomeTotals {
	subs, ungrouped, roles := sumCatalog(catalog.Income, r.Amounts)
	income := roles[catalog.RoleIncome]
	savings := roles[catalog.RoleSavings]
	expenses := roles[catalog.RoleExpense]
	return IncomeTotals{
		Period:          r.Period,
		Subtotals:       subs,
		Ungrouped:       ungrouped,
		TotalIncome:     income,
		TotalAllSavings: savings,
		TotalExpenses:   expenses,
		TotalSurplus:    income.Sub(expenses).Sub(savings),
	}
}

// ComputeTaxTotals derives refunds as payments minus tax owed.
func ComputeTaxTotals(t core.TaxReturnSummary) TaxTotals {
	federal := t.FederalPayments.Sub(t.FederalTaxOwed)
	state := t.StatePayments.Sub(t.StateTaxOwed)
	return TaxTotals{
		Summary:       t,
		FederalRefund: federal,
		StateRefund:   state,
		TotalRefund:   federal.Add(state),
	}
}
