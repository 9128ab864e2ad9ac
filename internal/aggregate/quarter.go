package aggregate

import (
	"fmt"
	"time"

	"homefin/internal/catalog"
	"homefin/internal/core"
)

// QuarterReport summarizes one calendar quarter.
//
// Flow figures sum every income record in the quarter. Balance figures come
// from the snapshot dated at the first month of the following quarter and are
// absent when that snapshot does not exist.
type QuarterReport struct {
	Quarter core.Quarter
	Year    int
	Records int

	TotalIncome              core.Money
	TotalExpenses            core.Money
	TotalAllSavings          core.Money
	TotalSurplus             core.Money
	TotalTaxes               core.Money
	TotalUtilities           core.Money
	TotalHousing             core.Money
	TotalPersonalCreditCards core.Money

	BalanceAsOf      core.Period
	NetWorth         core.NullMoney
	TotalAssets      core.NullMoney
	TotalLiabilities core.NullMoney
	LoanBalance      core.NullMoney
	SavingsBalance   core.NullMoney
}

// Label renders e.g. "Q3 2024".
func (r QuarterReport) Label() string {
	return fmt.Sprintf("%s %d", r.Quarter, r.Year)
}

// HasBalance reports whether a boundary snapshot was found.
func (r QuarterReport) HasBalance() bool {
	return r.NetWorth.Valid
}

// BalanceBoundary returns the period whose snapshot closes quarter q of year:
// the first month of the next quarter, January of year+1 for Q4.
func BalanceBoundary(q core.Quarter, year int) core.Period {
	mustQuarter(q)
	if q == 4 {
		return core.NewPeriod(year+1, 1)
	}
	return core.NewPeriod(year, q.FirstMonth()+3)
}

// ComputeQuarterReport builds the report for quarter q of year.
// It panics if q is not in 1..4; callers validate user input first.
func ComputeQuarterReport(q core.Quarter, year int, set core.RecordSet) QuarterReport {
	mustQuarter(q)
	rep := QuarterReport{Quarter: q, Year: year}

	for _, rec := range set.Incomes {
		if rec.Period.Year != year || !q.Contains(rec.Period.Month) {
			continue
		}
		t := ComputeIncomeTotals(rec)
		rep.Records++
		rep.TotalIncome = rep.TotalIncome.Add(t.TotalIncome)
		rep.TotalExpenses = rep.TotalExpenses.Add(t.TotalExpenses)
		rep.TotalAllSavings = rep.TotalAllSavings.Add(t.TotalAllSavings)
		rep.TotalSurplus = rep.TotalSurplus.Add(t.TotalSurplus)
		rep.TotalTaxes = rep.TotalTaxes.Add(t.Subtotal(catalog.Taxes))
		rep.TotalUtilities = rep.TotalUtilities.Add(t.Subtotal(catalog.Utilities))
		rep.TotalHousing = rep.TotalHousing.Add(t.Subtotal(catalog.Housing))
		rep.TotalPersonalCreditCards = rep.TotalPersonalCreditCards.Add(t.Subtotal(catalog.CreditCards))
	}

	rep.BalanceAsOf = BalanceBoundary(q, year)
	if snap, ok := set.Balance(rep.BalanceAsOf); ok {
		bt := ComputeBalanceTotals(snap)
		rep.NetWorth = core.Some(bt.NetWorth)
		rep.TotalAssets = core.Some(bt.TotalAssets)
		rep.TotalLiabilities = core.Some(bt.TotalLiabilities)
		rep.LoanBalance = core.Some(bt.Subtotal(catalog.Loans))
		rep.SavingsBalance = core.Some(bt.Subtotal(catalog.Savings))
	}
	return rep
}

// QuarterDelta is the difference a - b between two reports. Balance deltas
// are absent unless both reports have a boundary snapshot.
type QuarterDelta struct {
	TotalIncome              core.Money
	TotalExpenses            core.Money
	TotalAllSavings          core.Money
	TotalSurplus             core.Money
	TotalTaxes               core.Money
	TotalUtilities           core.Money
	TotalHousing             core.Money
	TotalPersonalCreditCards core.Money

	NetWorth         core.NullMoney
	TotalAssets      core.NullMoney
	TotalLiabilities core.NullMoney
	LoanBalance      core.NullMoney
	SavingsBalance   core.NullMoney
}

// Diff returns a - b.
func Diff(a, b QuarterReport) QuarterDelta {
	return QuarterDelta{
		TotalIncome:              a.TotalIncome.Sub(b.TotalIncome),
		TotalExpenses:            a.TotalExpenses.Sub(b.TotalExpenses),
		TotalAllSavings:          a.TotalAllSavings.Sub(b.TotalAllSavings),
		TotalSurplus:             a.TotalSurplus.Sub(b.TotalSurplus),
		TotalTaxes:               a.TotalTaxes.Sub(b.TotalTaxes),
		TotalUtilities:           a.TotalUtilities.Sub(b.TotalUtilities),
		TotalHousing:             a.TotalHousing.Sub(b.TotalHousing),
		TotalPersonalCreditCards: a.TotalPersonalCreditCards.Sub(b.TotalPersonalCreditCards),
		NetWorth:                 a.NetWorth.Sub(b.NetWorth),
		TotalAssets:              a.TotalAssets.Sub(b.TotalAssets),
		TotalLiabilities:         a.TotalLiabilities.Sub(b.TotalLiabilities),
		LoanBalance:              a.LoanBalance.Sub(b.LoanBalance),
		SavingsBalance:           a.SavingsBalance.Sub(b.SavingsBalance),
	}
}

// QuarterComparison holds a quarter with its previous quarter and the same
// quarter one year earlier.
type QuarterComparison struct {
	Target     QuarterReport
	Previous   QuarterReport
	YearAgo    QuarterReport
	VsPrevious QuarterDelta
	VsYearAgo  QuarterDelta
}

// CompareQuarters computes the three reports independently.
func CompareQuarters(q core.Quarter, year int, set core.RecordSet) QuarterComparison {
	pq, py := PreviousQuarter(q, year)
	target := ComputeQuarterReport(q, year, set)
	prev := ComputeQuarterReport(pq, py, set)
	yearAgo := ComputeQuarterReport(q, year-1, set)
	return QuarterComparison{
		Target:     target,
		Previous:   prev,
		YearAgo:    yearAgo,
		VsPrevious: Diff(target, prev),
		VsYearAgo:  Diff(target, yearAgo),
	}
}

// PreviousQuarter steps back one quarter, wrapping Q1 to Q4 of year-1.
func PreviousQuarter(q core.Quarter, year int) (core.Quarter, int) {
	mustQuarter(q)
	if q == 1 {
		return 4, year - 1
	}
	return q - 1, year
}

// LastCompleteQuarter returns the most recent quarter that ended before now.
func LastCompleteQuarter(now time.Time) (core.Quarter, int) {
	return PreviousQuarter(core.QuarterOf(int(now.Month())), now.Year())
}

func mustQuarter(q core.Quarter) {
	if !q.Valid() {
		panic(fmt.Sprintf("aggregate: quarter %d out of range 1..4", int(q)))
	}
}
