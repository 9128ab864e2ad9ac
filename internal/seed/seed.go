// Package seed builds the deterministic demo dataset: monthly balances and
// income for 2023-2024 and tax returns for 2021-2023.
package seed

import (
	"context"
	"fmt"

	"homefin/internal/core"
	"homefin/internal/ports"
)

// Data is the full demo dataset.
type Data struct {
	Balances []core.BalanceSnapshot
	Incomes  []core.IncomeExpenseRecord
	Taxes    []core.TaxReturnSummary
}

// baseNetWorth drives the liquid balances of each month, Jan 2023 onward.
var baseNetWorth = []int64{
	150000, 152000, 155000, 158000, 160000, 163000,
	165000, 168000, 170000, 173000, 175000, 178000,
	180000, 183000, 186000, 189000, 192000, 195000,
	198000, 201000, 204000, 207000, 210000, 213000,
}

// percent of the base held in each liquid account.
var balanceShares = []struct {
	key string
	pct int64
}{
	{"huntington_check", 2},
	{"fifththird_check", 1},
	{"huntington_save", 3},
	{"fifththird_save", 2},
	{"capone_save", 5},
	{"amex_save", 3},
	{"robinhood_invest", 8},
	{"deacon_invest", 5},
	{"buckeye_invest", 3},
	{"opers_retire", 15},
	{"four57_retire", 10},
	{"four01_retire", 12},
	{"roth_retire", 8},
}

var fixedBalances = map[string]int64{
	"main_home":        350000,
	"justin_car":       25000,
	"kat_car":          20000,
	"capone_credit":    1500,
	"amex_credit":      2000,
	"discover_credit":  500,
	"car_loan":         15000,
	"pubstudent_loan":  10000,
	"privstudent_loan": 5000,
	"main_mortgage":    280000,
}

// monthlyIncome is the same for every demo month, in cents.
var monthlyIncome = map[string]int64{
	"huntington_interest":        525,
	"fifththird_interest":        310,
	"capone_interest":            4500,
	"amex_interest":              3500,
	"schwab_interest":            1250,
	"schwab_dividends":           15000,
	"supremecourt_salary":        450000,
	"cdm_salary":                 550000,
	"opers_retirement":           45000,
	"four57b_retirement":         40000,
	"four01k_retirement":         50000,
	"roth_retirement":            25000,
	"robinhood_investments":      20000,
	"schwab_investments":         30000,
	"amex_savings":               20000,
	"fifththird_savings":         10000,
	"capone_savings":             15000,
	"huntington_savings":         10000,
	"federal_tax":                120000,
	"social_security":            62000,
	"medicare":                   14500,
	"ohio_tax":                   35000,
	"columbus_tax":               20000,
	"health_insurance":           45000,
	"supplementallife_insurance": 2500,
	"flex_spending":              10000,
	"main_mortgage":              185000,
	"hoa_fees":                   15000,
	"auto_insurance":             18000,
	"aep_electric":               12000,
	"rumpke_trash":               3500,
	"delaware_sewer":             4500,
	"delco_water":                5500,
	"suburban_gas":               8500,
	"verizon_kat":                8500,
	"sprint_justin":              7500,
	"directtv_cable":             12000,
	"timewarner_internet":        7000,
	"capone_creditcard":          50000,
	"amex_creditcard":            75000,
	"discover_creditcard":        20000,
	"cashorcheck_purchases":      30000,
}

var taxYears = []int{2021, 2022, 2023}

// Dataset returns a freshly allocated copy of the demo data.
func Dataset() Data {
	var d Data
	p := core.NewPeriod(2023, 1)
	for _, base := range baseNetWorth {
		b := core.BalanceSnapshot{Period: p}
		for _, s := range balanceShares {
			b.Set(s.key, core.Cents(base*s.pct))
		}
		for k, v := range fixedBalances {
			b.Set(k, core.Dollars(v))
		}
		d.Balances = append(d.Balances, b)

		r := core.IncomeExpenseRecord{Period: p}
		for k, v := range monthlyIncome {
			r.Set(k, core.Cents(v))
		}
		d.Incomes = append(d.Incomes, r)
		p = p.Next()
	}
	for _, y := range taxYears {
		d.Taxes = append(d.Taxes, core.TaxReturnSummary{
			Year:                 y,
			JobWages:             core.Dollars(120000),
			FederalWages:         core.Dollars(115000),
			TotalIncome:          core.Dollars(125000),
			AdjustedGrossIncome:  core.Dollars(110000),
			ItemizedDeductions:   core.Dollars(25000),
			FederalTaxableIncome: core.Dollars(85000),
			FederalTaxOwed:       core.Dollars(14000),
			FederalPayments:      core.Dollars(15500),
			StateTaxableIncome:   core.Dollars(105000),
			StateTaxOwed:         core.Dollars(4200),
			StatePayments:        core.Dollars(4500),
		})
	}
	return d
}

// Load writes the demo dataset through w. Existing records for the same
// periods are overwritten.
func Load(ctx context.Context, w ports.RecordWriter) (Data, error) {
	d := Dataset()
	for _, b := range d.Balances {
		if err := w.SaveBalanceSnapshot(ctx, b); err != nil {
			return d, fmt.Errorf("seed balance %s: %w", b.Period.Label(), err)
		}
	}
	for _, r := range d.Incomes {
		if err := w.SaveIncomeRecord(ctx, r); err != nil {
			return d, fmt.Errorf("seed income %s: %w", r.Period.Label(), err)
		}
	}
	for _, t := range d.Taxes {
		if err := w.SaveTaxReturn(ctx, t); err != nil {
			return d, fmt.Errorf("seed tax return %d: %w", t.Year, err)
		}
	}
	return d, nil
}
