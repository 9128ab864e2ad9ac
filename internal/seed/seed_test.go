package seed

import (
	"context"
	"testing"

	"homefin/internal/aggregate"
	"homefin/internal/core"
	"homefin/internal/memory"
	"homefin/internal/ports"
)

func TestDatasetShape(t *testing.T) {
	d := Dataset()
	if len(d.Balances) != 24 || len(d.Incomes) != 24 || len(d.Taxes) != 3 {
		t.Fatalf("unexpected sizes: %d %d %d", len(d.Balances), len(d.Incomes), len(d.Taxes))
	}
	if d.Balances[0].Period != core.NewPeriod(2023, 1) || d.Balances[23].Period != core.NewPeriod(2024, 12) {
		t.Fatalf("unexpected period range")
	}
	for _, b := range d.Balances {
		if err := b.Validate(); err != nil {
			t.Fatalf("%s: %v", b.Period.Label(), err)
		}
	}
	for _, r := range d.Incomes {
		if err := r.Validate(); err != nil {
			t.Fatalf("%s: %v", r.Period.Label(), err)
		}
	}
}

func TestDatasetTotals(t *testing.T) {
	d := Dataset()

	jan23 := aggregate.ComputeBalanceTotals(d.Balances[0])
	if jan23.NetWorth != core.Dollars(196500) {
		t.Fatalf("Jan 2023 net worth %s", jan23.NetWorth.Format())
	}
	if jan23.TotalLiabilities != core.Dollars(314000) {
		t.Fatalf("liabilities %s", jan23.TotalLiabilities.Format())
	}

	inc := aggregate.ComputeIncomeTotals(d.Incomes[0])
	if inc.TotalIncome.String() != "10250.85" {
		t.Fatalf("income %s", inc.TotalIncome)
	}
	if inc.TotalExpenses != core.Dollars(7710) || inc.TotalAllSavings != core.Dollars(2650) {
		t.Fatalf("expenses=%s savings=%s", inc.TotalExpenses, inc.TotalAllSavings)
	}
	if inc.TotalSurplus.String() != "-109.15" {
		t.Fatalf("surplus %s", inc.TotalSurplus)
	}

	tax := aggregate.ComputeTaxTotals(d.Taxes[0])
	if tax.FederalRefund != core.Dollars(1500) || tax.StateRefund != core.Dollars(300) || tax.TotalRefund != core.Dollars(1800) {
		t.Fatalf("refunds %+v", tax)
	}
}

func TestDatasetIsFreshEachCall(t *testing.T) {
	a := Dataset()
	a.Balances[0].Set("main_home", core.Dollars(1))
	b := Dataset()
	if b.Balances[0].Amount("main_home") != core.Dollars(350000) {
		t.Fatalf("Dataset must not share state between calls")
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	if _, err := Load(ctx, s); err != nil {
		t.Fatal(err)
	}
	bals, _ := s.ListBalanceSnapshots(ctx, ports.Filter{})
	if len(bals) != 24 {
		t.Fatalf("expected 24 balances, got %d", len(bals))
	}
	years, _ := s.ListDistinctYears(ctx, core.KindTax)
	if len(years) != 3 || years[0] != 2023 {
		t.Fatalf("tax years %v", years)
	}

	// loading twice overwrites rather than duplicating
	if _, err := Load(ctx, s); err != nil {
		t.Fatal(err)
	}
	incs, _ := s.ListIncomeRecords(ctx, ports.Filter{Year: 2024})
	if len(incs) != 12 {
		t.Fatalf("expected 12 income records for 2024, got %d", len(incs))
	}
}
