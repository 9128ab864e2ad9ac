package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"homefin/internal/catalog"
)

const (
	KindBalance Kind = "balance"
	KindIncome  Kind = "income"
	KindTax     Kind = "tax"
)

const (
	MinYear = 1900
	MaxYear = 9999
)

type (
	// Kind names a record type.
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Period is the year+month key of a monthly record.
	Period struct {
		Year  int
		Month int // 1-12
	}

	// BalanceSnapshot is a point-in-time balance sheet. Missing keys are zero.
	BalanceSnapshot struct {
		Period  Period
		Amounts map[string]Money
	}

	// IncomeExpenseRecord holds one month of cash flows. Missing keys are zero.
	IncomeExpenseRecord struct {
		Period  Period
		Amounts map[string]Money
	}

	// TaxReturnSummary is the summary of one filed tax year.
	TaxReturnSummary struct {
		Year                 int
		JobWages             Money
		FederalWages         Money
		TotalIncome          Money
		AdjustedGrossIncome  Money
		ItemizedDeductions   Money
		FederalTaxableIncome Money
		FederalTaxOwed       Money
		FederalPayments      Money
		StateTaxableIncome   Money
		StateTaxOwed         Money
		StatePayments        Money
	}

	// MetricConstant is an ad hoc dated value with no derived behavior.
	MetricConstant struct {
		ID    int64
		Date  Date
		Value Money
	}
)

var (
	ErrInvalidDay     = errors.New("invalid day")
	ErrInvalidMonth   = errors.New("invalid month")
	ErrInvalidYear    = errors.New("invalid year")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidPeriod  = errors.New("invalid period")
	ErrInvalidKind    = errors.New("invalid record kind")
	ErrInvalidQuarter = errors.New("invalid quarter")
	ErrUnknownField   = errors.New("unknown field")
)

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindBalance, KindIncome, KindTax:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	if y := d.Time.Year(); y < MinYear || y > MaxYear {
		return ErrInvalidYear
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// ISO renders the date as 2006-01-02.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// NewPeriod creates a Period from year and month.
func NewPeriod(year, month int) Period {
	return Period{Year: year, Month: month}
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// ParsePeriod parses path or form values for year and month.
func ParsePeriod(year, month string) (Period, error) {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return Period{}, fmt.Errorf("%w: year %q", ErrInvalidPeriod, year)
	}
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil {
		return Period{}, fmt.Errorf("%w: month %q", ErrInvalidPeriod, month)
	}
	p := Period{Year: y, Month: m}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: %w %d", ErrInvalidPeriod, ErrInvalidMonth, p.Month)
	}
	if err := ValidateYear(p.Year); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPeriod, err)
	}
	return nil
}

// ValidateYear checks the supported year range.
func ValidateYear(y int) error {
	if y < MinYear || y > MaxYear {
		return fmt.Errorf("%w %d", ErrInvalidYear, y)
	}
	return nil
}

// Label renders the chart label, e.g. "Jan 2024".
func (p Period) Label() string {
	return time.Month(p.Month).String()[:3] + " " + strconv.Itoa(p.Year)
}

// LongLabel renders e.g. "January 2024".
func (p Period) LongLabel() string {
	return time.Month(p.Month).String() + " " + strconv.Itoa(p.Year)
}

// Index is a monotonic month number used for ordering.
func (p Period) Index() int {
	return p.Year*12 + p.Month - 1
}

// Before reports whether p is strictly earlier than o.
func (p Period) Before(o Period) bool {
	return p.Index() < o.Index()
}

// Next returns the following month.
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Year: p.Year + 1, Month: 1}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Prev returns the preceding month.
func (p Period) Prev() Period {
	if p.Month == 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Time returns the first day of the period in UTC.
func (p Period) Time() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// Amount returns the amount for key, zero when absent.
func (b BalanceSnapshot) Amount(key string) Money {
	return b.Amounts[key]
}

// Set stores an amount, allocating the map on first use.
func (b *BalanceSnapshot) Set(key string, m Money) {
	if b.Amounts == nil {
		b.Amounts = make(map[string]Money)
	}
	b.Amounts[key] = m
}

// Clone returns a deep copy.
func (b BalanceSnapshot) Clone() BalanceSnapshot {
	return BalanceSnapshot{Period: b.Period, Amounts: cloneAmounts(b.Amounts)}
}

func (b BalanceSnapshot) Validate() error {
	if err := b.Period.Validate(); err != nil {
		return err
	}
	return validateKeys(catalog.Balance, b.Amounts)
}

// Amount returns the amount for key, zero when absent.
func (r IncomeExpenseRecord) Amount(key string) Money {
	return r.Amounts[key]
}

// Set stores an amount, allocating the map on first use.
func (r *IncomeExpenseRecord) Set(key string, m Money) {
	if r.Amounts == nil {
		r.Amounts = make(map[string]Money)
	}
	r.Amounts[key] = m
}

// Clone returns a deep copy.
func (r IncomeExpenseRecord) Clone() IncomeExpenseRecord {
	return IncomeExpenseRecord{Period: r.Period, Amounts: cloneAmounts(r.Amounts)}
}

func (r IncomeExpenseRecord) Validate() error {
	if err := r.Period.Validate(); err != nil {
		return err
	}
	return validateKeys(catalog.Income, r.Amounts)
}

func validateKeys(c *catalog.Catalog, amounts map[string]Money) error {
	for k := range amounts {
		if !c.Has(k) {
			return fmt.Errorf("%w %q in %s record", ErrUnknownField, k, c.Name())
		}
	}
	return nil
}

func cloneAmounts(in map[string]Money) map[string]Money {
	out := make(map[string]Money, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Field returns a pointer to the tax line named key, or nil.
func (t *TaxReturnSummary) Field(key string) *Money {
	switch key {
	case catalog.TaxJobWages:
		return &t.JobWages
	case catalog.TaxFederalWages:
		return &t.FederalWages
	case catalog.TaxTotalIncome:
		return &t.TotalIncome
	case catalog.TaxAdjustedGrossIncome:
		return &t.AdjustedGrossIncome
	case catalog.TaxItemizedDeductions:
		return &t.ItemizedDeductions
	case catalog.TaxFederalTaxableIncome:
		return &t.FederalTaxableIncome
	case catalog.TaxFederalTaxOwed:
		return &t.FederalTaxOwed
	case catalog.TaxFederalPayments:
		return &t.FederalPayments
	case catalog.TaxStateTaxableIncome:
		return &t.StateTaxableIncome
	case catalog.TaxStateTaxOwed:
		return &t.StateTaxOwed
	case catalog.TaxStatePayments:
		return &t.StatePayments
	}
	return nil
}

// Amount returns the tax line named key, zero when unknown.
func (t TaxReturnSummary) Amount(key string) Money {
	if f := t.Field(key); f != nil {
		return *f
	}
	return Money{}
}

func (t TaxReturnSummary) Validate() error {
	return ValidateYear(t.Year)
}

func (c MetricConstant) Validate() error {
	return c.Date.Validate()
}

// RecordSet is a consistent view of the monthly records used by one
// aggregation.
type RecordSet struct {
	Balances []BalanceSnapshot
	Incomes  []IncomeExpenseRecord
}

// Balance finds the snapshot for period p.
func (s RecordSet) Balance(p Period) (BalanceSnapshot, bool) {
	for _, b := range s.Balances {
		if b.Period == p {
			return b, true
		}
	}
	return BalanceSnapshot{}, false
}

// Years returns the distinct years present in either list.
func (s RecordSet) Years() []int {
	seen := make(map[int]bool)
	var out []int
	for _, b := range s.Balances {
		if !seen[b.Period.Year] {
			seen[b.Period.Year] = true
			out = append(out, b.Period.Year)
		}
	}
	for _, r := range s.Incomes {
		if !seen[r.Period.Year] {
			seen[r.Period.Year] = true
			out = append(out, r.Period.Year)
		}
	}
	return out
}
