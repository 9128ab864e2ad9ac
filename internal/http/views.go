package http

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"

	"homefin/internal/aggregate"
	"homefin/internal/catalog"
	"homefin/internal/core"
)

const (
	navDashboard = "dashboard"
	navBalances  = "balances"
	navIncome    = "income"
	navTaxes     = "taxes"
	navConstants = "constants"
	navReports   = "reports"
	navAnalysis  = "analysis"
)

// page wraps every rendered template.
type page struct {
	Title  string
	Active string
	Data   interface{}
}

var templateFuncs = template.FuncMap{
	"money":     func(m core.Money) string { return m.Format() },
	"nullmoney": func(n core.NullMoney) string { return n.Format() },
	"sign":      signClass,
	"nullsign": func(n core.NullMoney) string {
		if !n.Valid {
			return "na"
		}
		return signClass(n.Money)
	},
	"pathperiod": func(p core.Period) string {
		return fmt.Sprintf("%d/%d", p.Year, p.Month)
	},
	"eqint": func(a, b int) bool { return a == b },
}

func signClass(m core.Money) string {
	switch {
	case m.IsNegative():
		return "neg"
	case m.IsZero():
		return "zero"
	default:
		return "pos"
	}
}

type formField struct {
	Key   string
	Label string
	Value string
	Error string
}

type formSection struct {
	Label  string
	Fields []formField
}

// recordForm drives the shared create/edit template for every record kind.
type recordForm struct {
	Heading      string
	Action       string
	Cancel       string
	DeleteAction string
	Editing      bool

	// Key fields for new records. Monthly kinds use both, tax returns Year only.
	ShowMonth bool
	Year      string
	Month     string
	KeyError  string

	Error    string
	Sections []formSection
}

// catalogSections lays out form fields by category. value returns the
// current text of a field.
func catalogSections(c *catalog.Catalog, value func(key string) string, errs map[string]string) []formSection {
	sections := make([]formSection, 0, len(c.Categories())+1)
	for _, cat := range c.Categories() {
		sections = append(sections, formSection{
			Label:  cat.Label,
			Fields: formFields(cat.Fields, value, errs),
		})
	}
	if ung := c.Ungrouped(); len(ung) > 0 {
		sections = append(sections, formSection{
			Label:  "Other Expenses",
			Fields: formFields(ung, value, errs),
		})
	}
	return sections
}

func taxSections(value func(key string) string, errs map[string]string) []formSection {
	return []formSection{{Label: "Return", Fields: formFields(catalog.TaxFields, value, errs)}}
}

func formFields(fields []catalog.Field, value func(string) string, errs map[string]string) []formField {
	out := make([]formField, len(fields))
	for i, f := range fields {
		out[i] = formField{Key: f.Key, Label: f.Label, Value: value(f.Key), Error: errs[f.Key]}
	}
	return out
}

// amountText renders a stored amount for an input; zero stays blank.
func amountText(m core.Money) string {
	if m.IsZero() {
		return ""
	}
	return m.String()
}

func blankValue(string) string { return "" }

type yearOption struct {
	Year     int
	Selected bool
}

func yearOptions(years []int, selected int) []yearOption {
	out := make([]yearOption, len(years))
	for i, y := range years {
		out[i] = yearOption{Year: y, Selected: y == selected}
	}
	return out
}

// reportRow is one figure across the compared quarters.
type reportRow struct {
	Label     string
	Target    core.NullMoney
	Previous  core.NullMoney
	YearAgo   core.NullMoney
	VsPrev    core.NullMoney
	VsYearAgo core.NullMoney
}

func flowRow(label string, pick func(aggregate.QuarterReport) core.Money, dpick func(aggregate.QuarterDelta) core.Money, c aggregate.QuarterComparison) reportRow {
	return reportRow{
		Label:     label,
		Target:    core.Some(pick(c.Target)),
		Previous:  core.Some(pick(c.Previous)),
		YearAgo:   core.Some(pick(c.YearAgo)),
		VsPrev:    core.Some(dpick(c.VsPrevious)),
		VsYearAgo: core.Some(dpick(c.VsYearAgo)),
	}
}

func balanceRow(label string, pick func(aggregate.QuarterReport) core.NullMoney, dpick func(aggregate.QuarterDelta) core.NullMoney, c aggregate.QuarterComparison) reportRow {
	return reportRow{
		Label:     label,
		Target:    pick(c.Target),
		Previous:  pick(c.Previous),
		YearAgo:   pick(c.YearAgo),
		VsPrev:    dpick(c.VsPrevious),
		VsYearAgo: dpick(c.VsYearAgo),
	}
}

func comparisonRows(c aggregate.QuarterComparison) (flows, balances []reportRow) {
	flows = []reportRow{
		flowRow("Total Income", func(r aggregate.QuarterReport) core.Money { return r.TotalIncome }, func(d aggregate.QuarterDelta) core.Money { return d.TotalIncome }, c),
		flowRow("Total Expenses", func(r aggregate.QuarterReport) core.Money { return r.TotalExpenses }, func(d aggregate.QuarterDelta) core.Money { return d.TotalExpenses }, c),
		flowRow("Total Savings", func(r aggregate.QuarterReport) core.Money { return r.TotalAllSavings }, func(d aggregate.QuarterDelta) core.Money { return d.TotalAllSavings }, c),
		flowRow("Surplus", func(r aggregate.QuarterReport) core.Money { return r.TotalSurplus }, func(d aggregate.QuarterDelta) core.Money { return d.TotalSurplus }, c),
		flowRow("Taxes", func(r aggregate.QuarterReport) core.Money { return r.TotalTaxes }, func(d aggregate.QuarterDelta) core.Money { return d.TotalTaxes }, c),
		flowRow("Utilities", func(r aggregate.QuarterReport) core.Money { return r.TotalUtilities }, func(d aggregate.QuarterDelta) core.Money { return d.TotalUtilities }, c),
		flowRow("Housing", func(r aggregate.QuarterReport) core.Money { return r.TotalHousing }, func(d aggregate.QuarterDelta) core.Money { return d.TotalHousing }, c),
		flowRow("Credit Card Payments", func(r aggregate.QuarterReport) core.Money { return r.TotalPersonalCreditCards }, func(d aggregate.QuarterDelta) core.Money { return d.TotalPersonalCreditCards }, c),
	}
	balances = []reportRow{
		balanceRow("Net Worth", func(r aggregate.QuarterReport) core.NullMoney { return r.NetWorth }, func(d aggregate.QuarterDelta) core.NullMoney { return d.NetWorth }, c),
		balanceRow("Total Assets", func(r aggregate.QuarterReport) core.NullMoney { return r.TotalAssets }, func(d aggregate.QuarterDelta) core.NullMoney { return d.TotalAssets }, c),
		balanceRow("Total Liabilities", func(r aggregate.QuarterReport) core.NullMoney { return r.TotalLiabilities }, func(d aggregate.QuarterDelta) core.NullMoney { return d.TotalLiabilities }, c),
		balanceRow("Loans", func(r aggregate.QuarterReport) core.NullMoney { return r.LoanBalance }, func(d aggregate.QuarterDelta) core.NullMoney { return d.LoanBalance }, c),
		balanceRow("Savings", func(r aggregate.QuarterReport) core.NullMoney { return r.SavingsBalance }, func(d aggregate.QuarterDelta) core.NullMoney { return d.SavingsBalance }, c),
	}
	return flows, balances
}

// Chart geometry, in SVG user units.
const (
	chartWidth   = 720.0
	chartHeight  = 260.0
	chartPadLeft = 80.0
	chartPadTop  = 16.0
	chartPadBot  = 36.0
	chartTicks   = 4
)

type chartLine struct {
	Name   string
	Class  string
	Points string
}

type chartText struct {
	X, Y float64
	Text string
}

// lineChart is a precomputed inline SVG chart.
type lineChart struct {
	Width, Height float64
	Left, Right   float64
	ZeroY         float64
	Lines         []chartLine
	XLabels       []chartText
	YTicks        []chartText
	Empty         bool
}

type chartSeries struct {
	Name   string
	Class  string
	Values []core.Money
}

// buildChart scales series onto a shared axis that always includes zero.
// At most about a dozen x labels are drawn.
func buildChart(labels []string, series ...chartSeries) lineChart {
	ch := lineChart{
		Width:  chartWidth,
		Height: chartHeight,
		Left:   chartPadLeft,
		Right:  chartWidth - 8,
		Empty:  len(labels) == 0,
	}
	if ch.Empty {
		return ch
	}

	lo, hi := 0.0, 0.0
	for _, s := range series {
		for _, v := range s.Values {
			f := v.Float()
			lo = math.Min(lo, f)
			hi = math.Max(hi, f)
		}
	}
	if hi == lo {
		hi = lo + 1
	}

	plotH := chartHeight - chartPadTop - chartPadBot
	y := func(f float64) float64 {
		return chartPadTop + (hi-f)/(hi-lo)*plotH
	}
	n := len(labels)
	x := func(i int) float64 {
		if n == 1 {
			return (ch.Left + ch.Right) / 2
		}
		return ch.Left + float64(i)*(ch.Right-ch.Left)/float64(n-1)
	}

	ch.ZeroY = y(0)
	for _, s := range series {
		pts := make([]string, 0, len(s.Values))
		for i, v := range s.Values {
			if i >= n {
				break
			}
			pts = append(pts, strconv.FormatFloat(x(i), 'f', 1, 64)+","+strconv.FormatFloat(y(v.Float()), 'f', 1, 64))
		}
		ch.Lines = append(ch.Lines, chartLine{Name: s.Name, Class: s.Class, Points: strings.Join(pts, " ")})
	}

	step := (n + 11) / 12
	for i := 0; i < n; i += step {
		ch.XLabels = append(ch.XLabels, chartText{X: x(i), Y: chartHeight - 12, Text: labels[i]})
	}
	for t := 0; t <= chartTicks; t++ {
		f := lo + (hi-lo)*float64(t)/chartTicks
		ch.YTicks = append(ch.YTicks, chartText{
			X:    ch.Left - 6,
			Y:    y(f),
			Text: core.Dollars(int64(math.Round(f))).Format(),
		})
	}
	return ch
}
