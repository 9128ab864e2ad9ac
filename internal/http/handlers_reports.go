package http

import (
	"net/http"
	"strings"

	"homefin/internal/aggregate"
	"homefin/internal/core"
	"homefin/internal/services"
)

type dashboardView struct {
	services.Dashboard
	Plot lineChart
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.reports.Dashboard(r.Context())
	if err != nil {
		s.fail(w, r, "dashboard", err)
		return
	}
	chart := buildChart(d.Chart.Labels,
		chartSeries{Name: "Net Worth", Class: "net", Values: d.Chart.NetWorth},
		chartSeries{Name: "Assets", Class: "assets", Values: d.Chart.Assets},
		chartSeries{Name: "Liabilities", Class: "liabilities", Values: d.Chart.Liabilities},
	)
	s.render(w, r, http.StatusOK, "dashboard.html", "Dashboard", navDashboard, dashboardView{
		Dashboard: d,
		Plot:      chart,
	})
}

type reportsView struct {
	Quarter  core.Quarter
	Year     int
	Cmp      aggregate.QuarterComparison
	Flows    []reportRow
	Balances []reportRow
	Quarters []core.Quarter
}

// quarterSelector resolves ?quarter=&year=, defaulting to the last complete
// quarter.
func (s *Server) quarterSelector(r *http.Request) (core.Quarter, int, error) {
	q := r.URL.Query()
	return services.ParseQuarterSelector(q.Get("quarter"), q.Get("year"), s.reports.Now())
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	q, year, err := s.quarterSelector(r)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Choose a quarter from 1 to 4 and a four digit year")
		return
	}
	cmp, err := s.reports.CompareQuarters(r.Context(), q, year)
	if err != nil {
		s.fail(w, r, "compare_quarters", err)
		return
	}
	flows, balances := comparisonRows(cmp)
	s.render(w, r, http.StatusOK, "reports.html", "Quarterly Report", navReports, reportsView{
		Quarter:  q,
		Year:     year,
		Cmp:      cmp,
		Flows:    flows,
		Balances: balances,
		Quarters: []core.Quarter{1, 2, 3, 4},
	})
}

type metricOption struct {
	Key      string
	Label    string
	Selected bool
}

type analysisView struct {
	Kind     core.Kind
	Kinds    []kindOption
	Metrics  []metricOption
	YearOpts []yearOption
	Series   aggregate.Series
	Chart    lineChart
}

type kindOption struct {
	Kind     core.Kind
	Label    string
	Selected bool
}

// analysisKind reads ?kind=; anything but income charts balances.
func analysisKind(r *http.Request) core.Kind {
	if strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("kind")), string(core.KindIncome)) {
		return core.KindIncome
	}
	return core.KindBalance
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	year, err := parseYearQuery(r.URL.Query())
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid year filter")
		return
	}
	kind := analysisKind(r)
	series, err := s.reports.Series(r.Context(), kind, r.URL.Query().Get("metric"), year)
	if err != nil {
		s.fail(w, r, "series", err)
		return
	}
	years, err := s.reports.SeriesYears(r.Context(), kind)
	if err != nil {
		s.fail(w, r, "series_years", err)
		return
	}

	metrics := aggregate.Metrics(kind)
	opts := make([]metricOption, len(metrics))
	for i, m := range metrics {
		opts[i] = metricOption{Key: m.Key, Label: m.Label, Selected: m.Key == series.Metric.Key}
	}

	s.render(w, r, http.StatusOK, "analysis.html", "Analysis", navAnalysis, analysisView{
		Kind: kind,
		Kinds: []kindOption{
			{Kind: core.KindBalance, Label: "Balances", Selected: kind == core.KindBalance},
			{Kind: core.KindIncome, Label: "Income & Expenses", Selected: kind == core.KindIncome},
		},
		Metrics:  opts,
		YearOpts: yearOptions(years, year),
		Series:   series,
		Chart:    buildChart(series.Labels(), chartSeries{Name: series.Metric.Label, Class: "net", Values: series.Values()}),
	})
}

type seriesResponse struct {
	Kind   core.Kind         `json:"kind"`
	Metric string            `json:"metric"`
	Label  string            `json:"label"`
	Year   int               `json:"year,omitempty"`
	Points []aggregate.Point `json:"points"`
}

func (s *Server) handleAPISeries(w http.ResponseWriter, r *http.Request) {
	year, err := parseYearQuery(r.URL.Query())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid year")
		return
	}
	series, err := s.reports.Series(r.Context(), analysisKind(r), r.URL.Query().Get("metric"), year)
	if err != nil {
		s.fail(w, r, "series", err)
		return
	}
	points := series.Points
	if points == nil {
		points = []aggregate.Point{}
	}
	writeJSON(w, http.StatusOK, seriesResponse{
		Kind:   series.Metric.Kind,
		Metric: series.Metric.Key,
		Label:  series.Metric.Label,
		Year:   series.Year,
		Points: points,
	})
}

type quarterJSON struct {
	Quarter                  string         `json:"quarter"`
	Year                     int            `json:"year"`
	Records                  int            `json:"records"`
	TotalIncome              core.Money     `json:"total_income"`
	TotalExpenses            core.Money     `json:"total_expenses"`
	TotalAllSavings          core.Money     `json:"total_all_savings"`
	TotalSurplus             core.Money     `json:"total_surplus"`
	TotalTaxes               core.Money     `json:"total_taxes"`
	TotalUtilities           core.Money     `json:"total_utilities"`
	TotalHousing             core.Money     `json:"total_housing"`
	TotalPersonalCreditCards core.Money     `json:"total_personal_credit_cards"`
	BalanceAsOf              string         `json:"balance_as_of"`
	NetWorth                 core.NullMoney `json:"net_worth"`
	TotalAssets              core.NullMoney `json:"total_assets"`
	TotalLiabilities         core.NullMoney `json:"total_liabilities"`
	LoanBalance              core.NullMoney `json:"loan_balance"`
	SavingsBalance           core.NullMoney `json:"savings_balance"`
}

type deltaJSON struct {
	TotalIncome              core.Money     `json:"total_income"`
	TotalExpenses            core.Money     `json:"total_expenses"`
	TotalAllSavings          core.Money     `json:"total_all_savings"`
	TotalSurplus             core.Money     `json:"total_surplus"`
	TotalTaxes               core.Money     `json:"total_taxes"`
	TotalUtilities           core.Money     `json:"total_utilities"`
	TotalHousing             core.Money     `json:"total_housing"`
	TotalPersonalCreditCards core.Money     `json:"total_personal_credit_cards"`
	NetWorth                 core.NullMoney `json:"net_worth"`
	TotalAssets              core.NullMoney `json:"total_assets"`
	TotalLiabilities         core.NullMoney `json:"total_liabilities"`
	LoanBalance              core.NullMoney `json:"loan_balance"`
	SavingsBalance           core.NullMoney `json:"savings_balance"`
}

type comparisonJSON struct {
	Target     quarterJSON `json:"target"`
	Previous   quarterJSON `json:"previous"`
	YearAgo    quarterJSON `json:"year_ago"`
	VsPrevious deltaJSON   `json:"vs_previous"`
	VsYearAgo  deltaJSON   `json:"vs_year_ago"`
}

func toQuarterJSON(q aggregate.QuarterReport) quarterJSON {
	return quarterJSON{
		Quarter:                  q.Quarter.String(),
		Year:                     q.Year,
		Records:                  q.Records,
		TotalIncome:              q.TotalIncome,
		TotalExpenses:            q.TotalExpenses,
		TotalAllSavings:          q.TotalAllSavings,
		TotalSurplus:             q.TotalSurplus,
		TotalTaxes:               q.TotalTaxes,
		TotalUtilities:           q.TotalUtilities,
		TotalHousing:             q.TotalHousing,
		TotalPersonalCreditCards: q.TotalPersonalCreditCards,
		BalanceAsOf:              q.BalanceAsOf.Label(),
		NetWorth:                 q.NetWorth,
		TotalAssets:              q.TotalAssets,
		TotalLiabilities:         q.TotalLiabilities,
		LoanBalance:              q.LoanBalance,
		SavingsBalance:           q.SavingsBalance,
	}
}

func toDeltaJSON(d aggregate.QuarterDelta) deltaJSON {
	return deltaJSON{
		TotalIncome:              d.TotalIncome,
		TotalExpenses:            d.TotalExpenses,
		TotalAllSavings:          d.TotalAllSavings,
		TotalSurplus:             d.TotalSurplus,
		TotalTaxes:               d.TotalTaxes,
		TotalUtilities:           d.TotalUtilities,
		TotalHousing:             d.TotalHousing,
		TotalPersonalCreditCards: d.TotalPersonalCreditCards,
		NetWorth:                 d.NetWorth,
		TotalAssets:              d.TotalAssets,
		TotalLiabilities:         d.TotalLiabilities,
		LoanBalance:              d.LoanBalance,
		SavingsBalance:           d.SavingsBalance,
	}
}

func (s *Server) handleAPIQuarter(w http.ResponseWriter, r *http.Request) {
	q, year, err := s.quarterSelector(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	cmp, err := s.reports.CompareQuarters(r.Context(), q, year)
	if err != nil {
		s.fail(w, r, "compare_quarters", err)
		return
	}
	writeJSON(w, http.StatusOK, comparisonJSON{
		Target:     toQuarterJSON(cmp.Target),
		Previous:   toQuarterJSON(cmp.Previous),
		YearAgo:    toQuarterJSON(cmp.YearAgo),
		VsPrevious: toDeltaJSON(cmp.VsPrevious),
		VsYearAgo:  toDeltaJSON(cmp.VsYearAgo),
	})
}
