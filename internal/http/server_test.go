package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"homefin/internal/core"
	"homefin/internal/memory"
	"homefin/internal/seed"
	"homefin/internal/services"
)

func newTestServer(t *testing.T, opts Options) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	if _, err := seed.Load(context.Background(), store); err != nil {
		t.Fatalf("seed: %v", err)
	}
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	reports := services.NewReportService(store, func() time.Time { return now }, 0)
	srv := NewServer(":0", store, reports, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, store
}

func do(srv *Server, method, target string, form url.Values, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func TestPages(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/", http.StatusOK, "December 2024"},
		{"/balances", http.StatusOK, "Balances"},
		{"/balances?year=2024", http.StatusOK, "Dec 2024"},
		{"/balances?year=abc", http.StatusBadRequest, "Invalid year filter"},
		{"/balances/new", http.StatusOK, `value="6"`},
		{"/balances/2024/3", http.StatusOK, "March 2024"},
		{"/balances/2030/1", http.StatusNotFound, "No Balance Snapshot"},
		{"/balances/2024/13", http.StatusBadRequest, "Invalid month or year"},
		{"/income?year=2023", http.StatusOK, "Income"},
		{"/income/2023/7", http.StatusOK, "July 2023"},
		{"/taxes", http.StatusOK, "2023"},
		{"/taxes/new", http.StatusOK, `value="2023"`},
		{"/taxes/2022", http.StatusOK, "Tax Return 2022"},
		{"/taxes/1999", http.StatusNotFound, "No tax return for 1999"},
		{"/constants", http.StatusOK, "2024-06-15"},
		{"/reports", http.StatusOK, "Q1"},
		{"/reports?quarter=2&year=2024", http.StatusOK, "Q2"},
		{"/reports?quarter=5", http.StatusBadRequest, "quarter"},
		{"/analysis?kind=income&metric=total_salary", http.StatusOK, "Salary"},
		{"/analysis?metric=nope", http.StatusOK, "Net Worth"},
		{"/nowhere", http.StatusNotFound, "Page not found"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := do(srv, http.MethodGet, tt.path, nil)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d; body=%s", rr.Code, tt.status, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
		})
	}
}

func TestPagesCarrySecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rr := do(srv, http.MethodGet, "/", nil)

	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing Content-Security-Policy")
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestStaticAssets(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	rr := do(srv, http.MethodGet, "/static/app.css", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Cache-Control"), "max-age") {
		t.Errorf("Cache-Control = %q", rr.Header().Get("Cache-Control"))
	}
}

func TestBalanceCreateUpdateDelete(t *testing.T) {
	srv, store := newTestServer(t, Options{})
	ctx := context.Background()

	rr := do(srv, http.MethodPost, "/balances", url.Values{
		"year":             {"2025"},
		"month":            {"1"},
		"huntington_check": {"1,500.25"},
		"main_mortgage":    {"200000"},
	})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("create status = %d; body=%s", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/balances?year=2025" {
		t.Errorf("Location = %q", loc)
	}
	b, ok, err := store.FindBalanceSnapshot(ctx, core.NewPeriod(2025, 1))
	if err != nil || !ok {
		t.Fatalf("snapshot not stored: ok=%v err=%v", ok, err)
	}
	if b.Amount("huntington_check") != core.Cents(150025) {
		t.Errorf("huntington_check = %v", b.Amount("huntington_check"))
	}

	// the path decides the period, body year/month are ignored
	rr = do(srv, http.MethodPost, "/balances/2025/1", url.Values{
		"year":             {"1999"},
		"huntington_check": {"10"},
	})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("update status = %d", rr.Code)
	}
	b, _, _ = store.FindBalanceSnapshot(ctx, core.NewPeriod(2025, 1))
	if b.Amount("huntington_check") != core.Dollars(10) || !b.Amount("main_mortgage").IsZero() {
		t.Errorf("update should replace the snapshot, got %v", b.Amounts)
	}

	rr = do(srv, http.MethodPost, "/balances/2025/1/delete", nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if _, ok, _ := store.FindBalanceSnapshot(ctx, core.NewPeriod(2025, 1)); ok {
		t.Error("snapshot still present after delete")
	}

	rr = do(srv, http.MethodPost, "/balances/2025/1/delete", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rr.Code)
	}
}

func TestBalanceCreateRejectsInvalidForm(t *testing.T) {
	srv, store := newTestServer(t, Options{})

	rr := do(srv, http.MethodPost, "/balances", url.Values{
		"year":             {"2025"},
		"month":            {"2"},
		"huntington_check": {"12.3.4"},
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "12.3.4") {
		t.Error("rejected form should keep the submitted value")
	}
	if _, ok, _ := store.FindBalanceSnapshot(context.Background(), core.NewPeriod(2025, 2)); ok {
		t.Error("invalid form must not be stored")
	}

	rr = do(srv, http.MethodPost, "/balances", url.Values{"year": {"2025"}, "month": {"0"}},
		"Accept", "application/json")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("json status = %d", rr.Code)
	}
	var body formErrorResponse
	decodeJSON(t, rr, &body)
	if body.Fields["period"] == "" {
		t.Errorf("fields = %v", body.Fields)
	}
}

func TestIncomeSaveJSONAndHTMX(t *testing.T) {
	srv, store := newTestServer(t, Options{})

	rr := do(srv, http.MethodPost, "/income/2024/12", url.Values{"cdm_salary": {"7000"}},
		"Accept", "application/json")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var saved savedResponse
	decodeJSON(t, rr, &saved)
	if saved.Status != "saved" || saved.Kind != core.KindIncome || saved.Month != 12 {
		t.Errorf("response = %+v", saved)
	}
	rec, _, _ := store.FindIncomeRecord(context.Background(), core.NewPeriod(2024, 12))
	if rec.Amount("cdm_salary") != core.Dollars(7000) {
		t.Errorf("cdm_salary = %v", rec.Amount("cdm_salary"))
	}

	rr = do(srv, http.MethodPost, "/income/2024/11/delete", nil, "HX-Request", "true")
	if rr.Code != http.StatusOK {
		t.Fatalf("htmx delete status = %d", rr.Code)
	}
	if rr.Header().Get("HX-Redirect") != "/income?year=2024" {
		t.Errorf("HX-Redirect = %q", rr.Header().Get("HX-Redirect"))
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "record:deleted") {
		t.Errorf("HX-Trigger = %q", rr.Header().Get("HX-Trigger"))
	}
}

func TestTaxReturnLifecycle(t *testing.T) {
	srv, store := newTestServer(t, Options{})
	ctx := context.Background()

	rr := do(srv, http.MethodPost, "/taxes", url.Values{
		"year":             {"2024"},
		"federal_tax_owed": {"5000"},
		"federal_payments": {"5600"},
	}, "Accept", "application/json")
	if rr.Code != http.StatusOK {
		t.Fatalf("create status = %d; body=%s", rr.Code, rr.Body.String())
	}
	var created map[string]interface{}
	decodeJSON(t, rr, &created)
	if created["total_refund"] != 600.0 {
		t.Errorf("total_refund = %v", created["total_refund"])
	}

	rr = do(srv, http.MethodPost, "/taxes/2024", url.Values{"job_wages": {"90000"}})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/taxes" {
		t.Fatalf("update status = %d location = %q", rr.Code, rr.Header().Get("Location"))
	}
	tr, _, _ := store.FindTaxReturn(ctx, 2024)
	if tr.JobWages != core.Dollars(90000) || !tr.FederalPayments.IsZero() {
		t.Errorf("tax return = %+v", tr)
	}

	rr = do(srv, http.MethodPost, "/taxes", url.Values{"year": {"24"}})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad year status = %d", rr.Code)
	}

	rr = do(srv, http.MethodPost, "/taxes/2024/delete", nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if _, ok, _ := store.FindTaxReturn(ctx, 2024); ok {
		t.Error("tax return still present")
	}
}

func TestConstants(t *testing.T) {
	srv, store := newTestServer(t, Options{})
	ctx := context.Background()

	rr := do(srv, http.MethodPost, "/constants", url.Values{"date": {"06/01/2024"}, "value": {"1"}})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad date status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "YYYY-MM-DD") {
		t.Error("missing date error")
	}

	rr = do(srv, http.MethodPost, "/constants", url.Values{"date": {"2024-06-01"}, "value": {"42.5"}},
		"Accept", "application/json")
	if rr.Code != http.StatusOK {
		t.Fatalf("create status = %d", rr.Code)
	}
	var created struct {
		ID int64 `json:"id"`
	}
	decodeJSON(t, rr, &created)

	list, _ := store.ListMetricConstants(ctx)
	if len(list) != 1 || list[0].Value != core.Cents(4250) {
		t.Fatalf("constants = %+v", list)
	}

	rr = do(srv, http.MethodPost, "/constants/"+strconv.FormatInt(created.ID, 10)+"/delete", nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if rr = do(srv, http.MethodPost, "/constants/abc/delete", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d", rr.Code)
	}
}

func TestAPISeries(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, "/api/series?kind=balance&metric=net_worth&year=2024", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	var got struct {
		Kind   string `json:"kind"`
		Metric string `json:"metric"`
		Points []struct {
			Label string  `json:"label"`
			Value float64 `json:"value"`
		} `json:"points"`
	}
	decodeJSON(t, rr, &got)
	if got.Metric != "net_worth" || len(got.Points) != 12 {
		t.Fatalf("series = %s/%d points", got.Metric, len(got.Points))
	}
	if got.Points[0].Label != "Jan 2024" || got.Points[11].Label != "Dec 2024" {
		t.Errorf("points out of order: %s .. %s", got.Points[0].Label, got.Points[11].Label)
	}

	rr = do(srv, http.MethodGet, "/api/series?kind=INCOME&metric=bogus", nil)
	decodeJSON(t, rr, &got)
	if got.Kind != "income" || got.Metric != "total_income" {
		t.Errorf("fallback = %s/%s", got.Kind, got.Metric)
	}

	rr = do(srv, http.MethodGet, "/api/series?year=1800", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad year status = %d", rr.Code)
	}

	rr = do(srv, http.MethodGet, "/api/series?year=2030", nil)
	if !strings.Contains(rr.Body.String(), `"points":[]`) {
		t.Errorf("empty series should encode points as [], got %s", rr.Body.String())
	}
}

func TestAPIQuarter(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := do(srv, http.MethodGet, "/api/reports/quarter", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got struct {
		Target struct {
			Quarter string   `json:"quarter"`
			Year    int      `json:"year"`
			Records int      `json:"records"`
			Net     *float64 `json:"net_worth"`
		} `json:"target"`
		Previous struct {
			Quarter string `json:"quarter"`
			Year    int    `json:"year"`
		} `json:"previous"`
		YearAgo struct {
			Year int `json:"year"`
		} `json:"year_ago"`
	}
	decodeJSON(t, rr, &got)
	if got.Target.Quarter != "Q1" || got.Target.Year != 2024 || got.Target.Records != 3 {
		t.Errorf("target = %+v", got.Target)
	}
	if got.Target.Net == nil {
		t.Error("target net worth should be present")
	}
	if got.Previous.Quarter != "Q4" || got.Previous.Year != 2023 || got.YearAgo.Year != 2023 {
		t.Errorf("previous = %+v year ago = %+v", got.Previous, got.YearAgo)
	}

	rr = do(srv, http.MethodGet, "/api/reports/quarter?quarter=Q9", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad quarter status = %d", rr.Code)
	}
	var e jsonError
	decodeJSON(t, rr, &e)
	if e.Status != http.StatusBadRequest {
		t.Errorf("error body = %+v", e)
	}
}

func TestHealthReadyMetrics(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(srv, http.MethodGet, path, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rr.Code)
		}
	}

	do(srv, http.MethodGet, "/", nil)
	rr := do(srv, http.MethodGet, "/metrics", nil)
	body := rr.Body.String()
	for _, want := range []string{"http_requests_total", "rate_limit_hits_total", "uptime_seconds"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

type failingPinger struct{ *memory.Store }

func (failingPinger) Ping(context.Context) error { return context.DeadlineExceeded }

func TestReadyReportsStoreFailure(t *testing.T) {
	store := failingPinger{memory.New()}
	reports := services.NewReportService(store, nil, 0)
	srv := NewServer(":0", store, reports, Options{})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	rr := do(srv, http.MethodGet, "/readyz", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "unavailable") {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestRateLimitAppliesToWritesOnly(t *testing.T) {
	srv, _ := newTestServer(t, Options{RateLimitPerMinute: 1})
	form := url.Values{"year": {"2025"}, "month": {"3"}, "huntington_check": {"1"}}

	if rr := do(srv, http.MethodPost, "/balances", form); rr.Code != http.StatusSeeOther {
		t.Fatalf("first write status = %d", rr.Code)
	}
	if rr := do(srv, http.MethodPost, "/balances", form); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second write status = %d, want 429", rr.Code)
	}
	for i := 0; i < 3; i++ {
		if rr := do(srv, http.MethodGet, "/balances", nil); rr.Code != http.StatusOK {
			t.Fatalf("read %d status = %d", i, rr.Code)
		}
	}
}
