package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"homefin/internal/catalog"
	"homefin/internal/core"
	applog "homefin/internal/log"
	"homefin/internal/services"
)

// monthlyKind binds the shared form handlers to one monthly record type.
type monthlyKind struct {
	kind    core.Kind
	noun    string
	base    string
	active  string
	catalog *catalog.Catalog
	find    func(ctx context.Context, p core.Period) (map[string]core.Money, bool, error)
	save    func(ctx context.Context, p core.Period, amounts map[string]core.Money) error
	remove  func(ctx context.Context, p core.Period) error
}

func (s *Server) balanceKind() monthlyKind {
	return monthlyKind{
		kind:    core.KindBalance,
		noun:    "Balance Snapshot",
		base:    "/balances",
		active:  navBalances,
		catalog: catalog.Balance,
		find: func(ctx context.Context, p core.Period) (map[string]core.Money, bool, error) {
			b, ok, err := s.store.FindBalanceSnapshot(ctx, p)
			return b.Amounts, ok, err
		},
		save: func(ctx context.Context, p core.Period, amounts map[string]core.Money) error {
			return s.store.SaveBalanceSnapshot(ctx, core.BalanceSnapshot{Period: p, Amounts: amounts})
		},
		remove: s.store.DeleteBalanceSnapshot,
	}
}

func (s *Server) incomeKind() monthlyKind {
	return monthlyKind{
		kind:    core.KindIncome,
		noun:    "Income & Expenses",
		base:    "/income",
		active:  navIncome,
		catalog: catalog.Income,
		find: func(ctx context.Context, p core.Period) (map[string]core.Money, bool, error) {
			rec, ok, err := s.store.FindIncomeRecord(ctx, p)
			return rec.Amounts, ok, err
		},
		save: func(ctx context.Context, p core.Period, amounts map[string]core.Money) error {
			return s.store.SaveIncomeRecord(ctx, core.IncomeExpenseRecord{Period: p, Amounts: amounts})
		},
		remove: s.store.DeleteIncomeRecord,
	}
}

type balancesView struct {
	List       services.BalanceList
	YearOpts   []yearOption
	Categories []catalog.Category
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	year, err := parseYearQuery(r.URL.Query())
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid year filter")
		return
	}
	list, err := s.reports.BalanceList(r.Context(), year)
	if err != nil {
		s.fail(w, r, "list_balances", err)
		return
	}
	s.render(w, r, http.StatusOK, "balances.html", "Balances", navBalances, balancesView{
		List:       list,
		YearOpts:   yearOptions(list.Years, year),
		Categories: catalog.Balance.Categories(),
	})
}

type incomeView struct {
	List     services.IncomeList
	YearOpts []yearOption
}

func (s *Server) handleIncome(w http.ResponseWriter, r *http.Request) {
	year, err := parseYearQuery(r.URL.Query())
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid year filter")
		return
	}
	list, err := s.reports.IncomeList(r.Context(), year)
	if err != nil {
		s.fail(w, r, "list_income", err)
		return
	}
	s.render(w, r, http.StatusOK, "income.html", "Income & Expenses", navIncome, incomeView{
		List:     list,
		YearOpts: yearOptions(list.Years, year),
	})
}

func (s *Server) monthlyNew(k monthlyKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := core.PeriodOf(s.reports.Now())
		form := recordForm{
			Heading:   "New " + k.noun,
			Action:    k.base,
			Cancel:    k.base,
			ShowMonth: true,
			Year:      strconv.Itoa(now.Year),
			Month:     strconv.Itoa(now.Month),
			Sections:  catalogSections(k.catalog, blankValue, nil),
		}
		s.render(w, r, http.StatusOK, "form.html", form.Heading, k.active, form)
	}
}

func (s *Server) monthlyEdit(k monthlyKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period, err := pathPeriod(r)
		if err != nil {
			s.renderError(w, r, http.StatusBadRequest, "Invalid month or year")
			return
		}
		amounts, ok, err := k.find(r.Context(), period)
		if err != nil {
			s.fail(w, r, "find_"+string(k.kind), err)
			return
		}
		if !ok {
			s.renderError(w, r, http.StatusNotFound, fmt.Sprintf("No %s for %s", k.noun, period.LongLabel()))
			return
		}
		form := s.monthlyEditForm(k, period)
		form.Sections = catalogSections(k.catalog, func(key string) string { return amountText(amounts[key]) }, nil)
		s.render(w, r, http.StatusOK, "form.html", form.Heading, k.active, form)
	}
}

func (s *Server) monthlyEditForm(k monthlyKind, period core.Period) recordForm {
	action := fmt.Sprintf("%s/%d/%d", k.base, period.Year, period.Month)
	return recordForm{
		Heading:      k.noun + ": " + period.LongLabel(),
		Action:       action,
		Cancel:       listURL(k.base, period.Year),
		DeleteAction: action + "/delete",
		Editing:      true,
	}
}

// monthlyCreate reads the period from the body; monthlyUpdate from the path.
func (s *Server) monthlyCreate(k monthlyKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := parseBody(w, r)
		if err != nil {
			s.renderError(w, r, http.StatusBadRequest, "Malformed request body")
			return
		}
		fe := &FormError{}
		period := parsePeriodFields(p, fe)
		amounts := parseAmounts(p, k.catalog, fe)
		if fe.orNil() != nil {
			form := recordForm{
				Heading:   "New " + k.noun,
				Action:    k.base,
				Cancel:    k.base,
				ShowMonth: true,
				Year:      p.Get("year"),
				Month:     p.Get("month"),
				KeyError:  fe.Fields["period"],
			}
			s.rejectForm(w, r, k.catalog, form, p, fe, k.active)
			return
		}
		s.saveMonthly(w, r, k, period, amounts)
	}
}

func (s *Server) monthlyUpdate(k monthlyKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period, err := pathPeriod(r)
		if err != nil {
			s.renderError(w, r, http.StatusBadRequest, "Invalid month or year")
			return
		}
		p, err := parseBody(w, r)
		if err != nil {
			s.renderError(w, r, http.StatusBadRequest, "Malformed request body")
			return
		}
		fe := &FormError{}
		amounts := parseAmounts(p, k.catalog, fe)
		if fe.orNil() != nil {
			s.rejectForm(w, r, k.catalog, s.monthlyEditForm(k, period), p, fe, k.active)
			return
		}
		s.saveMonthly(w, r, k, period, amounts)
	}
}

func (s *Server) saveMonthly(w http.ResponseWriter, r *http.Request, k monthlyKind, period core.Period, amounts map[string]core.Money) {
	if err := k.save(r.Context(), period, amounts); err != nil {
		s.fail(w, r, "save_"+string(k.kind), err)
		return
	}
	s.events.LogRecordSaved(r.Context(), applog.OpUpsert, string(k.kind), period.Year, period.Month)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, savedResponse{Status: "saved", Kind: k.kind, Year: period.Year, Month: period.Month})
		return
	}
	NewHTMXResponse().
		TriggerRecordSaved(k.kind, period.Year, period.Month).
		TriggerSuccessNotification(k.noun + " saved for " + period.LongLabel()).
		RedirectTo(listURL(k.base, period.Year)).
		WriteFor(w, r)
}

func (s *Server) monthlyDelete(k monthlyKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period, err := pathPeriod(r)
		if err != nil {
			s.renderError(w, r, http.StatusBadRequest, "Invalid month or year")
			return
		}
		if err := k.remove(r.Context(), period); err != nil {
			s.fail(w, r, "delete_"+string(k.kind), err)
			return
		}
		s.events.LogRecordSaved(r.Context(), applog.OpDelete, string(k.kind), period.Year, period.Month)

		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, savedResponse{Status: "deleted", Kind: k.kind, Year: period.Year, Month: period.Month})
			return
		}
		NewHTMXResponse().
			TriggerRecordDeleted(k.kind, period.Year, period.Month).
			RedirectTo(listURL(k.base, period.Year)).
			WriteFor(w, r)
	}
}

// rejectForm answers 422, re-rendering the submitted values with their errors.
func (s *Server) rejectForm(w http.ResponseWriter, r *http.Request, c *catalog.Catalog, form recordForm, p *RequestBodyParser, fe *FormError, active string) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusUnprocessableEntity, formErrorResponse{
			Error:  "invalid form",
			Status: http.StatusUnprocessableEntity,
			Fields: fe.Fields,
		})
		return
	}
	form.Error = "Please correct the highlighted fields."
	if c != nil {
		form.Sections = catalogSections(c, p.Get, fe.Fields)
	} else {
		form.Sections = taxSections(p.Get, fe.Fields)
	}
	s.render(w, r, http.StatusUnprocessableEntity, "form.html", form.Heading, active, form)
}

type savedResponse struct {
	Status string    `json:"status"`
	Kind   core.Kind `json:"kind"`
	Year   int       `json:"year"`
	Month  int       `json:"month,omitempty"`
}

type formErrorResponse struct {
	Error  string            `json:"error"`
	Status int               `json:"status"`
	Fields map[string]string `json:"fields"`
}

func listURL(base string, year int) string {
	return fmt.Sprintf("%s?year=%d", base, year)
}
