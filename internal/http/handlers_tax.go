package http

import (
	"fmt"
	"net/http"
	"strconv"

	"homefin/internal/aggregate"
	"homefin/internal/core"
	applog "homefin/internal/log"
)

func (s *Server) handleTaxes(w http.ResponseWriter, r *http.Request) {
	rows, err := s.reports.TaxList(r.Context())
	if err != nil {
		s.fail(w, r, "list_taxes", err)
		return
	}
	s.render(w, r, http.StatusOK, "taxes.html", "Tax Returns", navTaxes, rows)
}

func (s *Server) handleTaxNew(w http.ResponseWriter, r *http.Request) {
	form := recordForm{
		Heading:  "New Tax Return",
		Action:   "/taxes",
		Cancel:   "/taxes",
		Year:     strconv.Itoa(s.reports.Now().Year() - 1),
		Sections: taxSections(blankValue, nil),
	}
	s.render(w, r, http.StatusOK, "form.html", form.Heading, navTaxes, form)
}

func taxEditForm(year int) recordForm {
	action := fmt.Sprintf("/taxes/%d", year)
	return recordForm{
		Heading:      fmt.Sprintf("Tax Return %d", year),
		Action:       action,
		Cancel:       "/taxes",
		DeleteAction: action + "/delete",
		Editing:      true,
	}
}

func (s *Server) handleTaxEdit(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid year")
		return
	}
	t, ok, err := s.store.FindTaxReturn(r.Context(), year)
	if err != nil {
		s.fail(w, r, "find_tax", err)
		return
	}
	if !ok {
		s.renderError(w, r, http.StatusNotFound, fmt.Sprintf("No tax return for %d", year))
		return
	}
	form := taxEditForm(year)
	form.Sections = taxSections(func(key string) string { return amountText(t.Amount(key)) }, nil)
	s.render(w, r, http.StatusOK, "form.html", form.Heading, navTaxes, form)
}

func (s *Server) handleTaxCreate(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(w, r)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Malformed request body")
		return
	}
	fe := &FormError{}
	year := parseTaxYearField(p, fe)
	t := parseTaxForm(p, year, fe)
	if len(fe.Fields) > 0 {
		form := recordForm{
			Heading:  "New Tax Return",
			Action:   "/taxes",
			Cancel:   "/taxes",
			Year:     p.Get("year"),
			KeyError: fe.Fields["year"],
		}
		s.rejectForm(w, r, nil, form, p, fe, navTaxes)
		return
	}
	s.saveTax(w, r, t)
}

func (s *Server) handleTaxUpdate(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid year")
		return
	}
	p, err := parseBody(w, r)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Malformed request body")
		return
	}
	fe := &FormError{}
	t := parseTaxForm(p, year, fe)
	if len(fe.Fields) > 0 {
		s.rejectForm(w, r, nil, taxEditForm(year), p, fe, navTaxes)
		return
	}
	s.saveTax(w, r, t)
}

func (s *Server) saveTax(w http.ResponseWriter, r *http.Request, t core.TaxReturnSummary) {
	if err := s.store.SaveTaxReturn(r.Context(), t); err != nil {
		s.fail(w, r, "save_tax", err)
		return
	}
	s.events.LogRecordSaved(r.Context(), applog.OpUpsert, string(core.KindTax), t.Year, 0)

	if wantsJSON(r) {
		totals := aggregate.ComputeTaxTotals(t)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":       "saved",
			"kind":         core.KindTax,
			"year":         t.Year,
			"total_refund": totals.TotalRefund,
		})
		return
	}
	NewHTMXResponse().
		TriggerRecordSaved(core.KindTax, t.Year, 0).
		TriggerSuccessNotification(fmt.Sprintf("Tax return %d saved", t.Year)).
		RedirectTo("/taxes").
		WriteFor(w, r)
}

func (s *Server) handleTaxDelete(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid year")
		return
	}
	if err := s.store.DeleteTaxReturn(r.Context(), year); err != nil {
		s.fail(w, r, "delete_tax", err)
		return
	}
	s.events.LogRecordSaved(r.Context(), applog.OpDelete, string(core.KindTax), year, 0)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, savedResponse{Status: "deleted", Kind: core.KindTax, Year: year})
		return
	}
	NewHTMXResponse().
		TriggerRecordDeleted(core.KindTax, year, 0).
		RedirectTo("/taxes").
		WriteFor(w, r)
}

type constantsView struct {
	Constants []core.MetricConstant
	Date      string
	Value     string
	Errors    map[string]string
}

func (s *Server) handleConstants(w http.ResponseWriter, r *http.Request) {
	list, err := s.reports.Constants(r.Context())
	if err != nil {
		s.fail(w, r, "list_constants", err)
		return
	}
	s.render(w, r, http.StatusOK, "constants.html", "Constants", navConstants, constantsView{
		Constants: list,
		Date:      s.reports.Now().Format("2006-01-02"),
	})
}

func (s *Server) handleConstantCreate(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(w, r)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Malformed request body")
		return
	}
	fe := &FormError{}
	c := parseConstantForm(p, fe)
	if len(fe.Fields) > 0 {
		if wantsJSON(r) {
			writeJSON(w, http.StatusUnprocessableEntity, formErrorResponse{
				Error:  "invalid form",
				Status: http.StatusUnprocessableEntity,
				Fields: fe.Fields,
			})
			return
		}
		list, err := s.reports.Constants(r.Context())
		if err != nil {
			s.fail(w, r, "list_constants", err)
			return
		}
		s.render(w, r, http.StatusUnprocessableEntity, "constants.html", "Constants", navConstants, constantsView{
			Constants: list,
			Date:      p.Get("date"),
			Value:     p.Get("value"),
			Errors:    fe.Fields,
		})
		return
	}

	saved, err := s.store.SaveMetricConstant(r.Context(), c)
	if err != nil {
		s.fail(w, r, "save_constant", err)
		return
	}
	s.logConstant(r, applog.OpUpsert, saved)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "saved",
			"id":     saved.ID,
			"date":   saved.Date.ISO(),
			"value":  saved.Value,
		})
		return
	}
	NewHTMXResponse().
		TriggerSuccessNotification("Constant saved").
		RedirectTo("/constants").
		WriteFor(w, r)
}

func (s *Server) handleConstantDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid constant id")
		return
	}
	if err := s.store.DeleteMetricConstant(r.Context(), id); err != nil {
		s.fail(w, r, "delete_constant", err)
		return
	}
	s.logConstant(r, applog.OpDelete, core.MetricConstant{ID: id})

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted", "id": id})
		return
	}
	NewHTMXResponse().RedirectTo("/constants").WriteFor(w, r)
}

// logConstant logs a constant write; deletes carry no date.
func (s *Server) logConstant(r *http.Request, op string, c core.MetricConstant) {
	year, month := 0, 0
	if !c.Date.IsZero() {
		year, month = c.Date.Year(), int(c.Date.Month())
	}
	s.events.LogRecordSaved(r.Context(), op, "constant", year, month)
}

