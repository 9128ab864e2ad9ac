package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"homefin/internal/catalog"
	"homefin/internal/core"
)

// FormError collects per-field problems of one submitted form. It matches
// core.ErrInvalidAmount with errors.Is so handlers map it to 422.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) add(key, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[key] = msg
}

func (e *FormError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

func (e *FormError) Is(target error) bool {
	return target == core.ErrInvalidAmount
}

func (e *FormError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, so API clients can post the
// same fields the HTML forms do.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// JSON objects only; the fields are flat
	if p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// GetRaw returns the raw body bytes.
func (p *RequestBodyParser) GetRaw() []byte {
	return p.body
}

// ContentType returns the Content-Type header value.
func (p *RequestBodyParser) ContentType() string {
	return p.contentType
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// parseBody reads a size-limited request body.
func parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return p, fmt.Errorf("malformed request body: %w", err)
	}
	return p, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// parseYearQuery reads an optional year filter; blank means every year.
func parseYearQuery(q url.Values) (int, error) {
	v := strings.TrimSpace(q.Get("year"))
	if v == "" {
		return 0, nil
	}
	y, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidYear, v)
	}
	if err := core.ValidateYear(y); err != nil {
		return 0, err
	}
	return y, nil
}

func pathPeriod(r *http.Request) (core.Period, error) {
	return core.ParsePeriod(chi.URLParam(r, "year"), chi.URLParam(r, "month"))
}

func pathYear(r *http.Request) (int, error) {
	v := chi.URLParam(r, "year")
	y, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidYear, v)
	}
	if err := core.ValidateYear(y); err != nil {
		return 0, err
	}
	return y, nil
}

func pathID(r *http.Request) (int64, error) {
	v := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", v)
	}
	return id, nil
}

// parsePeriodFields reads the year and month fields of a new-record form.
func parsePeriodFields(p *RequestBodyParser, fe *FormError) core.Period {
	period, err := core.ParsePeriod(p.Get("year"), p.Get("month"))
	if err != nil {
		fe.add("period", "Enter a month between 1 and 12 and a four digit year")
	}
	return period
}

// parseAmounts reads every catalog field; blank fields are zero and omitted.
func parseAmounts(p *RequestBodyParser, c *catalog.Catalog, fe *FormError) map[string]core.Money {
	amounts := make(map[string]core.Money)
	for _, key := range c.Keys() {
		raw := p.Get(key)
		if raw == "" {
			continue
		}
		m, err := core.ParseAmount(raw)
		if err != nil {
			fe.add(key, "Not a valid amount")
			continue
		}
		if !m.IsZero() {
			amounts[key] = m
		}
	}
	return amounts
}

func parseTaxForm(p *RequestBodyParser, year int, fe *FormError) core.TaxReturnSummary {
	t := core.TaxReturnSummary{Year: year}
	for _, f := range catalog.TaxFields {
		m, err := core.ParseAmount(p.Get(f.Key))
		if err != nil {
			fe.add(f.Key, "Not a valid amount")
			continue
		}
		*t.Field(f.Key) = m
	}
	return t
}

// parseTaxYearField reads the year of a new tax return.
func parseTaxYearField(p *RequestBodyParser, fe *FormError) int {
	v := p.Get("year")
	y, err := strconv.Atoi(v)
	if err != nil || core.ValidateYear(y) != nil {
		fe.add("year", "Enter a four digit year")
		return 0
	}
	return y
}

func parseConstantForm(p *RequestBodyParser, fe *FormError) core.MetricConstant {
	var c core.MetricConstant
	d, err := core.ParseDate(p.Get("date"))
	if err != nil {
		fe.add("date", "Enter a date as YYYY-MM-DD")
	} else if err := d.Validate(); err != nil {
		fe.add("date", "Date is out of range")
	}
	c.Date = d

	raw := p.Get("value")
	if raw == "" {
		fe.add("value", "Enter a value")
		return c
	}
	v, err := core.ParseAmount(raw)
	if err != nil {
		fe.add("value", "Not a valid amount")
	}
	c.Value = v
	return c
}
