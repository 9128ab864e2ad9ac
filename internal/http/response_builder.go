package http

import (
	"encoding/json"
	"html/template"
	"net/http"

	"homefin/internal/core"
)

// HTMXResponseBuilder assembles a write response: status, HX-Trigger events
// and a redirect. The redirect is an HX-Redirect header for htmx requests
// and a 303 for plain form posts.
type HTMXResponseBuilder struct {
	status   int
	header   http.Header
	events   map[string]interface{}
	body     string
	redirect string
}

func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		status: http.StatusOK,
		header: http.Header{},
		events: map[string]interface{}{},
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.status = code
	return b
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.header.Set(name, value)
	return b
}

// Trigger queues a client event; a later event of the same name wins.
func (b *HTMXResponseBuilder) Trigger(name string, detail interface{}) *HTMXResponseBuilder {
	b.events[name] = detail
	return b
}

// TriggerRecordSaved fires record:saved. month is 0 for tax years and is
// then left out of the event.
func (b *HTMXResponseBuilder) TriggerRecordSaved(kind core.Kind, year, month int) *HTMXResponseBuilder {
	return b.Trigger("record:saved", recordEvent(kind, year, month))
}

func (b *HTMXResponseBuilder) TriggerRecordDeleted(kind core.Kind, year, month int) *HTMXResponseBuilder {
	return b.Trigger("record:deleted", recordEvent(kind, year, month))
}

func recordEvent(kind core.Kind, year, month int) map[string]interface{} {
	ev := map[string]interface{}{"kind": string(kind), "year": year}
	if month > 0 {
		ev["month"] = month
	}
	return ev
}

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// TriggerNotification fires show-notification, picked up by app.js.
func (b *HTMXResponseBuilder) TriggerNotification(kind NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger("show-notification", map[string]interface{}{
		"type":     string(kind),
		"message":  message,
		"duration": durationMs,
	})
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationSuccess, message, 3000)
}

// HTML sets an HTML body. The caller escapes it.
func (b *HTMXResponseBuilder) HTML(body string) *HTMXResponseBuilder {
	b.header.Set("Content-Type", "text/html; charset=utf-8")
	b.body = body
	return b
}

func (b *HTMXResponseBuilder) RedirectTo(url string) *HTMXResponseBuilder {
	b.redirect = url
	return b
}

// Write sends the response as if to a non-htmx client.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	b.write(w, false)
}

// WriteFor sends the response, choosing the redirect style from r.
func (b *HTMXResponseBuilder) WriteFor(w http.ResponseWriter, r *http.Request) {
	b.write(w, isHTMX(r))
}

func (b *HTMXResponseBuilder) write(w http.ResponseWriter, htmx bool) {
	h := w.Header()
	for name, values := range b.header {
		h[name] = values
	}
	if len(b.events) > 0 {
		if raw, err := json.Marshal(b.events); err == nil {
			h.Set("HX-Trigger", string(raw))
		}
	}

	status := b.status
	switch {
	case b.redirect == "":
	case htmx:
		h.Set("HX-Redirect", b.redirect)
	default:
		h.Set("Location", b.redirect)
		status = http.StatusSeeOther
	}

	w.WriteHeader(status)
	if b.body != "" {
		_, _ = w.Write([]byte(b.body))
	}
}

// ErrorResponse is a bare HTML error fragment with message escaped.
func ErrorResponse(status int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(status).
		HTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}

type jsonError struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, jsonError{Error: message, Status: status})
}
