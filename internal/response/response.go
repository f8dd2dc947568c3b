package response

import (
	"encoding/json"
	"net/http"
	"time"

	"CursorAPI/internal/logger"
	"CursorAPI/internal/resolver"
)

// ErrorDetail is one client-visible error. Error carries the status reason phrase.
type ErrorDetail struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// NewError builds an ErrorDetail for status with the given message.
func NewError(status int, message string) ErrorDetail {
	return ErrorDetail{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	}
}

// Meta is the pagination block of a list envelope.
type Meta struct {
	Timestamp string `json:"timestamp"`
	Count     uint64 `json:"count"`
	Page      uint64 `json:"page"`
	PageCount uint64 `json:"page_count"`
	Limit     uint64 `json:"limit"`
	Cursor    string `json:"cursor"`
	Next      any    `json:"next"`
	Previous  any    `json:"previous"`
}

// Envelope is the body of every list and count response.
type Envelope struct {
	Meta   Meta             `json:"meta"`
	Errors []ErrorDetail    `json:"errors"`
	Data   []map[string]any `json:"data"`
}

// Now is replaceable in tests.
var Now = func() time.Time { return time.Now().UTC() }

func newMeta() Meta {
	return Meta{
		Timestamp: Now().UTC().Format(time.RFC3339),
		Next:      0,
		Previous:  0,
	}
}

// FromPage wraps a resolved page.
func FromPage(p *resolver.Page) Envelope {
	meta := newMeta()
	meta.Count = p.Count
	meta.Page = p.Page
	meta.PageCount = p.PageCount
	meta.Limit = p.Limit
	meta.Cursor = p.CursorField
	meta.Next = p.Next
	meta.Previous = p.Previous

	data := p.Rows
	if data == nil {
		data = []map[string]any{}
	}
	return Envelope{Meta: meta, Errors: []ErrorDetail{}, Data: data}
}

// FromCount wraps a bare row count.
func FromCount(count uint64) Envelope {
	meta := newMeta()
	meta.Count = count
	return Envelope{Meta: meta, Errors: []ErrorDetail{}, Data: []map[string]any{}}
}

// FromErrors builds an envelope carrying only errors.
func FromErrors(errs ...ErrorDetail) Envelope {
	if errs == nil {
		errs = []ErrorDetail{}
	}
	return Envelope{Meta: newMeta(), Errors: errs, Data: []map[string]any{}}
}

// Status is 200 without errors, otherwise the first error's status,
// or 500 when that status is not a valid HTTP code.
func (e Envelope) Status() int {
	if len(e.Errors) == 0 {
		return http.StatusOK
	}
	code := e.Errors[0].StatusCode
	if code < 100 || code > 599 {
		return http.StatusInternalServerError
	}
	return code
}

// Write encodes the envelope with its status.
func Write(w http.ResponseWriter, e Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status())
	if err := json.NewEncoder(w).Encode(e); err != nil {
		logger.Error("write_response_failed", map[string]any{
			"error": err.Error(),
		})
	}
}
