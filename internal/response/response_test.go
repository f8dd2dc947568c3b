package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CursorAPI/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow(t *testing.T) {
	t.Helper()
	prev := Now
	Now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("X", 3*3600)) }
	t.Cleanup(func() { Now = prev })
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		errs []ErrorDetail
		want int
	}{
		{"no errors", nil, http.StatusOK},
		{"first wins", []ErrorDetail{NewError(400, "bad"), NewError(404, "")}, http.StatusBadRequest},
		{"invalid code", []ErrorDetail{{StatusCode: 42}}, http.StatusInternalServerError},
		{"zero code", []ErrorDetail{{}}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Envelope{Errors: tt.errs}.Status())
		})
	}
}

func TestWrite_PageEnvelope(t *testing.T) {
	fixedNow(t)
	page := &resolver.Page{
		Rows:        []map[string]any{{"id": int64(3)}, {"id": int64(4)}},
		Count:       5,
		Page:        2,
		PageCount:   3,
		Limit:       2,
		CursorField: "id",
		Next:        int64(5),
		Previous:    int64(1),
	}
	rec := httptest.NewRecorder()
	Write(rec, FromPage(page))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"meta": {"timestamp": "2024-03-01T09:30:00Z", "count": 5, "page": 2, "page_count": 3,
		         "limit": 2, "cursor": "id", "next": 5, "previous": 1},
		"errors": [],
		"data": [{"id": 3}, {"id": 4}]
	}`, rec.Body.String())
}

func TestWrite_ErrorEnvelope(t *testing.T) {
	fixedNow(t)
	rec := httptest.NewRecorder()
	Write(rec, FromErrors(NewError(http.StatusBadRequest, "limit out of range")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var got Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Errors, 1)
	assert.Equal(t, ErrorDetail{StatusCode: 400, Error: "Bad Request", Message: "limit out of range"}, got.Errors[0])
	assert.Empty(t, got.Data)
	assert.EqualValues(t, 0, got.Meta.Next)
}

func TestFromCount(t *testing.T) {
	e := FromCount(7)
	assert.EqualValues(t, 7, e.Meta.Count)
	assert.Equal(t, http.StatusOK, e.Status())
	assert.NotNil(t, e.Data)
}
