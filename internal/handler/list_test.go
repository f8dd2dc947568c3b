package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"CursorAPI/internal/model"
	"CursorAPI/internal/query"
	"CursorAPI/internal/resolver"
	"CursorAPI/internal/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	page  *resolver.Page
	count uint64
	err   error
	got   query.Intent
}

func (s *stubResolver) Resolve(ctx context.Context, res *model.Resource, in query.Intent) (*resolver.Page, error) {
	s.got = in
	return s.page, s.err
}

func (s *stubResolver) Count(ctx context.Context, res *model.Resource, in query.Intent) (uint64, error) {
	s.got = in
	return s.count, s.err
}

func withUsers(t *testing.T) {
	t.Helper()
	model.ResetRegistry()
	model.Registry["users"] = &model.Resource{Name: "users", Table: "users", Columns: []query.Column{{Name: "id", Type: "int"}}}
	t.Cleanup(model.ResetRegistry)
}

func serve(api *API, method, target string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/{route}", api.List)
	mux.HandleFunc("/api/{route}/count", api.Count)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestList_OK(t *testing.T) {
	withUsers(t)
	stub := &stubResolver{page: &resolver.Page{
		Rows: []map[string]any{{"id": int64(1)}}, Count: 1, Page: 1, PageCount: 1, Limit: 2, CursorField: "id", Next: 0, Previous: 0,
	}}
	rec := serve(New(stub), http.MethodGet, "/api/users?limit=2&id[gte]=1")

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Empty(t, env.Errors)
	assert.Len(t, env.Data, 1)
	assert.EqualValues(t, 2, env.Meta.Limit)
	assert.EqualValues(t, 2, stub.got.Limit)
	require.Len(t, stub.got.Groups, 1)
	assert.Equal(t, query.GTE, stub.got.Groups[0].Filters[0].Comparator)
}

func TestList_Errors(t *testing.T) {
	withUsers(t)
	tests := []struct {
		name    string
		method  string
		target  string
		err     error
		status  int
		message string
	}{
		{"limit overflow", http.MethodGet, "/api/users?limit=300", nil, http.StatusBadRequest, "limit out of range: 300"},
		{"unknown resource", http.MethodGet, "/api/nope", nil, http.StatusNotFound, "resource not found: nope"},
		{"wrong method", http.MethodPost, "/api/users", nil, http.StatusMethodNotAllowed, "only GET allowed"},
		{"backend failure", http.MethodGet, "/api/users", errors.New("db down"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(New(&stubResolver{err: tt.err}), tt.method, tt.target)
			require.Equal(t, tt.status, rec.Code)
			env := decode(t, rec)
			require.Len(t, env.Errors, 1)
			assert.Equal(t, tt.status, env.Errors[0].StatusCode)
			assert.Equal(t, http.StatusText(tt.status), env.Errors[0].Error)
			assert.Equal(t, tt.message, env.Errors[0].Message)
			assert.Empty(t, env.Data)
		})
	}
}

func TestCount(t *testing.T) {
	withUsers(t)
	stub := &stubResolver{count: 42}
	rec := serve(New(stub), http.MethodGet, "/api/users/count?age[gt]=30")

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.EqualValues(t, 42, env.Meta.Count)
	require.Len(t, stub.got.Groups, 1)
	assert.Equal(t, "age", stub.got.Groups[0].Filters[0].Property)

	rec = serve(New(&stubResolver{err: errors.New("boom")}), http.MethodGet, "/api/users/count")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
