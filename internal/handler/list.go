package handler

import (
	"context"
	"errors"
	"net/http"

	"CursorAPI/internal/logger"
	"CursorAPI/internal/model"
	"CursorAPI/internal/query"
	"CursorAPI/internal/resolver"
	"CursorAPI/internal/response"
)

// Resolver is the part of resolver.Resolver the handlers use.
type Resolver interface {
	Resolve(ctx context.Context, res *model.Resource, in query.Intent) (*resolver.Page, error)
	Count(ctx context.Context, res *model.Resource, in query.Intent) (uint64, error)
}

type API struct {
	Resolver Resolver
}

func New(rs Resolver) *API {
	return &API{Resolver: rs}
}

// List serves GET /api/{route}.
func (a *API) List(w http.ResponseWriter, r *http.Request) {
	endpoint := r.URL.Path
	res, in, ok := a.prepare(w, r, endpoint)
	if !ok {
		return
	}

	page, err := a.Resolver.Resolve(r.Context(), res, in)
	if err != nil {
		logger.Error("resolver_error", map[string]any{
			"endpoint": endpoint,
			"error":    err.Error(),
		})
		response.Write(w, response.FromErrors(response.NewError(http.StatusInternalServerError, "")))
		return
	}
	logger.Debug("page_resolved", map[string]any{
		"endpoint": endpoint,
		"rows":     len(page.Rows),
		"page":     page.Page,
		"count":    page.Count,
	})
	response.Write(w, response.FromPage(page))
}

// Count serves GET /api/{route}/count.
func (a *API) Count(w http.ResponseWriter, r *http.Request) {
	endpoint := r.URL.Path
	res, in, ok := a.prepare(w, r, endpoint)
	if !ok {
		return
	}

	n, err := a.Resolver.Count(r.Context(), res, in)
	if err != nil {
		logger.Error("count_error", map[string]any{
			"endpoint": endpoint,
			"error":    err.Error(),
		})
		response.Write(w, response.FromErrors(response.NewError(http.StatusInternalServerError, "")))
		return
	}
	response.Write(w, response.FromCount(n))
}

// prepare validates method and resource and parses the query string.
// On failure it writes the error envelope and returns ok=false.
func (a *API) prepare(w http.ResponseWriter, r *http.Request, endpoint string) (*model.Resource, query.Intent, bool) {
	// Только GET
	if r.Method != http.MethodGet {
		logger.Warn("method_not_allowed", map[string]any{
			"endpoint": endpoint,
			"method":   r.Method,
		})
		w.Header().Set("Allow", http.MethodGet)
		response.Write(w, response.FromErrors(response.NewError(http.StatusMethodNotAllowed, "only GET allowed")))
		return nil, query.Intent{}, false
	}

	route := r.PathValue("route")
	res, err := model.Lookup(route)
	if err != nil {
		logger.Warn("resource_not_found", map[string]any{
			"endpoint": endpoint,
			"route":    route,
		})
		response.Write(w, response.FromErrors(response.NewError(http.StatusNotFound, err.Error())))
		return nil, query.Intent{}, false
	}

	in, err := query.Parse(r.URL.RawQuery)
	if err != nil {
		status, msg := http.StatusBadRequest, err.Error()
		if !errors.Is(err, query.ErrLimitOverflow) {
			status, msg = http.StatusInternalServerError, ""
		}
		logger.Warn("invalid_query", map[string]any{
			"endpoint": endpoint,
			"query":    r.URL.RawQuery,
			"error":    err.Error(),
		})
		response.Write(w, response.FromErrors(response.NewError(status, msg)))
		return nil, query.Intent{}, false
	}

	logger.Info("request", map[string]any{
		"endpoint": endpoint,
		"resource": res.Name,
		"query":    r.URL.RawQuery,
	})
	return res, in, true
}
