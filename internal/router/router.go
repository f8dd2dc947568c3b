package router

import (
	"net/http"
	"strconv"
	"time"

	"CursorAPI/internal/auth"
	"CursorAPI/internal/config"
	"CursorAPI/internal/handler"
	"CursorAPI/internal/logger"
	"CursorAPI/internal/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestIDHeader = "X-Request-ID"

// Deps are the collaborators the routes are wired to.
type Deps struct {
	API       *handler.API
	Validator *auth.JWTValidator // nil when auth is disabled
	Health    func(r *http.Request) error
}

// NewMux инициализирует маршруты для API
func NewMux(cfg *config.Config, deps Deps) *http.ServeMux {
	mux := http.NewServeMux()
	limiter := newRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	cors := newCORSPolicy(cfg.CORS.AllowOrigin, cfg.CORS.AllowCredentials)

	wrap := func(pattern string, h http.HandlerFunc) http.HandlerFunc {
		if deps.Validator != nil {
			h = auth.Middleware(deps.Validator, h).ServeHTTP
		}
		h = limiter.wrap(h)
		h = cors.wrap(h)
		return withRequestID(withLogging(pattern, h))
	}

	mux.HandleFunc("/api/{route}", wrap("/api/{route}", deps.API.List))
	mux.HandleFunc("/api/{route}/count", wrap("/api/{route}/count", deps.API.Count))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Health != nil {
			if err := deps.Health(r); err != nil {
				logger.Error("health_failed", map[string]any{"error": err.Error()})
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	return mux
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func withRequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next(w, r)
	}
}

func withLogging(pattern string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)

		elapsed := time.Since(started)
		metrics.RequestTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(sw.status)).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, pattern).Observe(elapsed.Seconds())

		fields := map[string]any{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sw.status,
			"request_id": r.Header.Get(requestIDHeader),
			"duration":   elapsed.String(),
		}
		switch {
		case sw.status >= 500:
			logger.Error("response", fields)
		case sw.status >= 400:
			logger.Warn("response", fields)
		default:
			logger.Info("response", fields)
		}
	}
}
