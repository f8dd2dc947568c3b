package auth

import (
	"net/http"
	"strings"

	"CursorAPI/internal/logger"
	"CursorAPI/internal/response"
)

// Middleware requires a valid "Authorization: Bearer <jwt>" header.
// Preflight requests pass through untouched.
func Middleware(v *JWTValidator, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w, "missing bearer token")
			return
		}
		claims, err := v.ValidateToken(token)
		if err != nil {
			logger.Warn("auth_failed", map[string]any{
				"endpoint": r.URL.Path,
				"error":    err.Error(),
			})
			unauthorized(w, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="cursorapi"`)
	response.Write(w, response.FromErrors(response.NewError(http.StatusUnauthorized, msg)))
}
