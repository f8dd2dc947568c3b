package router

import (
	"net/http"
	"slices"
	"strings"
)

const corsMaxAge = "86400"

// corsPolicy is the parsed CORS_ALLOW_ORIGIN setting shared by every API route.
type corsPolicy struct {
	origins     []string
	wildcard    bool
	credentials bool
}

func newCORSPolicy(allowOrigin string, allowCredentials bool) corsPolicy {
	var origins []string
	for _, o := range strings.Split(allowOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return corsPolicy{
		origins:     origins,
		wildcard:    len(origins) == 0 || slices.Contains(origins, "*"),
		credentials: allowCredentials,
	}
}

// allowOrigin returns the Access-Control-Allow-Origin value for the request
// origin ("" to omit it) and whether the answer depends on Origin.
func (p corsPolicy) allowOrigin(requestOrigin string) (string, bool) {
	if p.wildcard {
		// "*" is not accepted by browsers together with credentials
		if p.credentials && requestOrigin != "" {
			return requestOrigin, true
		}
		return "*", false
	}
	if requestOrigin != "" && slices.Contains(p.origins, requestOrigin) {
		return requestOrigin, true
	}
	return "", true
}

// wrap adds CORS headers and answers preflight requests with 204.
func (p corsPolicy) wrap(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		origin, vary := p.allowOrigin(r.Header.Get("Origin"))
		if origin != "" {
			hdr.Set("Access-Control-Allow-Origin", origin)
		}
		if vary {
			hdr.Add("Vary", "Origin")
		}
		if p.credentials {
			hdr.Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions {
			hdr.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			hdr.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+requestIDHeader)
			hdr.Set("Access-Control-Max-Age", corsMaxAge)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// Иначе браузер не отдаст клиенту X-Request-ID
		hdr.Set("Access-Control-Expose-Headers", requestIDHeader)
		h(w, r)
	}
}
