package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// Origins is the set of browser origins allowed to call the API cross-site.
type Origins map[string]struct{}

// NewOrigins builds an origin set, ignoring blanks and trailing slashes.
func NewOrigins(list []string) Origins {
	origins := make(Origins, len(list))
	for _, o := range list {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			origins[o] = struct{}{}
		}
	}
	return origins
}

// Allows reports whether origin may read API responses. Loopback origins
// are always allowed so a locally served UI works on any port.
func (o Origins) Allows(origin string) bool {
	if origin == "" {
		return false
	}
	if _, ok := o[origin]; ok {
		return true
	}
	return isLoopbackOrigin(origin)
}

// isLoopbackOrigin matches http(s) origins on localhost, 127.0.0.1 or ::1.
func isLoopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || (u.Path != "" && u.Path != "/") {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// CORS lets allowed origins upload images, request builds and read the
// download file name. Preflight requests are answered here and never
// reach the router.
func CORS(origins Origins) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			allowed := origins.Allows(origin)
			if allowed {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Expose-Headers", "Content-Disposition, Content-Length")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if allowed {
					h.Set("Access-Control-Allow-Methods", "GET, POST")
					h.Set("Access-Control-Allow-Headers", "Content-Type")
					h.Set("Access-Control-Max-Age", "86400")
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders locks the UI down to same-origin scripts and styles.
// Collage previews may also come from blob: URLs created by the UI.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy",
				"default-src 'self'; img-src 'self' blob: data:; style-src 'self'; "+
					"script-src 'self'; frame-ancestors 'none'")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			next.ServeHTTP(w, r)
		})
	}
}
