package middleware

import (
	"net/http"
	"strings"
)

// AuthMiddleware checks for the 'authenticated=true' session cookie and
// redirects unauthenticated page loads to /login. The login endpoint,
// static assets and the unauthenticated probes (/health, /metrics) pass
// through.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		if r.URL.Path == "/login" ||
			r.URL.Path == "/auth/login" ||
			r.URL.Path == "/health" ||
			r.URL.Path == "/metrics" ||
			strings.HasPrefix(r.URL.Path, "/static/") ||
			strings.HasPrefix(r.URL.Path, "/css/") ||
			strings.HasPrefix(r.URL.Path, "/js/") {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie("authenticated")
		if err != nil || cookie.Value != "true" {
			// API/AJAX calls get a 401, page loads a redirect.
			if r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
				strings.HasPrefix(r.URL.Path, "/api/") ||
				strings.HasPrefix(r.URL.Path, "/ws/") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
