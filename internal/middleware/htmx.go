package middleware

import "net/http"

// HTMX marks requests coming from htmx so handlers can answer with fragments.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get("HX-Request") == "true"
		// Fragment and full-page answers share URLs.
		w.Header().Add("Vary", "HX-Request")
		next.ServeHTTP(w, r.WithContext(WithHTMX(r.Context(), is)))
	})
}

// IsHTMXRequest reads the flag set by HTMX.
func IsHTMXRequest(r *http.Request) bool { return IsHTMX(r.Context()) }
