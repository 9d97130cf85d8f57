package middleware

import (
	"net/http"
	"strings"

	"finitefield.org/exhibit-web/internal/i18n"
)

// LangCookie remembers an explicit ?hl= choice.
const LangCookie = "hl"

// Locale resolves the UI language from ?hl=, then the hl cookie, then Accept-Language.
// Unsupported values fall through to the next source.
func Locale(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := ""
			if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("hl"))); q != "" && bundle.IsSupported(q) {
				lang = q
				http.SetCookie(w, &http.Cookie{
					Name:     LangCookie,
					Value:    q,
					Path:     "/",
					MaxAge:   60 * 60 * 24 * 365,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			if lang == "" {
				if c, err := r.Cookie(LangCookie); err == nil && bundle.IsSupported(strings.ToLower(c.Value)) {
					lang = strings.ToLower(c.Value)
				}
			}
			if lang == "" {
				lang = bundle.Resolve(r.Header.Get("Accept-Language"))
			}
			w.Header().Set("Content-Language", lang)
			next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), lang)))
		})
	}
}

// VaryLocale sets Vary: Accept-Language on dynamic responses.
func VaryLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r)
	})
}
