// Package middleware holds the request-scoped HTTP middleware of the site:
// htmx detection, language resolution and cached static assets.
package middleware

import "context"

type ctxKey string

const (
	ctxKeyIsHTMX ctxKey = "is_htmx"
	ctxKeyLang   ctxKey = "lang"
)

// WithHTMX marks the request as coming from htmx.
func WithHTMX(ctx context.Context, is bool) context.Context {
	return context.WithValue(ctx, ctxKeyIsHTMX, is)
}

// IsHTMX reports whether the request came from htmx.
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyIsHTMX).(bool)
	return v
}

// WithLang stores the resolved UI language.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKeyLang, lang)
}

// Lang returns the resolved UI language, or "ja".
func Lang(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyLang).(string); ok && v != "" {
		return v
	}
	return "ja"
}
