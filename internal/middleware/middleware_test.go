package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/exhibit-web/internal/i18n"
)

func testBundle(t *testing.T) *i18n.Bundle {
	t.Helper()

	b, err := i18n.Load("../../locales", "ja", []string{"ja", "en"})
	require.NoError(t, err)
	return b
}

func langHandler(t *testing.T) (http.Handler, *string) {
	t.Helper()

	var got string
	h := Locale(testBundle(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = Lang(r.Context())
	}))
	return h, &got
}

func TestLocaleQueryOverrideSetsCookie(t *testing.T) {
	h, got := langHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/?hl=EN", nil)
	req.Header.Set("Accept-Language", "ja")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "en", *got)
	require.Equal(t, "en", rec.Header().Get("Content-Language"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, LangCookie, cookies[0].Name)
	require.Equal(t, "en", cookies[0].Value)
}

func TestLocaleCookieThenHeader(t *testing.T) {
	h, got := langHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: LangCookie, Value: "en"})
	req.Header.Set("Accept-Language", "ja")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "en", *got)

	req = httptest.NewRequest(http.MethodGet, "/?hl=xx", nil)
	req.AddCookie(&http.Cookie{Name: LangCookie, Value: "zz"})
	req.Header.Set("Accept-Language", "en-GB,en;q=0.8")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "en", *got)
	require.Empty(t, rec.Result().Cookies())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "ja", *got)
}

func TestHTMXFlag(t *testing.T) {
	var is bool
	h := HTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { is = IsHTMXRequest(r) }))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.True(t, is)
	require.Contains(t, rec.Header().Values("Vary"), "HX-Request")

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, is)
}

func TestAssetsWithCacheETag(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "app.css"), []byte("body{}"), 0o600))
	h := AssetsWithCache("/assets", dir)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/app.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "body{}", rec.Body.String())
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	require.Contains(t, rec.Header().Get("Cache-Control"), "max-age=604800")

	req := httptest.NewRequest(http.MethodGet, "/assets/css/app.css", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/assets/css/app.css", nil)
	req.Header.Set("If-None-Match", `"stale", W/`+etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/assets/css/app.css", nil)
	req.Header.Set("If-None-Match", `"stale"`)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, target := range []string{"/assets/missing.css", "/assets/css/", "/assets/", "/other/css/app.css"} {
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusNotFound, rec.Code, target)
	}
}
