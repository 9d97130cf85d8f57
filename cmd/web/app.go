package main

import (
	"fmt"
	"html/template"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/exhibit-web/internal/catalog"
	"finitefield.org/exhibit-web/internal/config"
	"finitefield.org/exhibit-web/internal/httpx"
	"finitefield.org/exhibit-web/internal/i18n"
	mw "finitefield.org/exhibit-web/internal/middleware"
	"finitefield.org/exhibit-web/internal/observability"
	"finitefield.org/exhibit-web/internal/source"
	"finitefield.org/exhibit-web/internal/view"
)

// app holds everything the handlers share. None of it changes after newApp.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	bundle    *i18n.Bundle
	catalog   *catalog.Catalog
	loader    *source.Loader
	templates *template.Template
}

type appOption func(*appOptions)

type appOptions struct {
	src        source.Source
	catalogOps []catalog.Option
}

// withSource replaces the source built from cfg.Data.URL.
func withSource(src source.Source) appOption {
	return func(o *appOptions) { o.src = src }
}

// withCatalogOptions passes options such as a fixed clock to the catalog.
func withCatalogOptions(opts ...catalog.Option) appOption {
	return func(o *appOptions) { o.catalogOps = append(o.catalogOps, opts...) }
}

func newApp(cfg config.Config, logger *zap.Logger, opts ...appOption) (*app, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	bundle, err := i18n.Load(cfg.Paths.Locales, "ja", []string{"ja", "en"})
	if err != nil {
		return nil, fmt.Errorf("load i18n: %w", err)
	}

	src := o.src
	if src == nil {
		src, err = source.Open(cfg.Data.URL, source.Options{
			HTTP: []source.HTTPOption{source.WithHTTPClient(&http.Client{Timeout: cfg.Data.FetchTimeout})},
		})
		if err != nil {
			return nil, fmt.Errorf("data source: %w", err)
		}
	}

	festival := catalog.Festival{Day1: cfg.Festival.Day1, Day2: cfg.Festival.Day2}
	a := &app{
		cfg:     cfg,
		logger:  logger,
		bundle:  bundle,
		catalog: catalog.New(festival, view.NewBuilder(nil), o.catalogOps...),
		loader:  source.NewLoader(src, source.WithTimeout(cfg.Data.FetchTimeout)),
	}

	// Parse once even in dev mode so broken templates fail at startup.
	tmpl, err := a.parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	a.templates = tmpl
	return a, nil
}

// Close releases the document source.
func (a *app) Close() error {
	if c, ok := a.loader.Source().(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; deploy behind a proxy that sets it.
	r.Use(chimw.RealIP)
	r.Use(observability.Tracing(a.cfg.Trace.ProjectID))
	r.Use(observability.InjectLogger(a.logger))
	r.Use(mw.HTMX)
	r.Use(observability.RequestLogger(mw.IsHTMXRequest))
	r.Use(observability.Recovery(a.panicHandler))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	r.Handle("/assets/*", mw.AssetsWithCache("/assets", filepath.Join(a.cfg.Paths.Public, "assets")))
	r.Get("/data.json", a.dataHandler)

	r.Route("/api/exhibits", func(r chi.Router) {
		r.Get("/", a.apiListHandler)
		r.Get("/{id}", a.apiDetailHandler)
	})

	pages := chi.Chain(mw.Locale(a.bundle), mw.VaryLocale)
	r.Group(func(r chi.Router) {
		r.Use(pages...)
		r.Get("/", a.listHandler)
		r.Get("/index.html", a.listHandler)
		r.Get("/exhibits/results", a.resultsHandler)
		r.Get(view.DetailPath, a.detailHandler)
	})
	r.NotFound(pages.HandlerFunc(a.notFoundHandler).ServeHTTP)
	return r
}

// notFoundHandler serves the mistyped detail URL /detail.html&id=... and 404s the rest.
func (a *app) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, view.DetailPath+"&") && r.Method == http.MethodGet {
		a.detailHandler(w, r)
		return
	}
	if isAPIPath(r.URL.Path) {
		httpx.WriteError(r.Context(), w, httpx.NewError("not_found", "resource not found", http.StatusNotFound))
		return
	}
	a.renderStatusPage(w, r, http.StatusNotFound, "error.not_found_page")
}

func (a *app) panicHandler(w http.ResponseWriter, r *http.Request) {
	if isAPIPath(r.URL.Path) {
		httpx.WriteError(r.Context(), w, httpx.NewError("internal_server_error", "internal server error", http.StatusInternalServerError))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, a.bundle.T(mw.Lang(r.Context()), "error.internal"))
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}
