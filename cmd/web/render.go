package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"finitefield.org/exhibit-web/internal/handlers"
	mw "finitefield.org/exhibit-web/internal/middleware"
	"finitefield.org/exhibit-web/internal/nav"
	"finitefield.org/exhibit-web/internal/observability"
	"finitefield.org/exhibit-web/internal/view"
)

func (a *app) funcMap() template.FuncMap {
	return template.FuncMap{
		"t":  a.bundle.T,
		"tf": a.bundle.Tf,
		// label prefers a translation and falls back to the given text.
		"label": func(lang, key, fallback string) string {
			if key == "" {
				return fallback
			}
			if s := a.bundle.T(lang, key); s != key {
				return s
			}
			if fallback != "" {
				return fallback
			}
			return key
		},
		"crumbLabel": func(lang string, c nav.Crumb) string {
			if c.LabelKey != "" {
				return a.bundle.T(lang, c.LabelKey)
			}
			return c.Label
		},
		"optionLabel": func(lang string, o handlers.Option) string {
			if s := a.bundle.T(lang, o.LabelKey); o.LabelKey != "" && s != o.LabelKey {
				return s
			}
			if o.Label != "" {
				return o.Label
			}
			return o.LabelKey
		},
		"cardData": func(lang string, c view.Card) handlers.CardData {
			return handlers.CardData{Lang: lang, Card: c}
		},
	}
}

// parseTemplates discovers every .tmpl file under the templates directory.
// ParseGlob does not support **.
func (a *app) parseTemplates() (*template.Template, error) {
	dir := a.cfg.Paths.Templates
	var files []string
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", dir)
	}
	return template.New("_root").Funcs(a.funcMap()).ParseFiles(files...)
}

// templateSet returns the cached set, or a fresh parse in dev mode.
func (a *app) templateSet() (*template.Template, error) {
	if a.cfg.Server.Dev || a.templates == nil {
		return a.parseTemplates()
	}
	return a.templates, nil
}

// renderPage executes the base layout with status.
func (a *app) renderPage(w http.ResponseWriter, r *http.Request, status int, data handlers.PageData) {
	a.renderTemplate(w, r, status, "base", data)
}

// renderTemplate executes name into a buffer so a failure can still send a clean 500.
func (a *app) renderTemplate(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	t, err := a.templateSet()
	if err != nil {
		a.templateFailed(w, r, "template parse error", err)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		a.templateFailed(w, r, "template exec error", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (a *app) templateFailed(w http.ResponseWriter, r *http.Request, msg string, err error) {
	observability.FromContext(r.Context()).Error(msg, zap.Error(err))
	http.Error(w, a.bundle.T(mw.Lang(r.Context()), "error.internal"), http.StatusInternalServerError)
}

// renderStatusPage renders a bare error page with a localized message.
func (a *app) renderStatusPage(w http.ResponseWriter, r *http.Request, status int, messageKey string) {
	lang := mw.Lang(r.Context())
	data := a.basePage(r, a.bundle.T(lang, "error.title"))
	data.SEO.Robots = "noindex"
	data.Error = &handlers.ErrorPage{MessageKey: messageKey, BackHref: "/"}
	a.renderPage(w, r, status, data)
}
