package main

import (
	"html/template"
	"net/http"
	"strings"

	"finitefield.org/exhibit-web/internal/catalog"
	"finitefield.org/exhibit-web/internal/exhibit"
	"finitefield.org/exhibit-web/internal/handlers"
	mw "finitefield.org/exhibit-web/internal/middleware"
	"finitefield.org/exhibit-web/internal/nav"
	"finitefield.org/exhibit-web/internal/seo"
	"finitefield.org/exhibit-web/internal/view"
)

// basePage fills the layout fields every page shares.
func (a *app) basePage(r *http.Request, title string) handlers.PageData {
	lang := mw.Lang(r.Context())
	site := a.cfg.Festival.SiteName
	full := site
	if title != "" && title != site {
		full = title + " | " + site
	}
	canonical := absoluteURL(r, r.URL.Path)
	desc := a.bundle.T(lang, "site.tagline")
	return handlers.PageData{
		Title:      title,
		SiteName:   site,
		Lang:       lang,
		Path:       r.URL.Path,
		Nav:        nav.Build(r.URL.Path),
		LangSwitch: langSwitchHref(r, a.bundle.T(lang, "lang.switch.code")),
		SEO: seo.Meta{
			Title:       full,
			Description: desc,
			Canonical:   canonical,
			OG: seo.OpenGraph{
				Title:       full,
				Description: desc,
				Type:        "website",
				URL:         canonical,
				SiteName:    site,
				Locale:      seo.OGLocale(lang),
			},
		},
	}
}

func (a *app) listSEO(r *http.Request, data *handlers.PageData, res catalog.ListResult, loaded bool) {
	root := absoluteURL(r, "/")
	data.SEO.JSONLD = append(data.SEO.JSONLD, seo.JSON(seo.WebSite(a.cfg.Festival.SiteName, root, root+"?q=")))
	if !loaded {
		data.SEO.Robots = "noindex"
		return
	}
	entries := make([]seo.ListEntry, 0, len(res.Items))
	for _, c := range res.Items {
		entries = append(entries, seo.ListEntry{Name: c.Name, URL: absoluteURL(r, c.DetailHref)})
	}
	data.SEO.JSONLD = append(data.SEO.JSONLD, seo.JSON(seo.ItemList(entries)))
}

func (a *app) detailSEO(r *http.Request, data *handlers.PageData, d view.Detail, rec exhibit.Record, lang string) {
	canonical := absoluteURL(r, d.DetailHref)
	desc := seo.Describe(d.DescriptionText)
	data.SEO.Canonical = canonical
	data.SEO.Description = desc
	data.SEO.OG.URL = canonical
	data.SEO.OG.Description = desc
	data.SEO.OG.Type = "article"

	start, _ := catalog.EarliestStart(rec, a.catalog.Festival())
	data.SEO.JSONLD = []template.JS{
		seo.JSON(seo.Event(seo.EventInfo{
			Name:        d.Name,
			Description: desc,
			URL:         canonical,
			Location:    d.Location,
			Organizer:   d.Club,
			Start:       start,
		})),
		seo.JSON(seo.BreadcrumbList([]seo.BreadcrumbItem{
			{Name: a.bundle.T(lang, "nav.exhibits"), Item: absoluteURL(r, "/")},
			{Name: d.Name, Item: canonical},
		})),
	}
}

// langSwitchHref keeps the request path and query and replaces hl.
func langSwitchHref(r *http.Request, target string) string {
	q := r.URL.Query()
	q.Set("hl", target)
	return r.URL.EscapedPath() + "?" + q.Encode()
}

// absoluteURL joins path onto the scheme and host the client used.
func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(p, ",")[0]))
	}
	host := r.Host
	if h := r.Header.Get("X-Forwarded-Host"); h != "" {
		host = strings.TrimSpace(strings.Split(h, ",")[0])
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return scheme + "://" + host + path
}
