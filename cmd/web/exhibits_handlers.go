package main

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/exhibit-web/internal/catalog"
	"finitefield.org/exhibit-web/internal/exhibit"
	"finitefield.org/exhibit-web/internal/handlers"
	"finitefield.org/exhibit-web/internal/httpx"
	mw "finitefield.org/exhibit-web/internal/middleware"
	"finitefield.org/exhibit-web/internal/nav"
	"finitefield.org/exhibit-web/internal/observability"
	"finitefield.org/exhibit-web/internal/source"
	"finitefield.org/exhibit-web/internal/view"
)

// loadRecords reads the document for one page load. Nothing is kept between requests.
func (a *app) loadRecords(r *http.Request) ([]exhibit.Record, bool) {
	decoded, err := a.loader.Load(r.Context())
	if err != nil {
		observability.FromContext(r.Context()).Error("exhibit data unavailable",
			zap.String("source", a.loader.Source().Location()),
			zap.Error(err),
		)
		return nil, false
	}
	return decoded.Records, true
}

// listResults runs q against a fresh load and reports the status to send.
func (a *app) listResults(r *http.Request, q catalog.Query) (catalog.ListResult, handlers.Results, int) {
	lang := mw.Lang(r.Context())
	records, ok := a.loadRecords(r)
	if !ok {
		return catalog.ListResult{Query: q}, handlers.FailedResults(lang), http.StatusBadGateway
	}
	res := a.catalog.List(records, q)
	return res, handlers.BuildResults(lang, res), http.StatusOK
}

// listHandler renders the exhibit list with its filter form.
func (a *app) listHandler(w http.ResponseWriter, r *http.Request) {
	q := catalog.ParseQuery(r.URL.Query())
	res, results, status := a.listResults(r, q)

	lang := mw.Lang(r.Context())
	data := a.basePage(r, a.bundle.T(lang, "list.heading"))
	data.Breadcrumbs = nav.ListCrumbs()
	data.List = handlers.BuildListPage(q, results)
	a.listSEO(r, &data, res, status == http.StatusOK)
	a.renderPage(w, r, status, data)
}

// resultsHandler renders only the results region for htmx swaps.
func (a *app) resultsHandler(w http.ResponseWriter, r *http.Request) {
	q := catalog.ParseQuery(r.URL.Query())
	_, results, status := a.listResults(r, q)

	push := "/"
	if enc := q.Values().Encode(); enc != "" {
		push += "?" + enc
	}
	w.Header().Set("HX-Push-Url", push)
	a.renderTemplate(w, r, status, "results", results)
}

// resolveDetailID reads the identifier from the request URL. The hash shim
// resends the browser URL, fragment included, as ?href=; it is consulted only
// when the request URL itself carries no identifier.
func resolveDetailID(r *http.Request) (string, catalog.IDForm, error) {
	id, form, err := catalog.ResolveIDForm(r.RequestURI)
	if errors.Is(err, catalog.ErrNoIdentifier) {
		if href := r.URL.Query().Get("href"); href != "" {
			return catalog.ResolveIDForm(href)
		}
	}
	return id, form, err
}

// detailHandler renders one exhibit. The identifier is resolved before loading.
func (a *app) detailHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r.Context())

	id, form, err := resolveDetailID(r)
	if err != nil {
		a.renderDetailError(w, r, http.StatusBadRequest, view.MissingID())
		return
	}

	records, ok := a.loadRecords(r)
	if !ok {
		a.renderDetailError(w, r, http.StatusBadGateway, view.LoadFailed())
		return
	}

	res := a.catalog.DetailByID(records, id)
	if res.Error != nil {
		a.renderDetailError(w, r, http.StatusNotFound, *res.Error)
		return
	}

	d := *res.View
	data := a.basePage(r, d.Name)
	data.Breadcrumbs = nav.DetailCrumbs(d.DetailHref, d.Name)
	data.Detail = &handlers.DetailPage{Detail: d, BackHref: "/"}
	// The server never sees the fragment, which outranks a mistyped &id=.
	data.HashShim = form == catalog.IDFormMalformedQuery
	rec, _ := catalog.Find(records, id)
	a.detailSEO(r, &data, d, rec, lang)
	a.renderPage(w, r, http.StatusOK, data)
}

func (a *app) renderDetailError(w http.ResponseWriter, r *http.Request, status int, e view.DetailError) {
	lang := mw.Lang(r.Context())
	data := a.basePage(r, a.bundle.T(lang, "detail.title"))
	data.Breadcrumbs = nav.DetailCrumbs(view.DetailPath, "")
	data.SEO.Robots = "noindex"
	data.Error = handlers.BuildErrorPage(e)
	data.HashShim = data.Error.HashShim
	a.renderPage(w, r, status, data)
}

// dataHandler serves the configured document when it is a local file.
func (a *app) dataHandler(w http.ResponseWriter, r *http.Request) {
	f, ok := a.loader.Source().(*source.File)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, f.Path())
}

type apiQuery struct {
	Q    string `json:"q"`
	Type string `json:"type"`
	Sort string `json:"sort"`
}

type apiList struct {
	Query apiQuery    `json:"query"`
	Count int         `json:"count"`
	Empty bool        `json:"empty"`
	Items []view.Card `json:"items"`
}

func (a *app) apiListHandler(w http.ResponseWriter, r *http.Request) {
	q := catalog.ParseQuery(r.URL.Query())
	records, ok := a.loadRecords(r)
	if !ok {
		httpx.WriteError(r.Context(), w, loadFailedError())
		return
	}
	res := a.catalog.List(records, q)
	httpx.WriteJSON(w, http.StatusOK, apiList{
		Query: apiQuery{Q: q.Term, Type: q.Type, Sort: string(q.Sort)},
		Count: res.Count,
		Empty: res.Empty,
		Items: res.Items,
	})
}

func (a *app) apiDetailHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// chi routes on RawPath when it is set, leaving the segment escaped.
	if r.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(id); err == nil {
			id = decoded
		}
	}
	records, ok := a.loadRecords(r)
	if !ok {
		httpx.WriteError(r.Context(), w, loadFailedError())
		return
	}
	res := a.catalog.DetailByID(records, id)
	if res.Error != nil {
		httpx.WriteError(r.Context(), w,
			httpx.NewError(res.Error.Kind, res.Error.Reason, http.StatusNotFound).
				WithDetails(map[string]any{"id": id}),
		)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res.View)
}

func loadFailedError() httpx.Error {
	return httpx.NewError(view.ErrorLoadFailed, view.ReasonLoadFailed, http.StatusBadGateway)
}
