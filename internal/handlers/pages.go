// Package handlers holds the template view models shared by the page handlers.
package handlers

import (
	"finitefield.org/exhibit-web/internal/catalog"
	"finitefield.org/exhibit-web/internal/exhibit"
	"finitefield.org/exhibit-web/internal/format"
	"finitefield.org/exhibit-web/internal/nav"
	"finitefield.org/exhibit-web/internal/seo"
	"finitefield.org/exhibit-web/internal/view"
)

// PageData is the view model executed by the base layout. Exactly one of
// List, Detail or Error is set.
type PageData struct {
	Title    string
	SiteName string
	Lang     string
	SEO      seo.Meta

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	// LangSwitch is the current URL with hl set to the other language.
	LangSwitch string
	// HashShim makes the page resend its URL fragment as ?href= when one is present.
	HashShim bool

	List   *ListPage
	Detail *DetailPage
	Error  *ErrorPage
}

// ListPage is the filter form plus the results region.
type ListPage struct {
	Query   catalog.Query
	Types   []Option
	Sorts   []Option
	Results Results
}

// Option is a <select> entry. Label wins over LabelKey when set.
type Option struct {
	Value    string
	Label    string
	LabelKey string
	Selected bool
}

// Results is the region htmx swaps on every filter change.
type Results struct {
	Lang       string
	Items      []view.Card
	Count      int
	CountText  string
	Empty      bool
	LoadFailed bool
}

// CardData pairs a card with the language it is rendered in.
type CardData struct {
	Lang string
	Card view.Card
}

// DetailPage wraps the detail view for the layout.
type DetailPage struct {
	view.Detail
	BackHref string
}

// ErrorPage is the detail error or a load failure.
type ErrorPage struct {
	view.DetailError
	// MessageKey localizes the reason; RequestedID fills its %s.
	MessageKey string
	// HashShim asks the browser to retry with its fragment.
	HashShim bool
	BackHref string
}

// CountUnavailable is shown in place of the count when loading failed.
const CountUnavailable = "-"

// BuildResults maps a list result for the results region.
func BuildResults(lang string, res catalog.ListResult) Results {
	return Results{
		Lang:      lang,
		Items:     res.Items,
		Count:     res.Count,
		CountText: format.Count(res.Count, lang),
		Empty:     res.Empty,
	}
}

// FailedResults is the results region after a load failure.
func FailedResults(lang string) Results {
	return Results{Lang: lang, Items: []view.Card{}, CountText: CountUnavailable, LoadFailed: true}
}

// BuildListPage assembles the list page model.
func BuildListPage(q catalog.Query, results Results) *ListPage {
	types := make([]Option, 0, len(exhibit.Types())+1)
	types = append(types, Option{Value: catalog.TypeAll, LabelKey: "list.type.all", Selected: q.Type == catalog.TypeAll})
	for _, kind := range exhibit.Types() {
		types = append(types, Option{
			Value:    kind,
			Label:    exhibit.TypeLabelFor(kind),
			LabelKey: "type." + kind,
			Selected: q.Type == kind,
		})
	}
	sorts := make([]Option, 0, len(catalog.SortModes()))
	for _, mode := range catalog.SortModes() {
		sorts = append(sorts, Option{Value: string(mode), LabelKey: "sort." + string(mode), Selected: q.Sort == mode})
	}
	return &ListPage{Query: q, Types: types, Sorts: sorts, Results: results}
}

// BuildErrorPage maps a detail error view.
func BuildErrorPage(e view.DetailError) *ErrorPage {
	return &ErrorPage{
		DetailError: e,
		MessageKey:  "error." + e.Kind,
		HashShim:    e.Kind == view.ErrorMissingID,
		BackHref:    "/",
	}
}
