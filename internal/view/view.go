// Package view turns exhibit records into fallback-applied view models for templates
// and the JSON API.
package view

import (
	"html/template"
	"net/url"

	"finitefield.org/exhibit-web/internal/exhibit"
	"finitefield.org/exhibit-web/internal/format"
)

// DetailPath is the page that shows a single exhibit.
const DetailPath = "/detail.html"

// Card is the summary shown in the exhibit list.
type Card struct {
	ID              string        `json:"id"`
	TypeKey         string        `json:"type"`
	TypeLabel       string        `json:"typeLabel"`
	Club            string        `json:"club"`
	Name            string        `json:"name"`
	Description     template.HTML `json:"description"`
	DescriptionText string        `json:"-"`
	Location        string        `json:"location"`
	Rain            *Rain         `json:"raining,omitempty"`
	Day1            string        `json:"day1,omitempty"`
	Day2            string        `json:"day2,omitempty"`
	Menus           []MenuItem    `json:"menus,omitempty"`
	Hot             bool          `json:"hot"`
	DetailHref      string        `json:"detailHref"`
}

// HasSchedule reports whether either festival day has slots.
func (c Card) HasSchedule() bool { return c.Day1 != "" || c.Day2 != "" }

// Rain is the rain contingency note.
type Rain struct {
	Status   string `json:"status"`
	Location string `json:"location,omitempty"`
}

// MenuItem is a rendered menu line; Price is "" when the record has none.
type MenuItem struct {
	Name  string `json:"name"`
	Price string `json:"price,omitempty"`
}

// Detail is the single exhibit view.
type Detail struct {
	Card
	IDLabel   string `json:"idLabel"`
	ViewCount *int64 `json:"viewCount,omitempty"`
}

// Error kinds carried by DetailError.
const (
	ErrorMissingID  = "missing_id"
	ErrorNotFound   = "not_found"
	ErrorLoadFailed = "load_failed"
)

// DetailError is rendered instead of a Detail when resolution fails.
type DetailError struct {
	Kind        string `json:"error"`
	Reason      string `json:"message"`
	RequestedID string `json:"id,omitempty"`
}

// Default reasons. Templates localize by Kind; these back the JSON API.
const (
	ReasonMissingID  = "IDが指定されていません。例: detail.html?id=store_1"
	ReasonNotFound   = "指定されたIDの展示が見つかりませんでした: "
	ReasonLoadFailed = "データを読み込めませんでした。時間をおいて再度お試しください。"
)

// MissingID builds the error view for a URL without an identifier.
func MissingID() DetailError {
	return DetailError{Kind: ErrorMissingID, Reason: ReasonMissingID}
}

// NotFound builds the error view for an unknown identifier.
func NotFound(id string) DetailError {
	return DetailError{Kind: ErrorNotFound, Reason: ReasonNotFound + id, RequestedID: id}
}

// LoadFailed builds the error view for a document that could not be loaded.
func LoadFailed() DetailError {
	return DetailError{Kind: ErrorLoadFailed, Reason: ReasonLoadFailed}
}

// Builder maps records to view models.
type Builder struct {
	markup *Markup
}

// NewBuilder returns a Builder using the given markup renderer; nil uses NewMarkup.
func NewBuilder(markup *Markup) *Builder {
	if markup == nil {
		markup = NewMarkup()
	}
	return &Builder{markup: markup}
}

// Markup exposes the description renderer.
func (b *Builder) Markup() *Markup { return b.markup }

// Card builds the list card for rec.
func (b *Builder) Card(rec exhibit.Record) Card {
	desc := rec.DisplayDescription()
	card := Card{
		ID:              rec.IDValue(),
		TypeKey:         rec.TypeKey(),
		TypeLabel:       rec.TypeLabel(),
		Club:            rec.DisplayClub(),
		Name:            rec.DisplayName(),
		Description:     b.markup.HTML(desc),
		DescriptionText: b.markup.Text(desc),
		Location:        rec.DisplayLocation(),
		Day1:            format.Slots(rec.Schedule1),
		Day2:            format.Slots(rec.Schedule2),
		Hot:             rec.IsHot(),
		DetailHref:      DetailHref(rec.IDValue()),
	}
	if rec.Raining != nil {
		card.Rain = &Rain{Status: rec.Raining.Status(), Location: rec.Raining.Place()}
	}
	if len(rec.Menus) > 0 {
		card.Menus = make([]MenuItem, 0, len(rec.Menus))
		for _, m := range rec.Menus {
			card.Menus = append(card.Menus, MenuItem{Name: m.DisplayName(), Price: format.Price(m.Price)})
		}
	}
	return card
}

// Cards maps records 1:1, preserving order.
func (b *Builder) Cards(records []exhibit.Record) []Card {
	out := make([]Card, 0, len(records))
	for _, rec := range records {
		out = append(out, b.Card(rec))
	}
	return out
}

// Detail builds the detail view for rec.
func (b *Builder) Detail(rec exhibit.Record) Detail {
	d := Detail{Card: b.Card(rec), IDLabel: rec.DisplayID()}
	if rec.ViewCount != nil {
		n := *rec.ViewCount
		d.ViewCount = &n
	}
	return d
}

// DetailHref links to the detail page for id.
func DetailHref(id string) string {
	return DetailPath + "?id=" + url.QueryEscape(id)
}
