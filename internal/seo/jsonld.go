package seo

import (
	"html/template"
	"time"

	"github.com/goccy/go-json"
)

// JSON encodes v for a <script type="application/ld+json"> block. It returns "" on error.
func JSON(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.JS(b)
}

// WebSite describes the site with a SearchAction pointing at the list filter.
func WebSite(name, url, searchURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if searchURL != "" {
		m["potentialAction"] = map[string]any{
			"@type":       "SearchAction",
			"target":      searchURL + "{search_term_string}",
			"query-input": "required name=search_term_string",
		}
	}
	return m
}

// ListEntry is one element of an ItemList.
type ListEntry struct {
	Name string
	URL  string
}

// ItemList lists result entries in display order.
func ItemList(entries []ListEntry) map[string]any {
	el := make([]map[string]any, 0, len(entries))
	for i, e := range entries {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     e.Name,
			"url":      e.URL,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "ItemList",
		"numberOfItems":   len(entries),
		"itemListElement": el,
	}
}

// EventInfo feeds Event.
type EventInfo struct {
	Name        string
	Description string
	URL         string
	Location    string
	Organizer   string
	Start       time.Time
}

// Event returns a schema.org Event. A zero Start leaves startDate out.
func Event(e EventInfo) map[string]any {
	m := map[string]any{
		"@context":            "https://schema.org",
		"@type":               "Event",
		"name":                e.Name,
		"eventAttendanceMode": "https://schema.org/OfflineEventAttendanceMode",
	}
	if e.Description != "" {
		m["description"] = e.Description
	}
	if e.URL != "" {
		m["url"] = e.URL
	}
	if e.Location != "" {
		m["location"] = map[string]any{"@type": "Place", "name": e.Location}
	}
	if e.Organizer != "" {
		m["organizer"] = map[string]any{"@type": "Organization", "name": e.Organizer}
	}
	if !e.Start.IsZero() {
		m["startDate"] = e.Start.Format(time.RFC3339)
	}
	return m
}

// BreadcrumbItem maps a name to an absolute URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds a schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}
