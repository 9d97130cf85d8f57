// Package nav builds the header navigation and breadcrumbs.
package nav

import "strings"

// Item is a top-level navigation entry.
type Item struct {
	Path     string
	LabelKey string
	// Aliases are other paths that mark the item active.
	Aliases []string
}

// RenderedItem is the template view of an Item.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb is a breadcrumb entry. Label is used when LabelKey is empty.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Main is the primary navigation.
var Main = []Item{
	{Path: "/", LabelKey: "nav.exhibits", Aliases: []string{"/index.html", "/detail.html", "/exhibits"}},
}

// Build marks the item matching currentPath as active.
func Build(currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{Href: it.Path, LabelKey: it.LabelKey, Active: isActive(it, currentPath)})
	}
	return items
}

func isActive(it Item, currentPath string) bool {
	if currentPath == it.Path {
		return true
	}
	for _, alias := range it.Aliases {
		if currentPath == alias || strings.HasPrefix(currentPath, alias+"/") || strings.HasPrefix(currentPath, alias+"&") {
			return true
		}
	}
	return false
}

// ListCrumbs is the trail of the list page.
func ListCrumbs() []Crumb {
	return []Crumb{{Href: "/", LabelKey: "nav.exhibits", Active: true}}
}

// DetailCrumbs is the trail of a detail page. An empty title uses the detail heading key.
func DetailCrumbs(href, title string) []Crumb {
	last := Crumb{Href: href, Label: title, Active: true}
	if title == "" {
		last.LabelKey = "detail.title"
	}
	return []Crumb{{Href: "/", LabelKey: "nav.exhibits"}, last}
}
