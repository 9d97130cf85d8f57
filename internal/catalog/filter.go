package catalog

import (
	"strings"

	"finitefield.org/exhibit-web/internal/exhibit"
)

func normalize(s string) string { return strings.ToLower(s) }

// Haystack is the lowercased text a search term is matched against:
// name, club, description, location, type and all menu names.
func Haystack(r exhibit.Record) string {
	menuNames := make([]string, 0, len(r.Menus))
	for _, m := range r.Menus {
		menuNames = append(menuNames, m.NameValue())
	}
	fields := []string{
		deref(r.Name),
		deref(r.Club),
		deref(r.Description),
		deref(r.Location),
		deref(r.Type),
		strings.Join(menuNames, " "),
	}
	for i, f := range fields {
		fields[i] = normalize(f)
	}
	return strings.Join(fields, " ")
}

// Matches reports whether r passes both the type and search filters of q.
func Matches(r exhibit.Record, q Query) bool {
	return matchesType(r, q.Type) && matchesTerm(r, normalize(strings.TrimSpace(q.Term)))
}

func matchesType(r exhibit.Record, kind string) bool {
	if kind == "" || kind == TypeAll {
		return true
	}
	return r.Type != nil && *r.Type == kind
}

// term must already be normalized and trimmed.
func matchesTerm(r exhibit.Record, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(Haystack(r), term)
}

// Filter returns the records matching q in their original order.
func Filter(records []exhibit.Record, q Query) []exhibit.Record {
	term := normalize(strings.TrimSpace(q.Term))
	out := make([]exhibit.Record, 0, len(records))
	for _, r := range records {
		if matchesType(r, q.Type) && matchesTerm(r, term) {
			out = append(out, r)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
