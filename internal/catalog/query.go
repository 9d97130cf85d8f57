// Package catalog holds the list and detail logic of the exhibit guide: filtering,
// sorting and identifier resolution over an explicitly passed record set.
package catalog

import (
	"net/url"
	"strings"
)

// TypeAll disables the type filter.
const TypeAll = "all"

// SortMode selects a sort strategy.
type SortMode string

const (
	SortRandom  SortMode = "random"
	SortPopular SortMode = "popular"
	SortName    SortMode = "name"
	SortNearest SortMode = "nearest"
)

// SortModes lists the modes in the order the sort control shows them.
func SortModes() []SortMode {
	return []SortMode{SortRandom, SortPopular, SortName, SortNearest}
}

// ParseSortMode maps a form value to a mode; unknown values become SortRandom.
func ParseSortMode(s string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortPopular:
		return SortPopular
	case SortName:
		return SortName
	case SortNearest:
		return SortNearest
	default:
		return SortRandom
	}
}

// Query is one snapshot of the list controls.
type Query struct {
	Type string
	Term string
	Sort SortMode
}

// ParseQuery reads q, type and sort from a query string.
func ParseQuery(v url.Values) Query {
	q := Query{
		Type: strings.TrimSpace(v.Get("type")),
		Term: v.Get("q"),
		Sort: ParseSortMode(v.Get("sort")),
	}
	if q.Type == "" {
		q.Type = TypeAll
	}
	return q
}

// Values encodes the query, omitting defaults.
func (q Query) Values() url.Values {
	v := url.Values{}
	if strings.TrimSpace(q.Term) != "" {
		v.Set("q", q.Term)
	}
	if q.Type != "" && q.Type != TypeAll {
		v.Set("type", q.Type)
	}
	if q.Sort != "" && q.Sort != SortRandom {
		v.Set("sort", string(q.Sort))
	}
	return v
}
