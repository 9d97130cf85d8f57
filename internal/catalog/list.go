package catalog

import (
	"finitefield.org/exhibit-web/internal/exhibit"
	"finitefield.org/exhibit-web/internal/view"
)

// ListResult is what the list page renders. Empty is set instead of
// rendering a zero-length card grid.
type ListResult struct {
	Query Query
	Items []view.Card
	Count int
	Empty bool
}

// List filters, sorts and maps records for q.
func (c *Catalog) List(records []exhibit.Record, q Query) ListResult {
	filtered := Filter(records, q)
	sorted := Sort(filtered, q.Sort, SortOptions{
		Now:      c.now(),
		Festival: c.festival,
		IntN:     c.intN,
	})
	res := ListResult{Query: q, Count: len(sorted)}
	if len(sorted) == 0 {
		res.Empty = true
		res.Items = []view.Card{}
		return res
	}
	res.Items = c.views.Cards(sorted)
	return res
}
