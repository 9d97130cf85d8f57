package catalog

import (
	"errors"

	"finitefield.org/exhibit-web/internal/exhibit"
	"finitefield.org/exhibit-web/internal/view"
)

// Find returns the first record whose id equals id exactly.
func Find(records []exhibit.Record, id string) (exhibit.Record, bool) {
	for _, r := range records {
		if r.ID != nil && *r.ID == id {
			return r, true
		}
	}
	return exhibit.Record{}, false
}

// Detail looks up id. A miss returns *NotFoundError.
func (c *Catalog) Detail(records []exhibit.Record, id string) (view.Detail, error) {
	if id == "" {
		return view.Detail{}, ErrNoIdentifier
	}
	rec, ok := Find(records, id)
	if !ok {
		return view.Detail{}, &NotFoundError{ID: id}
	}
	return c.views.Detail(rec), nil
}

// DetailResult holds exactly one of View or Error.
type DetailResult struct {
	ID    string
	View  *view.Detail
	Error *view.DetailError
}

// DetailFromURL resolves the identifier from pageURL and looks it up.
func (c *Catalog) DetailFromURL(records []exhibit.Record, pageURL string) DetailResult {
	id, err := ResolveID(pageURL)
	if err != nil {
		e := view.MissingID()
		return DetailResult{Error: &e}
	}
	return c.DetailByID(records, id)
}

// DetailByID looks up an already resolved identifier.
func (c *Catalog) DetailByID(records []exhibit.Record, id string) DetailResult {
	d, err := c.Detail(records, id)
	var nf *NotFoundError
	switch {
	case err == nil:
		return DetailResult{ID: id, View: &d}
	case errors.As(err, &nf):
		e := view.NotFound(nf.ID)
		return DetailResult{ID: id, Error: &e}
	default:
		e := view.MissingID()
		return DetailResult{ID: id, Error: &e}
	}
}
