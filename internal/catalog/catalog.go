package catalog

import (
	"time"

	"finitefield.org/exhibit-web/internal/view"
)

// Catalog runs list and detail requests against a record set supplied by the caller.
// It holds no records itself; each page load passes the set it just loaded.
type Catalog struct {
	festival Festival
	views    *view.Builder
	now      func() time.Time
	intN     func(int) int
}

// Option customises a Catalog.
type Option func(*Catalog)

// WithClock overrides the reference time used by the nearest sort.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIntN overrides the random source used by the random sort.
func WithIntN(intN func(int) int) Option {
	return func(c *Catalog) {
		if intN != nil {
			c.intN = intN
		}
	}
}

// New builds a Catalog. A nil builder uses view.NewBuilder(nil).
func New(festival Festival, views *view.Builder, opts ...Option) *Catalog {
	if views == nil {
		views = view.NewBuilder(nil)
	}
	c := &Catalog{festival: festival, views: views, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Festival returns the configured festival dates.
func (c *Catalog) Festival() Festival { return c.festival }

// Views returns the view builder.
func (c *Catalog) Views() *view.Builder { return c.views }
