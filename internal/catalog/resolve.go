package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoIdentifier is returned when the URL carries no exhibit id in any supported form.
var ErrNoIdentifier = errors.New("catalog: no exhibit identifier supplied")

// NotFoundError reports an identifier with no matching record.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("catalog: exhibit %q not found", e.ID)
}

// IDStrategy extracts an identifier from a page URL. u is nil when raw does not parse.
type IDStrategy func(u *url.URL, raw string) (string, bool)

// IDForm names the part of a URL an identifier was read from.
type IDForm string

const (
	IDFormQuery          IDForm = "query"
	IDFormFragment       IDForm = "fragment"
	IDFormMalformedQuery IDForm = "malformed_query"
)

// idStrategies are tried in order; the first non-empty result wins.
var idStrategies = []struct {
	form    IDForm
	extract IDStrategy
}{
	{IDFormQuery, IDFromQuery},
	{IDFormFragment, IDFromFragment},
	{IDFormMalformedQuery, IDFromMalformedQuery},
}

// ResolveID finds the exhibit identifier in a page URL, accepting
// ?id=store_1, #id=store_1, #store_1 and the mistyped page.html&id=store_1.
func ResolveID(raw string) (string, error) {
	id, _, err := ResolveIDForm(raw)
	return id, err
}

// ResolveIDForm is ResolveID that also reports which form matched.
func ResolveIDForm(raw string) (string, IDForm, error) {
	u, err := url.Parse(raw)
	if err != nil {
		u = nil
	}
	for _, s := range idStrategies {
		if id, ok := s.extract(u, raw); ok && id != "" {
			return id, s.form, nil
		}
	}
	return "", "", ErrNoIdentifier
}

// IDFromQuery reads the id query parameter.
func IDFromQuery(u *url.URL, _ string) (string, bool) {
	if u == nil || u.RawQuery == "" {
		return "", false
	}
	params, _ := url.ParseQuery(u.RawQuery)
	id := params.Get("id")
	return id, id != ""
}

// IDFromFragment reads id from a query-style fragment, or takes the whole fragment.
func IDFromFragment(u *url.URL, _ string) (string, bool) {
	if u == nil {
		return "", false
	}
	frag := u.EscapedFragment()
	if frag == "" {
		return "", false
	}
	params, _ := url.ParseQuery(frag)
	if id := params.Get("id"); id != "" {
		return id, true
	}
	return frag, true
}

const malformedIDMarker = "&id="

// IDFromMalformedQuery recovers the id from URLs that start the query with '&'
// instead of '?'. The value runs up to the next '&', '#' or '?'.
func IDFromMalformedQuery(_ *url.URL, raw string) (string, bool) {
	idx := strings.Index(raw, malformedIDMarker)
	if idx < 0 {
		return "", false
	}
	rest := raw[idx+len(malformedIDMarker):]
	if end := strings.IndexAny(rest, "&#?"); end >= 0 {
		rest = rest[:end]
	}
	if decoded, err := url.PathUnescape(rest); err == nil {
		rest = decoded
	}
	return rest, rest != ""
}
