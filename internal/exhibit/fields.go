package exhibit

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// fieldReader decodes record fields one at a time. A value of the wrong JSON
// type is converted when a reading exists and dropped otherwise; either way it
// is counted in bad.
type fieldReader struct {
	bad int
}

// UnmarshalJSON decodes a record field by field so that one mistyped value
// never discards the rest of the record.
func (r *Record) UnmarshalJSON(data []byte) error {
	obj, err := objectFields(data)
	if err != nil {
		return err
	}
	var fr fieldReader
	*r = fr.record(obj)
	return nil
}

// decodeRecord reads one array element. The element must be a JSON object.
func decodeRecord(data []byte) (Record, int, error) {
	obj, err := objectFields(data)
	if err != nil {
		return Record{}, 0, err
	}
	var fr fieldReader
	rec := fr.record(obj)
	return rec, fr.bad, nil
}

func objectFields(data []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (fr *fieldReader) record(obj map[string]json.RawMessage) Record {
	return Record{
		ID:          fr.text(obj["id"]),
		Type:        fr.text(obj["type"]),
		Name:        fr.text(obj["name"]),
		Club:        fr.text(obj["club"]),
		Description: fr.text(obj["description"]),
		Location:    fr.text(obj["location"]),
		ViewCount:   fr.integer(obj["viewCount"]),
		Schedule1:   fr.slots(obj["schedule1"]),
		Schedule2:   fr.slots(obj["schedule2"]),
		Raining:     fr.raining(obj["raining"]),
		Menus:       fr.menus(obj["menus"]),
	}
}

// kind returns the first byte of a trimmed value, or 0 for an absent or null one.
func kind(raw json.RawMessage) (byte, json.RawMessage) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	return raw[0], raw
}

func isNumberStart(c byte) bool {
	return c == '-' || (c >= '0' && c <= '9')
}

// text reads a string. Numbers and booleans keep their literal text.
func (fr *fieldReader) text(raw json.RawMessage) *string {
	c, raw := kind(raw)
	switch {
	case c == 0:
		return nil
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			fr.bad++
			return nil
		}
		return &s
	case c == 't' || c == 'f':
		fr.bad++
		s := string(raw)
		return &s
	case isNumberStart(c):
		fr.bad++
		s := string(raw)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			s = strconv.FormatFloat(f, 'f', -1, 64)
		}
		return &s
	default:
		fr.bad++
		return nil
	}
}

// float reads a number or a numeric string.
func (fr *fieldReader) float(raw json.RawMessage) *float64 {
	c, raw := kind(raw)
	if c == 0 {
		return nil
	}
	text := string(raw)
	if c == '"' {
		fr.bad++
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		text = strings.TrimSpace(s)
	} else if !isNumberStart(c) {
		fr.bad++
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		if c != '"' {
			fr.bad++
		}
		return nil
	}
	return &f
}

// integer reads a count. Fractions are truncated.
func (fr *fieldReader) integer(raw json.RawMessage) *int64 {
	f := fr.float(raw)
	if f == nil {
		return nil
	}
	if *f != math.Trunc(*f) {
		fr.bad++
	}
	if *f > math.MaxInt64 || *f < math.MinInt64 {
		fr.bad++
		return nil
	}
	n := int64(*f)
	return &n
}

// elements reads an array. Anything else is dropped.
func (fr *fieldReader) elements(raw json.RawMessage) []map[string]json.RawMessage {
	c, raw := kind(raw)
	if c == 0 {
		return nil
	}
	var items []json.RawMessage
	if c != '[' || json.Unmarshal(raw, &items) != nil {
		fr.bad++
		return nil
	}
	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, item := range items {
		obj := fr.object(item)
		if obj == nil {
			// A non-object entry still takes a place in the list with every field absent.
			obj = map[string]json.RawMessage{}
		}
		out = append(out, obj)
	}
	return out
}

// object reads a JSON object, counting any other non-null value.
func (fr *fieldReader) object(raw json.RawMessage) map[string]json.RawMessage {
	c, raw := kind(raw)
	if c == 0 {
		return nil
	}
	if c != '{' {
		fr.bad++
		return nil
	}
	obj, err := objectFields(raw)
	if err != nil {
		fr.bad++
		return nil
	}
	return obj
}

func (fr *fieldReader) slots(raw json.RawMessage) []Slot {
	items := fr.elements(raw)
	if items == nil {
		return nil
	}
	out := make([]Slot, 0, len(items))
	for _, obj := range items {
		out = append(out, Slot{Start: fr.text(obj["start"]), End: fr.text(obj["end"])})
	}
	return out
}

func (fr *fieldReader) menus(raw json.RawMessage) []Menu {
	items := fr.elements(raw)
	if items == nil {
		return nil
	}
	out := make([]Menu, 0, len(items))
	for _, obj := range items {
		out = append(out, Menu{Name: fr.text(obj["name"]), Price: fr.float(obj["price"])})
	}
	return out
}

// raining reads the rain plan. Falsy scalars mean no plan; other non-objects
// give a plan with every field absent.
func (fr *fieldReader) raining(raw json.RawMessage) *Raining {
	c, trimmed := kind(raw)
	if c == 0 {
		return nil
	}
	if c != '{' {
		fr.bad++
		switch string(trimmed) {
		case "false", "0", `""`:
			return nil
		}
		return &Raining{}
	}
	obj := fr.object(trimmed)
	if obj == nil {
		return nil
	}
	var plan Raining
	if status, ok := obj["isRaining"]; ok {
		_ = plan.IsRaining.UnmarshalJSON(status)
	}
	plan.Location = fr.text(obj["location"])
	return &plan
}
