package exhibit

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrDecode reports a document that is not valid JSON.
var ErrDecode = errors.New("exhibit: invalid document")

// Decoded is the result of decoding a source document.
type Decoded struct {
	Records []Record
	// Skipped counts array elements that were not objects.
	Skipped int
	// BadFields counts field values of an unexpected JSON type. Each was
	// converted or dropped; the record itself is kept.
	BadFields int
}

// Decode parses the exhibit document. Any payload that is valid JSON but not an
// array yields an empty record set.
func Decode(data []byte) (Decoded, error) {
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return Decoded{}, ErrDecode
	}
	if data[0] != '[' {
		return Decoded{Records: []Record{}}, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	out := Decoded{Records: make([]Record, 0, len(raw))}
	for _, elem := range raw {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			out.Skipped++
			continue
		}
		rec, bad, err := decodeRecord(elem)
		if err != nil {
			out.Skipped++
			continue
		}
		out.BadFields += bad
		out.Records = append(out.Records, rec)
	}
	return out, nil
}
