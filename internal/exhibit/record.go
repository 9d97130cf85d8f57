// Package exhibit models the festival exhibit records served by the catalog.
package exhibit

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
)

// Known exhibit types.
const (
	TypeStore    = "store"
	TypeStage    = "stage"
	TypeEvent    = "event"
	TypeClubBook = "club_book"
	TypeBigEvent = "big_event"
)

// HotThreshold is the view count at which an exhibit is flagged as popular.
const HotThreshold = 1000

// Record is one exhibit entry of the source document. Every field is optional;
// absent values stay nil and are resolved through the Display* accessors.
type Record struct {
	ID          *string  `json:"id,omitempty"`
	Type        *string  `json:"type,omitempty"`
	Name        *string  `json:"name,omitempty"`
	Club        *string  `json:"club,omitempty"`
	Description *string  `json:"description,omitempty"`
	Location    *string  `json:"location,omitempty"`
	ViewCount   *int64   `json:"viewCount,omitempty"`
	Schedule1   []Slot   `json:"schedule1,omitempty"`
	Schedule2   []Slot   `json:"schedule2,omitempty"`
	Raining     *Raining `json:"raining,omitempty"`
	Menus       []Menu   `json:"menus,omitempty"`
}

// Slot is a time-of-day range such as {"start": "10:00", "end": "11:30"}.
type Slot struct {
	Start *string `json:"start,omitempty"`
	End   *string `json:"end,omitempty"`
}

// Raining describes the rain contingency plan.
type Raining struct {
	IsRaining RainStatus `json:"isRaining"`
	Location  *string    `json:"location,omitempty"`
}

// Menu is a single item sold by a store exhibit.
type Menu struct {
	Name  *string  `json:"name,omitempty"`
	Price *float64 `json:"price,omitempty"`
}

// RainStatus holds the isRaining value, which documents author as either a
// string ("中止", "体育館で実施") or a boolean. Text is empty for falsy values.
type RainStatus struct {
	Text string
}

// UnmarshalJSON accepts strings, booleans and numbers; anything else is falsy.
func (s *RainStatus) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	s.Text = ""
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.Text = v
	case 't':
		s.Text = "true"
	case 'f', 'n':
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err == nil && f != 0 {
			s.Text = strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return nil
}

// MarshalJSON writes the status back as a string, or false when unset.
func (s RainStatus) MarshalJSON() ([]byte, error) {
	if s.Text == "" {
		return []byte("false"), nil
	}
	return json.Marshal(s.Text)
}
