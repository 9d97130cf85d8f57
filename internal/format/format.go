package format

import (
	"strconv"
	"strings"
	"time"

	"finitefield.org/exhibit-web/internal/exhibit"
)

// Slots renders schedule slots as "10:00 - 11:00 / 13:00 - 14:00".
// An empty schedule renders as "".
func Slots(slots []exhibit.Slot) string {
	if len(slots) == 0 {
		return ""
	}
	parts := make([]string, 0, len(slots))
	for _, s := range slots {
		parts = append(parts, s.DisplayStart()+" - "+s.DisplayEnd())
	}
	return strings.Join(parts, " / ")
}

// Price formats a menu price in yen without separators, e.g. Price(300) => "300円".
// A nil price renders as "".
func Price(price *float64) string {
	if price == nil {
		return ""
	}
	return strconv.FormatFloat(*price, 'f', -1, 64) + "円"
}

// Count formats a result count for the given language.
func Count(n int, lang string) string {
	switch strings.ToLower(lang) {
	case "en":
		if n == 1 {
			return "1 exhibit"
		}
		return strconv.Itoa(n) + " exhibits"
	default:
		return strconv.Itoa(n) + "件"
	}
}

// FmtDate formats time in a locale-friendly short form.
func FmtDate(t time.Time, lang string) string {
	switch strings.ToLower(lang) {
	case "en":
		return t.Format("Jan 2, 2006")
	default:
		return t.Format("2006年1月2日")
	}
}
