package catalog

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"finitefield.org/exhibit-web/internal/exhibit"
)

// Festival pins schedule1 and schedule2 slots to calendar dates. Only the
// year, month, day and location of each date are used.
type Festival struct {
	Day1 time.Time
	Day2 time.Time
}

// SortOptions carries the inputs of the time- and randomness-dependent modes.
type SortOptions struct {
	Now      time.Time
	Festival Festival
	// IntN returns a uniform int in [0, n). Defaults to math/rand/v2.IntN.
	IntN func(n int) int
}

// Sort returns a new slice ordered by mode. The input slice is not modified.
// All modes except random are stable.
func Sort(records []exhibit.Record, mode SortMode, opts SortOptions) []exhibit.Record {
	list := slices.Clone(records)
	if list == nil {
		list = []exhibit.Record{}
	}
	switch mode {
	case SortPopular:
		slices.SortStableFunc(list, func(a, b exhibit.Record) int {
			return cmp.Compare(b.EffectiveViewCount(), a.EffectiveViewCount())
		})
	case SortName:
		sortByName(list)
	case SortNearest:
		sortByNearest(list, opts)
	default:
		intN := opts.IntN
		if intN == nil {
			intN = rand.IntN
		}
		shuffle(list, intN)
	}
	return list
}

// shuffle is Fisher-Yates from the last index down to 1.
func shuffle(list []exhibit.Record, intN func(int) int) {
	for i := len(list) - 1; i > 0; i-- {
		j := intN(i + 1)
		list[i], list[j] = list[j], list[i]
	}
}

func sortByName(list []exhibit.Record) {
	// Collators keep scratch buffers, so each sort gets its own.
	coll := collate.New(language.Japanese)
	slices.SortStableFunc(list, func(a, b exhibit.Record) int {
		return coll.CompareString(a.NameValue(), b.NameValue())
	})
}

// Nearest-sort buckets.
const (
	BucketUpcoming = 0
	BucketPast     = 1
	BucketNone     = 2
)

// NearestKey is the ordering key of the nearest mode. Time is zero for BucketNone.
type NearestKey struct {
	Bucket int
	Time   time.Time
}

// Compare orders keys by bucket, then by time.
func (k NearestKey) Compare(o NearestKey) int {
	if c := cmp.Compare(k.Bucket, o.Bucket); c != 0 {
		return c
	}
	if k.Bucket == BucketNone {
		return 0
	}
	return k.Time.Compare(o.Time)
}

func sortByNearest(list []exhibit.Record, opts SortOptions) {
	type keyed struct {
		rec exhibit.Record
		key NearestKey
	}
	items := make([]keyed, len(list))
	for i, r := range list {
		items[i] = keyed{rec: r, key: NearestSortKey(r, opts.Festival, opts.Now)}
	}
	slices.SortStableFunc(items, func(a, b keyed) int { return a.key.Compare(b.key) })
	for i := range items {
		list[i] = items[i].rec
	}
}

// NearestSortKey classifies r relative to now: the earliest start at or after now,
// else the latest start in the past, else no data.
func NearestSortKey(r exhibit.Record, f Festival, now time.Time) NearestKey {
	candidates := StartCandidates(r, f)
	if len(candidates) == 0 {
		return NearestKey{Bucket: BucketNone}
	}
	var (
		upcoming    time.Time
		hasUpcoming bool
		latest      = candidates[0]
	)
	for _, c := range candidates {
		if !c.Before(now) && (!hasUpcoming || c.Before(upcoming)) {
			upcoming, hasUpcoming = c, true
		}
		if c.After(latest) {
			latest = c
		}
	}
	if hasUpcoming {
		return NearestKey{Bucket: BucketUpcoming, Time: upcoming}
	}
	return NearestKey{Bucket: BucketPast, Time: latest}
}

// StartCandidates lists every slot start of r as an instant. Slots whose start
// cannot be parsed are left out.
func StartCandidates(r exhibit.Record, f Festival) []time.Time {
	var out []time.Time
	add := func(day time.Time, slots []exhibit.Slot) {
		if day.IsZero() {
			return
		}
		for _, s := range slots {
			if s.Start == nil {
				continue
			}
			if t, ok := combine(day, *s.Start); ok {
				out = append(out, t)
			}
		}
	}
	add(f.Day1, r.Schedule1)
	add(f.Day2, r.Schedule2)
	return out
}

// combine sets the "hh:mm" time of day on day. Hours and minutes outside their
// usual range roll over into neighbouring days, as calendar arithmetic does.
func combine(day time.Time, clock string) (time.Time, bool) {
	parts := strings.Split(clock, ":")
	if len(parts) < 2 {
		return time.Time{}, false
	}
	hh, ok := clockNumber(parts[0])
	if !ok {
		return time.Time{}, false
	}
	mm, ok := clockNumber(parts[1])
	if !ok {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hh, mm, 0, 0, day.Location()), true
}

// maxClockValue bounds a single clock component to keep the date arithmetic sane.
const maxClockValue = 1e6

// clockNumber parses one clock component. Blank is zero; fractions truncate.
func clockNumber(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxClockValue {
		return 0, false
	}
	return int(f), true
}

// EarliestStart returns the first slot start of r across both days.
func EarliestStart(r exhibit.Record, f Festival) (time.Time, bool) {
	candidates := StartCandidates(r, f)
	if len(candidates) == 0 {
		return time.Time{}, false
	}
	return slices.MinFunc(candidates, time.Time.Compare), true
}
