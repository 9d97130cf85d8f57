package catalog

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finitefield.org/exhibit-web/internal/exhibit"
)

func strp(s string) *string { return &s }
func intp(n int64) *int64   { return &n }

var tokyo = time.FixedZone("JST", 9*60*60)

func testFestival() Festival {
	return Festival{
		Day1: time.Date(2025, 12, 16, 0, 0, 0, 0, tokyo),
		Day2: time.Date(2025, 12, 17, 0, 0, 0, 0, tokyo),
	}
}

func sampleRecords() []exhibit.Record {
	return []exhibit.Record{
		{
			ID:       strp("store_1"),
			Type:     strp(exhibit.TypeStore),
			Name:     strp("ほっとドッグ"),
			Club:     strp("カフェ部"),
			Location: strp("中庭"),
			Menus: []exhibit.Menu{
				{Name: strp("ホットドッグ"), Price: func() *float64 { p := 300.0; return &p }()},
				{Name: strp("Lemonade")},
			},
			ViewCount: intp(1500),
		},
		{
			ID:          strp("stage_1"),
			Type:        strp(exhibit.TypeStage),
			Name:        strp("ライブ"),
			Club:        strp("軽音部"),
			Description: strp("体育館で演奏します"),
			ViewCount:   intp(0),
		},
		{
			ID:   strp("event_1"),
			Type: strp(exhibit.TypeEvent),
		},
	}
}

func ids(records []exhibit.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.IDValue())
	}
	return out
}

func TestFilterAllWithEmptyTermKeepsEverything(t *testing.T) {
	t.Parallel()

	recs := sampleRecords()
	got := Filter(recs, Query{Type: TypeAll, Term: "   "})
	require.Equal(t, ids(recs), ids(got))

	got = Filter(recs, Query{})
	require.Len(t, got, len(recs))
}

func TestFilterSearchTerm(t *testing.T) {
	t.Parallel()

	recs := sampleRecords()
	require.Equal(t, []string{"store_1"}, ids(Filter(recs, Query{Term: "カフェ"})))
	require.Equal(t, []string{"stage_1"}, ids(Filter(recs, Query{Term: "軽音"})))
	// menu names and type keys are part of the haystack, case-insensitively
	require.Equal(t, []string{"store_1"}, ids(Filter(recs, Query{Term: "LEMON"})))
	require.Equal(t, []string{"event_1"}, ids(Filter(recs, Query{Term: "event"})))
	require.Empty(t, Filter(recs, Query{Term: "存在しない"}))
}

func TestFilterTypeAndTermCombine(t *testing.T) {
	t.Parallel()

	recs := sampleRecords()
	require.Equal(t, []string{"stage_1"}, ids(Filter(recs, Query{Type: exhibit.TypeStage})))
	require.Empty(t, Filter(recs, Query{Type: exhibit.TypeStage, Term: "カフェ"}))
	require.Equal(t, []string{"store_1"}, ids(Filter(recs, Query{Type: exhibit.TypeStore, Term: "カフェ"})))
	require.Empty(t, Filter(recs, Query{Type: "parade"}))
}

func TestHaystack(t *testing.T) {
	t.Parallel()

	got := Haystack(sampleRecords()[0])
	require.Equal(t, "ほっとドッグ カフェ部  中庭 store ホットドッグ lemonade", got)
	require.Equal(t, "     ", Haystack(exhibit.Record{}))
}

func TestSortPopularPutsMissingLast(t *testing.T) {
	t.Parallel()

	got := Sort(sampleRecords(), SortPopular, SortOptions{})
	require.Equal(t, []string{"store_1", "stage_1", "event_1"}, ids(got))
}

func TestSortPopularIsStable(t *testing.T) {
	t.Parallel()

	recs := []exhibit.Record{
		{ID: strp("a"), ViewCount: intp(5)},
		{ID: strp("b")},
		{ID: strp("c"), ViewCount: intp(5)},
		{ID: strp("d")},
	}
	require.Equal(t, []string{"a", "c", "b", "d"}, ids(Sort(recs, SortPopular, SortOptions{})))
}

func TestSortNameUsesJapaneseCollation(t *testing.T) {
	t.Parallel()

	recs := []exhibit.Record{
		{ID: strp("sakura"), Name: strp("さくら")},
		{ID: strp("curry"), Name: strp("カレー")},
		{ID: strp("noname")},
		{ID: strp("ame"), Name: strp("あめ")},
	}
	// code point order would put カレー after さくら
	require.Equal(t, []string{"noname", "ame", "curry", "sakura"}, ids(Sort(recs, SortName, SortOptions{})))
}

func TestSortRandomFisherYates(t *testing.T) {
	t.Parallel()

	recs := []exhibit.Record{{ID: strp("a")}, {ID: strp("b")}, {ID: strp("c")}, {ID: strp("d")}}
	var calls []int
	// always pick index 0: i=3 swaps 3<->0, i=2 swaps 2<->0, i=1 swaps 1<->0
	intN := func(n int) int {
		calls = append(calls, n)
		return 0
	}
	got := Sort(recs, SortRandom, SortOptions{IntN: intN})
	require.Equal(t, []int{4, 3, 2}, calls)
	require.Equal(t, []string{"b", "c", "d", "a"}, ids(got))
	require.Equal(t, []string{"a", "b", "c", "d"}, ids(recs), "input must not be mutated")
}

func TestSortEmptyInput(t *testing.T) {
	t.Parallel()

	for _, mode := range SortModes() {
		got := Sort(nil, mode, SortOptions{Festival: testFestival(), Now: time.Now()})
		require.NotNil(t, got)
		require.Empty(t, got)
	}
}

func TestSortNearestBuckets(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 12, 16, 12, 0, 0, 0, tokyo)
	slot := func(start string) exhibit.Slot { return exhibit.Slot{Start: strp(start)} }
	recs := []exhibit.Record{
		{ID: strp("none")},
		{ID: strp("past-early"), Schedule1: []exhibit.Slot{slot("09:00")}},
		{ID: strp("tomorrow"), Schedule2: []exhibit.Slot{slot("10:00")}},
		{ID: strp("past-late"), Schedule1: []exhibit.Slot{slot("09:30"), slot("11:00")}},
		{ID: strp("soon"), Schedule1: []exhibit.Slot{slot("10:00"), slot("12:30")}, Schedule2: []exhibit.Slot{slot("09:00")}},
		{ID: strp("bad"), Schedule1: []exhibit.Slot{slot("noon"), {End: strp("13:00")}}},
		{ID: strp("now"), Schedule1: []exhibit.Slot{slot("12:00")}},
	}
	got := Sort(recs, SortNearest, SortOptions{Now: now, Festival: testFestival()})
	require.Equal(t, []string{"now", "soon", "tomorrow", "past-early", "past-late", "none", "bad"}, ids(got))
}

func TestNearestSortKey(t *testing.T) {
	t.Parallel()

	f := testFestival()
	now := time.Date(2025, 12, 16, 12, 0, 0, 0, tokyo)
	rec := exhibit.Record{Schedule1: []exhibit.Slot{{Start: strp("13:15")}}, Schedule2: []exhibit.Slot{{Start: strp("9:05")}}}
	key := NearestSortKey(rec, f, now)
	require.Equal(t, BucketUpcoming, key.Bucket)
	require.True(t, key.Time.Equal(time.Date(2025, 12, 16, 13, 15, 0, 0, tokyo)))

	later := time.Date(2025, 12, 18, 0, 0, 0, 0, tokyo)
	key = NearestSortKey(rec, f, later)
	require.Equal(t, BucketPast, key.Bucket)
	require.True(t, key.Time.Equal(time.Date(2025, 12, 17, 9, 5, 0, 0, tokyo)))

	require.Equal(t, BucketNone, NearestSortKey(rec, Festival{}, now).Bucket, "unset dates yield no candidates")
}

func TestStartCandidatesParsing(t *testing.T) {
	t.Parallel()

	f := testFestival()
	day := f.Day1
	cases := map[string]*time.Time{
		"10:00":    ptrTime(time.Date(2025, 12, 16, 10, 0, 0, 0, tokyo)),
		"10:":      ptrTime(time.Date(2025, 12, 16, 10, 0, 0, 0, tokyo)),
		"10:30:45": ptrTime(time.Date(2025, 12, 16, 10, 30, 0, 0, tokyo)),
		"25:00":    ptrTime(time.Date(2025, 12, 17, 1, 0, 0, 0, tokyo)),
		"9.7:05":   ptrTime(time.Date(2025, 12, 16, 9, 5, 0, 0, tokyo)),
		"10":       nil,
		"ab:cd":    nil,
		"NaN:00":   nil,
	}
	for clock, want := range cases {
		rec := exhibit.Record{Schedule1: []exhibit.Slot{{Start: strp(clock)}}}
		got := StartCandidates(rec, Festival{Day1: day})
		if want == nil {
			require.Empty(t, got, clock)
			continue
		}
		require.Len(t, got, 1, clock)
		require.True(t, got[0].Equal(*want), "%s: got %s", clock, got[0])
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestParseQueryAndValues(t *testing.T) {
	t.Parallel()

	q := ParseQuery(url.Values{"q": {"カフェ"}, "type": {"store"}, "sort": {"NAME"}})
	require.Equal(t, Query{Type: "store", Term: "カフェ", Sort: SortName}, q)
	require.Equal(t, "q=%E3%82%AB%E3%83%95%E3%82%A7&sort=name&type=store", q.Values().Encode())

	def := ParseQuery(url.Values{"sort": {"whatever"}})
	require.Equal(t, Query{Type: TypeAll, Sort: SortRandom}, def)
	require.Empty(t, def.Values())
}

func TestResolveID(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://example.com/detail.html?id=store_1":          "store_1",
		"https://example.com/detail.html#id=store_1":          "store_1",
		"https://example.com/detail.html#store_1":             "store_1",
		"https://example.com/page.html&id=store_1":            "store_1",
		"https://example.com/page.html&id=store_1&x=1":        "store_1",
		"https://example.com/page.html&id=store%5F1":          "store_1",
		"https://example.com/page.html&id=store_1#top":        "top",
		"/detail.html?id=%E5%B1%95%E7%A4%BA":                  "展示",
		"/detail.html?id=&id=second":                          "second",
		"/detail.html?foo=1#id=":                              "id=",
		"https://example.com/detail.html?id=query#id=hash":    "query",
		"https://example.com/detail.html#id=hash&id=ignored":  "hash",
		"https://example.com/detail.html&id=bad%zz":           "bad%zz",
		"https://example.com/detail.html?name=x#frag&id=fall": "fall",
	}
	for raw, want := range cases {
		got, err := ResolveID(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"https://example.com/detail.html", "/detail.html?id=", "/detail.html&id=", ""} {
		_, err := ResolveID(raw)
		require.ErrorIs(t, err, ErrNoIdentifier, raw)
	}
}

func TestResolveIDForm(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		id   string
		form IDForm
	}{
		{"/detail.html?id=store_1", "store_1", IDFormQuery},
		{"/detail.html#store_1", "store_1", IDFormFragment},
		{"/detail.html&id=stage_1", "stage_1", IDFormMalformedQuery},
		{"http://example.com/detail.html&id=stage_1#id=event_1", "event_1", IDFormFragment},
	}
	for _, tc := range cases {
		id, form, err := ResolveIDForm(tc.raw)
		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.id, id, tc.raw)
		require.Equal(t, tc.form, form, tc.raw)
	}

	_, form, err := ResolveIDForm("/detail.html")
	require.ErrorIs(t, err, ErrNoIdentifier)
	require.Empty(t, form)
}

func TestCatalogListEmptyState(t *testing.T) {
	t.Parallel()

	c := New(testFestival(), nil)
	res := c.List(nil, Query{Type: TypeAll})
	require.True(t, res.Empty)
	require.Equal(t, 0, res.Count)
	require.NotNil(t, res.Items)

	res = c.List(sampleRecords(), Query{Term: "no match at all"})
	require.True(t, res.Empty)
	require.Equal(t, 0, res.Count)
}

func TestCatalogListMapsCards(t *testing.T) {
	t.Parallel()

	c := New(testFestival(), nil)
	res := c.List(sampleRecords(), Query{Type: TypeAll, Sort: SortPopular})
	require.False(t, res.Empty)
	require.Equal(t, 3, res.Count)
	require.Len(t, res.Items, 3)
	first := res.Items[0]
	require.Equal(t, "store_1", first.ID)
	require.True(t, first.Hot)
	require.Equal(t, "模擬店", first.TypeLabel)
	require.Equal(t, "/detail.html?id=store_1", first.DetailHref)
	require.Equal(t, "300円", first.Menus[0].Price)
	require.Equal(t, "", first.Menus[1].Price)
	last := res.Items[2]
	require.Equal(t, exhibit.FallbackName, last.Name)
	require.Equal(t, exhibit.FallbackClub, last.Club)
	require.Equal(t, exhibit.FallbackLocation, last.Location)
}

func TestCatalogDetail(t *testing.T) {
	t.Parallel()

	c := New(testFestival(), nil)
	recs := sampleRecords()

	for _, raw := range []string{
		"/detail.html?id=store_1",
		"/detail.html#id=store_1",
		"/detail.html#store_1",
		"/page.html&id=store_1",
	} {
		res := c.DetailFromURL(recs, raw)
		require.Nil(t, res.Error, raw)
		require.NotNil(t, res.View, raw)
		require.Equal(t, "store_1", res.View.ID, raw)
		require.Equal(t, int64(1500), *res.View.ViewCount, raw)
	}

	res := c.DetailFromURL(recs, "/detail.html")
	require.Nil(t, res.View)
	require.Equal(t, "missing_id", res.Error.Kind)

	res = c.DetailFromURL(recs, "/detail.html?id=ghost_99")
	require.Nil(t, res.View)
	require.Equal(t, "not_found", res.Error.Kind)
	require.Equal(t, "ghost_99", res.Error.RequestedID)

	res = c.DetailFromURL(nil, "/detail.html?id=store_1")
	require.Equal(t, "not_found", res.Error.Kind)

	_, err := c.Detail(recs, "ghost_99")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "ghost_99", nf.ID)
}

func TestFindFirstMatchWins(t *testing.T) {
	t.Parallel()

	recs := []exhibit.Record{
		{ID: strp("dup"), Name: strp("first")},
		{ID: strp("dup"), Name: strp("second")},
		{Name: strp("no id")},
	}
	rec, ok := Find(recs, "dup")
	require.True(t, ok)
	require.Equal(t, "first", rec.NameValue())
	_, ok = Find(recs, "")
	require.False(t, ok, "records without id never match")
}

func TestEarliestStart(t *testing.T) {
	rec := exhibit.Record{
		Schedule1: []exhibit.Slot{{Start: strp("14:00")}, {Start: strp("bad")}},
		Schedule2: []exhibit.Slot{{Start: strp("09:00")}},
	}
	got, ok := EarliestStart(rec, testFestival())
	require.True(t, ok)
	require.True(t, got.Equal(time.Date(2025, 12, 16, 14, 0, 0, 0, tokyo)))

	_, ok = EarliestStart(exhibit.Record{}, testFestival())
	require.False(t, ok)
}
