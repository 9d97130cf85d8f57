package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"finitefield.org/exhibit-web/internal/exhibit"
)

const sampleDoc = `[{"id":"store_1","name":"焼きそば"},{"id":"stage_1"},42]`

func writeTemp(t *testing.T, body string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestFileLoad(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, sampleDoc)
	got, err := NewLoader(NewFile(path, "", 0)).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Records, 2)
	require.Equal(t, 1, got.Skipped)
}

func TestFileLoadKeepsMistypedRecords(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, `[{"id":"store_1","viewCount":"1200","menus":[{"price":"300"}]}]`)
	got, err := NewLoader(NewFile(path, "", 0)).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Records, 1)
	require.Zero(t, got.Skipped)
	require.Equal(t, 2, got.BadFields)
	require.True(t, got.Records[0].IsHot())
}

func TestFileRelativeToBaseDir(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, `[]`)
	src := NewFile("data.json", filepath.Dir(path), 0)
	require.Equal(t, path, src.Path())

	got, err := NewLoader(src).Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, got.Records)
}

func TestFileMissing(t *testing.T) {
	t.Parallel()

	_, err := NewLoader(NewFile(filepath.Join(t.TempDir(), "nope.json"), "", 0)).Load(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileTooLarge(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, `[`+strings.Repeat(`{},`, 10)+`{}]`)
	_, err := NewLoader(NewFile(path, "", 8)).Load(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestLoadInvalidJSON(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, `[{"id":`)
	_, err := NewLoader(NewFile(path, "", 0)).Load(context.Background())
	require.ErrorIs(t, err, exhibit.ErrDecode)
	require.False(t, errors.Is(err, ErrUnavailable))
}

func TestHTTPLoad(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, sampleDoc)
	}))
	t.Cleanup(srv.Close)

	src, err := Open(srv.URL+"/data.json", Options{})
	require.NoError(t, err)
	require.Equal(t, "http", src.Kind())

	got, err := NewLoader(src).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Records, 2)
}

func TestHTTPNon2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := NewLoader(NewHTTP(srv.URL)).Load(context.Background())
	require.ErrorIs(t, err, ErrStatus)
	require.ErrorIs(t, err, ErrUnavailable)
	require.Contains(t, err.Error(), "503")
}

func TestHTTPUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewLoader(NewHTTP(url)).Load(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	require.False(t, errors.Is(err, ErrStatus))
}

type fakeOpener struct {
	objects map[string]string
	calls   int
}

func (f *fakeOpener) Open(_ context.Context, bucket, object string) (io.ReadCloser, error) {
	f.calls++
	body, ok := f.objects[bucket+"/"+object]
	if !ok {
		return nil, storage.ErrObjectNotExist
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func TestGCSLoad(t *testing.T) {
	t.Parallel()

	opener := &fakeOpener{objects: map[string]string{"festival/exhibits/data.json": sampleDoc}}
	src, err := Open("gs://festival/exhibits/data.json", Options{Storage: opener})
	require.NoError(t, err)
	require.Equal(t, "gs://festival/exhibits/data.json", src.Location())

	got, err := NewLoader(src).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Records, 2)
	require.Equal(t, 1, opener.calls)
}

func TestGCSMissingObject(t *testing.T) {
	t.Parallel()

	src := NewGCS("festival", "missing.json", &fakeOpener{}, 0)
	_, err := NewLoader(src).Load(context.Background())
	require.ErrorIs(t, err, ErrStatus)
	require.ErrorIs(t, err, storage.ErrObjectNotExist)
}

func TestOpenDispatch(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"public/data.json":           "file",
		"/srv/data.json":             "file",
		"file:///srv/data.json":      "file",
		"https://example.com/d.json": "http",
		"gs://bucket/object.json":    "gcs",
	}
	for location, kind := range cases {
		src, err := Open(location, Options{Storage: &fakeOpener{}})
		require.NoError(t, err, location)
		require.Equal(t, kind, src.Kind(), location)
	}

	for _, location := range []string{"", "ftp://example.com/d.json", "gs://bucket", "gs:///object"} {
		_, err := Open(location, Options{})
		require.ErrorIs(t, err, ErrUnsupported, fmt.Sprintf("location %q", location))
	}
}

func TestLoaderWithoutSource(t *testing.T) {
	t.Parallel()

	var l *Loader
	_, err := l.Load(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestLoaderWithMeter(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, sampleDoc)
	l := NewLoader(NewFile(path, "", 0), WithMeter(noop.NewMeterProvider().Meter("test")), WithMeter(nil))
	got, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Records, 2)

	l = NewLoader(NewFile(filepath.Join(t.TempDir(), "missing.json"), "", 0), WithMeter(noop.NewMeterProvider().Meter("test")))
	_, err = l.Load(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestGCSCloseLeavesInjectedOpener(t *testing.T) {
	t.Parallel()

	opener := &fakeOpener{objects: map[string]string{"b/o": `[]`}}
	src := NewGCS("b", "o", opener, 0)
	require.NoError(t, src.Close())

	_, err := NewLoader(src).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, opener.calls)
}
