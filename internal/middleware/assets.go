package middleware

import (
	"crypto/sha256"
	"encoding/base64"
	"io/fs"
	"net/http"
	"os"
	"strings"
)

const assetCacheControl = "public, max-age=604800, stale-while-revalidate=86400"

// assetIndex maps slash-separated file names under the asset root to their ETags.
type assetIndex map[string]string

func indexAssets(fsys fs.FS) assetIndex {
	idx := assetIndex{}
	_ = fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return nil
		}
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil
		}
		sum := sha256.Sum256(body)
		idx[name] = `"` + base64.RawURLEncoding.EncodeToString(sum[:12]) + `"`
		return nil
	})
	return idx
}

// AssetsWithCache serves the files found in dir at startup under prefix. Each
// carries a content-hash ETag, so conditional requests are answered with 304
// by http.ServeFileFS. Directories and files added later are not served.
func AssetsWithCache(prefix, dir string) http.Handler {
	fsys := os.DirFS(dir)
	idx := indexAssets(fsys)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest, ok := strings.CutPrefix(r.URL.Path, prefix)
		name := strings.TrimPrefix(rest, "/")
		etag, known := idx[name]
		if !ok || !known {
			http.NotFound(w, r)
			return
		}
		h := w.Header()
		h.Set("Cache-Control", assetCacheControl)
		h.Set("Vary", "Accept-Encoding")
		h.Set("ETag", etag)
		http.ServeFileFS(w, r, fsys, name)
	})
}
