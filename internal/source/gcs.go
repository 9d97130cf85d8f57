package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ObjectOpener opens a Cloud Storage object for reading.
type ObjectOpener interface {
	Open(ctx context.Context, bucket, object string) (io.ReadCloser, error)
}

// StorageOpener serves objects through a Cloud Storage client.
type StorageOpener struct {
	client *storage.Client
}

// NewStorageOpener creates a read-only Cloud Storage client.
func NewStorageOpener(ctx context.Context, opts ...option.ClientOption) (*StorageOpener, error) {
	opts = append([]option.ClientOption{option.WithScopes(storage.ScopeReadOnly)}, opts...)
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("source: storage client: %w", err)
	}
	return &StorageOpener{client: client}, nil
}

func (s *StorageOpener) Open(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	return s.client.Bucket(bucket).Object(object).NewReader(ctx)
}

// Close releases the client.
func (s *StorageOpener) Close() error { return s.client.Close() }

// GCS reads the document from gs://bucket/object.
type GCS struct {
	bucket   string
	object   string
	maxBytes int64

	mu     sync.Mutex
	opener ObjectOpener
	owned  *StorageOpener
}

// NewGCS builds a GCS source. A nil opener creates a storage client on the first Read.
func NewGCS(bucket, object string, opener ObjectOpener, maxBytes int64) *GCS {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &GCS{bucket: bucket, object: object, opener: opener, maxBytes: maxBytes}
}

func (g *GCS) Kind() string     { return "gcs" }
func (g *GCS) Location() string { return "gs://" + g.bucket + "/" + g.object }

func (g *GCS) Read(ctx context.Context) ([]byte, error) {
	opener, err := g.openerFor(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	rc, err := opener.Open(ctx, g.bucket, g.object)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrStatus, g.Location(), err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer rc.Close()
	return readLimited(rc, g.maxBytes)
}

func (g *GCS) openerFor(ctx context.Context) (ObjectOpener, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.opener != nil {
		return g.opener, nil
	}
	// The client outlives the request that created it.
	opener, err := NewStorageOpener(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}
	g.opener, g.owned = opener, opener
	return opener, nil
}

// Close releases a storage client created by Read. Openers passed to NewGCS are left alone.
func (g *GCS) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.owned == nil {
		return nil
	}
	err := g.owned.Close()
	g.opener, g.owned = nil, nil
	return err
}
