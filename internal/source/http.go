package source

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTP fetches the document from a remote endpoint on every Read.
type HTTP struct {
	url      string
	client   *http.Client
	maxBytes int64
}

// HTTPOption customises an HTTP source.
type HTTPOption func(*HTTP)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(h *HTTP) {
		if client != nil {
			h.client = client
		}
	}
}

// WithMaxBytes caps the response body size.
func WithMaxBytes(n int64) HTTPOption {
	return func(h *HTTP) {
		if n > 0 {
			h.maxBytes = n
		}
	}
}

// NewHTTP builds an HTTP source for url.
func NewHTTP(url string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		url:      url,
		client:   &http.Client{Timeout: 5 * time.Second},
		maxBytes: defaultMaxBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

func (h *HTTP) Kind() string     { return "http" }
func (h *HTTP) Location() string { return h.url }

func (h *HTTP) Read(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrStatus, h.url, resp.StatusCode)
	}
	return readLimited(resp.Body, h.maxBytes)
}
