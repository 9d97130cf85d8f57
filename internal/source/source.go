// Package source reads the exhibit record document from a local file, an http(s)
// endpoint or a Cloud Storage object, and decodes it once per call.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"finitefield.org/exhibit-web/internal/exhibit"
	"finitefield.org/exhibit-web/internal/observability"
)

var (
	// ErrUnavailable reports that the document could not be read at all.
	ErrUnavailable = errors.New("source: document unavailable")
	// ErrStatus reports a non-2xx answer from a remote source. It wraps ErrUnavailable.
	ErrStatus = fmt.Errorf("%w: unexpected status", ErrUnavailable)
	// ErrUnsupported is returned by Open for a location it cannot serve.
	ErrUnsupported = errors.New("source: unsupported location")
)

const (
	defaultTimeout  = 5 * time.Second
	defaultMaxBytes = 8 << 20
)

const instrumentationName = "finitefield.org/exhibit-web/internal/source"

var tracer = otel.Tracer(instrumentationName)

// Source fetches the raw document bytes.
type Source interface {
	Kind() string
	Location() string
	Read(ctx context.Context) ([]byte, error)
}

// Loader decodes whatever its Source returns. It keeps nothing between calls.
type Loader struct {
	src     Source
	timeout time.Duration
	meter   metric.Meter

	latency metric.Float64Histogram
	loads   metric.Int64Counter
}

// LoaderOption customises a Loader.
type LoaderOption func(*Loader)

// WithTimeout bounds each Load. Non-positive values keep the default.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithMeter records load metrics on m instead of the global meter provider.
func WithMeter(m metric.Meter) LoaderOption {
	return func(l *Loader) {
		if m != nil {
			l.meter = m
		}
	}
}

// NewLoader wraps src.
func NewLoader(src Source, opts ...LoaderOption) *Loader {
	l := &Loader{src: src, timeout: defaultTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if l.meter == nil {
		l.meter = otel.GetMeterProvider().Meter(instrumentationName)
	}
	// Registration only fails on invalid names; a nil instrument disables recording.
	l.latency, _ = l.meter.Float64Histogram(
		"exhibit.source.load.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency in milliseconds of document loads"),
	)
	l.loads, _ = l.meter.Int64Counter(
		"exhibit.source.loads",
		metric.WithDescription("Document loads by outcome"),
	)
	return l
}

func (l *Loader) record(ctx context.Context, started time.Time, outcome string) {
	attrs := metric.WithAttributes(
		attribute.String("source.kind", l.src.Kind()),
		attribute.String("outcome", outcome),
	)
	if l.latency != nil {
		l.latency.Record(ctx, float64(time.Since(started))/float64(time.Millisecond), attrs)
	}
	if l.loads != nil {
		l.loads.Add(ctx, 1, attrs)
	}
}

// Source returns the wrapped source.
func (l *Loader) Source() Source { return l.src }

// Load reads and decodes the document. Errors match ErrUnavailable, ErrStatus or
// exhibit.ErrDecode under errors.Is.
func (l *Loader) Load(ctx context.Context) (exhibit.Decoded, error) {
	if l == nil || l.src == nil {
		return exhibit.Decoded{}, fmt.Errorf("%w: no source configured", ErrUnavailable)
	}
	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "source.Load", trace.WithAttributes(
		attribute.String("source.kind", l.src.Kind()),
		attribute.String("source.location", l.src.Location()),
	))
	defer span.End()

	logger := observability.FromContext(ctx).With(
		zap.String("source", l.src.Kind()),
		zap.String("location", l.src.Location()),
	)

	data, err := l.src.Read(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		logger.Warn("document read failed", zap.Error(err))
		l.record(ctx, started, "unavailable")
		return exhibit.Decoded{}, err
	}

	decoded, err := exhibit.Decode(data)
	if err != nil {
		err = fmt.Errorf("source: %s: %w", l.src.Kind(), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		logger.Warn("document decode failed", zap.Error(err), zap.Int("bytes", len(data)))
		l.record(ctx, started, "invalid")
		return exhibit.Decoded{}, err
	}

	span.SetAttributes(
		attribute.Int("source.records", len(decoded.Records)),
		attribute.Int("source.skipped", decoded.Skipped),
		attribute.Int("source.bad_fields", decoded.BadFields),
	)
	if decoded.Skipped > 0 || decoded.BadFields > 0 {
		logger.Warn("malformed records in document",
			zap.Int("skipped", decoded.Skipped),
			zap.Int("badFields", decoded.BadFields),
			zap.Int("records", len(decoded.Records)))
	} else {
		logger.Debug("document loaded", zap.Int("records", len(decoded.Records)))
	}
	l.record(ctx, started, "ok")
	return decoded, nil
}

// Options configure the sources built by Open.
type Options struct {
	// BaseDir resolves relative file paths.
	BaseDir string
	// MaxBytes caps the document size. Zero uses 8 MiB.
	MaxBytes int64
	// HTTP overrides the remote fetch settings.
	HTTP []HTTPOption
	// Storage opens gs:// objects. Nil creates a Cloud Storage client on first use.
	Storage ObjectOpener
}

// Open picks a Source for location: a file path or file:// URL, an http(s) URL,
// or gs://bucket/object.
func Open(location string, opts Options) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", ErrUnsupported)
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain paths, including Windows drive letters.
		return NewFile(location, opts.BaseDir, maxBytes), nil
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		return NewFile(path, opts.BaseDir, maxBytes), nil
	case "http", "https":
		httpOpts := append([]HTTPOption{WithMaxBytes(maxBytes)}, opts.HTTP...)
		return NewHTTP(location, httpOpts...), nil
	case "gs":
		object := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || object == "" {
			return nil, fmt.Errorf("%w: %s needs gs://bucket/object", ErrUnsupported, location)
		}
		return NewGCS(u.Host, object, opts.Storage, maxBytes), nil
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupported, u.Scheme)
	}
}
