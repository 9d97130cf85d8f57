package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File reads the document from the local filesystem.
type File struct {
	path     string
	maxBytes int64
}

// NewFile builds a File source. Relative paths are joined onto baseDir when it is set.
func NewFile(path, baseDir string, maxBytes int64) *File {
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &File{path: filepath.Clean(path), maxBytes: maxBytes}
}

func (f *File) Kind() string     { return "file" }
func (f *File) Location() string { return f.path }

// Path is the resolved file path.
func (f *File) Path() string { return f.path }

func (f *File) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer fh.Close()
	return readLimited(fh, f.maxBytes)
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", ErrUnavailable, maxBytes)
	}
	return data, nil
}
