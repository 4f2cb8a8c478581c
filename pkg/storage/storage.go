// Package storage opens inputs and creates outputs on the local filesystem,
// standard streams, or S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// StdioPath selects stdin for inputs and stdout for outputs.
const StdioPath = "-"

// Storage is a backend that can stream objects in and out.
type Storage interface {
	// Open opens path for reading.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Create opens path for writing, replacing any existing object. Data is
	// only guaranteed to be stored once Close returns nil. Writers that
	// implement Aborter can be abandoned without storing anything.
	Create(ctx context.Context, path string) (io.WriteCloser, error)

	// Exists reports whether path exists.
	Exists(ctx context.Context, path string) (bool, error)
}

// Aborter is implemented by writers that can discard everything written
// to them instead of storing it.
type Aborter interface {
	Abort(cause error) error
}

// Abort discards the output behind w when w supports it, and closes w
// otherwise.
func Abort(w io.WriteCloser, cause error) error {
	if a, ok := w.(Aborter); ok {
		return a.Abort(cause)
	}
	return w.Close()
}

// LocalStorage implements Storage for the local filesystem.
type LocalStorage struct{}

// NewLocalStorage creates a new local storage backend.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{}
}

func (s *LocalStorage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	if path == StdioPath {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func (s *LocalStorage) Create(_ context.Context, path string) (io.WriteCloser, error) {
	if path == StdioPath {
		return nopWriteCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &localFile{File: f}, nil
}

func (s *LocalStorage) Exists(_ context.Context, path string) (bool, error) {
	if path == StdioPath {
		return true, nil
	}
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// localFile removes a partially written file on Abort.
type localFile struct {
	*os.File
}

func (f *localFile) Abort(error) error {
	cerr := f.File.Close()
	if err := os.Remove(f.Name()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return cerr
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// ForPath returns the storage backend for path.
func ForPath(ctx context.Context, path string) (Storage, error) {
	if IsS3URI(path) {
		return NewS3Storage(ctx, "")
	}
	return NewLocalStorage(), nil
}

// Open opens path on the backend it names.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	backend, err := ForPath(ctx, path)
	if err != nil {
		return nil, err
	}
	rc, err := backend.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return rc, nil
}

// Create creates path on the backend it names.
func Create(ctx context.Context, path string) (io.WriteCloser, error) {
	backend, err := ForPath(ctx, path)
	if err != nil {
		return nil, err
	}
	wc, err := backend.Create(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return wc, nil
}

// IsS3URI checks if a path is an S3 URI.
func IsS3URI(path string) bool {
	return strings.HasPrefix(path, "s3://")
}
