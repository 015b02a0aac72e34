// Package storage opens and creates model artifacts on the local filesystem
// or in Google Cloud Storage.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrNotFound is returned when nothing exists at the requested location.
var ErrNotFound = errors.New("artifact not found")

// Opener reads artifacts.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// Creator writes artifacts.
type Creator interface {
	Create(ctx context.Context, location string) (io.WriteCloser, error)
}

// Options configures a Router.
type Options struct {
	GCSCredentialsFile string
}

// Router dispatches on the location scheme: "gs://bucket/object" goes to
// Cloud Storage, anything else is a local path. The GCS client is created on
// first use.
type Router struct {
	gcs    *GCSStore
	gcsErr error
	files  FileStore
	opts   Options
	once   sync.Once
}

// NewRouter creates a Router.
func NewRouter(opts Options) *Router {
	return &Router{opts: opts}
}

// Open implements Opener.
func (r *Router) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !IsGCS(location) {
		return r.files.Open(ctx, location)
	}
	gcs, err := r.gcsStore(ctx)
	if err != nil {
		return nil, err
	}
	return gcs.Open(ctx, location)
}

// Create implements Creator.
func (r *Router) Create(ctx context.Context, location string) (io.WriteCloser, error) {
	if !IsGCS(location) {
		return r.files.Create(ctx, location)
	}
	gcs, err := r.gcsStore(ctx)
	if err != nil {
		return nil, err
	}
	return gcs.Create(ctx, location)
}

// Close releases the GCS client if one was created.
func (r *Router) Close() error {
	if r.gcs != nil {
		return r.gcs.Close()
	}
	return nil
}

func (r *Router) gcsStore(ctx context.Context) (*GCSStore, error) {
	r.once.Do(func() {
		r.gcs, r.gcsErr = NewGCSStore(ctx, r.opts.GCSCredentialsFile)
	})
	return r.gcs, r.gcsErr
}

// IsGCS reports whether location is a gs:// URI.
func IsGCS(location string) bool {
	return strings.HasPrefix(location, gcsScheme)
}
