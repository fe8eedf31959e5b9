package storage

import (
	"context"
	"fmt"
)

// Backend selects where objects live.
type Backend string

const (
	BackendLocal Backend = "local"
	BackendGCS   Backend = "gcs"
)

// Options configures NewClient. BaseDir applies to the local backend,
// Bucket to GCS.
type Options struct {
	BaseDir string
	Bucket  string
}

// NewClient creates a storage client for the given backend
func NewClient(ctx context.Context, backend Backend, opts Options) (Client, error) {
	switch backend {
	case BackendLocal:
		return NewLocalClient(opts.BaseDir), nil

	case BackendGCS:
		if opts.Bucket == "" {
			return nil, fmt.Errorf("gcs backend requires a bucket")
		}
		gcsClient, err := NewGCSClient(ctx, opts.Bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GCS client: %w", err)
		}
		return gcsClient, nil

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", backend)
	}
}
