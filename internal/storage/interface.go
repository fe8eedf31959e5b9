package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("object not found")

// FileInfo describes a stored object.
type FileInfo struct {
	Size    int64
	Updated time.Time
}

// Client defines the object operations shared by the local and GCS backends
type Client interface {
	// Close closes the storage client
	Close() error

	// GetFile retrieves a file from the specified path
	GetFile(ctx context.Context, filePath string) ([]byte, error)

	// StoreFile stores a file at the specified path
	StoreFile(ctx context.Context, filePath string, fileData []byte) error

	// FileExists checks if a file exists at the specified path
	FileExists(ctx context.Context, filePath string) (bool, error)

	// Stat returns size and modification time of a file
	Stat(ctx context.Context, filePath string) (FileInfo, error)
}
