package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSClient handles Google Cloud Storage operations
type GCSClient struct {
	client *storage.Client
	bucket string
}

// NewGCSClient creates a new GCS client
func NewGCSClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (*GCSClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSClient{
		client: client,
		bucket: bucketName,
	}, nil
}

// Close closes the GCS client
func (g *GCSClient) Close() error {
	return g.client.Close()
}

// objectName maps a file path onto a GCS object name, so the local default
// "./config/alert_banner.json" reads the object "config/alert_banner.json".
func objectName(filePath string) string {
	return strings.TrimPrefix(path.Clean("/"+filePath), "/")
}

// GetFile retrieves an object from GCS
func (g *GCSClient) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	filePath = objectName(filePath)
	reader, err := g.client.Bucket(g.bucket).Object(filePath).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", g.bucket, filePath, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create reader for gs://%s/%s: %w", g.bucket, filePath, err)
	}
	defer reader.Close()

	fileData, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", g.bucket, filePath, err)
	}
	return fileData, nil
}

// StoreFile uploads an object to GCS
func (g *GCSClient) StoreFile(ctx context.Context, filePath string, fileData []byte) error {
	filePath = objectName(filePath)
	writer := g.client.Bucket(g.bucket).Object(filePath).NewWriter(ctx)
	writer.ContentType = GetContentType(filePath)
	writer.CacheControl = "no-cache"

	if _, err := writer.Write(fileData); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write gs://%s/%s: %w", g.bucket, filePath, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize gs://%s/%s: %w", g.bucket, filePath, err)
	}
	return nil
}

// FileExists checks if an object exists in GCS
func (g *GCSClient) FileExists(ctx context.Context, filePath string) (bool, error) {
	_, err := g.Stat(ctx, filePath)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Stat returns size and update time of a GCS object
func (g *GCSClient) Stat(ctx context.Context, filePath string) (FileInfo, error) {
	filePath = objectName(filePath)
	attrs, err := g.client.Bucket(g.bucket).Object(filePath).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return FileInfo{}, fmt.Errorf("failed to stat gs://%s/%s: %w", g.bucket, filePath, ErrNotFound)
	}
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to stat gs://%s/%s: %w", g.bucket, filePath, err)
	}
	return FileInfo{Size: attrs.Size, Updated: attrs.Updated}, nil
}
