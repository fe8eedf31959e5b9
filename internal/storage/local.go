package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalClient reads and writes files on the local file system. Relative
// paths resolve against baseDir.
type LocalClient struct {
	baseDir string
}

// NewLocalClient creates a local client; an empty baseDir means the
// working directory.
func NewLocalClient(baseDir string) *LocalClient {
	if baseDir == "" {
		baseDir = "."
	}
	return &LocalClient{baseDir: baseDir}
}

// Close is a no-op for local storage
func (l *LocalClient) Close() error {
	return nil
}

func (l *LocalClient) resolve(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return filepath.Join(l.baseDir, filePath)
}

// GetFile reads a file from local storage
func (l *LocalClient) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	data, err := os.ReadFile(l.resolve(filePath))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	return data, nil
}

// StoreFile writes a file, creating parent directories as needed
func (l *LocalClient) StoreFile(ctx context.Context, filePath string, fileData []byte) error {
	fullPath := l.resolve(filePath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filePath, err)
	}
	if err := os.WriteFile(fullPath, fileData, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}
	return nil
}

// FileExists checks if a file exists in local storage
func (l *LocalClient) FileExists(ctx context.Context, filePath string) (bool, error) {
	_, err := os.Stat(l.resolve(filePath))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat file %s: %w", filePath, err)
}

// Stat returns size and modification time of a local file
func (l *LocalClient) Stat(ctx context.Context, filePath string) (FileInfo, error) {
	info, err := os.Stat(l.resolve(filePath))
	if errors.Is(err, fs.ErrNotExist) {
		return FileInfo{}, fmt.Errorf("failed to stat file %s: %w", filePath, ErrNotFound)
	}
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to stat file %s: %w", filePath, err)
	}
	return FileInfo{Size: info.Size(), Updated: info.ModTime()}, nil
}
