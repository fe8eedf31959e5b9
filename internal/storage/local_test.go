package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalClient_StoreAndGet(t *testing.T) {
	client := NewLocalClient(t.TempDir())
	defer client.Close()
	ctx := context.Background()

	if err := client.StoreFile(ctx, "config/alert_banner.json", []byte(`{"enabled":true}`)); err != nil {
		t.Fatalf("StoreFile failed: %v", err)
	}

	data, err := client.GetFile(ctx, "config/alert_banner.json")
	if err != nil {
		t.Fatalf("GetFile failed: %v", err)
	}
	if string(data) != `{"enabled":true}` {
		t.Errorf("Unexpected content %q", data)
	}

	info, err := client.Stat(ctx, "config/alert_banner.json")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size != int64(len(data)) {
		t.Errorf("Expected size %d, got %d", len(data), info.Size)
	}
	if info.Updated.IsZero() {
		t.Error("Expected non-zero modification time")
	}
}

func TestLocalClient_Missing(t *testing.T) {
	client := NewLocalClient(t.TempDir())
	ctx := context.Background()

	if _, err := client.GetFile(ctx, "nope.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound from GetFile, got %v", err)
	}
	if _, err := client.Stat(ctx, "nope.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound from Stat, got %v", err)
	}

	exists, err := client.FileExists(ctx, "nope.json")
	if err != nil {
		t.Fatalf("FileExists failed: %v", err)
	}
	if exists {
		t.Error("Expected file to not exist")
	}
}

func TestLocalClient_AbsolutePath(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "banner.json")
	if err := os.WriteFile(abs, []byte("{}"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	client := NewLocalClient("/does/not/matter")
	exists, err := client.FileExists(context.Background(), abs)
	if err != nil || !exists {
		t.Errorf("Expected absolute path to bypass baseDir, exists=%v err=%v", exists, err)
	}
}
