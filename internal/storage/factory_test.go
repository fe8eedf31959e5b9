package storage

import (
	"context"
	"testing"

	"google.golang.org/api/option"
)

func TestNewClient_Local(t *testing.T) {
	client, err := NewClient(context.Background(), BackendLocal, Options{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to create local storage client: %v", err)
	}
	defer client.Close()

	if _, ok := client.(*LocalClient); !ok {
		t.Errorf("Expected LocalClient, got %T", client)
	}
}

func TestNewClient_GCSRequiresBucket(t *testing.T) {
	if _, err := NewClient(context.Background(), BackendGCS, Options{}); err == nil {
		t.Error("Expected error for GCS backend without bucket")
	}
}

func TestNewClient_Unsupported(t *testing.T) {
	if _, err := NewClient(context.Background(), Backend("s3"), Options{}); err == nil {
		t.Error("Expected error for unsupported backend")
	}
}

func TestNewGCSClient_WithoutAuthentication(t *testing.T) {
	client, err := NewGCSClient(context.Background(), "aurora-config", option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("Failed to create GCS client: %v", err)
	}
	defer client.Close()

	if client.bucket != "aurora-config" {
		t.Errorf("Expected bucket 'aurora-config', got %q", client.bucket)
	}
}

func TestGetContentType(t *testing.T) {
	tests := map[string]string{
		"alert_banner.json": "application/json",
		"chart.PNG":         "image/png",
		"notes.md":          "text/markdown",
		"blob":              "application/octet-stream",
	}
	for name, want := range tests {
		if got := GetContentType(name); got != want {
			t.Errorf("GetContentType(%q) = %q, want %q", name, got, want)
		}
	}
}
