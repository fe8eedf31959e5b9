package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Version is set at build time with -ldflags "-X aurorawatch/internal/config.Version=..."
var Version string

// GetVersion returns the service version. APP_VERSION wins over the build-time
// value, which wins over a VERSION file in the working directory or its parent.
func GetVersion() string {
	if envVersion := strings.TrimSpace(os.Getenv("APP_VERSION")); envVersion != "" {
		return envVersion
	}
	if Version != "" {
		return Version
	}
	return readVersionFile(".", "..")
}

func readVersionFile(dirs ...string) string {
	for _, dir := range dirs {
		content, err := os.ReadFile(filepath.Join(dir, "VERSION"))
		if err != nil {
			continue
		}
		if v := strings.TrimSpace(string(content)); v != "" {
			return v
		}
	}
	return "0.1.0"
}
