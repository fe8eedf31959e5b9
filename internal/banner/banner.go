// Package banner loads the externally edited alert banner configuration.
package banner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"aurorawatch/internal/logger"
	"aurorawatch/internal/storage"
)

// Banner types understood by the web page.
const (
	TypeInfo    = "info"
	TypeWarning = "warning"
	TypeError   = "error"
	TypeSuccess = "success"
)

// Banner is the alert banner served at /api/alert-banner.
type Banner struct {
	Enabled     bool   `json:"enabled"`
	Message     string `json:"message"`
	Type        string `json:"type"`
	Dismissible bool   `json:"dismissible"`
	MessageHTML string `json:"message_html,omitempty"`
}

// Disabled is served until the first successful read.
var Disabled = Banner{Enabled: false, Type: TypeInfo}

// Recorder receives reload outcomes.
type Recorder interface {
	RecordBannerReload(result string)
}

// Loader periodically reads the banner file. The last successfully read
// banner is kept when a later read fails.
type Loader struct {
	store    storage.Client
	path     string
	interval time.Duration
	md       goldmark.Markdown
	recorder Recorder
	log      *logger.Logger

	mu      sync.RWMutex
	current Banner
	info    storage.FileInfo
}

// NewLoader creates a loader reading path from store every interval.
func NewLoader(store storage.Client, path string, interval time.Duration, rec Recorder) *Loader {
	return &Loader{
		store:    store,
		path:     path,
		interval: interval,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		recorder: rec,
		log:      logger.Component("banner"),
		current:  Disabled,
	}
}

// Current returns the banner in effect.
func (l *Loader) Current() Banner {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Reload reads and decodes the banner file. On error the current banner is
// left unchanged. An unchanged file is not decoded again.
func (l *Loader) Reload(ctx context.Context) error {
	info, err := l.store.Stat(ctx, l.path)
	if err != nil {
		l.record("error")
		return fmt.Errorf("failed to stat banner: %w", err)
	}
	l.mu.RLock()
	unchanged := !l.info.Updated.IsZero() && info.Updated.Equal(l.info.Updated) && info.Size == l.info.Size
	l.mu.RUnlock()
	if unchanged {
		l.record("unchanged")
		return nil
	}

	data, err := l.store.GetFile(ctx, l.path)
	if err != nil {
		l.record("error")
		return fmt.Errorf("failed to read banner: %w", err)
	}

	b, err := l.decode(data)
	if err != nil {
		l.record("error")
		return err
	}

	l.mu.Lock()
	l.current = b
	l.info = info
	l.mu.Unlock()

	l.record("updated")
	l.log.Info("Alert banner loaded", map[string]interface{}{
		"enabled": b.Enabled,
		"type":    b.Type,
	})
	return nil
}

func (l *Loader) decode(data []byte) (Banner, error) {
	var b Banner
	if err := json.Unmarshal(data, &b); err != nil {
		return Banner{}, fmt.Errorf("failed to decode banner: %w", err)
	}

	b.Type = normalizeType(b.Type)
	b.MessageHTML = ""
	if b.Message != "" {
		var buf bytes.Buffer
		if err := l.md.Convert([]byte(b.Message), &buf); err != nil {
			return Banner{}, fmt.Errorf("failed to render banner message: %w", err)
		}
		b.MessageHTML = strings.TrimSpace(buf.String())
	}
	return b, nil
}

func normalizeType(t string) string {
	switch t = strings.ToLower(strings.TrimSpace(t)); t {
	case TypeInfo, TypeWarning, TypeError, TypeSuccess:
		return t
	default:
		return TypeInfo
	}
}

// Run reloads immediately and then every interval until ctx is cancelled.
func (l *Loader) Run(ctx context.Context) {
	l.reloadLogged(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.reloadLogged(ctx)
		}
	}
}

func (l *Loader) reloadLogged(ctx context.Context) {
	if err := l.Reload(ctx); err != nil {
		l.log.Warn("Alert banner reload failed; keeping previous banner", map[string]interface{}{
			"path":  l.path,
			"error": err.Error(),
		})
	}
}

func (l *Loader) record(result string) {
	if l.recorder != nil {
		l.recorder.RecordBannerReload(result)
	}
}
