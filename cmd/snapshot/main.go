// Command snapshot runs a single refresh cycle against the live feeds and
// writes the resulting snapshot, optionally with its summary chart.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"aurorawatch/internal/aggregator"
	"aurorawatch/internal/cache"
	"aurorawatch/internal/charts"
	"aurorawatch/internal/config"
	"aurorawatch/internal/derive"
	"aurorawatch/internal/fetchers"
	"aurorawatch/internal/logger"
	"aurorawatch/internal/models"
	"aurorawatch/internal/storage"
)

func main() {
	output := flag.String("o", "", "write the snapshot JSON to this path instead of stdout")
	chart := flag.String("chart", "", "also render the summary chart PNG to this path")
	bucket := flag.String("bucket", "", "store outputs in this GCS bucket instead of the local filesystem")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout for the refresh cycle")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, *output, *chart, *bucket); err != nil {
		logger.Fatal("Snapshot failed", err)
	}
}

func run(ctx context.Context, output, chart, bucket string) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Configure(cfg.LogLevel, "text")

	engine, err := derive.NewEngine(cfg.Derive.Thresholds())
	if err != nil {
		return fmt.Errorf("failed to create derivation engine: %w", err)
	}

	feeds := fetchers.NewFeedClient(cfg.FeedOptions())

	start := time.Now()
	snapshot := aggregator.New(feeds, engine, cache.New()).Refresh(ctx)
	if !anyFresh(snapshot) {
		return fmt.Errorf("no source returned data")
	}
	logger.Info("Refresh completed", map[string]interface{}{
		"duration":   time.Since(start).String(),
		"likelihood": snapshot.AuroraLikelihood,
		"condition":  string(snapshot.ConditionStatus),
		"score":      snapshot.ConditionScore,
	})

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if output == "" && chart == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}

	store, err := openStore(ctx, bucket)
	if err != nil {
		return err
	}
	defer store.Close()

	if output == "" {
		os.Stdout.Write(append(data, '\n'))
	} else if err := store.StoreFile(ctx, output, data); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	if chart != "" {
		if err := storeChart(ctx, store, chart, snapshot); err != nil {
			return err
		}
	}
	return nil
}

func anyFresh(s *models.AuroraSnapshot) bool {
	for _, st := range s.Sources {
		if st.OK {
			return true
		}
	}
	return false
}

func openStore(ctx context.Context, bucket string) (storage.Client, error) {
	if bucket != "" {
		return storage.NewClient(ctx, storage.BackendGCS, storage.Options{Bucket: bucket})
	}
	return storage.NewClient(ctx, storage.BackendLocal, storage.Options{BaseDir: "."})
}

func storeChart(ctx context.Context, store storage.Client, path string, s *models.AuroraSnapshot) error {
	var buf bytes.Buffer
	if err := charts.RenderSummary(&buf, s); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	if err := store.StoreFile(ctx, path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to store chart: %w", err)
	}
	logger.Infof("Chart written to %s", path)
	return nil
}
