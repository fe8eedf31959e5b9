package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"aurorawatch/internal/derive"
	"aurorawatch/internal/fetchers"
)

// Config holds all configuration for the aurora service
type Config struct {
	// Server configuration
	Port string `env:"PORT,default=8080"`

	// Refresh cycle; upstream feeds are never polled faster than this.
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL,default=60s"`
	FetchTimeout    time.Duration `env:"FETCH_TIMEOUT,default=10s"`
	FetchRetryCount int           `env:"FETCH_RETRY_COUNT,default=1"`
	FetchRetryWait  time.Duration `env:"FETCH_RETRY_WAIT,default=500ms"`

	// Data source URLs
	PlasmaURL       string `env:"SWPC_PLASMA_URL,default=https://services.swpc.noaa.gov/products/solar-wind/plasma-5-minute.json"`
	MagURL          string `env:"SWPC_MAG_URL,default=https://services.swpc.noaa.gov/products/solar-wind/mag-5-minute.json"`
	KpIndexURL      string `env:"SWPC_KP_INDEX_URL,default=https://services.swpc.noaa.gov/products/noaa-planetary-k-index.json"`
	ScalesURL       string `env:"SWPC_SCALES_URL,default=https://services.swpc.noaa.gov/products/noaa-scales.json"`

	// Optional sources; an empty URL disables the source.
	Plasma2hURL         string `env:"SWPC_PLASMA_2HR_URL,default=https://services.swpc.noaa.gov/products/solar-wind/plasma-2-hour.json"`
	Mag2hURL            string `env:"SWPC_MAG_2HR_URL,default=https://services.swpc.noaa.gov/products/solar-wind/mag-2-hour.json"`
	HemiPowerURL        string `env:"SWPC_HEMI_POWER_URL,default=https://services.swpc.noaa.gov/text/aurora-nowcast-hemi-power.txt"`
	GoesPrimaryMagURL   string `env:"SWPC_GOES_MAG_PRIMARY_URL,default=https://services.swpc.noaa.gov/json/goes/primary/magnetometers-6-hour.json"`
	GoesSecondaryMagURL string `env:"SWPC_GOES_MAG_SECONDARY_URL,default=https://services.swpc.noaa.gov/json/goes/secondary/magnetometers-6-hour.json"`
	KpForecastURL       string `env:"SWPC_KP_FORECAST_URL,default=https://services.swpc.noaa.gov/products/noaa-planetary-k-index-forecast.json"`
	// SIDC publishes no stable RSS endpoint, so bulletins are off unless set.
	BulletinFeedURL string `env:"SIDC_RSS_URL"`

	// Alert banner source
	BannerStorage        string        `env:"BANNER_STORAGE,default=local"`
	BannerPath           string        `env:"BANNER_PATH,default=./config/alert_banner.json"`
	BannerBucket         string        `env:"BANNER_BUCKET"`
	BannerReloadInterval time.Duration `env:"BANNER_RELOAD_INTERVAL,default=5m"`

	// Derivation thresholds
	Derive DeriveConfig `env:", prefix=DERIVE_"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=json"`
}

// DeriveConfig exposes the likelihood and condition boundaries. Defaults
// match derive.DefaultThresholds.
type DeriveConfig struct {
	HighBz    float64 `env:"HIGH_BZ,default=-10"`
	HighSpeed float64 `env:"HIGH_SPEED,default=500"`

	ElevatedBz      float64 `env:"ELEVATED_BZ,default=-5"`
	ElevatedSpeed   float64 `env:"ELEVATED_SPEED,default=500"`
	ElevatedDensity float64 `env:"ELEVATED_DENSITY,default=10"`

	ModerateBz float64 `env:"MODERATE_BZ,default=-5"`

	LowModerateBz    float64 `env:"LOW_MODERATE_BZ,default=0"`
	LowModerateSpeed float64 `env:"LOW_MODERATE_SPEED,default=400"`

	KpStrong    float64 `env:"KP_STRONG,default=6"`
	KpActive    float64 `env:"KP_ACTIVE,default=4"`
	KpUnsettled float64 `env:"KP_UNSETTLED,default=3"`

	GStrong int `env:"G_STRONG,default=3"`
	GMinor  int `env:"G_MINOR,default=1"`

	ScoreExcellent int `env:"SCORE_EXCELLENT,default=7"`
	ScoreGood      int `env:"SCORE_GOOD,default=5"`
	ScoreFair      int `env:"SCORE_FAIR,default=3"`
}

// Thresholds converts the env representation into derive.Thresholds.
func (d DeriveConfig) Thresholds() derive.Thresholds {
	return derive.Thresholds{
		HighBz:           d.HighBz,
		HighSpeed:        d.HighSpeed,
		ElevatedBz:       d.ElevatedBz,
		ElevatedSpeed:    d.ElevatedSpeed,
		ElevatedDensity:  d.ElevatedDensity,
		ModerateBz:       d.ModerateBz,
		LowModerateBz:    d.LowModerateBz,
		LowModerateSpeed: d.LowModerateSpeed,
		KpStrong:         d.KpStrong,
		KpActive:         d.KpActive,
		KpUnsettled:      d.KpUnsettled,
		GStrong:          d.GStrong,
		GMinor:           d.GMinor,
		ScoreExcellent:   d.ScoreExcellent,
		ScoreGood:        d.ScoreGood,
		ScoreFair:        d.ScoreFair,
	}
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith loads configuration through the given lookuper
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}

// FeedOptions returns the feed client settings.
func (c *Config) FeedOptions() fetchers.Options {
	return fetchers.Options{
		PlasmaURL:           c.PlasmaURL,
		MagURL:              c.MagURL,
		KpIndexURL:          c.KpIndexURL,
		ScalesURL:           c.ScalesURL,
		Plasma2hURL:         c.Plasma2hURL,
		Mag2hURL:            c.Mag2hURL,
		HemiPowerURL:        c.HemiPowerURL,
		GoesPrimaryMagURL:   c.GoesPrimaryMagURL,
		GoesSecondaryMagURL: c.GoesSecondaryMagURL,
		KpForecastURL:       c.KpForecastURL,
		BulletinFeedURL:     c.BulletinFeedURL,
		Timeout:             c.FetchTimeout,
		RetryCount:          c.FetchRetryCount,
		RetryWait:           c.FetchRetryWait,
	}
}

// FetchBudget is the longest one source fetch can take: every attempt timing
// out plus the maximum backoff between attempts. Paired feeds are fetched
// concurrently, so the budget is the same for every source.
func (c *Config) FetchBudget() time.Duration {
	attempts := time.Duration(c.FetchRetryCount + 1)
	return c.FetchTimeout*attempts + 2*c.FetchRetryWait*time.Duration(c.FetchRetryCount)
}

// Validate checks cross-field constraints that envconfig cannot express
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("REFRESH_INTERVAL must be positive, got %s", c.RefreshInterval))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout))
	} else if c.RefreshInterval > 0 && c.FetchTimeout >= c.RefreshInterval {
		errs = append(errs, fmt.Errorf("FETCH_TIMEOUT (%s) must be shorter than REFRESH_INTERVAL (%s)", c.FetchTimeout, c.RefreshInterval))
	}
	if c.FetchRetryCount < 0 || c.FetchRetryCount > 1 {
		errs = append(errs, fmt.Errorf("FETCH_RETRY_COUNT must be 0 or 1, got %d", c.FetchRetryCount))
	} else if c.FetchTimeout > 0 && c.FetchTimeout < c.RefreshInterval && c.FetchBudget() >= c.RefreshInterval {
		errs = append(errs, fmt.Errorf("worst-case fetch time %s (FETCH_TIMEOUT x attempts + backoff) must be shorter than REFRESH_INTERVAL (%s)", c.FetchBudget(), c.RefreshInterval))
	}
	if c.FetchRetryWait < 0 {
		errs = append(errs, fmt.Errorf("FETCH_RETRY_WAIT must not be negative, got %s", c.FetchRetryWait))
	}
	if c.PlasmaURL == "" || c.MagURL == "" || c.KpIndexURL == "" || c.ScalesURL == "" {
		errs = append(errs, errors.New("SWPC feed URLs must not be empty"))
	}

	switch c.BannerStorage {
	case "local":
	case "gcs":
		if c.BannerBucket == "" {
			errs = append(errs, errors.New("BANNER_BUCKET is required when BANNER_STORAGE=gcs"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported BANNER_STORAGE %q", c.BannerStorage))
	}
	if c.BannerPath == "" {
		errs = append(errs, errors.New("BANNER_PATH must not be empty"))
	}
	if c.BannerReloadInterval <= 0 {
		errs = append(errs, fmt.Errorf("BANNER_RELOAD_INTERVAL must be positive, got %s", c.BannerReloadInterval))
	}

	if err := c.Derive.Thresholds().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("invalid derivation thresholds: %w", err))
	}

	return errors.Join(errs...)
}
