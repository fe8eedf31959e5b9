package config

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
		validate    func(*Config)
	}{
		{
			name:        "defaults",
			envVars:     map[string]string{},
			expectError: false,
			validate: func(cfg *Config) {
				if cfg.Port != "8080" {
					t.Errorf("Expected default Port to be '8080', got '%s'", cfg.Port)
				}
				if cfg.RefreshInterval != 60*time.Second {
					t.Errorf("Expected default RefreshInterval to be 60s, got %s", cfg.RefreshInterval)
				}
				if cfg.FetchTimeout != 10*time.Second {
					t.Errorf("Expected default FetchTimeout to be 10s, got %s", cfg.FetchTimeout)
				}
				if cfg.FetchRetryCount != 1 {
					t.Errorf("Expected default FetchRetryCount to be 1, got %d", cfg.FetchRetryCount)
				}
				if cfg.BannerStorage != "local" {
					t.Errorf("Expected default BannerStorage to be 'local', got '%s'", cfg.BannerStorage)
				}
				if cfg.BannerReloadInterval != 5*time.Minute {
					t.Errorf("Expected default BannerReloadInterval to be 5m, got %s", cfg.BannerReloadInterval)
				}
				if cfg.Environment != "development" {
					t.Errorf("Expected default Environment to be 'development', got '%s'", cfg.Environment)
				}
				if cfg.LogLevel != "info" {
					t.Errorf("Expected default LogLevel to be 'info', got '%s'", cfg.LogLevel)
				}
				if cfg.Derive.HighBz != -10 {
					t.Errorf("Expected default HighBz to be -10, got %v", cfg.Derive.HighBz)
				}
				if cfg.Derive.ScoreExcellent != 7 {
					t.Errorf("Expected default ScoreExcellent to be 7, got %d", cfg.Derive.ScoreExcellent)
				}
			},
		},
		{
			name: "custom configuration values",
			envVars: map[string]string{
				"PORT":                      "9000",
				"REFRESH_INTERVAL":          "2m",
				"FETCH_TIMEOUT":             "5s",
				"FETCH_RETRY_COUNT":         "0",
				"BANNER_STORAGE":            "gcs",
				"BANNER_BUCKET":             "aurora-config",
				"BANNER_PATH":               "banner.json",
				"ENVIRONMENT":               "production",
				"LOG_LEVEL":                 "debug",
				"DERIVE_HIGH_BZ":            "-12",
				"DERIVE_LOW_MODERATE_SPEED": "420",
			},
			expectError: false,
			validate: func(cfg *Config) {
				if cfg.Port != "9000" {
					t.Errorf("Expected Port to be '9000', got '%s'", cfg.Port)
				}
				if cfg.RefreshInterval != 2*time.Minute {
					t.Errorf("Expected RefreshInterval to be 2m, got %s", cfg.RefreshInterval)
				}
				if cfg.FetchTimeout != 5*time.Second {
					t.Errorf("Expected FetchTimeout to be 5s, got %s", cfg.FetchTimeout)
				}
				if cfg.FetchRetryCount != 0 {
					t.Errorf("Expected FetchRetryCount to be 0, got %d", cfg.FetchRetryCount)
				}
				if cfg.BannerBucket != "aurora-config" {
					t.Errorf("Expected BannerBucket to be 'aurora-config', got '%s'", cfg.BannerBucket)
				}
				if cfg.Derive.HighBz != -12 {
					t.Errorf("Expected HighBz to be -12, got %v", cfg.Derive.HighBz)
				}
				if cfg.Derive.LowModerateSpeed != 420 {
					t.Errorf("Expected LowModerateSpeed to be 420, got %v", cfg.Derive.LowModerateSpeed)
				}
			},
		},
		{
			name: "invalid duration",
			envVars: map[string]string{
				"REFRESH_INTERVAL": "soon",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(tt.envVars))

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			if tt.validate != nil {
				tt.validate(cfg)
			}
		})
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv()
	defer clearEnv()

	os.Setenv("PORT", "9191")
	os.Setenv("SWPC_KP_INDEX_URL", "http://localhost/kp.json")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Port != "9191" {
		t.Errorf("Expected Port to be '9191', got '%s'", cfg.Port)
	}
	if cfg.KpIndexURL != "http://localhost/kp.json" {
		t.Errorf("Expected KpIndexURL override, got '%s'", cfg.KpIndexURL)
	}
}

func TestLoadDefaultURLs(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := map[string]string{
		"PlasmaURL":       "https://services.swpc.noaa.gov/products/solar-wind/plasma-5-minute.json",
		"MagURL":          "https://services.swpc.noaa.gov/products/solar-wind/mag-5-minute.json",
		"KpIndexURL":      "https://services.swpc.noaa.gov/products/noaa-planetary-k-index.json",
		"ScalesURL":       "https://services.swpc.noaa.gov/products/noaa-scales.json",
		"Plasma2hURL":     "https://services.swpc.noaa.gov/products/solar-wind/plasma-2-hour.json",
		"Mag2hURL":        "https://services.swpc.noaa.gov/products/solar-wind/mag-2-hour.json",
		"HemiPowerURL":    "https://services.swpc.noaa.gov/text/aurora-nowcast-hemi-power.txt",
		"KpForecastURL":   "https://services.swpc.noaa.gov/products/noaa-planetary-k-index-forecast.json",
		"BulletinFeedURL": "",
	}
	actual := map[string]string{
		"PlasmaURL":       cfg.PlasmaURL,
		"MagURL":          cfg.MagURL,
		"KpIndexURL":      cfg.KpIndexURL,
		"ScalesURL":       cfg.ScalesURL,
		"Plasma2hURL":     cfg.Plasma2hURL,
		"Mag2hURL":        cfg.Mag2hURL,
		"HemiPowerURL":    cfg.HemiPowerURL,
		"KpForecastURL":   cfg.KpForecastURL,
		"BulletinFeedURL": cfg.BulletinFeedURL,
	}
	for field, want := range expected {
		if actual[field] != want {
			t.Errorf("Expected %s to be '%s', got '%s'", field, want, actual[field])
		}
	}
}

func TestBulletinsDisabledByDefault(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.BulletinFeedURL != "" {
		t.Errorf("Expected bulletins to be disabled by default, got %q", cfg.BulletinFeedURL)
	}

	cfg, err = LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"SIDC_RSS_URL": "https://example.com/feed.xml",
	}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.BulletinFeedURL != "https://example.com/feed.xml" {
		t.Errorf("Expected SIDC_RSS_URL override, got %q", cfg.BulletinFeedURL)
	}
}

func TestFetchBudget(t *testing.T) {
	tests := []struct {
		timeout time.Duration
		retries int
		wait    time.Duration
		want    time.Duration
	}{
		{timeout: 10 * time.Second, retries: 0, wait: 500 * time.Millisecond, want: 10 * time.Second},
		{timeout: 10 * time.Second, retries: 1, wait: 500 * time.Millisecond, want: 21 * time.Second},
		{timeout: 2 * time.Second, retries: 1, wait: 0, want: 4 * time.Second},
	}
	for _, tt := range tests {
		cfg := &Config{FetchTimeout: tt.timeout, FetchRetryCount: tt.retries, FetchRetryWait: tt.wait}
		if got := cfg.FetchBudget(); got != tt.want {
			t.Errorf("FetchBudget(%s, %d, %s) = %s, want %s", tt.timeout, tt.retries, tt.wait, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:      "retry count above one",
			mutate:    func(c *Config) { c.FetchRetryCount = 2 },
			errSubstr: "FETCH_RETRY_COUNT",
		},
		{
			name:      "timeout not shorter than interval",
			mutate:    func(c *Config) { c.FetchTimeout = c.RefreshInterval },
			errSubstr: "FETCH_TIMEOUT",
		},
		{
			name: "retries exceed interval",
			mutate: func(c *Config) {
				c.FetchTimeout = 30 * time.Second
				c.FetchRetryCount = 1
			},
			errSubstr: "worst-case fetch time",
		},
		{
			name: "single attempt fits interval",
			mutate: func(c *Config) {
				c.FetchTimeout = 30 * time.Second
				c.FetchRetryCount = 0
			},
		},
		{
			name:      "negative retry wait",
			mutate:    func(c *Config) { c.FetchRetryWait = -time.Second },
			errSubstr: "FETCH_RETRY_WAIT",
		},
		{
			name:   "optional sources may be empty",
			mutate: func(c *Config) { c.Plasma2hURL, c.HemiPowerURL, c.KpForecastURL = "", "", "" },
		},
		{
			name:      "gcs without bucket",
			mutate:    func(c *Config) { c.BannerStorage = "gcs" },
			errSubstr: "BANNER_BUCKET",
		},
		{
			name:      "unknown storage",
			mutate:    func(c *Config) { c.BannerStorage = "s3" },
			errSubstr: "BANNER_STORAGE",
		},
		{
			name:      "inverted score thresholds",
			mutate:    func(c *Config) { c.Derive.ScoreGood = 9 },
			errSubstr: "thresholds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q but got none", tt.errSubstr)
			}
			if !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("Expected error containing %q, got %v", tt.errSubstr, err)
			}
		})
	}
}

// clearEnv clears all config-related environment variables
func clearEnv() {
	envVars := []string{
		"PORT", "REFRESH_INTERVAL", "FETCH_TIMEOUT", "FETCH_RETRY_COUNT", "FETCH_RETRY_WAIT",
		"SWPC_PLASMA_URL", "SWPC_MAG_URL", "SWPC_KP_INDEX_URL", "SWPC_SCALES_URL", "SIDC_RSS_URL",
		"SWPC_PLASMA_2HR_URL", "SWPC_MAG_2HR_URL", "SWPC_HEMI_POWER_URL",
		"SWPC_GOES_MAG_PRIMARY_URL", "SWPC_GOES_MAG_SECONDARY_URL", "SWPC_KP_FORECAST_URL",
		"BANNER_STORAGE", "BANNER_PATH", "BANNER_BUCKET", "BANNER_RELOAD_INTERVAL",
		"ENVIRONMENT", "LOG_LEVEL", "LOG_FORMAT",
	}
	for _, envVar := range envVars {
		os.Unsetenv(envVar)
	}
}

func TestFeedOptions(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"SWPC_KP_FORECAST_URL": "http://localhost/forecast.json",
		"FETCH_RETRY_WAIT":     "250ms",
	}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	opts := cfg.FeedOptions()
	if opts.KpForecastURL != "http://localhost/forecast.json" {
		t.Errorf("Expected forecast URL override, got %q", opts.KpForecastURL)
	}
	if opts.RetryWait != 250*time.Millisecond || opts.Timeout != cfg.FetchTimeout || opts.RetryCount != cfg.FetchRetryCount {
		t.Errorf("Unexpected retry settings %+v", opts)
	}
	if opts.PlasmaURL != cfg.PlasmaURL || opts.GoesSecondaryMagURL != cfg.GoesSecondaryMagURL {
		t.Errorf("Expected URLs to be copied, got %+v", opts)
	}
}
