// Package fetchers retrieves and normalizes the upstream space weather feeds.
package fetchers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"aurorawatch/internal/logger"
	"aurorawatch/internal/models"
)

const (
	acceptJSON = "application/json"
	acceptText = "text/plain, */*;q=0.8"
	acceptFeed = "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8"
)

// Options configures a FeedClient. The three core URLs are always used; an
// empty URL disables any other source.
type Options struct {
	PlasmaURL  string
	MagURL     string
	KpIndexURL string
	ScalesURL  string

	Plasma2hURL         string
	Mag2hURL            string
	HemiPowerURL        string
	GoesPrimaryMagURL   string
	GoesSecondaryMagURL string
	KpForecastURL       string
	BulletinFeedURL     string

	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration

	// Transport is the base round tripper; http.DefaultTransport when nil.
	Transport http.RoundTripper
	// Now is the clock used for the bulletin window; time.Now when nil.
	Now func() time.Time
}

// Payload carries the single record produced for the fetched source.
type Payload struct {
	Source     models.Source
	SolarWind  *models.SolarWindRecord
	KpIndex    *models.KpIndexRecord
	NoaaScales *models.NoaaScaleRecord
	Bulletins  []models.Bulletin

	SolarWindHistory *models.SolarWindHistory
	HemisphericPower *models.HemisphericPower
	GoesMagnetometer *models.GoesMagnetometer
	KpForecast       *models.KpForecast
}

// FeedClient fetches one source at a time and returns either a typed
// record or a *FetchError.
type FeedClient struct {
	client *resty.Client
	parser *gofeed.Parser
	opts   Options
	now    func() time.Time
	log    *logger.Logger
}

// NewFeedClient creates a feed client. RetryCount is clamped to [0,1].
func NewFeedClient(opts Options) *FeedClient {
	if opts.RetryCount < 0 {
		opts.RetryCount = 0
	}
	if opts.RetryCount > 1 {
		opts.RetryCount = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 500 * time.Millisecond
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	log := logger.Component("fetchers")

	client := resty.New()
	client.SetTransport(otelhttp.NewTransport(base))
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(opts.RetryCount)
	client.SetRetryWaitTime(opts.RetryWait)
	client.SetRetryMaxWaitTime(2 * opts.RetryWait)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() >= http.StatusInternalServerError
	})
	client.SetHeader("User-Agent", "aurorawatch/1.0")
	client.SetLogger(log)

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &FeedClient{
		client: client,
		parser: gofeed.NewParser(),
		opts:   opts,
		now:    now,
		log:    log,
	}
}

// Sources returns the enabled sources in display order.
func (f *FeedClient) Sources() []models.Source {
	sources := make([]models.Source, 0, len(models.AllSources))
	for _, s := range models.AllSources {
		if f.enabled(s) {
			sources = append(sources, s)
		}
	}
	return sources
}

func (f *FeedClient) enabled(source models.Source) bool {
	switch source {
	case models.SourceSolarWind, models.SourceKpIndex, models.SourceNoaaScales:
		return true
	case models.SourceSolarWindHistory:
		return f.opts.Plasma2hURL != "" && f.opts.Mag2hURL != ""
	case models.SourceHemisphericPower:
		return f.opts.HemiPowerURL != ""
	case models.SourceGoesMagnetometer:
		return f.opts.GoesPrimaryMagURL != "" || f.opts.GoesSecondaryMagURL != ""
	case models.SourceKpForecast:
		return f.opts.KpForecastURL != ""
	case models.SourceBulletins:
		return f.opts.BulletinFeedURL != ""
	}
	return false
}

// Fetch retrieves and parses one source. Any returned error is a *FetchError.
func (f *FeedClient) Fetch(ctx context.Context, source models.Source) (*Payload, error) {
	start := time.Now()
	payload, ferr := f.fetch(ctx, source)
	if ferr != nil {
		f.log.Debug("Fetch failed", map[string]interface{}{
			"source":   string(source),
			"kind":     string(ferr.Kind),
			"duration": time.Since(start).String(),
		})
		return nil, ferr
	}
	f.log.Debug("Fetch succeeded", map[string]interface{}{
		"source":   string(source),
		"duration": time.Since(start).String(),
	})
	return payload, nil
}

func (f *FeedClient) fetch(ctx context.Context, source models.Source) (*Payload, *FetchError) {
	if !f.enabled(source) {
		return nil, newError(source, KindMissing, ErrSourceDisabled)
	}

	switch source {
	case models.SourceSolarWind:
		plasmaBody, magBody, ferr := f.getBoth(ctx, source, f.opts.PlasmaURL, f.opts.MagURL, acceptJSON)
		if ferr != nil {
			return nil, ferr
		}
		plasma, ferr := parsePlasma(plasmaBody)
		if ferr != nil {
			return nil, ferr
		}
		mag, ferr := parseMag(magBody)
		if ferr != nil {
			return nil, ferr
		}
		return &Payload{Source: source, SolarWind: mergeSolarWind(plasma, mag)}, nil

	case models.SourceKpIndex:
		body, ferr := f.get(ctx, source, f.opts.KpIndexURL, acceptJSON)
		if ferr != nil {
			return nil, ferr
		}
		kp, ferr := parseKpIndex(body)
		if ferr != nil {
			return nil, ferr
		}
		return &Payload{Source: source, KpIndex: kp}, nil

	case models.SourceNoaaScales:
		body, ferr := f.get(ctx, source, f.opts.ScalesURL, acceptJSON)
		if ferr != nil {
			return nil, ferr
		}
		scales, ferr := parseScales(body)
		if ferr != nil {
			return nil, ferr
		}
		return &Payload{Source: source, NoaaScales: scales}, nil

	case models.SourceSolarWindHistory:
		plasmaBody, magBody, ferr := f.getBoth(ctx, source, f.opts.Plasma2hURL, f.opts.Mag2hURL, acceptJSON)
		if ferr != nil {
			return nil, ferr
		}
		history, ferr := parseSolarWindHistory(plasmaBody, magBody)
		if ferr != nil {
			return nil, ferr
		}
		return &Payload{Source: source, SolarWindHistory: history}, nil

	case models.SourceHemisphericPower:
		body, ferr := f.get(ctx, source, f.opts.HemiPowerURL, acceptText)
		if ferr != nil {
			return nil, ferr
		}
		power, ferr := parseHemisphericPower(body)
		if ferr != nil {
			return nil, ferr
		}
		return &Payload{Source: source, HemisphericPower: power}, nil

	case models.SourceGoesMagnetometer:
		primary, secondary, ferr := f.getEither(ctx, source, f.opts.GoesPrimaryMagURL, f.opts.GoesSecondaryMagURL, acceptJSON)
		if ferr != nil {
			return nil, ferr
		}
		mag, ferr := parseGoesMagnetometer(primary, secondary)
		if ferr != nil {
			return nil, ferr
		}
		return &Payload{Source: source, GoesMagnetometer: mag}, nil

	case models.SourceKpForecast:
		body, ferr := f.get(ctx, source, f.opts.KpForecastURL, acceptJSON)
		if ferr != nil {
			return nil, ferr
		}
		forecast, ferr := parseKpForecast(body)
		if ferr != nil {
			return nil, ferr
		}
		return &Payload{Source: source, KpForecast: forecast}, nil

	case models.SourceBulletins:
		body, ferr := f.get(ctx, source, f.opts.BulletinFeedURL, acceptFeed)
		if ferr != nil {
			return nil, ferr
		}
		bulletins, ferr := parseBulletins(f.parser, body, f.now())
		if ferr != nil {
			return nil, ferr
		}
		return &Payload{Source: source, Bulletins: bulletins}, nil
	}

	return nil, missingf(source, "unknown source")
}

type fetched struct {
	body []byte
	err  *FetchError
}

// getPair fetches two URLs concurrently so a paired source costs one
// request's worst case rather than two.
func (f *FeedClient) getPair(ctx context.Context, source models.Source, urlA, urlB, accept string) (fetched, fetched) {
	get := func(url string) fetched {
		if url == "" {
			return fetched{err: newError(source, KindMissing, ErrSourceDisabled)}
		}
		body, ferr := f.get(ctx, source, url, accept)
		return fetched{body: body, err: ferr}
	}

	ch := make(chan fetched, 1)
	go func() { ch <- get(urlB) }()
	a := get(urlA)
	return a, <-ch
}

// getBoth requires both halves.
func (f *FeedClient) getBoth(ctx context.Context, source models.Source, urlA, urlB, accept string) ([]byte, []byte, *FetchError) {
	a, b := f.getPair(ctx, source, urlA, urlB, accept)
	if a.err != nil {
		return nil, nil, a.err
	}
	if b.err != nil {
		return nil, nil, b.err
	}
	return a.body, b.body, nil
}

// getEither tolerates one failed or unconfigured half; the failed body is nil.
func (f *FeedClient) getEither(ctx context.Context, source models.Source, urlA, urlB, accept string) ([]byte, []byte, *FetchError) {
	a, b := f.getPair(ctx, source, urlA, urlB, accept)
	if a.err != nil && b.err != nil {
		if urlA == "" {
			return nil, nil, b.err
		}
		return nil, nil, a.err
	}
	for _, half := range []fetched{a, b} {
		if half.err != nil && !errors.Is(half.err, ErrSourceDisabled) {
			f.log.Debug("Ignoring failed half of paired source", map[string]interface{}{
				"source": string(source),
				"error":  half.err.Error(),
			})
		}
	}
	return a.body, b.body, nil
}

// get performs one GET and normalizes transport and status failures.
func (f *FeedClient) get(ctx context.Context, source models.Source, url, accept string) ([]byte, *FetchError) {
	if url == "" {
		return nil, newError(source, KindMissing, ErrSourceDisabled)
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", accept).
		Get(url)
	if err != nil {
		return nil, transportError(source, err)
	}
	if !resp.IsSuccess() {
		return nil, newError(source, KindStatus, fmt.Errorf("%s returned status %d", url, resp.StatusCode()))
	}
	return resp.Body(), nil
}
