// Package aggregator runs refresh cycles: it fetches every source, merges
// the results with the cached snapshot, derives the assessments and installs
// the new snapshot.
package aggregator

import (
	"context"
	"sync/atomic"
	"time"

	"aurorawatch/internal/cache"
	"aurorawatch/internal/derive"
	"aurorawatch/internal/fetchers"
	"aurorawatch/internal/logger"
	"aurorawatch/internal/models"
)

// Refresh outcomes reported to the Recorder.
const (
	OutcomeComplete   = "complete"
	OutcomePartial    = "partial"
	OutcomeFailed     = "failed"
	OutcomeSuperseded = "superseded"
)

// Fetcher retrieves one source at a time.
type Fetcher interface {
	Sources() []models.Source
	Fetch(ctx context.Context, source models.Source) (*fetchers.Payload, error)
}

// Deriver computes likelihood and condition from the merged records.
type Deriver interface {
	Derive(sw *models.SolarWindRecord, kp *models.KpIndexRecord, scales *models.NoaaScaleRecord) derive.Result
}

// Recorder receives pipeline metrics.
type Recorder interface {
	RecordRefresh(outcome string, duration time.Duration)
	RecordSkippedRefresh()
	RecordFetchFailure(source, kind string)
	RecordStale(source string)
	RecordInstall(seq uint64, at time.Time)
}

type nopRecorder struct{}

func (nopRecorder) RecordRefresh(string, time.Duration) {}
func (nopRecorder) RecordSkippedRefresh()               {}
func (nopRecorder) RecordFetchFailure(string, string)   {}
func (nopRecorder) RecordStale(string)                  {}
func (nopRecorder) RecordInstall(uint64, time.Time)     {}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock replaces time.Now as the snapshot timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(a *Aggregator) {
		if r != nil {
			a.recorder = r
		}
	}
}

// Aggregator builds snapshots. Refresh is safe to call concurrently; a
// cycle that finishes after a newer one has been installed is discarded.
type Aggregator struct {
	fetcher  Fetcher
	deriver  Deriver
	cache    *cache.SnapshotCache
	recorder Recorder
	now      func() time.Time
	seq      atomic.Uint64
	log      *logger.Logger
}

// New creates an aggregator writing into c.
func New(f Fetcher, d Deriver, c *cache.SnapshotCache, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:  f,
		deriver:  d,
		cache:    c,
		recorder: nopRecorder{},
		now:      time.Now,
		log:      logger.Component("aggregator"),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.seq.Store(c.Sequence())
	return a
}

// Recorder returns the recorder in use.
func (a *Aggregator) Recorder() Recorder {
	return a.recorder
}

type fetchResult struct {
	source  models.Source
	payload *fetchers.Payload
	err     error
}

// Refresh runs one cycle and returns the snapshot that is installed
// afterwards. A cycle in which every source fails still installs a snapshot
// of carried-over records marked stale. If no cycle has ever produced data
// it returns an uninstalled snapshot with every sub-record absent and
// baseline derivations.
func (a *Aggregator) Refresh(ctx context.Context) *models.AuroraSnapshot {
	start := time.Now()
	seq := a.seq.Add(1)

	results := a.fetchAll(ctx)
	prev := a.cache.Get()
	assembled := a.now().UTC()

	snapshot := &models.AuroraSnapshot{
		Sources:   make(map[models.Source]models.SourceStatus, len(results)),
		Sequence:  seq,
		Timestamp: assembled,
	}

	fresh, stale := 0, 0
	for _, source := range models.AllSources {
		r, enabled := results[source]
		if !enabled {
			continue
		}
		if r.err == nil && r.payload != nil {
			apply(snapshot, r.payload)
			at := assembled
			snapshot.Sources[source] = models.SourceStatus{OK: true, LastSuccess: &at}
			fresh++
			continue
		}

		if r.err == nil {
			r.err = &fetchers.FetchError{Source: source, Kind: fetchers.KindMissing}
		}
		kind := fetchers.KindOf(r.err)
		a.recorder.RecordFetchFailure(string(source), string(kind))
		status := models.SourceStatus{Error: r.err.Error()}
		if carryOver(snapshot, prev, source) {
			status.Stale = true
			status.LastSuccess = prev.Sources[source].LastSuccess
			a.recorder.RecordStale(string(source))
			stale++
		}
		snapshot.Sources[source] = status

		a.log.Warn("Source fetch failed", map[string]interface{}{
			"source":   string(source),
			"kind":     string(kind),
			"error":    r.err.Error(),
			"stale":    status.Stale,
			"sequence": seq,
		})
	}

	a.derive(snapshot)

	if fresh == 0 && prev == nil {
		a.recorder.RecordRefresh(OutcomeFailed, time.Since(start))
		a.log.Error("Refresh cycle produced no data and nothing is cached", nil, map[string]interface{}{
			"sequence": seq,
			"sources":  len(results),
		})
		// Hand back the baseline-derived snapshot without installing it so
		// the API keeps reporting no data.
		return snapshot
	}

	if !a.cache.Install(seq, snapshot) {
		a.recorder.RecordRefresh(OutcomeSuperseded, time.Since(start))
		a.log.Info("Discarding superseded snapshot", map[string]interface{}{
			"sequence":  seq,
			"installed": a.cache.Sequence(),
		})
		return a.cache.Get()
	}

	outcome := OutcomeComplete
	switch {
	case fresh == 0:
		outcome = OutcomeFailed
		a.log.Error("Refresh cycle produced no fresh data; serving carried-over records", nil, map[string]interface{}{
			"sequence": seq,
			"stale":    stale,
		})
	case fresh < len(results):
		outcome = OutcomePartial
	}
	a.recorder.RecordRefresh(outcome, time.Since(start))
	a.recorder.RecordInstall(seq, assembled)
	a.log.Info("Snapshot installed", map[string]interface{}{
		"sequence":   seq,
		"outcome":    outcome,
		"fresh":      fresh,
		"stale":      stale,
		"likelihood": snapshot.AuroraLikelihood,
		"condition":  string(snapshot.ConditionStatus),
		"duration":   time.Since(start).String(),
	})
	return snapshot
}

func (a *Aggregator) derive(s *models.AuroraSnapshot) {
	result := a.deriver.Derive(s.SolarWind, s.KpIndex, s.NoaaScales)
	s.AuroraLikelihood = result.Likelihood
	s.ConditionStatus = result.Status
	s.ConditionScore = result.Score
}

// fetchAll fetches every enabled source concurrently.
func (a *Aggregator) fetchAll(ctx context.Context) map[models.Source]fetchResult {
	sources := a.fetcher.Sources()
	ch := make(chan fetchResult, len(sources))
	for _, source := range sources {
		go func(source models.Source) {
			payload, err := a.fetcher.Fetch(ctx, source)
			ch <- fetchResult{source: source, payload: payload, err: err}
		}(source)
	}

	results := make(map[models.Source]fetchResult, len(sources))
	for range sources {
		r := <-ch
		results[r.source] = r
	}
	return results
}

func apply(s *models.AuroraSnapshot, p *fetchers.Payload) {
	switch p.Source {
	case models.SourceSolarWind:
		s.SolarWind = p.SolarWind
	case models.SourceKpIndex:
		s.KpIndex = p.KpIndex
	case models.SourceNoaaScales:
		s.NoaaScales = p.NoaaScales
	case models.SourceSolarWindHistory:
		s.SolarWindHistory = p.SolarWindHistory
	case models.SourceHemisphericPower:
		s.HemisphericPower = p.HemisphericPower
	case models.SourceGoesMagnetometer:
		s.GoesMagnetometer = p.GoesMagnetometer
	case models.SourceKpForecast:
		s.KpForecast = p.KpForecast
	case models.SourceBulletins:
		s.Bulletins = p.Bulletins
	}
}

// carryOver copies the previous sub-record for source into s. It reports
// false when there is nothing to carry.
func carryOver(s, prev *models.AuroraSnapshot, source models.Source) bool {
	if prev == nil {
		return false
	}
	switch source {
	case models.SourceSolarWind:
		if prev.SolarWind != nil {
			sw := *prev.SolarWind
			s.SolarWind = &sw
			return true
		}
	case models.SourceKpIndex:
		if prev.KpIndex != nil {
			kp := *prev.KpIndex
			s.KpIndex = &kp
			return true
		}
	case models.SourceNoaaScales:
		if prev.NoaaScales != nil {
			scales := *prev.NoaaScales
			s.NoaaScales = &scales
			return true
		}
	case models.SourceSolarWindHistory:
		if prev.SolarWindHistory != nil {
			s.SolarWindHistory = prev.SolarWindHistory.Clone()
			return true
		}
	case models.SourceHemisphericPower:
		if prev.HemisphericPower != nil {
			s.HemisphericPower = prev.HemisphericPower.Clone()
			return true
		}
	case models.SourceGoesMagnetometer:
		if prev.GoesMagnetometer != nil {
			s.GoesMagnetometer = prev.GoesMagnetometer.Clone()
			return true
		}
	case models.SourceKpForecast:
		if prev.KpForecast != nil {
			s.KpForecast = prev.KpForecast.Clone()
			return true
		}
	case models.SourceBulletins:
		if prev.Bulletins != nil {
			s.Bulletins = make([]models.Bulletin, len(prev.Bulletins))
			copy(s.Bulletins, prev.Bulletins)
			return true
		}
	}
	return false
}
