package aggregator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"aurorawatch/internal/logger"
	"aurorawatch/internal/models"
)

// Refresher runs a single refresh cycle.
type Refresher interface {
	Refresh(ctx context.Context) *models.AuroraSnapshot
}

// Scheduler drives a Refresher at a fixed interval. At most one cycle is
// in flight; a tick that arrives while a cycle is running is skipped.
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	recorder  Recorder
	inFlight  atomic.Bool
	wg        sync.WaitGroup
	log       *logger.Logger
}

// NewScheduler creates a scheduler. Each cycle's context is bounded by interval.
func NewScheduler(r Refresher, interval time.Duration, rec Recorder) *Scheduler {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Scheduler{
		refresher: r,
		interval:  interval,
		recorder:  rec,
		log:       logger.Component("scheduler"),
	}
}

// Run triggers a cycle immediately and then on every tick until ctx is
// cancelled. It waits for the in-flight cycle before returning.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("Scheduler started", map[string]interface{}{
		"interval": s.interval.String(),
	})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Trigger(ctx)
	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.log.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.Trigger(ctx)
		}
	}
}

// Trigger starts a cycle unless one is already running and reports
// whether it did.
func (s *Scheduler) Trigger(ctx context.Context) bool {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.recorder.RecordSkippedRefresh()
		s.log.Warn("Previous refresh still running; skipping tick")
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.inFlight.Store(false)

		cycleCtx, cancel := context.WithTimeout(ctx, s.interval)
		defer cancel()
		s.refresher.Refresh(cycleCtx)
	}()
	return true
}

// Wait blocks until the in-flight cycle, if any, has finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
