// Package server exposes the cached aurora snapshot over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"aurorawatch/internal/banner"
	"aurorawatch/internal/logger"
	"aurorawatch/internal/metrics"
	"aurorawatch/internal/models"
)

// SnapshotSource returns the installed snapshot, nil before the first one.
type SnapshotSource interface {
	Get() *models.AuroraSnapshot
}

// BannerSource returns the alert banner in effect.
type BannerSource interface {
	Current() banner.Banner
}

// Server serves read-only views of the snapshot cache. No handler triggers
// an upstream fetch.
type Server struct {
	snapshots SnapshotSource
	banners   BannerSource
	metrics   *metrics.Collector
	version   string
	now       func() time.Time
	log       *logger.Logger
}

// NewServer creates a new server instance
func NewServer(snapshots SnapshotSource, banners BannerSource, collector *metrics.Collector, version string) *Server {
	return &Server{
		snapshots: snapshots,
		banners:   banners,
		metrics:   collector,
		version:   version,
		now:       time.Now,
		log:       logger.Component("server"),
	}
}

// SetupRoutes configures HTTP routes for the server
func (s *Server) SetupRoutes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.instrument)

	router.HandleFunc("/api/aurora-data", s.HandleAuroraData).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/api/alert-banner", s.HandleAlertBanner).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/api/kp-history", s.HandleKpHistory).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/api/geomagnetic-alerts", s.HandleGeomagneticAlerts).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/api/noaa-scales", s.HandleNoaaScales).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/api/aurora-probability", s.HandleAuroraProbability).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/aurora-image.png", s.HandleAuroraImage).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/health", s.HandleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	router.HandleFunc("/", s.HandleRoot).Methods(http.MethodGet, http.MethodHead)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "No such route")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	})

	return router
}

// instrument records request count and duration per route template.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		if s.metrics != nil {
			s.metrics.RecordAPIRequest(route, r.Method, statusText(rec.status), time.Since(start))
		}
		s.log.Debug("Request served", map[string]interface{}{
			"method":   r.Method,
			"route":    route,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		})
	})
}
