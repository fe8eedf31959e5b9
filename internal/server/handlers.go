package server

import (
	"bytes"
	_ "embed"
	"net/http"
	"strconv"
	"time"

	"aurorawatch/internal/charts"
	"aurorawatch/internal/models"
)

//go:embed static/index.html
var indexPage []byte

const noDataMessage = "No snapshot has been assembled yet; try again shortly"

// HandleAuroraData serves the last installed snapshot.
func (s *Server) HandleAuroraData(w http.ResponseWriter, r *http.Request) {
	snapshot := s.snapshots.Get()
	if snapshot == nil {
		w.Header().Set("Retry-After", "10")
		writeError(w, http.StatusServiceUnavailable, "no_data", noDataMessage)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// HandleAlertBanner serves the current alert banner configuration.
func (s *Server) HandleAlertBanner(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.banners.Current())
}

// HandleAuroraImage renders the snapshot summary chart.
func (s *Server) HandleAuroraImage(w http.ResponseWriter, r *http.Request) {
	snapshot := s.snapshots.Get()
	if snapshot == nil {
		w.Header().Set("Retry-After", "10")
		writeError(w, http.StatusServiceUnavailable, "no_data", noDataMessage)
		return
	}

	var buf bytes.Buffer
	if err := charts.RenderSummary(&buf, snapshot); err != nil {
		s.log.Error("Failed to render summary chart", err, map[string]interface{}{
			"sequence": snapshot.Sequence,
		})
		writeError(w, http.StatusInternalServerError, "render_failed", "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// HandleHealth provides health check endpoint. The status is degraded when
// the installed snapshot holds no fresh source.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	now := s.now().UTC()
	checks := map[string]string{"snapshot": "no_data"}
	health := map[string]interface{}{
		"status":    "starting",
		"timestamp": now.Format(time.RFC3339),
		"version":   s.version,
		"checks":    checks,
	}

	if snapshot := s.snapshots.Get(); snapshot != nil {
		health["status"] = "healthy"
		checks["snapshot"] = "ok"
		health["sequence"] = snapshot.Sequence
		health["snapshot_age_seconds"] = int(now.Sub(snapshot.Timestamp).Seconds())

		checks["sources"] = "ok"
		if !anyFresh(snapshot) {
			health["status"] = "degraded"
			checks["sources"] = "stale"
		}
	}

	writeJSON(w, http.StatusOK, health)
}

func anyFresh(snapshot *models.AuroraSnapshot) bool {
	for _, st := range snapshot.Sources {
		if st.OK {
			return true
		}
	}
	return false
}

// HandleRoot serves the embedded dashboard page.
func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexPage)
}
