package server

import (
	"math"
	"net/http"
	"strconv"

	"aurorawatch/internal/derive"
	"aurorawatch/internal/models"
)

// KpHistoryResponse is the body of /api/kp-history.
type KpHistoryResponse struct {
	KpValues []models.KpForecastEntry `json:"kp_values"`
}

// GeomagneticAlertsResponse is the body of /api/geomagnetic-alerts.
type GeomagneticAlertsResponse struct {
	Forecast []derive.OutlookDay `json:"forecast"`
}

// NoaaScalesResponse is the body of /api/noaa-scales.
type NoaaScalesResponse struct {
	RCurrent int    `json:"r_current"`
	SCurrent int    `json:"s_current"`
	GCurrent int    `json:"g_current"`
	Time     string `json:"time,omitempty"`
}

// ProbabilityResponse is the body of /api/aurora-probability.
type ProbabilityResponse struct {
	Latitude    float64 `json:"latitude"`
	Kp          float64 `json:"kp"`
	Probability int     `json:"probability"`
	Visibility  string  `json:"visibility"`
}

// snapshotOr503 returns the installed snapshot or answers no_data.
func (s *Server) snapshotOr503(w http.ResponseWriter) *models.AuroraSnapshot {
	snapshot := s.snapshots.Get()
	if snapshot == nil {
		w.Header().Set("Retry-After", "10")
		writeError(w, http.StatusServiceUnavailable, "no_data", noDataMessage)
	}
	return snapshot
}

// HandleKpHistory serves the observed and predicted Kp values of the last
// two days.
func (s *Server) HandleKpHistory(w http.ResponseWriter, r *http.Request) {
	snapshot := s.snapshotOr503(w)
	if snapshot == nil {
		return
	}
	writeJSON(w, http.StatusOK, KpHistoryResponse{KpValues: derive.KpHistory(snapshot.KpForecast, s.now())})
}

// HandleGeomagneticAlerts serves the three-day storm outlook.
func (s *Server) HandleGeomagneticAlerts(w http.ResponseWriter, r *http.Request) {
	snapshot := s.snapshotOr503(w)
	if snapshot == nil {
		return
	}
	writeJSON(w, http.StatusOK, GeomagneticAlertsResponse{Forecast: derive.DailyOutlook(snapshot.KpForecast, s.now())})
}

// HandleNoaaScales serves the current R, S and G levels as integers. An
// absent or non-numeric scale reads 0.
func (s *Server) HandleNoaaScales(w http.ResponseWriter, r *http.Request) {
	snapshot := s.snapshotOr503(w)
	if snapshot == nil {
		return
	}
	var resp NoaaScalesResponse
	if scales := snapshot.NoaaScales; scales != nil {
		resp = NoaaScalesResponse{
			RCurrent: scaleLevel(scales.RScale),
			SCurrent: scaleLevel(scales.SScale),
			GCurrent: scaleLevel(scales.GScale),
			Time:     scales.Time,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleAuroraProbability estimates the visibility chance at ?lat= from the
// current Kp. An absent Kp counts as 0.
func (s *Server) HandleAuroraProbability(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil || math.IsNaN(lat) || math.Abs(lat) > 90 {
		writeError(w, http.StatusBadRequest, "invalid_latitude", "lat must be a number between -90 and 90")
		return
	}

	snapshot := s.snapshotOr503(w)
	if snapshot == nil {
		return
	}
	kp := 0.0
	if snapshot.KpIndex != nil {
		kp = snapshot.KpIndex.Kp
	}
	chance := derive.Probability(kp, lat)
	writeJSON(w, http.StatusOK, ProbabilityResponse{
		Latitude:    lat,
		Kp:          kp,
		Probability: chance,
		Visibility:  derive.Visibility(chance),
	})
}

func scaleLevel(scale string) int {
	n, err := strconv.Atoi(scale)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
