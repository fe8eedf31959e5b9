package models

import "time"

// SolarWindPoint is one sample of the 2-hour solar wind history. Values the
// feed reports as missing are nil.
type SolarWindPoint struct {
	Time    time.Time `json:"time"`
	Speed   *float64  `json:"speed"`
	Density *float64  `json:"density"`
	Bz      *float64  `json:"bz"`
	Bt      *float64  `json:"bt"`
}

// SolarWindHistory is the 2-hour plasma and magnetometer series, oldest first.
type SolarWindHistory struct {
	Points []SolarWindPoint `json:"points"`
}

// Clone returns a copy that shares no slice with h.
func (h *SolarWindHistory) Clone() *SolarWindHistory {
	if h == nil {
		return nil
	}
	return &SolarWindHistory{Points: append([]SolarWindPoint(nil), h.Points...)}
}

// PowerPoint is one hemispheric power estimate in gigawatts.
type PowerPoint struct {
	Time  time.Time `json:"time"`
	North float64   `json:"north"`
	South float64   `json:"south"`
}

// HemisphericPower is the aurora nowcast hemispheric power series, oldest first.
type HemisphericPower struct {
	Points []PowerPoint `json:"points"`
}

// Clone returns a copy that shares no slice with h.
func (h *HemisphericPower) Clone() *HemisphericPower {
	if h == nil {
		return nil
	}
	return &HemisphericPower{Points: append([]PowerPoint(nil), h.Points...)}
}

// HpPoint is one GOES magnetometer Hp sample in nT.
type HpPoint struct {
	Time time.Time `json:"time"`
	Hp   float64   `json:"hp"`
}

// GoesSeries holds the recent Hp samples of one GOES satellite.
type GoesSeries struct {
	Satellite int       `json:"satellite"`
	Points    []HpPoint `json:"points"`
}

// GoesMagnetometer groups the primary and secondary GOES series by satellite.
type GoesMagnetometer struct {
	Satellites []GoesSeries `json:"satellites"`
}

// Clone returns a copy that shares no slice with g.
func (g *GoesMagnetometer) Clone() *GoesMagnetometer {
	if g == nil {
		return nil
	}
	out := &GoesMagnetometer{Satellites: make([]GoesSeries, len(g.Satellites))}
	for i, s := range g.Satellites {
		out.Satellites[i] = GoesSeries{
			Satellite: s.Satellite,
			Points:    append([]HpPoint(nil), s.Points...),
		}
	}
	return out
}

// KpForecastEntry is one 3-hour slot of the planetary K-index forecast
// product, either observed or predicted.
type KpForecastEntry struct {
	Time      time.Time `json:"time"`
	Kp        float64   `json:"kp"`
	Observed  bool      `json:"observed"`
	NoaaScale string    `json:"noaa_scale,omitempty"`
}

// KpForecast is the observed and predicted Kp series, oldest first.
type KpForecast struct {
	Entries []KpForecastEntry `json:"entries"`
}

// Clone returns a copy that shares no slice with f.
func (f *KpForecast) Clone() *KpForecast {
	if f == nil {
		return nil
	}
	return &KpForecast{Entries: append([]KpForecastEntry(nil), f.Entries...)}
}
