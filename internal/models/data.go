package models

import "time"

// Source identifies one upstream feed.
type Source string

const (
	SourceSolarWind        Source = "solar_wind"
	SourceKpIndex          Source = "kp_index"
	SourceNoaaScales       Source = "noaa_scales"
	SourceSolarWindHistory Source = "solar_wind_history"
	SourceHemisphericPower Source = "hemispheric_power"
	SourceGoesMagnetometer Source = "goes_magnetometer"
	SourceKpForecast       Source = "kp_forecast"
	SourceBulletins        Source = "bulletins"
)

// AllSources lists every source in display order.
var AllSources = []Source{
	SourceSolarWind,
	SourceKpIndex,
	SourceNoaaScales,
	SourceSolarWindHistory,
	SourceHemisphericPower,
	SourceGoesMagnetometer,
	SourceKpForecast,
	SourceBulletins,
}

// CoreSources feed the derivation and are always fetched.
var CoreSources = []Source{SourceSolarWind, SourceKpIndex, SourceNoaaScales}

// ConditionStatus is the overall aurora viewing condition.
type ConditionStatus string

const (
	ConditionPoor      ConditionStatus = "Poor"
	ConditionFair      ConditionStatus = "Fair"
	ConditionGood      ConditionStatus = "Good"
	ConditionExcellent ConditionStatus = "Excellent"
)

// Rank orders condition statuses from Poor (0) to Excellent (3).
// Unknown values rank below Poor.
func (c ConditionStatus) Rank() int {
	switch c {
	case ConditionPoor:
		return 0
	case ConditionFair:
		return 1
	case ConditionGood:
		return 2
	case ConditionExcellent:
		return 3
	default:
		return -1
	}
}

// Bulletin is a space weather bulletin headline from the SIDC feed.
type Bulletin struct {
	Title     string    `json:"title"`
	Link      string    `json:"link,omitempty"`
	Published time.Time `json:"published"`
}

// SourceStatus describes how a sub-record in a snapshot was obtained.
type SourceStatus struct {
	OK          bool       `json:"ok"`              // fetched successfully this cycle
	Stale       bool       `json:"stale"`           // carried over from an earlier cycle
	LastSuccess *time.Time `json:"last_success"`    // assembly time of the cycle that fetched it
	Error       string     `json:"error,omitempty"` // failure of this cycle, if any
}

// AuroraSnapshot is the merged, derived view of all feeds at one point in
// time. A snapshot is never modified after it has been installed in the cache.
type AuroraSnapshot struct {
	SolarWind        *SolarWindRecord        `json:"solar_wind"`
	KpIndex          *KpIndexRecord          `json:"kp_index"`
	NoaaScales       *NoaaScaleRecord        `json:"noaa_scales"`
	SolarWindHistory *SolarWindHistory       `json:"solar_wind_history"`
	HemisphericPower *HemisphericPower       `json:"hemispheric_power"`
	GoesMagnetometer *GoesMagnetometer       `json:"goes_magnetometer"`
	KpForecast       *KpForecast             `json:"kp_forecast"`
	Bulletins        []Bulletin              `json:"bulletins"`
	AuroraLikelihood string                  `json:"aurora_likelihood"`
	ConditionStatus  ConditionStatus         `json:"condition_status"`
	ConditionScore   int                     `json:"condition_score"`
	Sources          map[Source]SourceStatus `json:"sources"`
	Sequence         uint64                  `json:"sequence"`
	Timestamp        time.Time               `json:"timestamp"`
}
