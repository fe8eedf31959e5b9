package models

// SolarWindRecord is the latest complete real-time solar wind sample, merged
// from the SWPC plasma and magnetometer feeds.
type SolarWindRecord struct {
	Time        string  `json:"time"`
	Speed       float64 `json:"speed"`       // km/s
	Density     float64 `json:"density"`     // p/cm³
	Temperature float64 `json:"temperature"` // K
	Bt          float64 `json:"bt"`          // nT
	Bz          float64 `json:"bz"`          // nT, GSM
	Bx          float64 `json:"bx"`          // nT, GSM
	By          float64 `json:"by"`          // nT, GSM
}

// KpIndexRecord is the latest planetary K-index observation.
type KpIndexRecord struct {
	Time string  `json:"time"`
	Kp   float64 `json:"kp"`
}

// NoaaScaleRecord holds the current NOAA space weather scales. Only the
// G-scale is interpreted; R and S are copied verbatim.
type NoaaScaleRecord struct {
	Time   string `json:"time"`
	GScale string `json:"g_scale"`
	GText  string `json:"g_text"`
	RScale string `json:"r_scale,omitempty"`
	RText  string `json:"r_text,omitempty"`
	SScale string `json:"s_scale,omitempty"`
	SText  string `json:"s_text,omitempty"`
}

// GScaleLabels are the labels SWPC uses for G0 through G5.
var GScaleLabels = []string{"none", "minor", "moderate", "strong", "severe", "extreme"}

// IsGScaleLabel reports whether text is one of GScaleLabels.
func IsGScaleLabel(text string) bool {
	for _, l := range GScaleLabels {
		if l == text {
			return true
		}
	}
	return false
}
