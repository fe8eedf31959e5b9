package derive

import (
	"errors"
	"fmt"
)

// Thresholds holds the boundary constants of the likelihood and condition
// rule tables. Bz values in nT, speeds in km/s, densities in p/cm³.
type Thresholds struct {
	HighBz    float64 // Bz at or below this, with speed above HighSpeed
	HighSpeed float64

	ElevatedBz      float64 // Bz at or below this, with speed or density at or above the limits
	ElevatedSpeed   float64
	ElevatedDensity float64

	ModerateBz float64 // Bz at or below this

	LowModerateBz    float64 // Bz strictly below this, with speed at or above LowModerateSpeed
	LowModerateSpeed float64

	KpStrong    float64 // 3 points
	KpActive    float64 // 2 points
	KpUnsettled float64 // 1 point

	GStrong int // 2 points
	GMinor  int // 1 point

	ScoreExcellent int
	ScoreGood      int
	ScoreFair      int
}

// DefaultThresholds returns the stock boundary constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighBz:           -10,
		HighSpeed:        500,
		ElevatedBz:       -5,
		ElevatedSpeed:    500,
		ElevatedDensity:  10,
		ModerateBz:       -5,
		LowModerateBz:    0,
		LowModerateSpeed: 400,
		KpStrong:         6,
		KpActive:         4,
		KpUnsettled:      3,
		GStrong:          3,
		GMinor:           1,
		ScoreExcellent:   7,
		ScoreGood:        5,
		ScoreFair:        3,
	}
}

// Validate reports every boundary that is out of order. A northward or
// neutral IMF (Bz >= 0) can never lift the likelihood above the baseline.
func (t Thresholds) Validate() error {
	var errs []error

	if t.LowModerateBz > 0 {
		errs = append(errs, fmt.Errorf("low-moderate Bz %v must not be positive", t.LowModerateBz))
	}
	if t.ModerateBz >= 0 {
		errs = append(errs, fmt.Errorf("moderate Bz %v must be negative", t.ModerateBz))
	}
	if t.ModerateBz > t.LowModerateBz {
		errs = append(errs, fmt.Errorf("moderate Bz %v must not exceed low-moderate Bz %v", t.ModerateBz, t.LowModerateBz))
	}
	if t.ElevatedBz > t.ModerateBz {
		errs = append(errs, fmt.Errorf("elevated Bz %v must not exceed moderate Bz %v", t.ElevatedBz, t.ModerateBz))
	}
	if t.HighBz > t.ElevatedBz {
		errs = append(errs, fmt.Errorf("high Bz %v must not exceed elevated Bz %v", t.HighBz, t.ElevatedBz))
	}
	if t.LowModerateSpeed < 0 || t.ElevatedSpeed < 0 || t.HighSpeed < 0 || t.ElevatedDensity < 0 {
		errs = append(errs, errors.New("speed and density thresholds must not be negative"))
	}

	if !(0 <= t.KpUnsettled && t.KpUnsettled <= t.KpActive && t.KpActive <= t.KpStrong && t.KpStrong <= 9) {
		errs = append(errs, fmt.Errorf("kp thresholds must satisfy 0 <= %v <= %v <= %v <= 9", t.KpUnsettled, t.KpActive, t.KpStrong))
	}
	if !(0 <= t.GMinor && t.GMinor <= t.GStrong && t.GStrong <= 5) {
		errs = append(errs, fmt.Errorf("g-scale thresholds must satisfy 0 <= %d <= %d <= 5", t.GMinor, t.GStrong))
	}
	if !(0 < t.ScoreFair && t.ScoreFair <= t.ScoreGood && t.ScoreGood <= t.ScoreExcellent) {
		errs = append(errs, fmt.Errorf("score thresholds must satisfy 0 < %d <= %d <= %d", t.ScoreFair, t.ScoreGood, t.ScoreExcellent))
	}

	return errors.Join(errs...)
}
