package derive

import (
	"math"
	"time"

	"aurorawatch/internal/models"
)

const (
	// KpHistoryWindow is how far back KpHistory reaches.
	KpHistoryWindow = 48 * time.Hour
	// OutlookDays is the number of UTC days in DailyOutlook.
	OutlookDays = 3
	// EstimatedKp fills an outlook day with no forecast entry.
	EstimatedKp = 2.0

	outlookGrace = 3 * time.Hour
)

type gRule struct {
	MinKp float64
	Scale int
}

// NOAA G-scale boundaries on the Kp scale, strongest first.
var gRules = []gRule{
	{MinKp: 8.67, Scale: 5},
	{MinKp: 7.67, Scale: 4},
	{MinKp: 6.67, Scale: 3},
	{MinKp: 5.67, Scale: 2},
	{MinKp: 5.0, Scale: 1},
}

// GScaleForKp maps a Kp value to its G-scale level, 0 below storm levels.
func GScaleForKp(kp float64) int {
	for _, rule := range gRules {
		if kp >= rule.MinKp {
			return rule.Scale
		}
	}
	return 0
}

// KpHistory returns the forecast entries within KpHistoryWindow of now,
// including predictions after now.
func KpHistory(f *models.KpForecast, now time.Time) []models.KpForecastEntry {
	entries := []models.KpForecastEntry{}
	if f == nil {
		return entries
	}
	since := now.Add(-KpHistoryWindow)
	for _, e := range f.Entries {
		if !e.Time.Before(since) {
			entries = append(entries, e)
		}
	}
	return entries
}

// OutlookDay is the peak expected activity for one UTC day.
type OutlookDay struct {
	Date      string  `json:"date"`
	MaxKp     float64 `json:"max_kp"`
	GScale    int     `json:"g_scale"`
	Estimated bool    `json:"estimated"`
}

// DailyOutlook reduces the forecast to the maximum Kp of each of the next
// OutlookDays UTC days, starting today. Entries that ended more than three
// hours ago are ignored. A day without any entry gets EstimatedKp.
func DailyOutlook(f *models.KpForecast, now time.Time) []OutlookDay {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	maxKp := make(map[string]float64, OutlookDays)
	if f != nil {
		cutoff := now.Add(-outlookGrace)
		for _, e := range f.Entries {
			if e.Time.Before(cutoff) {
				continue
			}
			day := e.Time.UTC().Format("2006-01-02")
			if v, ok := maxKp[day]; !ok || e.Kp > v {
				maxKp[day] = e.Kp
			}
		}
	}

	days := make([]OutlookDay, 0, OutlookDays)
	for i := 0; i < OutlookDays; i++ {
		date := today.AddDate(0, 0, i).Format("2006-01-02")
		kp, ok := maxKp[date]
		if !ok {
			days = append(days, OutlookDay{Date: date, MaxKp: EstimatedKp, GScale: GScaleForKp(EstimatedKp), Estimated: true})
			continue
		}
		kp = math.Round(kp*10) / 10
		days = append(days, OutlookDay{Date: date, MaxKp: kp, GScale: GScaleForKp(kp)})
	}
	return days
}

// Upper bounds of the geomagnetic latitude bands, in degrees. Anything
// above the last bound falls in the final band.
var latitudeBands = []float64{50, 55, 60, 65, 70}

// probability[kp][band] is the chance in percent of seeing the aurora.
var probability = [10][6]int{
	{0, 0, 0, 5, 15, 40},
	{0, 0, 0, 10, 25, 50},
	{0, 0, 5, 20, 40, 65},
	{0, 0, 15, 35, 55, 75},
	{0, 5, 25, 50, 70, 85},
	{5, 15, 40, 65, 80, 95},
	{15, 30, 55, 75, 90, 95},
	{25, 45, 70, 85, 95, 95},
	{40, 60, 80, 90, 95, 95},
	{55, 75, 90, 95, 95, 95},
}

// Probability returns the visibility chance in percent at latitude lat for
// the given Kp. The hemisphere is ignored and Kp is rounded into 0..9.
func Probability(kp, lat float64) int {
	k := int(math.Round(kp))
	if k < 0 {
		k = 0
	}
	if k > 9 {
		k = 9
	}

	lat = math.Abs(lat)
	band := len(latitudeBands)
	for i, upper := range latitudeBands {
		if lat < upper {
			band = i
			break
		}
	}
	return probability[k][band]
}

// Visibility labels a Probability result.
func Visibility(chance int) string {
	switch {
	case chance >= 75:
		return "Excellent"
	case chance >= 50:
		return "Good"
	case chance >= 25:
		return "Moderate"
	case chance >= 10:
		return "Low"
	}
	return "Very Low"
}
