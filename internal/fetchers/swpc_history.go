package fetchers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"aurorawatch/internal/models"
)

const (
	rowTimeLayout      = "2006-01-02 15:04:05.000"
	forecastTimeLayout = "2006-01-02 15:04:05"
	hemiTimeLayout     = "2006-01-02_15:04"
	goesTimeLayout     = "2006-01-02T15:04:05Z"

	// GoesPointsPerSatellite keeps two hours at 1-minute cadence.
	GoesPointsPerSatellite = 120

	forecastKp        = 1
	forecastObserved  = 2
	forecastNoaaScale = 3
)

// parseRowTime parses the time cell of an SWPC array-of-arrays row. Header
// rows fail here and are skipped by callers.
func parseRowTime(r row, layouts ...string) (time.Time, bool) {
	s, ok := r.text(0)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func optional(r row, col int) *float64 {
	v, ok := r.float(col)
	if !ok {
		return nil
	}
	return &v
}

// parseSolarWindHistory joins plasma-2-hour.json and mag-2-hour.json on their
// time tags. A sample present in only one feed keeps nil for the other half.
func parseSolarWindHistory(plasmaBody, magBody []byte) (*models.SolarWindHistory, *FetchError) {
	const source = models.SourceSolarWindHistory

	plasmaRows, err := decodeRows(plasmaBody)
	if err != nil {
		return nil, newError(source, KindParse, err)
	}
	magRows, err := decodeRows(magBody)
	if err != nil {
		return nil, newError(source, KindParse, err)
	}

	points := make(map[time.Time]*models.SolarWindPoint)
	point := func(t time.Time) *models.SolarWindPoint {
		p, ok := points[t]
		if !ok {
			p = &models.SolarWindPoint{Time: t}
			points[t] = p
		}
		return p
	}

	for _, r := range plasmaRows {
		t, ok := parseRowTime(r, rowTimeLayout, forecastTimeLayout)
		if !ok {
			continue
		}
		p := point(t)
		p.Speed = optional(r, plasmaSpeed)
		p.Density = optional(r, plasmaDensity)
	}
	for _, r := range magRows {
		t, ok := parseRowTime(r, rowTimeLayout, forecastTimeLayout)
		if !ok {
			continue
		}
		p := point(t)
		p.Bz = optional(r, magBz)
		p.Bt = optional(r, magBt)
	}

	if len(points) == 0 {
		return nil, missingf(source, "no timestamped rows in %d plasma and %d mag rows", len(plasmaRows), len(magRows))
	}

	history := &models.SolarWindHistory{Points: make([]models.SolarWindPoint, 0, len(points))}
	for _, p := range points {
		history.Points = append(history.Points, *p)
	}
	sort.Slice(history.Points, func(i, j int) bool {
		return history.Points[i].Time.Before(history.Points[j].Time)
	})
	return history, nil
}

// parseHemisphericPower reads aurora-nowcast-hemi-power.txt. Data lines are
// "observation forecast north south"; comment lines start with '#'.
func parseHemisphericPower(body []byte) (*models.HemisphericPower, *FetchError) {
	const source = models.SourceHemisphericPower

	power := &models.HemisphericPower{}
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		t, err := time.Parse(hemiTimeLayout, fields[0])
		if err != nil {
			continue
		}
		north, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			continue
		}
		south, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			continue
		}
		power.Points = append(power.Points, models.PowerPoint{Time: t.UTC(), North: north, South: south})
	}
	if err := scanner.Err(); err != nil {
		return nil, newError(source, KindParse, err)
	}
	if len(power.Points) == 0 {
		return nil, missingf(source, "no hemispheric power rows")
	}

	sort.SliceStable(power.Points, func(i, j int) bool {
		return power.Points[i].Time.Before(power.Points[j].Time)
	})
	return power, nil
}

type goesEntry struct {
	TimeTag   string   `json:"time_tag"`
	Satellite int      `json:"satellite"`
	Hp        *float64 `json:"Hp"`
}

// parseGoesMagnetometer merges the primary and secondary magnetometer feeds
// into one series per satellite, each capped at GoesPointsPerSatellite.
// A nil body is skipped.
func parseGoesMagnetometer(bodies ...[]byte) (*models.GoesMagnetometer, *FetchError) {
	const source = models.SourceGoesMagnetometer

	bySatellite := make(map[int][]models.HpPoint)
	decoded := 0
	var lastErr error
	for _, body := range bodies {
		if body == nil {
			continue
		}
		var entries []goesEntry
		if err := json.Unmarshal(body, &entries); err != nil {
			lastErr = err
			continue
		}
		decoded++
		for _, e := range entries {
			if e.Hp == nil || e.Satellite == 0 {
				continue
			}
			t, err := time.Parse(goesTimeLayout, e.TimeTag)
			if err != nil {
				continue
			}
			bySatellite[e.Satellite] = append(bySatellite[e.Satellite], models.HpPoint{Time: t.UTC(), Hp: *e.Hp})
		}
	}
	if decoded == 0 && lastErr != nil {
		return nil, newError(source, KindParse, lastErr)
	}
	if len(bySatellite) == 0 {
		return nil, missingf(source, "no Hp samples")
	}

	mag := &models.GoesMagnetometer{}
	for sat, points := range bySatellite {
		sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
		if len(points) > GoesPointsPerSatellite {
			points = points[len(points)-GoesPointsPerSatellite:]
		}
		mag.Satellites = append(mag.Satellites, models.GoesSeries{Satellite: sat, Points: points})
	}
	sort.Slice(mag.Satellites, func(i, j int) bool {
		return mag.Satellites[i].Satellite < mag.Satellites[j].Satellite
	})
	return mag, nil
}

// parseKpForecast reads noaa-planetary-k-index-forecast.json, rows of
// [time_tag, kp, observed|estimated|predicted, noaa_scale].
func parseKpForecast(body []byte) (*models.KpForecast, *FetchError) {
	const source = models.SourceKpForecast

	rows, err := decodeRows(body)
	if err != nil {
		return nil, newError(source, KindParse, err)
	}

	forecast := &models.KpForecast{}
	for _, r := range rows {
		t, ok := parseRowTime(r, forecastTimeLayout, rowTimeLayout)
		if !ok {
			continue
		}
		kp, ok := r.float(forecastKp)
		if !ok || kp < 0 || kp > 9 {
			continue
		}
		kind, _ := r.text(forecastObserved)
		scale, _ := r.text(forecastNoaaScale)
		forecast.Entries = append(forecast.Entries, models.KpForecastEntry{
			Time:      t,
			Kp:        kp,
			Observed:  kind == "observed",
			NoaaScale: scale,
		})
	}
	if len(forecast.Entries) == 0 {
		return nil, missingf(source, "no valid Kp forecast row in %d rows", len(rows))
	}

	sort.SliceStable(forecast.Entries, func(i, j int) bool {
		return forecast.Entries[i].Time.Before(forecast.Entries[j].Time)
	})
	return forecast, nil
}
