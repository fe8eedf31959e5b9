package fetchers

import (
	"encoding/json"
	"strconv"
	"strings"

	"aurorawatch/internal/models"
)

// Column layout of the SWPC real-time solar wind products. Extra trailing
// columns are ignored.
const (
	plasmaDensity     = 1
	plasmaSpeed       = 2
	plasmaTemperature = 3

	magBx = 1
	magBy = 2
	magBz = 3
	magBt = 6

	kpValue = 1
)

type plasmaSample struct {
	time        string
	density     float64
	speed       float64
	temperature float64
}

type magSample struct {
	bx, by, bz, bt float64
}

// parsePlasma returns the most recent complete row of plasma-5-minute.json.
func parsePlasma(body []byte) (*plasmaSample, *FetchError) {
	rows, err := decodeRows(body)
	if err != nil {
		return nil, newError(models.SourceSolarWind, KindParse, err)
	}
	for i := len(rows) - 1; i >= 0; i-- {
		t, ok := rows[i].text(0)
		if !ok {
			continue
		}
		v, ok := rows[i].floats(plasmaDensity, plasmaSpeed, plasmaTemperature)
		if !ok {
			continue
		}
		return &plasmaSample{time: t, density: v[0], speed: v[1], temperature: v[2]}, nil
	}
	return nil, missingf(models.SourceSolarWind, "no complete plasma row in %d rows", len(rows))
}

// parseMag returns the most recent complete row of mag-5-minute.json.
func parseMag(body []byte) (*magSample, *FetchError) {
	rows, err := decodeRows(body)
	if err != nil {
		return nil, newError(models.SourceSolarWind, KindParse, err)
	}
	for i := len(rows) - 1; i >= 0; i-- {
		if _, ok := rows[i].text(0); !ok {
			continue
		}
		v, ok := rows[i].floats(magBx, magBy, magBz, magBt)
		if !ok {
			continue
		}
		return &magSample{bx: v[0], by: v[1], bz: v[2], bt: v[3]}, nil
	}
	return nil, missingf(models.SourceSolarWind, "no complete magnetometer row in %d rows", len(rows))
}

// mergeSolarWind combines the plasma and magnetometer halves. The record
// carries the plasma timestamp.
func mergeSolarWind(p *plasmaSample, m *magSample) *models.SolarWindRecord {
	return &models.SolarWindRecord{
		Time:        p.time,
		Speed:       p.speed,
		Density:     p.density,
		Temperature: p.temperature,
		Bt:          m.bt,
		Bz:          m.bz,
		Bx:          m.bx,
		By:          m.by,
	}
}

// parseKpIndex returns the most recent row of noaa-planetary-k-index.json
// whose Kp is within [0,9].
func parseKpIndex(body []byte) (*models.KpIndexRecord, *FetchError) {
	rows, err := decodeRows(body)
	if err != nil {
		return nil, newError(models.SourceKpIndex, KindParse, err)
	}
	for i := len(rows) - 1; i >= 0; i-- {
		t, ok := rows[i].text(0)
		if !ok {
			continue
		}
		kp, ok := rows[i].float(kpValue)
		if !ok || kp < 0 || kp > 9 {
			continue
		}
		return &models.KpIndexRecord{Time: t, Kp: kp}, nil
	}
	return nil, missingf(models.SourceKpIndex, "no valid Kp row in %d rows", len(rows))
}

type scaleValue struct {
	Scale *string `json:"Scale"`
	Text  *string `json:"Text"`
}

type scaleEntry struct {
	DateStamp string      `json:"DateStamp"`
	TimeStamp string      `json:"TimeStamp"`
	R         *scaleValue `json:"R"`
	S         *scaleValue `json:"S"`
	G         *scaleValue `json:"G"`
}

// parseScales reads noaa-scales.json. The object is keyed by day offset;
// "0" is the current observation and positive keys are forecasts.
func parseScales(body []byte) (*models.NoaaScaleRecord, *FetchError) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, newError(models.SourceNoaaScales, KindParse, err)
	}

	key, ok := observedKey(entries)
	if !ok {
		return nil, missingf(models.SourceNoaaScales, "no observed entry among %d keys", len(entries))
	}

	var entry scaleEntry
	if err := json.Unmarshal(entries[key], &entry); err != nil {
		return nil, newError(models.SourceNoaaScales, KindParse, err)
	}

	if entry.G == nil || entry.G.Scale == nil || entry.G.Text == nil {
		return nil, missingf(models.SourceNoaaScales, "entry %q has no G scale", key)
	}
	gScale := strings.TrimSpace(*entry.G.Scale)
	if len(gScale) != 1 || gScale[0] < '0' || gScale[0] > '5' {
		return nil, missingf(models.SourceNoaaScales, "invalid G scale %q", gScale)
	}
	gText := strings.ToLower(strings.TrimSpace(*entry.G.Text))
	if !models.IsGScaleLabel(gText) {
		return nil, missingf(models.SourceNoaaScales, "invalid G text %q", gText)
	}

	if entry.DateStamp == "" {
		return nil, missingf(models.SourceNoaaScales, "entry %q has no DateStamp", key)
	}
	stamp := strings.TrimSpace(entry.DateStamp + " " + entry.TimeStamp)

	record := &models.NoaaScaleRecord{
		Time:   stamp,
		GScale: gScale,
		GText:  gText,
	}
	record.RScale, record.RText = entry.R.values()
	record.SScale, record.SText = entry.S.values()
	return record, nil
}

func (v *scaleValue) values() (string, string) {
	if v == nil {
		return "", ""
	}
	var scale, text string
	if v.Scale != nil {
		scale = *v.Scale
	}
	if v.Text != nil {
		text = *v.Text
	}
	return scale, text
}

// observedKey picks "0" when present, otherwise the greatest key <= 0.
func observedKey(entries map[string]json.RawMessage) (string, bool) {
	if _, ok := entries["0"]; ok {
		return "0", true
	}
	best, found := 0, ""
	for k := range entries {
		n, err := strconv.Atoi(k)
		if err != nil || n > 0 {
			continue
		}
		if found == "" || n > best {
			best, found = n, k
		}
	}
	return found, found != ""
}
