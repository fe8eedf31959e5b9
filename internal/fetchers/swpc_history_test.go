package fetchers

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

const hemiPowerFixture = `# Product: Aurora Nowcast Hemispheric Power
# Units: GigaWatts
#
# Observation  Forecast   North-Hemispheric-Power  South-Hemispheric-Power
#
2024-09-01_12:05 2024-09-01_12:40    24    19
2024-09-01_12:00 2024-09-01_12:35    21    18
not-a-time 2024-09-01_12:35    21    18
2024-09-01_12:10 2024-09-01_12:45    n/a    18
`

const goesPrimaryFixture = `[
	{"time_tag":"2024-09-01T12:01:00Z","satellite":18,"He":10.2,"Hp":96.4,"Hn":-4.1,"total":97.1,"arcjet_flag":false},
	{"time_tag":"2024-09-01T12:00:00Z","satellite":18,"He":10.1,"Hp":95.8,"Hn":-4.0,"total":96.5,"arcjet_flag":false},
	{"time_tag":"2024-09-01T12:02:00Z","satellite":18,"He":10.3,"Hp":null,"Hn":-4.2,"total":97.0,"arcjet_flag":false}
]`

const goesSecondaryFixture = `[
	{"time_tag":"2024-09-01T12:00:00Z","satellite":16,"He":8.7,"Hp":88.2,"Hn":-2.0,"total":88.7,"arcjet_flag":false}
]`

const kpForecastFixture = `[
	["time_tag","kp","observed","noaa_scale"],
	["2024-09-01 03:00:00","2.67","observed",null],
	["2024-09-01 00:00:00","2.00","observed",null],
	["2024-09-01 06:00:00","5.33","estimated","G1"],
	["2024-09-01 09:00:00","12","predicted",null],
	["2024-09-01 12:00:00","4.33","predicted",null]
]`

func TestParseSolarWindHistoryJoinsOnTime(t *testing.T) {
	h, ferr := parseSolarWindHistory([]byte(plasmaFixture), []byte(magFixture))
	if ferr != nil {
		t.Fatalf("Unexpected error: %v", ferr)
	}
	if len(h.Points) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(h.Points))
	}

	first, last := h.Points[0], h.Points[2]
	if !first.Time.Equal(time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected points sorted oldest first, got %v", first.Time)
	}
	if first.Speed == nil || *first.Speed != 448.1 || first.Bz != nil {
		t.Errorf("Expected plasma-only first point, got %+v", first)
	}
	if last.Density != nil {
		t.Errorf("Expected a null density to stay nil, got %v", *last.Density)
	}
	if last.Bz == nil || *last.Bz != -2.6 || last.Bt == nil || *last.Bt != 4.6 {
		t.Errorf("Unexpected mag half of last point: %+v", last)
	}
}

func TestParseSolarWindHistoryErrors(t *testing.T) {
	header := `[["time_tag","density","speed","temperature"]]`
	if _, ferr := parseSolarWindHistory([]byte(header), []byte(header)); ferr == nil || ferr.Kind != KindMissing {
		t.Errorf("Expected missing for header-only feeds, got %v", ferr)
	}
	if _, ferr := parseSolarWindHistory([]byte(plasmaFixture), []byte("<html>")); ferr == nil || ferr.Kind != KindParse {
		t.Errorf("Expected parse error, got %v", ferr)
	}
}

func TestParseHemisphericPower(t *testing.T) {
	p, ferr := parseHemisphericPower([]byte(hemiPowerFixture))
	if ferr != nil {
		t.Fatalf("Unexpected error: %v", ferr)
	}
	if len(p.Points) != 2 {
		t.Fatalf("Expected 2 valid rows, got %+v", p.Points)
	}
	if p.Points[0].North != 21 || p.Points[1].North != 24 || p.Points[1].South != 19 {
		t.Errorf("Unexpected points %+v", p.Points)
	}

	if _, ferr := parseHemisphericPower([]byte("# only comments\n")); ferr == nil || ferr.Kind != KindMissing {
		t.Errorf("Expected missing for a comment-only body, got %v", ferr)
	}
}

func TestParseGoesMagnetometer(t *testing.T) {
	g, ferr := parseGoesMagnetometer([]byte(goesPrimaryFixture), []byte(goesSecondaryFixture))
	if ferr != nil {
		t.Fatalf("Unexpected error: %v", ferr)
	}
	if len(g.Satellites) != 2 || g.Satellites[0].Satellite != 16 || g.Satellites[1].Satellite != 18 {
		t.Fatalf("Expected satellites 16 and 18, got %+v", g.Satellites)
	}
	goes18 := g.Satellites[1].Points
	if len(goes18) != 2 || goes18[0].Hp != 95.8 || goes18[1].Hp != 96.4 {
		t.Errorf("Expected two sorted Hp samples, got %+v", goes18)
	}
}

func TestParseGoesMagnetometerToleratesOneFeed(t *testing.T) {
	g, ferr := parseGoesMagnetometer(nil, []byte(goesSecondaryFixture))
	if ferr != nil {
		t.Fatalf("Unexpected error: %v", ferr)
	}
	if len(g.Satellites) != 1 || g.Satellites[0].Satellite != 16 {
		t.Errorf("Unexpected satellites %+v", g.Satellites)
	}

	g, ferr = parseGoesMagnetometer([]byte("not json"), []byte(goesSecondaryFixture))
	if ferr != nil || len(g.Satellites) != 1 {
		t.Errorf("Expected the decodable feed to be used, got %+v %v", g, ferr)
	}

	if _, ferr := parseGoesMagnetometer([]byte("not json"), nil); ferr == nil || ferr.Kind != KindParse {
		t.Errorf("Expected parse error, got %v", ferr)
	}
	if _, ferr := parseGoesMagnetometer([]byte("[]"), nil); ferr == nil || ferr.Kind != KindMissing {
		t.Errorf("Expected missing, got %v", ferr)
	}
}

func TestParseGoesMagnetometerCapsSeries(t *testing.T) {
	var b strings.Builder
	b.WriteString("[")
	start := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < GoesPointsPerSatellite+30; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"time_tag":%q,"satellite":18,"Hp":%d}`, start.Add(time.Duration(i)*time.Minute).Format(goesTimeLayout), i)
	}
	b.WriteString("]")

	g, ferr := parseGoesMagnetometer([]byte(b.String()))
	if ferr != nil {
		t.Fatalf("Unexpected error: %v", ferr)
	}
	points := g.Satellites[0].Points
	if len(points) != GoesPointsPerSatellite {
		t.Fatalf("Expected %d points, got %d", GoesPointsPerSatellite, len(points))
	}
	if points[0].Hp != 30 || points[len(points)-1].Hp != float64(GoesPointsPerSatellite+29) {
		t.Errorf("Expected the newest samples to be kept, got %v..%v", points[0].Hp, points[len(points)-1].Hp)
	}
}

func TestParseKpForecast(t *testing.T) {
	f, ferr := parseKpForecast([]byte(kpForecastFixture))
	if ferr != nil {
		t.Fatalf("Unexpected error: %v", ferr)
	}
	if len(f.Entries) != 4 {
		t.Fatalf("Expected 4 valid entries, got %+v", f.Entries)
	}
	if f.Entries[0].Kp != 2.0 || !f.Entries[0].Observed {
		t.Errorf("Expected sorted observed first entry, got %+v", f.Entries[0])
	}
	if e := f.Entries[2]; e.Observed || e.NoaaScale != "G1" || e.Kp != 5.33 {
		t.Errorf("Unexpected estimated entry %+v", e)
	}

	if _, ferr := parseKpForecast([]byte(`[["time_tag","kp","observed","noaa_scale"]]`)); ferr == nil || ferr.Kind != KindMissing {
		t.Errorf("Expected missing for a header-only forecast, got %v", ferr)
	}
	if _, ferr := parseKpForecast([]byte(`{}`)); ferr == nil || ferr.Kind != KindParse {
		t.Errorf("Expected parse error, got %v", ferr)
	}
}
