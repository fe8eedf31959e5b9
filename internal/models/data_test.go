package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestAuroraSnapshotJSONFieldNames(t *testing.T) {
	testTime := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

	snapshot := AuroraSnapshot{
		SolarWind: &SolarWindRecord{
			Time:        "2025-10-01 11:55:00.000",
			Speed:       450.2,
			Density:     7.04,
			Temperature: 98000,
			Bt:          6.1,
			Bz:          -2.5,
			Bx:          1.2,
			By:          -3.4,
		},
		KpIndex: &KpIndexRecord{Time: "2025-10-01 09:00:00.000", Kp: 3.33},
		NoaaScales: &NoaaScaleRecord{
			Time:   "2025-10-01 12:00:00",
			GScale: "0",
			GText:  "none",
		},
		AuroraLikelihood: "Low to Moderate - Possible at high latitudes",
		ConditionStatus:  ConditionFair,
		Timestamp:        testTime,
	}

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("Failed to marshal snapshot: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(jsonData, &raw); err != nil {
		t.Fatalf("Failed to unmarshal snapshot: %v", err)
	}

	for _, key := range []string{"solar_wind", "kp_index", "noaa_scales", "aurora_likelihood", "condition_status", "timestamp"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("Expected top-level key %q in %s", key, string(jsonData))
		}
	}

	solarWind, ok := raw["solar_wind"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected solar_wind to be an object, got %T", raw["solar_wind"])
	}
	for _, key := range []string{"time", "speed", "density", "temperature", "bt", "bz", "bx", "by"} {
		if _, ok := solarWind[key]; !ok {
			t.Errorf("Expected solar_wind.%s to be present", key)
		}
	}

	scales := raw["noaa_scales"].(map[string]interface{})
	if scales["g_scale"] != "0" || scales["g_text"] != "none" {
		t.Errorf("Unexpected noaa_scales: %v", scales)
	}
	if _, ok := scales["r_scale"]; ok {
		t.Error("Expected empty r_scale to be omitted")
	}
}

func TestAuroraSnapshotAbsentRecordsAreNull(t *testing.T) {
	jsonData, err := json.Marshal(AuroraSnapshot{ConditionStatus: ConditionPoor})
	if err != nil {
		t.Fatalf("Failed to marshal snapshot: %v", err)
	}

	body := string(jsonData)
	for _, fragment := range []string{`"solar_wind":null`, `"kp_index":null`, `"noaa_scales":null`} {
		if !strings.Contains(body, fragment) {
			t.Errorf("Expected %s in %s", fragment, body)
		}
	}
}

func TestConditionStatusRank(t *testing.T) {
	ordered := []ConditionStatus{ConditionPoor, ConditionFair, ConditionGood, ConditionExcellent}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Rank() >= ordered[i].Rank() {
			t.Errorf("Expected %s to rank below %s", ordered[i-1], ordered[i])
		}
	}

	if ConditionStatus("Unknown").Rank() >= ConditionPoor.Rank() {
		t.Error("Expected unknown status to rank below Poor")
	}
}

func TestIsGScaleLabel(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"none", true},
		{"minor", true},
		{"extreme", true},
		{"Extreme", false},
		{"", false},
		{"G3", false},
	}

	for _, tt := range tests {
		if got := IsGScaleLabel(tt.text); got != tt.want {
			t.Errorf("IsGScaleLabel(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
