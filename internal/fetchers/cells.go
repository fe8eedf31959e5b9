package fetchers

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Fill values used by SWPC for missing measurements.
var sentinels = []float64{-999, -9999}

// row is one line of an SWPC array-of-arrays product. Cells are strings,
// numbers or null depending on the product and its vintage.
type row []json.RawMessage

// decodeRows decodes an array-of-arrays body. The header row, if any, is
// kept and rejected later because its cells are not numeric.
func decodeRows(body []byte) ([]row, error) {
	var rows []row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// float returns the numeric value of cell i, false when the cell is absent,
// null, empty, non-numeric or a fill value.
func (r row) float(i int) (float64, bool) {
	if i >= len(r) {
		return 0, false
	}
	raw := bytes.TrimSpace(r[i])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}

	var v float64
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	} else if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	for _, s := range sentinels {
		if v == s {
			return 0, false
		}
	}
	return v, true
}

// text returns the string value of cell i, false when absent, null or empty.
func (r row) text(i int) (string, bool) {
	if i >= len(r) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(r[i], &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// floats reads the given columns, false if any of them is missing.
func (r row) floats(cols ...int) ([]float64, bool) {
	out := make([]float64, len(cols))
	for i, c := range cols {
		v, ok := r.float(c)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}
