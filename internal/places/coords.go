package places

import (
	"math"
	"strconv"
	"strings"
)

// Candidate column names per axis, highest priority first. The resolver
// scans left to right and the first candidate that is present and
// numerically parseable wins.
var (
	LatCandidates = []string{
		"lat",
		"geometry.location.lat",
		"geometry.lat",
		"location.lat",
		"coordinates.lat",
		"latitude",
	}
	LonCandidates = []string{
		"lon",
		"lng",
		"geometry.location.lng",
		"geometry.lng",
		"location.lng",
		"coordinates.lng",
		"longitude",
	}
)

// ResolveCoordinates sets the canonical "lat" and "lon" columns on the
// row from the candidate lists. Non-numeric candidates count as missing.
// A row where no candidate resolves gets the axis set to the missing
// marker. No rows are rejected here; the validity filter is a separate
// predicate so callers can build the unfiltered variant.
func ResolveCoordinates(r Row) {
	lat, latOK := firstNumeric(r, LatCandidates)
	lon, lonOK := firstNumeric(r, LonCandidates)

	if latOK {
		r["lat"] = lat
	} else {
		delete(r, "lat")
	}
	if lonOK {
		r["lon"] = lon
	} else {
		delete(r, "lon")
	}
}

// ValidCoordinates reports whether the row's canonical lat/lon are both
// present, finite, and within -90..90 / -180..180.
func ValidCoordinates(r Row) bool {
	lat, latOK := numericValue(r["lat"])
	lon, lonOK := numericValue(r["lon"])
	if !latOK || !lonOK {
		return false
	}
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// firstNumeric returns the first candidate that is present and coerces
// to a number.
func firstNumeric(r Row, candidates []string) (float64, bool) {
	for _, c := range candidates {
		v, ok := r[c]
		if !ok {
			continue
		}
		if f, ok := numericValue(v); ok {
			return f, true
		}
	}
	return 0, false
}

// numericValue coerces a cell to float64. Strings are parsed after
// trimming; anything else non-numeric is treated as missing.
func numericValue(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
