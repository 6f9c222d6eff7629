package vitals

import (
	"math"
	"strconv"
	"strings"
)

// Clinical intake fields are free text. Every parser here is total: it
// returns a value plus an ok flag and never fails a caller on bad input.

// ParseBloodPressure decomposes "<systolic>/<diastolic>". Anything else,
// including a missing separator or extra segments, yields (0, 0, false).
func ParseBloodPressure(raw string) (systolic, diastolic int, ok bool) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 2 {
		return 0, 0, false
	}
	sys, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	dia, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return sys, dia, true
}

// ParseInt reads a whole-number reading such as pulse. Empty or
// non-numeric input yields (0, false).
func ParseInt(raw string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseFloat reads a decimal reading such as temperature or weight. Empty,
// non-numeric and non-finite input yields (0, false).
func ParseFloat(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
