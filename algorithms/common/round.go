package common

import (
	"math"
	"strconv"
)

var pow10 = [...]float64{
	1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9,
	1e10, 1e11, 1e12, 1e13, 1e14, 1e15, 1e16, 1e17, 1e18,
}

// RoundDP rounds to dp decimal places with ties-to-even.
func RoundDP(value float64, dp int) float64 {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return value
	}
	var scale float64
	if dp >= 0 && dp < len(pow10) {
		scale = pow10[dp]
	} else {
		scale = math.Pow(10, float64(dp))
	}
	return math.RoundToEven(value*scale) / scale
}

// RoundSigFigs6 rounds to six significant figures by formatting through
// scientific notation, matching display-value equality semantics.
func RoundSigFigs6(value float64) float64 {
	if value == 0 || math.IsInf(value, 0) || math.IsNaN(value) {
		return value
	}
	formatted := strconv.FormatFloat(value, 'e', 5, 64)
	parsed, err := strconv.ParseFloat(formatted, 64)
	if err != nil {
		return value
	}
	return parsed
}

// RoundSigFigsITG is the float32-roundtripped variant used where the
// game engine stores the value in single precision.
func RoundSigFigsITG(value float64) float64 {
	if value == 0 || math.IsInf(value, 0) || math.IsNaN(value) {
		return value
	}
	return RoundSigFigs6(float64(float32(value)))
}

// FmtDec3ITG formats with three decimals after a float32 round trip.
// Rounding happens in single precision, half away from zero.
func FmtDec3ITG(value float64) string {
	scaled := float32(value) * 1000
	v := float32(math.Round(float64(scaled))) / 1000
	return strconv.FormatFloat(float64(v), 'f', 3, 32)
}

// FmtDec3HalfUp formats with three decimals rounding halves upward,
// which is how the game engine serializes timing maps.
func FmtDec3HalfUp(value float64) string {
	v := math.Floor(value*1000+0.5) / 1000
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// LrintF64 rounds to the nearest integer value with ties-to-even.
func LrintF64(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return math.RoundToEven(v)
}

// LrintF32 is the single-precision variant of LrintF64.
func LrintF32(v float32) int32 {
	f := float64(v)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return int32(math.RoundToEven(f))
}

// RoundtripBPMITG reproduces the precision loss of storing a BPM as
// beats-per-second in single precision.
func RoundtripBPMITG(bpm float64) float64 {
	f := float32(bpm)
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return 0
	}
	return float64(f / 60.0 * 60.0)
}
