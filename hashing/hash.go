// Package hashing derives the 16-character chart identity hashes. The
// digest covers the minimized note bytes followed by the normalized BPM
// string, so two charts agree exactly when their judged content and
// tempo map agree.
package hashing

import (
	"crypto/sha1"
	"encoding/hex"
)

// TempoNeutralBPMs substitutes for the BPM string when the identity
// should survive rate changes.
const TempoNeutralBPMs = "0.000=0.000"

// ComputeChartHash returns the first eight digest bytes of
// SHA-1(minimizedChart || normalizedBPMs) as lowercase hex.
func ComputeChartHash(minimizedChart []byte, normalizedBPMs string) string {
	h := sha1.New()
	h.Write(minimizedChart)
	h.Write([]byte(normalizedBPMs))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}

// ComputeTempoNeutralHash hashes the chart with a fixed BPM string so
// rate-changed copies of a chart share an identity.
func ComputeTempoNeutralHash(minimizedChart []byte) string {
	return ComputeChartHash(minimizedChart, TempoNeutralBPMs)
}
