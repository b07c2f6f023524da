package analysis

import (
	"math"
	"strconv"
	"strings"

	"github.com/stridelab/stepscan/algorithms/timing"
)

// Radar categories follow the StepMania enum: stream, voltage, air,
// freeze and chaos first, the raw note counts from index 5 on.
const (
	radarCategoryCount = 14
	radarCategoryNotes = 5
)

// parseRadarValues reads a #RADARVALUES style row. SSC files store one
// row per player, so splitPlayers doubles the required value count.
// Returns nil when the row is missing, short, or carries garbage in
// the count slots.
func parseRadarValues(raw []byte, splitPlayers bool) []float32 {
	if raw == nil {
		return nil
	}
	cleaned := timing.CleanTimingMap(string(raw))
	if cleaned == "" {
		return nil
	}

	out := make([]float32, radarCategoryCount)
	filled := 0
	total := 0
	for _, part := range strings.Split(cleaned, ",") {
		if part == "" {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			continue
		}
		if filled < radarCategoryCount {
			out[filled] = float32(value)
			filled++
		}
		total++
	}

	needed := radarCategoryCount
	if splitPlayers {
		needed = radarCategoryCount * 2
	}
	if total < needed {
		return nil
	}
	for _, v := range out[radarCategoryNotes:] {
		if math.IsInf(float64(v), 0) || math.IsNaN(float64(v)) || v < 0 {
			return nil
		}
	}
	return out
}
