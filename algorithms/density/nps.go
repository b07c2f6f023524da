package density

import (
	"sort"

	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"

	"github.com/stridelab/stepscan/algorithms/timing"
)

// ComputeMeasureNPSVec converts per-measure densities to notes per
// second using the BPM at each measure start. Gimmick tempos read as
// zero since the player never sees those measures.
func ComputeMeasureNPSVec(densities []int, bpmMap []timing.BPMChange) []float64 {
	out := make([]float64, len(densities))
	for i, d := range densities {
		bpm := timing.GetCurrentBPM(float64(i)*4.0, bpmMap)
		if d == 0 || !timing.IsDisplayBPM(bpm) {
			out[i] = 0
		} else {
			out[i] = float64(d) * bpm / 240.0
		}
	}
	return out
}

// ComputeMeasureNPSVecWithTiming derives each measure's NPS from the
// actual wall-clock span of its four beats, so stops, delays and warps
// are reflected. Spans at or under 120ms read as zero; a warped-over
// measure has no meaningful rate.
func ComputeMeasureNPSVecWithTiming(densities []int, td *timing.Data) []float64 {
	out := make([]float64, len(densities))
	for i, d := range densities {
		beat := float64(i) * 4.0
		start := td.TimeForBeatF32(beat)
		end := td.TimeForBeatF32(beat + 4.0)
		dur := end - start
		if d == 0 || dur <= 0.12 {
			out[i] = 0
		} else {
			out[i] = float64(d) / dur
		}
	}
	return out
}

// median selects the middle element; for even lengths it averages the
// upper median with the greatest value below it.
func median(arr []float64) float64 {
	if len(arr) == 0 {
		return 0
	}
	v := append([]float64(nil), arr...)
	sort.Float64s(v)
	mid := len(v) / 2
	if len(v)%2 == 1 {
		return v[mid]
	}
	return (v[mid-1] + v[mid]) / 2.0
}

// GetNPSStats returns the peak and median of an NPS series. The peak
// never goes below zero.
func GetNPSStats(nps []float64) (maxNPS, medianNPS float64) {
	if len(nps) > 0 {
		maxNPS = floats.Max(nps)
	}
	if maxNPS < 0 {
		maxNPS = 0
	}
	return maxNPS, median(nps)
}

// DefaultSmoothingSpan is the window width, in measures, used for the
// smoothed NPS series emitted alongside the raw one.
const DefaultSmoothingSpan = 5

// SmoothNPSVec applies a Hann-weighted moving average over the NPS
// series, producing the softened curve density graphs are drawn from.
// Span is the full window width in measures; spans under 3 return a
// copy unchanged.
func SmoothNPSVec(nps []float64, span int) []float64 {
	out := append([]float64(nil), nps...)
	if span < 3 || len(nps) < 2 {
		return out
	}
	if span%2 == 0 {
		span++
	}
	w := window.Hann(span)
	half := span / 2
	for i := range nps {
		var sum, wsum float64
		for k := -half; k <= half; k++ {
			j := i + k
			if j < 0 || j >= len(nps) {
				continue
			}
			c := w[k+half]
			sum += nps[j] * c
			wsum += c
		}
		if wsum > 0 {
			out[i] = sum / wsum
		}
	}
	return out
}
