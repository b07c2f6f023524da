// Package matrix rates charts against the stream difficulty matrix: a
// BPM-by-measure-count table interpolated logarithmically between rows,
// extrapolated below its lowest entries, and scaled along its plateau.
package matrix

import (
	"math"

	"github.com/stridelab/stepscan/algorithms/density"
	"github.com/stridelab/stepscan/algorithms/timing"
)

const machineEpsilon = 2.220446049250313e-16

type measureDifficulty struct {
	measures   int
	difficulty int
}

type bpmRow struct {
	bpm     int
	entries []measureDifficulty
}

// difficultyTable holds difficulty per (BPM, stream length in measures),
// sorted ascending on both axes.
var difficultyTable = []bpmRow{
	{80, []measureDifficulty{{8, 7}, {12, 7}, {16, 8}, {24, 8}, {32, 9}, {48, 9}, {64, 9}, {96, 10}, {128, 10}, {192, 10}, {256, 10}, {384, 11}, {512, 11}}},
	{90, []measureDifficulty{{8, 7}, {12, 8}, {16, 8}, {24, 9}, {32, 9}, {48, 9}, {64, 10}, {96, 10}, {128, 11}, {192, 11}, {256, 11}, {384, 12}, {512, 12}}},
	{100, []measureDifficulty{{8, 8}, {12, 8}, {16, 9}, {24, 9}, {32, 10}, {48, 10}, {64, 10}, {96, 11}, {128, 11}, {192, 11}, {256, 11}, {384, 12}, {512, 12}}},
	{110, []measureDifficulty{{8, 8}, {12, 9}, {16, 9}, {24, 10}, {32, 10}, {48, 10}, {64, 11}, {96, 11}, {128, 12}, {192, 12}, {256, 12}, {384, 13}, {512, 13}}},
	{120, []measureDifficulty{{8, 9}, {12, 9}, {16, 10}, {24, 10}, {32, 11}, {48, 11}, {64, 12}, {96, 12}, {128, 12}, {192, 13}, {256, 13}, {384, 13}, {512, 13}}},
	{130, []measureDifficulty{{8, 9}, {12, 10}, {16, 10}, {24, 11}, {32, 11}, {48, 12}, {64, 12}, {96, 13}, {128, 13}, {192, 13}, {256, 14}, {384, 14}, {512, 14}}},
	{140, []measureDifficulty{{8, 10}, {12, 10}, {16, 11}, {24, 11}, {32, 12}, {48, 12}, {64, 13}, {96, 13}, {128, 13}, {192, 14}, {256, 14}, {384, 14}, {512, 15}}},
	{150, []measureDifficulty{{8, 10}, {12, 11}, {16, 11}, {24, 12}, {32, 12}, {48, 13}, {64, 13}, {96, 14}, {128, 14}, {192, 15}, {256, 15}, {384, 15}, {512, 16}}},
	{160, []measureDifficulty{{8, 11}, {12, 11}, {16, 12}, {24, 12}, {32, 12}, {48, 13}, {64, 14}, {96, 14}, {128, 15}, {192, 15}, {256, 16}, {384, 16}, {512, 16}}},
	{170, []measureDifficulty{{8, 11}, {12, 12}, {16, 12}, {24, 13}, {32, 13}, {48, 14}, {64, 14}, {96, 15}, {128, 15}, {192, 16}, {256, 16}, {384, 17}, {512, 17}}},
	{180, []measureDifficulty{{8, 12}, {12, 12}, {16, 13}, {24, 13}, {32, 13}, {48, 14}, {64, 15}, {96, 15}, {128, 16}, {192, 16}, {256, 17}, {384, 17}, {512, 18}}},
	{190, []measureDifficulty{{8, 12}, {12, 13}, {16, 13}, {24, 14}, {32, 14}, {48, 15}, {64, 15}, {96, 16}, {128, 17}, {192, 17}, {256, 18}, {384, 18}, {512, 19}}},
	{200, []measureDifficulty{{8, 13}, {12, 13}, {16, 14}, {24, 14}, {32, 15}, {48, 15}, {64, 16}, {96, 17}, {128, 17}, {192, 18}, {256, 19}, {384, 19}, {512, 20}}},
	{210, []measureDifficulty{{8, 13}, {12, 14}, {16, 14}, {24, 15}, {32, 15}, {48, 16}, {64, 17}, {96, 18}, {128, 18}, {192, 19}, {256, 20}, {384, 20}, {512, 21}}},
	{220, []measureDifficulty{{8, 14}, {12, 14}, {16, 15}, {24, 16}, {32, 16}, {48, 17}, {64, 18}, {96, 19}, {128, 19}, {192, 20}, {256, 21}, {384, 22}, {512, 22}}},
	{230, []measureDifficulty{{8, 14}, {12, 15}, {16, 16}, {24, 16}, {32, 17}, {48, 18}, {64, 19}, {96, 20}, {128, 20}, {192, 21}, {256, 22}, {384, 22}, {512, 23}}},
	{240, []measureDifficulty{{8, 15}, {12, 16}, {16, 16}, {24, 17}, {32, 18}, {48, 19}, {64, 20}, {96, 21}, {128, 22}, {192, 23}, {256, 23}, {384, 24}, {512, 24}}},
	{250, []measureDifficulty{{8, 16}, {12, 17}, {16, 18}, {24, 18}, {32, 19}, {48, 20}, {64, 21}, {96, 22}, {128, 23}, {192, 24}, {256, 24}, {384, 25}, {512, 25}}},
	{260, []measureDifficulty{{8, 17}, {12, 18}, {16, 19}, {24, 19}, {32, 21}, {48, 22}, {64, 23}, {96, 23}, {128, 24}, {192, 25}, {256, 25}, {384, 26}, {512, 26}}},
	{270, []measureDifficulty{{8, 18}, {12, 19}, {16, 20}, {24, 21}, {32, 22}, {48, 23}, {64, 24}, {96, 25}, {128, 25}, {192, 26}, {256, 26}, {384, 27}, {512, 27}}},
	{280, []measureDifficulty{{8, 19}, {12, 20}, {16, 21}, {24, 22}, {32, 23}, {48, 24}, {64, 25}, {96, 26}, {128, 26}, {192, 27}, {256, 27}, {384, 28}, {512, 28}}},
	{290, []measureDifficulty{{8, 20}, {12, 21}, {16, 22}, {24, 23}, {32, 24}, {48, 25}, {64, 26}, {96, 27}, {128, 27}, {192, 28}, {256, 28}, {384, 29}, {512, 29}}},
	{300, []measureDifficulty{{8, 21}, {12, 22}, {16, 23}, {24, 24}, {32, 24}, {48, 25}, {64, 26}, {96, 27}, {128, 28}, {192, 29}, {256, 30}, {384, 30}, {512, 30}}},
	{310, []measureDifficulty{{8, 22}, {12, 23}, {16, 24}, {24, 24}, {32, 25}, {48, 26}, {64, 27}, {96, 28}, {128, 29}, {192, 29}, {256, 30}, {384, 31}, {512, 31}}},
	{320, []measureDifficulty{{8, 22}, {12, 23}, {16, 24}, {24, 25}, {32, 26}, {48, 27}, {64, 28}, {96, 29}, {128, 30}, {192, 30}, {256, 31}, {384, 32}, {512, 32}}},
	{330, []measureDifficulty{{8, 23}, {12, 24}, {16, 25}, {24, 26}, {32, 26}, {48, 28}, {64, 29}, {96, 30}, {128, 31}, {192, 31}, {256, 32}, {384, 32}, {512, 33}}},
	{340, []measureDifficulty{{8, 24}, {12, 25}, {16, 26}, {24, 27}, {32, 27}, {48, 29}, {64, 30}, {96, 31}, {128, 31}, {192, 32}, {256, 32}, {384, 33}, {512, 34}}},
	{350, []measureDifficulty{{8, 25}, {12, 26}, {16, 27}, {24, 28}, {32, 28}, {48, 30}, {64, 30}, {96, 31}, {128, 32}, {192, 33}, {256, 33}, {384, 34}, {512, 35}}},
	{360, []measureDifficulty{{8, 26}, {12, 27}, {16, 27}, {24, 28}, {32, 29}, {48, 30}, {64, 31}, {96, 32}, {128, 33}, {192, 34}, {256, 34}, {384, 35}, {512, 36}}},
	{370, []measureDifficulty{{8, 27}, {12, 28}, {16, 28}, {24, 29}, {32, 30}, {48, 32}, {64, 32}, {96, 33}, {128, 34}, {192, 34}, {256, 35}, {384, 36}, {512, 37}}},
	{380, []measureDifficulty{{8, 28}, {12, 29}, {16, 29}, {24, 30}, {32, 31}, {48, 33}, {64, 34}, {96, 34}, {128, 35}, {192, 36}, {256, 36}, {384, 37}, {512, 38}}},
	{390, []measureDifficulty{{8, 29}, {12, 30}, {16, 31}, {24, 32}, {32, 33}, {48, 34}, {64, 35}, {96, 35}, {128, 36}, {192, 37}, {256, 37}, {384, 38}, {512, 39}}},
	{400, []measureDifficulty{{8, 30}, {12, 31}, {16, 32}, {24, 33}, {32, 34}, {48, 35}, {64, 36}, {96, 37}, {128, 37}, {192, 38}, {256, 39}, {384, 39}, {512, 40}}},
	{410, []measureDifficulty{{8, 31}, {12, 32}, {16, 33}, {24, 34}, {32, 35}, {48, 36}, {64, 37}, {96, 38}, {128, 38}, {192, 39}, {256, 40}, {384, 40}, {512, 41}}},
	{420, []measureDifficulty{{8, 32}, {12, 33}, {16, 34}, {24, 35}, {32, 36}, {48, 37}, {64, 38}, {96, 39}, {128, 39}, {192, 40}, {256, 41}, {384, 42}, {512, 42}}},
	{430, []measureDifficulty{{8, 33}, {12, 34}, {16, 35}, {24, 36}, {32, 37}, {48, 38}, {64, 39}, {96, 39}, {128, 40}, {192, 41}, {256, 42}, {384, 43}, {512, 43}}},
	{440, []measureDifficulty{{8, 34}, {12, 35}, {16, 36}, {24, 37}, {32, 38}, {48, 39}, {64, 40}, {96, 40}, {128, 41}, {192, 42}, {256, 43}, {384, 44}, {512, 44}}},
	{450, []measureDifficulty{{8, 35}, {12, 36}, {16, 37}, {24, 38}, {32, 39}, {48, 40}, {64, 40}, {96, 41}, {128, 42}, {192, 43}, {256, 44}, {384, 45}, {512, 45}}},
	{460, []measureDifficulty{{8, 36}, {12, 37}, {16, 38}, {24, 39}, {32, 40}, {48, 41}, {64, 41}, {96, 42}, {128, 43}, {192, 44}, {256, 45}, {384, 46}, {512, 46}}},
	{470, []measureDifficulty{{8, 37}, {12, 38}, {16, 39}, {24, 40}, {32, 41}, {48, 42}, {64, 42}, {96, 43}, {128, 44}, {192, 45}, {256, 46}, {384, 47}, {512, 47}}},
	{480, []measureDifficulty{{8, 38}, {12, 39}, {16, 40}, {24, 41}, {32, 42}, {48, 43}, {64, 43}, {96, 44}, {128, 45}, {192, 46}, {256, 47}, {384, 48}, {512, 48}}},
	{490, []measureDifficulty{{8, 39}, {12, 40}, {16, 41}, {24, 42}, {32, 43}, {48, 44}, {64, 44}, {96, 45}, {128, 46}, {192, 47}, {256, 48}, {384, 49}, {512, 49}}},
	{500, []measureDifficulty{{8, 40}, {12, 41}, {16, 42}, {24, 43}, {32, 44}, {48, 45}, {64, 45}, {96, 46}, {128, 47}, {192, 48}, {256, 49}, {384, 50}, {512, 50}}},
}

func findLowerBound(measures float64, row []measureDifficulty) (float64, float64) {
	for i := len(row) - 1; i >= 0; i-- {
		if float64(row[i].measures) <= measures {
			return float64(row[i].measures), float64(row[i].difficulty)
		}
	}
	return 0, 0
}

func findRangeStart(baseDifficulty float64, row []measureDifficulty) float64 {
	for _, e := range row {
		if float64(e.difficulty) == baseDifficulty {
			return float64(e.measures)
		}
	}
	return 0
}

func findRangeEnd(rangeStartM, baseDifficulty float64, row []measureDifficulty) float64 {
	for _, e := range row {
		if float64(e.measures) > rangeStartM && float64(e.difficulty) > baseDifficulty {
			return float64(e.measures)
		}
	}
	return math.Inf(1)
}

// Below the table, difficulty falls off logarithmically toward zero.
func extrapolateDownward(measures, minMeasureKey, minDifficulty float64) float64 {
	adjustment := math.Log(minMeasureKey / measures)
	return math.Max(minDifficulty-adjustment, 0)
}

func interpolateLog(measures, rangeStartM, rangeEndM, baseDifficulty float64) float64 {
	if measures <= rangeStartM {
		return baseDifficulty
	}
	logProgress := (math.Log(measures) - math.Log(rangeStartM)) / (math.Log(rangeEndM) - math.Log(rangeStartM))
	return baseDifficulty + logProgress
}

// Past the table's last rated length, difficulty keeps growing with the
// log of the overshoot.
func scalePlateau(measures, plateauStartM, baseDifficulty float64) float64 {
	if measures <= plateauStartM {
		return baseDifficulty
	}
	return baseDifficulty + math.Log(measures/plateauStartM)
}

func calculateDifficultyForBPM(measures float64, row []measureDifficulty) float64 {
	if measures <= 0 || len(row) == 0 {
		return 0
	}

	minMeasureKey := float64(row[0].measures)
	if measures < minMeasureKey {
		return extrapolateDownward(measures, minMeasureKey, float64(row[0].difficulty))
	}

	_, baseDifficulty := findLowerBound(measures, row)

	maxDiffInRow := 0.0
	for _, e := range row {
		if float64(e.difficulty) > maxDiffInRow {
			maxDiffInRow = float64(e.difficulty)
		}
	}

	if math.Abs(baseDifficulty-maxDiffInRow) < machineEpsilon {
		plateauStartM := findRangeStart(maxDiffInRow, row)
		return scalePlateau(measures, plateauStartM, baseDifficulty)
	}
	rangeStartM := findRangeStart(baseDifficulty, row)
	rangeEndM := findRangeEnd(rangeStartM, baseDifficulty, row)
	return interpolateLog(measures, rangeStartM, rangeEndM, baseDifficulty)
}

func rowForBPM(bpm int) []measureDifficulty {
	for _, r := range difficultyTable {
		if r.bpm == bpm {
			return r.entries
		}
	}
	return nil
}

func findBoundingBPMs(bpm float64) (int, int) {
	n := len(difficultyTable)
	maxBPM := difficultyTable[n-1].bpm
	if bpm > float64(maxBPM) {
		return difficultyTable[n-2].bpm, maxBPM
	}
	minBPM := difficultyTable[0].bpm
	if bpm < float64(minBPM) {
		return minBPM, difficultyTable[1].bpm
	}

	bpmI := int(bpm)
	bpm1, bpm2 := 0, -1
	for _, r := range difficultyTable {
		if r.bpm <= bpmI {
			bpm1 = r.bpm
		}
		if r.bpm >= bpmI && bpm2 < 0 {
			bpm2 = r.bpm
		}
	}
	if bpm2 < 0 {
		bpm2 = bpm1
	}
	return bpm1, bpm2
}

// GetDifficulty rates a stream of the given length at the given tempo,
// interpolating linearly between the bounding BPM rows.
func GetDifficulty(bpm, measures float64) float64 {
	bpm1, bpm2 := findBoundingBPMs(bpm)

	diffAtBPM1 := calculateDifficultyForBPM(measures, rowForBPM(bpm1))
	if bpm1 == bpm2 {
		return diffAtBPM1
	}
	diffAtBPM2 := calculateDifficultyForBPM(measures, rowForBPM(bpm2))

	bpmRange := float64(bpm2 - bpm1)
	if bpmRange == 0 {
		return diffAtBPM1
	}
	progress := (bpm - float64(bpm1)) / bpmRange
	return diffAtBPM1 + (diffAtBPM2-diffAtBPM1)*progress
}

// densityMultiplier converts a run bucket to its effective-BPM factor.
// A 24ths run at 200 BPM works the feet like 16ths at 300.
func densityMultiplier(cat density.RunDensity) float64 {
	switch cat {
	case density.Run16:
		return 1.0
	case density.Run20:
		return 1.25
	case density.Run24:
		return 1.5
	case density.Run32:
		return 2.0
	}
	return 0
}

// ComputeMatrixRating rates the chart by its hardest stream block:
// stream measures are grouped by bucket and tempo, and the best table
// rating across groups wins.
func ComputeMatrixRating(measureDensities []int, bpmMap []timing.BPMChange) float64 {
	if len(measureDensities) == 0 || len(bpmMap) == 0 {
		return 0
	}

	type streamKey struct {
		cat     density.RunDensity
		bpmBits uint64
	}
	streamCounts := make(map[streamKey]int)

	for i, d := range measureDensities {
		cat := density.Categorize(d)
		if cat == density.Break {
			continue
		}
		bpm := timing.GetCurrentBPM(float64(i)*4.0, bpmMap)
		if bpm <= 0 {
			continue
		}
		streamCounts[streamKey{cat, math.Float64bits(bpm)}]++
	}

	best := 0.0
	for key, count := range streamCounts {
		bpm := math.Float64frombits(key.bpmBits)
		effectiveBPM := bpm * densityMultiplier(key.cat)
		if effectiveBPM <= 0 {
			continue
		}
		if r := GetDifficulty(effectiveBPM, float64(count)); r > best {
			best = r
		}
	}
	return best
}

// ComputeTierBPM finds the peak effective tempo over stream sequences
// of four measures or more, expressed as density*BPM/16. Charts with no
// qualifying run fall back to their highest display BPM.
func ComputeTierBPM(measureDensities []int, bpmMap []timing.BPMChange, beatsPerMeasure float64) float64 {
	maxBPM := math.Inf(-1)
	for _, c := range bpmMap {
		if timing.IsDisplayBPM(c.BPM) && c.BPM > maxBPM {
			maxBPM = c.BPM
		}
	}
	if math.IsInf(maxBPM, 0) {
		maxBPM = math.Inf(-1)
		for _, c := range bpmMap {
			if c.BPM > maxBPM {
				maxBPM = c.BPM
			}
		}
	}

	cats := make([]density.RunDensity, len(measureDensities))
	for i, d := range measureDensities {
		cats[i] = density.Categorize(d)
	}

	maxE := 0.0
	i := 0
	for i < len(cats) {
		cat := cats[i]
		if cat == density.Break {
			i++
			continue
		}
		j := i
		for j < len(cats) && cats[j] == cat {
			j++
		}
		if j-i >= 4 {
			for k := i; k < j; k++ {
				beat := float64(k) * beatsPerMeasure
				bpmK := timing.GetCurrentBPM(beat, bpmMap)
				if timing.IsDisplayBPM(bpmK) {
					if e := float64(measureDensities[k]) * bpmK / 16.0; e > maxE {
						maxE = e
					}
				}
			}
		}
		i = j
	}

	if maxE > 0 {
		return maxE
	}
	return maxBPM
}
