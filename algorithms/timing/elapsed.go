package timing

import (
	"math"
	"sort"
	"strings"

	"github.com/stridelab/stepscan/algorithms/common"
)

// GetElapsedTime computes the cumulative time to reach a target beat from
// flat beat/value maps, without building a full Data model. It mirrors the
// game engine's elapsed-time walk: beats advance time at the current BPM,
// warps skip beats instantly, stops and delays add time without advancing.
func GetElapsedTime(targetBeat float64, bpmMap []BPMChange, stopMap, delayMap, warpMap [][2]float64) float64 {
	type event struct {
		beat     float64
		priority int
		value    float64
	}
	events := make([]event, 0, len(bpmMap)+len(stopMap)+len(delayMap)+len(warpMap))
	for _, c := range bpmMap {
		events = append(events, event{c.Beat, 0, c.BPM})
	}
	for _, s := range stopMap {
		events = append(events, event{s[0], 1, s[1]})
	}
	for _, d := range delayMap {
		events = append(events, event{d[0], 1, d[1]})
	}
	for _, w := range warpMap {
		events = append(events, event{w[0], 2, w[1]})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].beat != events[j].beat {
			return events[i].beat < events[j].beat
		}
		return events[i].priority < events[j].priority
	})

	currentTime := 0.0
	currentBeat := 0.0
	currentBPM := 120.0
	if len(bpmMap) > 0 && bpmMap[0].Beat <= 0 {
		currentBPM = bpmMap[0].BPM
	}
	warpEndBeat := 0.0

	for _, ev := range events {
		if ev.beat > targetBeat && warpEndBeat <= targetBeat {
			break
		}
		if ev.beat > currentBeat {
			effectiveStart := math.Max(currentBeat, warpEndBeat)
			if ev.beat > effectiveStart && currentBPM > 0 {
				currentTime += (ev.beat - effectiveStart) * (60.0 / currentBPM)
			}
			currentBeat = ev.beat
		}
		switch ev.priority {
		case 0:
			currentBPM = ev.value
		case 1:
			currentTime += ev.value
		case 2:
			if end := ev.beat + ev.value; end > warpEndBeat {
				warpEndBeat = end
			}
		}
	}

	effectiveStart := math.Max(currentBeat, warpEndBeat)
	if targetBeat > effectiveStart && currentBPM > 0 {
		currentTime += (targetBeat - effectiveStart) * (60.0 / currentBPM)
	}
	return currentTime
}

// ComputeLastBeat finds the beat of the last playable object (tap, hold
// head, hold tail, roll head) in minimized note data. Measures are four
// beats with rows evenly divided.
func ComputeLastBeat(minimized []byte, lanes int) float64 {
	if lanes < 1 {
		lanes = 1
	}
	var rowsPerMeasure []int
	currentRows := 0
	lastMeasureIdx := -1
	lastRowInMeasure := 0

	for _, line := range splitLines(minimized) {
		if len(line) == 0 {
			continue
		}
		if line[0] == ',' {
			rowsPerMeasure = append(rowsPerMeasure, currentRows)
			currentRows = 0
			continue
		}
		if len(line) >= lanes {
			hasObject := false
			for _, b := range line[:lanes] {
				if b == '1' || b == '2' || b == '3' || b == '4' {
					hasObject = true
					break
				}
			}
			if hasObject {
				lastMeasureIdx = len(rowsPerMeasure)
				lastRowInMeasure = currentRows
			}
			currentRows++
		}
	}
	rowsPerMeasure = append(rowsPerMeasure, currentRows)

	if lastMeasureIdx < 0 {
		return 0
	}
	totalRows := 1
	if lastMeasureIdx < len(rowsPerMeasure) && rowsPerMeasure[lastMeasureIdx] > 1 {
		totalRows = rowsPerMeasure[lastMeasureIdx]
	}
	beatsIntoMeasure := 4.0 * (float64(lastRowInMeasure) / float64(totalRows))
	return float64(lastMeasureIdx)*4.0 + beatsIntoMeasure
}

// ComputeTotalChartLength returns the whole seconds, rounded down, from
// beat 0 to the last playable object.
func ComputeTotalChartLength(minimized []byte, lanes int, bpmMap []BPMChange, stopMap, delayMap, warpMap [][2]float64) int {
	targetBeat := ComputeLastBeat(minimized, lanes)
	if targetBeat <= 0 || len(bpmMap) == 0 {
		return 0
	}
	return int(math.Floor(GetElapsedTime(targetBeat, bpmMap, stopMap, delayMap, warpMap)))
}

// ComputeMinesNonfake counts mines outside warp and fake ranges.
func ComputeMinesNonfake(minimized []byte, lanes int, warpMap, fakeMap [][2]float64) uint32 {
	if lanes < 1 {
		lanes = 1
	}
	type rowInfo struct {
		measureIdx   int
		rowInMeasure int
		isMine       bool
	}
	var rows []rowInfo
	var rowsPerMeasure []int
	currentRows := 0
	measureIdx := 0
	rowInMeasure := 0

	for _, line := range splitLines(minimized) {
		if len(line) == 0 {
			continue
		}
		if line[0] == ',' {
			rowsPerMeasure = append(rowsPerMeasure, currentRows)
			measureIdx++
			currentRows = 0
			rowInMeasure = 0
			continue
		}
		if len(line) < lanes {
			continue
		}
		isMine := false
		for _, b := range line[:lanes] {
			if b == 'M' || b == 'm' {
				isMine = true
				break
			}
		}
		rows = append(rows, rowInfo{measureIdx, rowInMeasure, isMine})
		currentRows++
		rowInMeasure++
	}
	rowsPerMeasure = append(rowsPerMeasure, currentRows)

	if len(rows) == 0 {
		return 0
	}

	activeAt := func(beat float64, segments [][2]float64) bool {
		if len(segments) == 0 {
			return false
		}
		idx := sort.Search(len(segments), func(i int) bool { return segments[i][0] > beat })
		if idx == 0 {
			return false
		}
		start, length := segments[idx-1][0], segments[idx-1][1]
		if !isFinite(length) || length <= 0 {
			return false
		}
		return beat >= start && beat < start+length
	}

	var count uint32
	for _, info := range rows {
		if !info.isMine {
			continue
		}
		totalRows := 1
		if info.measureIdx < len(rowsPerMeasure) && rowsPerMeasure[info.measureIdx] > 1 {
			totalRows = rowsPerMeasure[info.measureIdx]
		}
		beat := float64(info.measureIdx)*4.0 + 4.0*(float64(info.rowInMeasure)/float64(totalRows))
		if !activeAt(beat, warpMap) && !activeAt(beat, fakeMap) {
			count++
		}
	}
	return count
}

// FormatBPMSegmentsLikeITG renders beat/BPM pairs the way the game's
// editor would save them, with beats quantized to note rows and both
// numbers at three decimals through single precision.
func FormatBPMSegmentsLikeITG(bpms []BPMChange) string {
	var sb strings.Builder
	for i, c := range bpms {
		if i > 0 {
			sb.WriteByte(',')
		}
		beat := float64(noteRowToBeatF32(BeatToNoteRowF32(float32(c.Beat))))
		sb.WriteString(common.FmtDec3ITG(beat))
		sb.WriteByte('=')
		sb.WriteString(common.FmtDec3ITG(common.RoundtripBPMITG(c.BPM)))
	}
	return sb.String()
}

// NormalizeSpeedsLikeITG supplies the engine's implicit base segment when
// the list is empty.
func NormalizeSpeedsLikeITG(speeds []SpeedSegment) []SpeedSegment {
	if len(speeds) == 0 {
		return []SpeedSegment{{Beat: 0, Ratio: 1, Delay: 0, Unit: SpeedUnitBeats}}
	}
	return speeds
}

// NormalizeScrollsLikeITG supplies the engine's implicit base segment
// when the list is empty.
func NormalizeScrollsLikeITG(scrolls []Segment) []Segment {
	if len(scrolls) == 0 {
		return []Segment{{Beat: 0, Value: 1}}
	}
	return scrolls
}

// ComputeRowToBeat maps each data row of minimized note data to its beat.
func ComputeRowToBeat(minimized []byte) []float32 {
	var rowToBeat []float32
	measureIndex := 0
	for _, measure := range splitMeasures(minimized) {
		numRows := countMeasureRows(measure)
		if numRows == 0 {
			measureIndex++
			continue
		}
		measureStart := float32(measureIndex) * 4.0
		rowStep := 4.0 / float32(numRows)
		for row := 0; row < numRows; row++ {
			rowToBeat = append(rowToBeat, measureStart+float32(row)*rowStep)
		}
		measureIndex++
	}
	return rowToBeat
}

func countMeasureRows(measure []byte) int {
	count := 0
	hasNonWS := false
	for _, b := range measure {
		if b == '\n' {
			if hasNonWS {
				count++
				hasNonWS = false
			}
		} else if !isASCIIWhitespace(b) {
			hasNonWS = true
		}
	}
	if hasNonWS {
		count++
	}
	return count
}

func isASCIIWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func splitLines(data []byte) [][]byte {
	var out [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			out = append(out, data[start:i])
			start = i + 1
		}
	}
	out = append(out, data[start:])
	return out
}

func splitMeasures(data []byte) [][]byte {
	var out [][]byte
	start := 0
	for i, b := range data {
		if b == ',' {
			out = append(out, data[start:i])
			start = i + 1
		}
	}
	out = append(out, data[start:])
	return out
}
