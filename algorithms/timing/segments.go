package timing

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

func parseF64(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v, err == nil
}

func parseSegments(s string) []Segment {
	var out []Segment
	for _, part := range strings.Split(strings.TrimSpace(s), ",") {
		beatStr, valStr, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		beat, ok1 := parseF64(beatStr)
		value, ok2 := parseF64(valStr)
		if !ok1 || !ok2 || math.IsInf(beat, 0) || math.IsNaN(beat) ||
			math.IsInf(value, 0) || math.IsNaN(value) {
			continue
		}
		out = append(out, Segment{Beat: beat, Value: float64(float32(value))})
	}
	return out
}

func parseSegmentsPositive(s string) []Segment {
	segs := parseSegments(s)
	out := segs[:0]
	for _, seg := range segs {
		if seg.Value > 0 {
			out = append(out, seg)
		}
	}
	return out
}

func parseSpeeds(s string) []SpeedSegment {
	if s == "" {
		return nil
	}
	var out []SpeedSegment
	for _, chunk := range strings.Split(s, ",") {
		parts := strings.Split(chunk, "=")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) < 3 {
			continue
		}
		beat, ok := parseF64(parts[0])
		if !ok {
			continue
		}
		ratio, ok1 := parseF64(parts[1])
		delay, ok2 := parseF64(parts[2])
		if !ok1 || !ok2 {
			continue
		}
		unit := SpeedUnitBeats
		if len(parts) > 3 && parts[3] == "1" {
			unit = SpeedUnitSeconds
		}
		out = append(out, SpeedSegment{
			Beat:  beat,
			Ratio: float64(float32(ratio)),
			Delay: float64(float32(delay)),
			Unit:  unit,
		})
	}
	return out
}

func buildSegmentRows(segments []Segment, requirePositive bool) []int32 {
	rows := make([]int32, 0, len(segments))
	for _, s := range segments {
		if requirePositive && !(s.Value > 0 && !math.IsInf(s.Value, 0) && !math.IsNaN(s.Value)) {
			continue
		}
		rows = append(rows, BeatToNoteRowF32(float32(s.Beat)))
	}
	sort.Slice(rows, func(a, b int) bool { return rows[a] < rows[b] })
	if requirePositive {
		dedup := rows[:0]
		for i, r := range rows {
			if i == 0 || r != rows[i-1] {
				dedup = append(dedup, r)
			}
		}
		rows = dedup
	}
	return rows
}

func segmentIndexAtRow(rows []int32, row int32) (int, bool) {
	idx := sort.Search(len(rows), func(i int) bool { return rows[i] > row })
	if idx == 0 {
		return 0, false
	}
	return idx - 1, true
}

func hasRow(rows []int32, row int32) bool {
	idx := sort.Search(len(rows), func(i int) bool { return rows[i] >= row })
	return idx < len(rows) && rows[idx] == row
}

// tidyRowSegments snaps segments onto the row grid, keeping the last
// segment per row, sorted by row.
func tidyRowSegments(segments []Segment) []Segment {
	type rowSeg struct {
		row int32
		seg Segment
	}
	out := make([]rowSeg, 0, len(segments))
	rows := make(map[int32]int, len(segments))
	for _, seg := range segments {
		row := BeatToNoteRow(seg.Beat)
		seg.Beat = NoteRowToBeat(row)
		if idx, ok := rows[row]; ok {
			out[idx] = rowSeg{row, seg}
		} else {
			rows[row] = len(out)
			out = append(out, rowSeg{row, seg})
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].row < out[b].row })
	result := make([]Segment, len(out))
	for i, rs := range out {
		result[i] = rs.seg
	}
	return result
}

// tidySegments inserts segments one at a time into a row-sorted list,
// dropping value-equal neighbors the way the game engine's AddSegment
// does.
func tidySegments[T any](segments []T, beatOf func(T) float64, withBeat func(T, float64) T, eq func(T, T) bool) []T {
	rowOf := func(s T) int32 { return BeatToNoteRow(beatOf(s)) }
	out := make([]T, 0, len(segments))

	for _, seg := range segments {
		row := rowOf(seg)
		seg = withBeat(seg, NoteRowToBeat(row))

		if len(out) == 0 {
			out = append(out, seg)
			continue
		}

		pos := sort.Search(len(out), func(i int) bool { return rowOf(out[i]) > row })
		idx := pos
		if idx > 0 {
			idx--
		}
		onSameRow := rowOf(out[idx]) == row
		prevIdx := idx
		if onSameRow && idx > 0 {
			prevIdx = idx - 1
		}

		if idx+1 < len(out) {
			nextIdx := idx + 1
			if eq(seg, out[nextIdx]) {
				if eq(seg, out[prevIdx]) {
					out = append(out[:nextIdx], out[nextIdx+1:]...)
					if prevIdx != idx {
						out = append(out[:idx], out[idx+1:]...)
					}
					continue
				}
				out[nextIdx] = withBeat(out[nextIdx], beatOf(seg))
				if prevIdx != idx {
					out = append(out[:idx], out[idx+1:]...)
				}
				continue
			}
			if eq(seg, out[prevIdx]) {
				if prevIdx != idx {
					out = append(out[:idx], out[idx+1:]...)
				}
				continue
			}
		} else if eq(seg, out[prevIdx]) {
			if prevIdx != idx {
				out = append(out[:idx], out[idx+1:]...)
			}
			continue
		}

		if onSameRow {
			if !eq(seg, out[idx]) {
				out[idx] = seg
			}
		} else {
			insertPos := sort.Search(len(out), func(i int) bool { return rowOf(out[i]) > row })
			out = append(out, seg)
			copy(out[insertPos+1:], out[insertPos:])
			out[insertPos] = seg
		}
	}
	return out
}

func tidyPlainSegments(segments []Segment) []Segment {
	return tidySegments(segments,
		func(s Segment) float64 { return s.Beat },
		func(s Segment, b float64) Segment { s.Beat = b; return s },
		func(a, b Segment) bool { return floatEq(a.Value, b.Value) })
}

func tidySpeedSegments(segments []SpeedSegment) []SpeedSegment {
	return tidySegments(segments,
		func(s SpeedSegment) float64 { return s.Beat },
		func(s SpeedSegment, b float64) SpeedSegment { s.Beat = b; return s },
		func(a, b SpeedSegment) bool {
			return floatEq(a.Ratio, b.Ratio) && floatEq(a.Delay, b.Delay) && a.Unit == b.Unit
		})
}

func pickTiming(chartVal *string, globalVal string) string {
	if chartVal != nil && *chartVal != "" {
		return *chartVal
	}
	return globalVal
}

// TimingSegments is the processed, float32-precision timing event set a
// chart plays with, ready to feed into Data.
type TimingSegments struct {
	Beat0OffsetAdjust float32
	BPMs              [][2]float32
	Stops             [][2]float32
	Delays            [][2]float32
	Warps             [][2]float32
	Speeds            []SpeedSegmentF32
	Scrolls           [][2]float32
	Fakes             [][2]float32
}

// SpeedSegmentF32 is the stored form of a speed change.
type SpeedSegmentF32 struct {
	Beat  float32
	Ratio float32
	Delay float32
	Unit  SpeedUnit
}

// SegmentSource carries the raw (cleaned) tag strings for one chart:
// per-chart overrides (nil when absent) plus the song-level values.
type SegmentSource struct {
	ChartBPMs     *string
	GlobalBPMs    string
	ChartStops    *string
	GlobalStops   string
	ChartDelays   *string
	GlobalDelays  string
	ChartWarps    *string
	GlobalWarps   string
	ChartSpeeds   *string
	GlobalSpeeds  string
	ChartScrolls  *string
	GlobalScrolls string
	ChartFakes    *string
	GlobalFakes   string
}

// ComputeTimingSegments parses, converts and tidies every timing map of
// a chart. Cleaned reports whether inputs already went through
// CleanTimingMap.
func ComputeTimingSegments(src SegmentSource, format Format, cleaned bool) *TimingSegments {
	clean := func(s string) string {
		if cleaned {
			return s
		}
		return CleanTimingMap(s)
	}

	bpmsStr := clean(pickTiming(src.ChartBPMs, src.GlobalBPMs))
	parsedBPMs := ParseBPMMap(bpmsStr)
	if len(parsedBPMs) == 0 {
		parsedBPMs = []BPMChange{{Beat: 0, BPM: defaultBPM}}
	}

	rawStops := parseSegments(clean(pickTiming(src.ChartStops, src.GlobalStops)))
	bpms, stops, extraWarps, beat0Adjust := processBPMsAndStops(format, parsedBPMs, rawStops)
	stops = tidyRowSegments(stops)
	if len(bpms) == 0 {
		bpms = []BPMChange{{Beat: 0, BPM: defaultBPM}}
	}

	quantizeSeg := func(s Segment) Segment {
		return Segment{Beat: QuantizeBeat(s.Beat), Value: s.Value}
	}
	quantizeBoth := func(s Segment) Segment {
		return Segment{Beat: QuantizeBeat(s.Beat), Value: QuantizeBeat(s.Value)}
	}

	delays := parseSegments(clean(pickTiming(src.ChartDelays, src.GlobalDelays)))
	for i := range delays {
		delays[i] = quantizeSeg(delays[i])
	}
	delays = tidyRowSegments(delays)

	warps := parseSegments(clean(pickTiming(src.ChartWarps, src.GlobalWarps)))
	warps = append(warps, extraWarps...)
	for i := range warps {
		warps[i] = quantizeBoth(warps[i])
	}
	warps = tidyRowSegments(warps)

	speeds := parseSpeeds(clean(pickTiming(src.ChartSpeeds, src.GlobalSpeeds)))
	for i := range speeds {
		speeds[i].Beat = QuantizeBeat(speeds[i].Beat)
	}
	speeds = tidySpeedSegments(speeds)

	scrolls := parseSegments(clean(pickTiming(src.ChartScrolls, src.GlobalScrolls)))
	for i := range scrolls {
		scrolls[i] = quantizeSeg(scrolls[i])
	}
	scrolls = tidyPlainSegments(scrolls)

	fakes := parseSegmentsPositive(clean(pickTiming(src.ChartFakes, src.GlobalFakes)))
	for i := range fakes {
		fakes[i] = quantizeBoth(fakes[i])
	}
	fakes = tidyRowSegments(fakes)

	toPairs := func(segs []Segment) [][2]float32 {
		out := make([][2]float32, len(segs))
		for i, s := range segs {
			out[i] = [2]float32{float32(s.Beat), float32(s.Value)}
		}
		return out
	}

	ts := &TimingSegments{
		Beat0OffsetAdjust: float32(beat0Adjust),
		BPMs:              make([][2]float32, len(bpms)),
		Stops:             toPairs(stops),
		Delays:            toPairs(delays),
		Warps:             toPairs(warps),
		Speeds:            make([]SpeedSegmentF32, len(speeds)),
		Scrolls:           toPairs(scrolls),
		Fakes:             toPairs(fakes),
	}
	for i, c := range bpms {
		ts.BPMs[i] = [2]float32{float32(c.Beat), float32(c.BPM)}
	}
	for i, s := range speeds {
		ts.Speeds[i] = SpeedSegmentF32{float32(s.Beat), float32(s.Ratio), float32(s.Delay), s.Unit}
	}
	return ts
}

// BPMMap64 converts the stored float32 BPM pairs back to float64 beat
// and tempo values.
func (ts *TimingSegments) BPMMap64() []BPMChange {
	out := make([]BPMChange, len(ts.BPMs))
	for i, p := range ts.BPMs {
		out[i] = BPMChange{Beat: float64(p[0]), BPM: float64(p[1])}
	}
	return out
}

func processBPMsAndStops(format Format, bpms []BPMChange, stops []Segment) ([]BPMChange, []Segment, []Segment, float64) {
	if format == FormatSM {
		return processBPMsAndStopsSM(bpms, stops)
	}
	return processBPMsAndStopsSSC(bpms, stops)
}

func tidyBPMs(bpms []BPMChange) []BPMChange {
	if len(bpms) == 0 {
		return []BPMChange{{Beat: 0, BPM: defaultBPM}}
	}
	sort.SliceStable(bpms, func(a, b int) bool { return bpms[a].Beat < bpms[b].Beat })

	lastPerBeat := make([]BPMChange, 0, len(bpms))
	for _, c := range bpms {
		if n := len(lastPerBeat); n > 0 && lastPerBeat[n-1].Beat == c.Beat {
			lastPerBeat[n-1] = c
			continue
		}
		lastPerBeat = append(lastPerBeat, c)
	}
	lastPerBeat[0].Beat = 0

	tidied := make([]BPMChange, 0, len(lastPerBeat))
	haveLast := false
	var lastValue float64
	for _, c := range lastPerBeat {
		if haveLast && lastValue == c.BPM {
			continue
		}
		haveLast = true
		lastValue = c.BPM
		tidied = append(tidied, c)
	}
	if len(tidied) == 0 {
		tidied = append(tidied, BPMChange{Beat: 0, BPM: defaultBPM})
	}
	return tidied
}

func processBPMsAndStopsSSC(bpms []BPMChange, stops []Segment) ([]BPMChange, []Segment, []Segment, float64) {
	bpmChanges := make([]BPMChange, 0, len(bpms))
	for _, c := range bpms {
		if isFinite(c.Beat) && isFinite(c.BPM) && c.Beat >= 0 && c.BPM > 0 {
			bpmChanges = append(bpmChanges, BPMChange{Beat: QuantizeBeat(c.Beat), BPM: c.BPM})
		}
	}
	outStops := make([]Segment, 0, len(stops))
	for _, s := range stops {
		if isFinite(s.Beat) && isFinite(s.Value) && s.Beat >= 0 && s.Value > 0 {
			outStops = append(outStops, Segment{Beat: QuantizeBeat(s.Beat), Value: s.Value})
		}
	}
	return tidyBPMs(bpmChanges), outStops, nil, 0
}

// processBPMsAndStopsSM converts SM-era negative BPMs and negative stops
// into warps, tracking the pending warp window exactly as ITGmania's
// song loader does.
func processBPMsAndStopsSM(bpms []BPMChange, stops []Segment) ([]BPMChange, []Segment, []Segment, float64) {
	type changeF32 struct{ beat, value float32 }

	bpmChanges := make([]changeF32, 0, len(bpms))
	for _, c := range bpms {
		if isFinite(c.Beat) && isFinite(c.BPM) && c.BPM != 0 {
			bpmChanges = append(bpmChanges, changeF32{float32(c.Beat), float32(c.BPM)})
		}
	}
	sort.SliceStable(bpmChanges, func(a, b int) bool { return bpmChanges[a].beat < bpmChanges[b].beat })

	stopChanges := make([]changeF32, 0, len(stops))
	for _, s := range stops {
		if isFinite(s.Beat) && isFinite(s.Value) && s.Value != 0 {
			stopChanges = append(stopChanges, changeF32{float32(s.Beat), float32(s.Value)})
		}
	}
	sort.SliceStable(stopChanges, func(a, b int) bool { return stopChanges[a].beat < stopChanges[b].beat })

	var beat0Offset float32
	stopIdx := 0
	for stopIdx < len(stopChanges) && stopChanges[stopIdx].beat < 0 {
		beat0Offset -= stopChanges[stopIdx].value
		stopIdx++
	}

	bpmIdx := 0
	var bpm float32
	for bpmIdx < len(bpmChanges) && bpmChanges[bpmIdx].beat <= 0 {
		bpm = bpmChanges[bpmIdx].value
		bpmIdx++
	}
	if bpm == 0 {
		if bpmIdx < len(bpmChanges) {
			bpm = bpmChanges[bpmIdx].value
			bpmIdx++
		} else {
			bpm = float32(defaultBPM)
		}
	}

	var outBPMs []changeF32
	var outStops, outWarps []Segment

	if bpm > 0 && bpm <= fastBPMWarpF32 {
		outBPMs = append(outBPMs, changeF32{quantizeBeatF32(0), bpm})
	}

	var prevBeat float32
	warping := false
	var warpStart, prewarpBPM, timeOffset float32

	for bpmIdx < len(bpmChanges) || stopIdx < len(stopChanges) {
		isBPM := stopIdx == len(stopChanges) ||
			(bpmIdx < len(bpmChanges) && bpmChanges[bpmIdx].beat <= stopChanges[stopIdx].beat)
		var changeBeat, changeVal float32
		if isBPM {
			changeBeat, changeVal = bpmChanges[bpmIdx].beat, bpmChanges[bpmIdx].value
		} else {
			changeBeat, changeVal = stopChanges[stopIdx].beat, stopChanges[stopIdx].value
		}

		if bpm <= fastBPMWarpF32 {
			timeOffset += (changeBeat - prevBeat) * 60.0 / bpm
			if warping && bpm > 0 && timeOffset > 0 {
				warpEnd := changeBeat - (timeOffset * bpm / 60.0)
				if warpEnd > warpStart {
					outWarps = append(outWarps, Segment{
						Beat:  float64(quantizeBeatF32(warpStart)),
						Value: float64(quantizeBeatF32(warpEnd - warpStart)),
					})
				}
				if bpm != prewarpBPM {
					outBPMs = append(outBPMs, changeF32{quantizeBeatF32(warpStart), bpm})
				}
				warping = false
			}
		}
		prevBeat = changeBeat

		if isBPM {
			if !warping && (changeVal < 0 || changeVal > fastBPMWarpF32) {
				warping = true
				warpStart = changeBeat
				prewarpBPM = bpm
				timeOffset = 0
			} else if !warping {
				outBPMs = append(outBPMs, changeF32{quantizeBeatF32(changeBeat), changeVal})
			}
			bpm = changeVal
			bpmIdx++
		} else {
			switch {
			case !warping && changeVal < 0:
				warping = true
				warpStart = changeBeat
				prewarpBPM = bpm
				timeOffset = changeVal
			case !warping:
				outStops = append(outStops, Segment{
					Beat:  float64(quantizeBeatF32(changeBeat)),
					Value: float64(changeVal),
				})
			default:
				timeOffset += changeVal
				if changeVal > 0 && timeOffset > 0 {
					if changeBeat > warpStart {
						outWarps = append(outWarps, Segment{
							Beat:  float64(quantizeBeatF32(warpStart)),
							Value: float64(quantizeBeatF32(changeBeat - warpStart)),
						})
					}
					outStops = append(outStops, Segment{
						Beat:  float64(quantizeBeatF32(changeBeat)),
						Value: float64(timeOffset),
					})
					if bpm < 0 || bpm > fastBPMWarpF32 {
						warpStart = changeBeat
						timeOffset = 0
					} else {
						if bpm != prewarpBPM {
							outBPMs = append(outBPMs, changeF32{quantizeBeatF32(warpStart), bpm})
						}
						warping = false
					}
				}
			}
			stopIdx++
		}
	}

	if warping {
		var warpEnd float32
		if bpm < 0 || bpm > fastBPMWarpF32 {
			warpEnd = 99_999_999.0
		} else {
			warpEnd = prevBeat - (timeOffset * bpm / 60.0)
		}
		if warpEnd > warpStart {
			outWarps = append(outWarps, Segment{
				Beat:  float64(quantizeBeatF32(warpStart)),
				Value: float64(quantizeBeatF32(warpEnd - warpStart)),
			})
		}
		if bpm != prewarpBPM {
			outBPMs = append(outBPMs, changeF32{quantizeBeatF32(warpStart), bpm})
		}
	}

	tidied := make([]BPMChange, len(outBPMs))
	for i, c := range outBPMs {
		tidied[i] = BPMChange{Beat: float64(c.beat), BPM: float64(c.value)}
	}
	result := tidyBPMs(tidied)
	sort.SliceStable(outStops, func(a, b int) bool { return outStops[a].Beat < outStops[b].Beat })
	sort.SliceStable(outWarps, func(a, b int) bool { return outWarps[a].Beat < outWarps[b].Beat })

	return result, outStops, outWarps, float64(beat0Offset)
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
