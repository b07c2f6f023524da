package timing

import (
	"math"
	"sort"
)

type beatTimePoint struct {
	beat    float64
	timeSec float64
	bpm     float64
}

type speedRuntime struct {
	startTime float64
	endTime   float64
	prevRatio float64
}

type scrollPrefix struct {
	beat         float64
	cumDisplayed float64
	ratio        float64
}

type timingEvent int

const (
	eventBPM timingEvent = iota
	eventStop
	eventDelay
	eventStopDelay
	eventWarp
	eventWarpDest
	eventMarker
	eventNotFound
)

type beatState struct {
	bpmIdx, stopIdx, delayIdx, warpIdx int
	lastRow                            int32
	lastTime                           float64
	warpDestination                    float64
	isWarping                          bool
}

type beatStateF32 struct {
	bpmIdx, stopIdx, delayIdx, warpIdx int
	lastRow                            int32
	lastTime                           float32
	warpDestination                    float32
	isWarping                          bool
}

// Data answers beat↔time queries for one chart. Build it from processed
// TimingSegments via NewData; it is immutable afterwards and safe for
// concurrent readers.
type Data struct {
	beatToTime    []beatTimePoint
	stops         []Segment
	stopRows      []int32
	delays        []Segment
	delayRows     []int32
	warps         []Segment
	warpStartRows []int32
	speeds        []SpeedSegment
	scrolls       []Segment
	fakes         []Segment
	fakeStartRows []int32
	speedRuntime  []speedRuntime
	scrollPrefix  []scrollPrefix

	beat0OffsetSec  float64
	globalOffsetSec float64
	maxBPM          float64
}

// BeatInfo is the result of a time→beat query; during a freeze or delay
// the beat is pinned to the pause's start beat.
type BeatInfo struct {
	Beat       float64
	IsInFreeze bool
	IsInDelay  bool
}

// NewData assembles the timing model from processed segments. The song
// offset is adjusted by the segments' beat-0 correction (negative-beat
// SM stops).
func NewData(songOffset, globalOffset float64, segments *TimingSegments) *Data {
	bpms := segments.BPMMap64()
	if len(bpms) == 0 {
		bpms = []BPMChange{{Beat: 0, BPM: defaultBPM}}
	}

	toSegs := func(pairs [][2]float32) []Segment {
		out := make([]Segment, len(pairs))
		for i, p := range pairs {
			out[i] = Segment{Beat: float64(p[0]), Value: float64(p[1])}
		}
		return out
	}
	speeds := make([]SpeedSegment, len(segments.Speeds))
	for i, s := range segments.Speeds {
		speeds[i] = SpeedSegment{
			Beat:  float64(s.Beat),
			Ratio: float64(s.Ratio),
			Delay: float64(s.Delay),
			Unit:  s.Unit,
		}
	}

	return build(
		songOffset+float64(segments.Beat0OffsetAdjust), globalOffset,
		bpms, toSegs(segments.Stops), toSegs(segments.Delays), toSegs(segments.Warps),
		speeds, toSegs(segments.Scrolls), toSegs(segments.Fakes),
	)
}

// Validate checks the model's tempo invariants: strictly sorted segment
// beats and positive BPMs. Processed SM/SSC input always passes; direct
// construction from caller-supplied maps may not.
func (t *Data) Validate() error {
	lastBeat := math.Inf(-1)
	for _, p := range t.beatToTime {
		if p.bpm <= 0 {
			return &TimingError{Kind: ErrInvalidBPM, Beat: p.beat, BPM: p.bpm}
		}
		if p.beat < lastBeat {
			return &TimingError{Kind: ErrUnsortedSegments, Beat: p.beat}
		}
		lastBeat = p.beat
	}
	return nil
}

func build(songOffset, globalOffset float64, bpms []BPMChange,
	stops, delays, warps []Segment, speeds []SpeedSegment, scrolls, fakes []Segment) *Data {

	beatToTime := make([]beatTimePoint, 0, len(bpms))
	currentTime := 0.0
	lastBeat := 0.0
	lastBPM := bpms[0].BPM
	maxBPM := 0.0

	for _, c := range bpms {
		if c.Beat > lastBeat && lastBPM > 0 {
			currentTime += (c.Beat - lastBeat) * 60.0 / lastBPM
		}
		beatToTime = append(beatToTime, beatTimePoint{beat: c.Beat, timeSec: songOffset + currentTime, bpm: c.BPM})
		if isFinite(c.BPM) && c.BPM > maxBPM {
			maxBPM = c.BPM
		}
		lastBeat = c.Beat
		lastBPM = c.BPM
	}

	t := &Data{
		beatToTime:      beatToTime,
		stops:           stops,
		stopRows:        buildSegmentRows(stops, true),
		delays:          delays,
		delayRows:       buildSegmentRows(delays, true),
		warps:           warps,
		warpStartRows:   buildSegmentRows(warps, false),
		speeds:          speeds,
		scrolls:         scrolls,
		fakes:           fakes,
		fakeStartRows:   buildSegmentRows(fakes, false),
		beat0OffsetSec:  songOffset,
		globalOffsetSec: globalOffset,
		maxBPM:          maxBPM,
	}

	// Re-derive exact event times through the traversal itself so stops,
	// delays and warps before a BPM change are reflected.
	for i := range t.beatToTime {
		t.beatToTime[i].timeSec = t.getTimeInternal(t.beatToTime[i].beat)
	}

	if len(t.speeds) > 0 {
		prevRatio := 1.0
		t.speedRuntime = make([]speedRuntime, len(t.speeds))
		for i, seg := range t.speeds {
			start := t.TimeForBeat(seg.Beat)
			end := start
			if seg.Delay > 0 {
				if seg.Unit == SpeedUnitSeconds {
					end = start + seg.Delay
				} else {
					end = t.TimeForBeat(seg.Beat + seg.Delay)
				}
			}
			t.speedRuntime[i] = speedRuntime{startTime: start, endTime: end, prevRatio: prevRatio}
			prevRatio = seg.Ratio
		}
	}

	if len(t.scrolls) > 0 {
		cum := 0.0
		lastScrollBeat := 0.0
		lastRatio := 1.0
		t.scrollPrefix = make([]scrollPrefix, len(t.scrolls))
		for i, seg := range t.scrolls {
			cum += (seg.Beat - lastScrollBeat) * lastRatio
			t.scrollPrefix[i] = scrollPrefix{beat: seg.Beat, cumDisplayed: cum, ratio: seg.Value}
			lastScrollBeat = seg.Beat
			lastRatio = seg.Value
		}
	}

	return t
}

func (t *Data) Beat0OffsetSeconds() float64 { return t.beat0OffsetSec }
func (t *Data) Warps() []Segment            { return t.warps }
func (t *Data) Stops() []Segment            { return t.stops }
func (t *Data) Delays() []Segment           { return t.delays }
func (t *Data) Speeds() []SpeedSegment      { return t.speeds }
func (t *Data) Scrolls() []Segment          { return t.scrolls }
func (t *Data) Fakes() []Segment            { return t.fakes }

// BPMSegments returns the beat/tempo pairs of the model.
func (t *Data) BPMSegments() []BPMChange {
	out := make([]BPMChange, len(t.beatToTime))
	for i, p := range t.beatToTime {
		out[i] = BPMChange{Beat: p.beat, BPM: p.bpm}
	}
	return out
}

// IsFakeAtBeat reports whether the beat falls inside a fake segment.
func (t *Data) IsFakeAtBeat(beat float64) bool {
	return t.isInRangeSegment(t.fakes, t.fakeStartRows, beat)
}

// IsFakeAtRow is IsFakeAtBeat on a note row.
func (t *Data) IsFakeAtRow(row int32) bool {
	return t.isInRangeSegment(t.fakes, t.fakeStartRows, NoteRowToBeat(row))
}

// IsWarpAtBeat reports whether the beat is skipped by a warp.
func (t *Data) IsWarpAtBeat(beat float64) bool {
	return t.IsWarpAtRow(BeatToNoteRowF32(float32(beat)))
}

// IsWarpAtRow reports whether the row is inside a warp span. A stop or
// delay on the row keeps it judgable even inside the span.
func (t *Data) IsWarpAtRow(row int32) bool {
	idx, ok := segmentIndexAtRow(t.warpStartRows, row)
	if !ok {
		return false
	}
	seg := t.warps[idx]
	if !(isFinite(seg.Value) && seg.Value > 0) {
		return false
	}
	beatRow := float32(NoteRowToBeat(row))
	segBeat := float32(seg.Beat)
	if !(segBeat <= beatRow && beatRow < segBeat+float32(seg.Value)) {
		return false
	}
	return !(hasRow(t.stopRows, row) || hasRow(t.delayRows, row))
}

func (t *Data) isInRangeSegment(segs []Segment, rows []int32, beat float64) bool {
	row := BeatToNoteRowF32(float32(beat))
	idx, ok := segmentIndexAtRow(rows, row)
	if !ok {
		return false
	}
	seg := segs[idx]
	if !isFinite(seg.Value) {
		return false
	}
	beatF := float32(NoteRowToBeat(row))
	return beatF >= float32(seg.Beat) && beatF < float32(seg.Beat+seg.Value)
}

// IsJudgableAtRow reports whether a note on the row is hittable (not
// warped over, not fake).
func (t *Data) IsJudgableAtRow(row int32) bool {
	return !t.IsWarpAtRow(row) && !t.IsFakeAtRow(row)
}

// IsJudgableAtBeat is IsJudgableAtRow on a beat.
func (t *Data) IsJudgableAtBeat(beat float64) bool {
	return t.IsJudgableAtRow(BeatToNoteRowF32(float32(beat)))
}

// BeatInfoFromTime maps a song time to the beat in effect, reporting
// whether the time falls inside a freeze or delay.
func (t *Data) BeatInfoFromTime(time float64) BeatInfo {
	elapsed := time + t.globalOffsetSec
	startTime := -t.beat0OffsetSec - t.globalOffsetSec
	return t.getBeatInternal(elapsed, startTime)
}

// BeatForTime maps a song time to a beat.
func (t *Data) BeatForTime(time float64) float64 {
	return t.BeatInfoFromTime(time).Beat
}

// TimeForBeat maps a beat to its song time, global offset applied.
func (t *Data) TimeForBeat(beat float64) float64 {
	return t.getTimeInternal(beat) - t.globalOffsetSec
}

// TimeForBeatF32 is the single-precision traversal used by the measure
// NPS computation, which the game engine performs in float32.
func (t *Data) TimeForBeatF32(targetBeat float64) float64 {
	var state beatStateF32
	state.lastTime = float32(-t.beat0OffsetSec - t.globalOffsetSec)
	t.getElapsedTimeF32(&state, float32(targetBeat))
	return float64(state.lastTime) - t.globalOffsetSec
}

func (t *Data) getTimeInternal(targetBeat float64) float64 {
	var state beatState
	state.lastTime = -t.beat0OffsetSec - t.globalOffsetSec
	t.getElapsedTime(&state, targetBeat)
	return state.lastTime
}

func (t *Data) getBeatInternal(elapsed, startTime float64) BeatInfo {
	state := beatState{lastTime: startTime}
	bps := t.BPMForBeat(0) / 60.0

	for {
		eventRow, eventType := t.findNextEvent(&state, 0, false)
		if eventType == eventNotFound {
			break
		}

		timeToEvent := 0.0
		if !state.isWarping {
			timeToEvent = NoteRowToBeat(eventRow-state.lastRow) / bps
		}
		nextTime := state.lastTime + timeToEvent
		if elapsed < nextTime {
			break
		}
		state.lastTime = nextTime

		switch eventType {
		case eventWarpDest:
			state.isWarping = false
		case eventBPM:
			bps = t.beatToTime[state.bpmIdx].bpm / 60.0
			state.bpmIdx++
		case eventDelay, eventStopDelay:
			d := t.delays[state.delayIdx].Value
			if elapsed < state.lastTime+d {
				return BeatInfo{Beat: t.delays[state.delayIdx].Beat, IsInDelay: true}
			}
			state.lastTime += d
			state.delayIdx++
			if eventType == eventDelay {
				state.lastRow = eventRow
				continue
			}
		case eventStop:
			d := t.stops[state.stopIdx].Value
			if elapsed < state.lastTime+d {
				return BeatInfo{Beat: t.stops[state.stopIdx].Beat, IsInFreeze: true}
			}
			state.lastTime += d
			state.stopIdx++
		case eventWarp:
			state.isWarping = true
			w := t.warps[state.warpIdx]
			state.warpDestination = math.Max(state.warpDestination, w.Beat+w.Value)
			state.warpIdx++
		}
		state.lastRow = eventRow
	}

	return BeatInfo{Beat: NoteRowToBeat(state.lastRow) + (elapsed-state.lastTime)*bps}
}

func (t *Data) getElapsedTime(state *beatState, targetBeat float64) {
	findMarker := targetBeat < math.MaxFloat64
	bps := t.BPMForBeat(NoteRowToBeat(state.lastRow)) / 60.0

	for {
		eventRow, eventType := t.findNextEvent(state, targetBeat, findMarker)
		if eventType == eventNotFound {
			break
		}

		if !state.isWarping {
			state.lastTime += NoteRowToBeat(eventRow-state.lastRow) / bps
		}

		switch eventType {
		case eventWarpDest:
			state.isWarping = false
		case eventBPM:
			bps = t.beatToTime[state.bpmIdx].bpm / 60.0
			state.bpmIdx++
		case eventStop, eventStopDelay:
			state.lastTime += t.stops[state.stopIdx].Value
			state.stopIdx++
		case eventDelay:
			state.lastTime += t.delays[state.delayIdx].Value
			state.delayIdx++
		case eventMarker:
			return
		case eventWarp:
			state.isWarping = true
			w := t.warps[state.warpIdx]
			state.warpDestination = math.Max(state.warpDestination, w.Beat+w.Value)
			state.warpIdx++
		}
		state.lastRow = eventRow
	}
}

func (t *Data) getElapsedTimeF32(state *beatStateF32, targetBeat float32) {
	findMarker := targetBeat < math.MaxFloat32
	bps := t.bpmForRowF32(state.lastRow) / 60.0

	for {
		eventRow, eventType := t.findNextEventF32(state, targetBeat, findMarker)
		if eventType == eventNotFound {
			break
		}

		if !state.isWarping {
			state.lastTime += noteRowToBeatF32(eventRow-state.lastRow) / bps
		}

		switch eventType {
		case eventWarpDest:
			state.isWarping = false
		case eventBPM:
			bps = float32(t.beatToTime[state.bpmIdx].bpm) / 60.0
			state.bpmIdx++
		case eventStop, eventStopDelay:
			state.lastTime += float32(t.stops[state.stopIdx].Value)
			state.stopIdx++
		case eventDelay:
			state.lastTime += float32(t.delays[state.delayIdx].Value)
			state.delayIdx++
		case eventMarker:
			return
		case eventWarp:
			state.isWarping = true
			w := t.warps[state.warpIdx]
			warpSum := float32(w.Value) + float32(w.Beat)
			if warpSum > state.warpDestination {
				state.warpDestination = warpSum
			}
			state.warpIdx++
		}
		state.lastRow = eventRow
	}
}

// findNextEvent picks the earliest upcoming event row. The check order
// breaks row ties: warp destinations first, then BPM changes, delays,
// the target marker, stops, warps. Delay-before-marker-before-stop is
// what makes delays pause before a note and stops pause after it.
func (t *Data) findNextEvent(state *beatState, beat float64, findMarker bool) (int32, timingEvent) {
	row := int32(math.MaxInt32)
	event := eventNotFound

	if state.isWarping {
		if r := BeatToNoteRow(state.warpDestination); r < row {
			row, event = r, eventWarpDest
		}
	}
	if state.bpmIdx < len(t.beatToTime) {
		if r := BeatToNoteRow(t.beatToTime[state.bpmIdx].beat); r < row {
			row, event = r, eventBPM
		}
	}
	if state.delayIdx < len(t.delays) {
		if r := BeatToNoteRow(t.delays[state.delayIdx].Beat); r < row {
			row, event = r, eventDelay
		}
	}
	if findMarker {
		if r := BeatToNoteRow(beat); r < row {
			row, event = r, eventMarker
		}
	}
	if state.stopIdx < len(t.stops) {
		if r := BeatToNoteRow(t.stops[state.stopIdx].Beat); r < row {
			row, event = r, eventStop
		}
	}
	if state.warpIdx < len(t.warps) {
		if r := BeatToNoteRow(t.warps[state.warpIdx].Beat); r < row {
			row, event = r, eventWarp
		}
	}
	return row, event
}

func (t *Data) findNextEventF32(state *beatStateF32, beat float32, findMarker bool) (int32, timingEvent) {
	row := int32(math.MaxInt32)
	event := eventNotFound

	if state.isWarping {
		if r := BeatToNoteRowF32(state.warpDestination); r < row {
			row, event = r, eventWarpDest
		}
	}
	if state.bpmIdx < len(t.beatToTime) {
		if r := BeatToNoteRowF32(float32(t.beatToTime[state.bpmIdx].beat)); r < row {
			row, event = r, eventBPM
		}
	}
	if state.delayIdx < len(t.delays) {
		if r := BeatToNoteRowF32(float32(t.delays[state.delayIdx].Beat)); r < row {
			row, event = r, eventDelay
		}
	}
	if findMarker {
		if r := BeatToNoteRowF32(beat); r < row {
			row, event = r, eventMarker
		}
	}
	if state.stopIdx < len(t.stops) {
		if r := BeatToNoteRowF32(float32(t.stops[state.stopIdx].Beat)); r < row {
			row, event = r, eventStop
		}
	}
	if state.warpIdx < len(t.warps) {
		if r := BeatToNoteRowF32(float32(t.warps[state.warpIdx].Beat)); r < row {
			row, event = r, eventWarp
		}
	}
	return row, event
}

func (t *Data) bpmForRowF32(row int32) float32 {
	if len(t.beatToTime) == 0 {
		return float32(defaultBPM)
	}
	pos := sort.Search(len(t.beatToTime), func(i int) bool {
		return BeatToNoteRowF32(float32(t.beatToTime[i].beat)) > row
	})
	if pos == 0 {
		return float32(t.beatToTime[0].bpm)
	}
	return float32(t.beatToTime[pos-1].bpm)
}

// BPMForBeat returns the tempo in effect at a beat.
func (t *Data) BPMForBeat(beat float64) float64 {
	if len(t.beatToTime) == 0 {
		return defaultBPM
	}
	idx := sort.Search(len(t.beatToTime), func(i int) bool { return t.beatToTime[i].beat > beat })
	if idx > 0 {
		idx--
	}
	return t.beatToTime[idx].bpm
}

// CappedMaxBPM returns the highest finite positive tempo, optionally
// clamped to cap, defaulting when nothing qualifies.
func (t *Data) CappedMaxBPM(cap float64) float64 {
	max := t.maxBPM
	for _, p := range t.beatToTime {
		if isFinite(p.bpm) && p.bpm > 0 && p.bpm > max {
			max = p.bpm
		}
	}
	if cap > 0 && max > cap {
		max = cap
	}
	if max > 0 {
		return max
	}
	return defaultBPM
}

// DisplayedBeat maps a beat through the scroll segments to the beat
// position actually drawn.
func (t *Data) DisplayedBeat(beat float64) float64 {
	if len(t.scrollPrefix) == 0 || beat < t.scrollPrefix[0].beat {
		return beat
	}
	idx := sort.Search(len(t.scrollPrefix), func(i int) bool { return t.scrollPrefix[i].beat > beat })
	if idx > 0 {
		idx--
	}
	p := t.scrollPrefix[idx]
	return p.cumDisplayed + (beat-p.beat)*p.ratio
}

// SpeedMultiplier returns the display speed ratio at a beat/time,
// interpolating through a segment's approach window.
func (t *Data) SpeedMultiplier(beat, time float64) float64 {
	if len(t.speeds) == 0 {
		return 1.0
	}
	idx := sort.Search(len(t.speeds), func(i int) bool { return t.speeds[i].Beat > beat })
	if idx == 0 {
		return 1.0
	}
	i := idx - 1
	seg := t.speeds[i]
	rt := t.speedRuntime[i]

	if time >= rt.endTime || seg.Delay <= 0 {
		return seg.Ratio
	}
	if time < rt.startTime {
		return rt.prevRatio
	}
	progress := (time - rt.startTime) / (rt.endTime - rt.startTime)
	return rt.prevRatio + (seg.Ratio-rt.prevRatio)*progress
}
