// Package timing builds the beat-to-time model for a chart: BPM map
// normalization, SM-era negative-BPM/stop conversion into warps, and the
// event-driven traversal that answers beatToTime/timeToBeat queries.
package timing

import (
	"fmt"
	"math"

	"github.com/stridelab/stepscan/algorithms/common"
)

// Format distinguishes the two timing tag dialects.
type Format int

const (
	FormatSM Format = iota
	FormatSSC
)

// FormatFromExtension maps a file extension to its timing dialect.
func FormatFromExtension(ext string) Format {
	if len(ext) == 2 && (ext[0] == 's' || ext[0] == 'S') && (ext[1] == 'm' || ext[1] == 'M') {
		return FormatSM
	}
	return FormatSSC
}

const (
	// RowsPerBeat is the note-row resolution: 48 rows per beat, i.e.
	// 1/192 of a standard 4-beat measure.
	RowsPerBeat = 48

	defaultBPM     = 60.0
	fastBPMWarpF32 = float32(9_999_999.0)
	segmentEpsilon = 1e-6
)

// TimingErrorKind classifies chart-fatal timing problems.
type TimingErrorKind int

const (
	ErrInvalidBPM TimingErrorKind = iota
	ErrUnsortedSegments
)

// TimingError reports invalid tempo data with the offending beat for
// diagnostics.
type TimingError struct {
	Kind TimingErrorKind
	Beat float64
	BPM  float64
}

func (e *TimingError) Error() string {
	switch e.Kind {
	case ErrInvalidBPM:
		return fmt.Sprintf("timing: non-positive bpm %g at beat %g", e.BPM, e.Beat)
	case ErrUnsortedSegments:
		return fmt.Sprintf("timing: tempo segments out of order at beat %g", e.Beat)
	default:
		return "timing: invalid tempo data"
	}
}

// SpeedUnit selects how a speed segment's approach delay is measured.
type SpeedUnit int

const (
	SpeedUnitBeats SpeedUnit = iota
	SpeedUnitSeconds
)

// Segment is a beat-positioned timing event (stop, delay, warp, scroll
// or fake) whose meaning depends on the list it lives in.
type Segment struct {
	Beat  float64
	Value float64
}

// SpeedSegment is an SSC display-speed change.
type SpeedSegment struct {
	Beat  float64
	Ratio float64
	Delay float64
	Unit  SpeedUnit
}

// BPMChange pairs a beat with the tempo taking effect there.
type BPMChange struct {
	Beat float64
	BPM  float64
}

// --- Core row math ---

// NoteRowToBeat converts a 1/48-beat row index to its beat.
func NoteRowToBeat(row int32) float64 {
	return float64(row) / RowsPerBeat
}

func noteRowToBeatF32(row int32) float32 {
	return float32(row) / RowsPerBeat
}

// BeatToNoteRow quantizes a beat to the nearest row, ties-to-even.
func BeatToNoteRow(beat float64) int32 {
	return int32(common.LrintF64(beat * RowsPerBeat))
}

// BeatToNoteRowF32 is the single-precision quantizer used wherever the
// game engine stores beats as float32.
func BeatToNoteRowF32(beat float32) int32 {
	return common.LrintF32(beat * RowsPerBeat)
}

// QuantizeBeat snaps a beat onto the row grid through the same float32
// round trip the game engine performs.
func QuantizeBeat(beat float64) float64 {
	return float64(noteRowToBeatF32(BeatToNoteRowF32(float32(beat))))
}

func quantizeBeatF32(beat float32) float32 {
	return noteRowToBeatF32(BeatToNoteRowF32(beat))
}

// StepsTimingAllowed reports whether per-chart timing tags apply: SM
// charts always share song timing, SSC charts gained split timing at
// version 0.7 (NaN versions stay shared).
func StepsTimingAllowed(version float32, format Format) bool {
	return format == FormatSM || version >= 0.7
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < segmentEpsilon
}
