// Package notegrid turns raw simfile note data into a canonical grid:
// minimized measures, per-row lane bytes, row-to-beat mapping, and the
// arrow statistics derived from them.
//
// The canonical minimized form is fixed-width note rows terminated by
// '\n' with ",\n" between measures. Measures whose second half carries
// no information are repeatedly halved, and an all-empty measure
// collapses to a single row. Hashing and every downstream analysis
// operate on this form, so byte-for-byte stability matters more than
// speed here.
package notegrid

import "fmt"

// NoteGridError reports note data that cannot form a grid at all, such
// as an unknown lane count.
type NoteGridError struct {
	Lanes int
	Msg   string
}

func (e *NoteGridError) Error() string {
	return fmt.Sprintf("notegrid: %s (lanes=%d)", e.Msg, e.Lanes)
}

// ArrowStats aggregates the counting pass over a minimized chart.
// Holding tracks the number of active holds while counting and is left
// at its final value.
type ArrowStats struct {
	TotalArrows uint32
	Left        uint32
	Down        uint32
	Up          uint32
	Right       uint32
	TotalSteps  uint32
	Jumps       uint32
	Hands       uint32
	Mines       uint32
	Holds       uint32
	Rolls       uint32
	Holding     int32
}

// Result is the output of a full minimization pass.
type Result struct {
	Minimized        []byte
	Stats            ArrowStats
	MeasureDensities []int
	Rows             [][]byte
	RowToBeat        []float32
	LastBeat         float64
	Bitmasks         []uint8
}

func isAllZero(line []byte) bool {
	for _, b := range line {
		if b != '0' {
			return false
		}
	}
	return true
}

// minimizeMeasure halves a measure while every odd row is empty, then
// collapses a fully empty measure to one row.
func minimizeMeasure(measure [][]byte) [][]byte {
	for len(measure) >= 2 && len(measure)%2 == 0 {
		informative := false
		for i := 1; i < len(measure); i += 2 {
			if !isAllZero(measure[i]) {
				informative = true
				break
			}
		}
		if informative {
			break
		}
		half := len(measure) / 2
		for i := 0; i < half; i++ {
			measure[i] = measure[i*2]
		}
		measure = measure[:half]
	}

	if len(measure) > 0 {
		allEmpty := true
		for _, line := range measure {
			if !isAllZero(line) {
				allEmpty = false
				break
			}
		}
		if allEmpty {
			measure = measure[:1]
		}
	}
	return measure
}

func isNoteByte(b byte) bool {
	return b == '1' || b == '2' || b == '4'
}

// countLine folds one note row into stats and reports whether the row
// holds at least one step. Direction counts fold lanes modulo four so
// doubles charts attribute both pads to the same arrow.
func countLine(line []byte, stats *ArrowStats) bool {
	for _, ch := range line {
		if ch == 'M' {
			stats.Mines++
		}
	}

	notesOnLine := 0
	for _, ch := range line {
		if isNoteByte(ch) {
			notesOnLine++
		}
	}

	if notesOnLine == 0 {
		for _, ch := range line {
			if ch == '3' && stats.Holding > 0 {
				stats.Holding--
			}
		}
		return false
	}

	stats.TotalSteps++
	if notesOnLine >= 2 {
		stats.Jumps++
	}
	if notesOnLine >= 3 {
		stats.Hands++
	}
	// A step while holding can require a third limb.
	if stats.Holding == 1 && notesOnLine >= 2 {
		stats.Hands++
	}
	if (stats.Holding == 2 || stats.Holding == 3) && notesOnLine >= 1 {
		stats.Hands++
	}

	for _, ch := range line {
		switch ch {
		case '1':
			stats.TotalArrows++
		case '2':
			stats.TotalArrows++
			stats.Holds++
		case '4':
			stats.TotalArrows++
			stats.Rolls++
		case '3':
			if stats.Holding > 0 {
				stats.Holding--
			}
		}
	}

	for col, ch := range line {
		if !isNoteByte(ch) {
			continue
		}
		switch col % 4 {
		case 0:
			stats.Left++
		case 1:
			stats.Down++
		case 2:
			stats.Up++
		case 3:
			stats.Right++
		}
	}

	for _, ch := range line {
		if ch == '2' || ch == '4' {
			stats.Holding++
		}
	}
	return true
}

func rowBitmask(line []byte) uint8 {
	var mask uint8
	for col, ch := range line {
		if col >= 4 {
			break
		}
		if isNoteByte(ch) {
			mask |= 1 << uint(col)
		}
	}
	return mask
}

// MinimizeChart runs the full minimization pass. wantRows retains the
// per-row lane bytes, wantBits additionally extracts 4-lane bitmasks
// for pattern analysis.
func MinimizeChart(notesData []byte, lanes int, wantRows, wantBits bool) (*Result, error) {
	if lanes < 1 {
		return nil, &NoteGridError{Lanes: lanes, Msg: "lane count must be positive"}
	}

	res := &Result{Minimized: make([]byte, 0, len(notesData))}
	var measure [][]byte
	measureIdx := 0
	lastMeasureIdx := -1
	lastRowInMeasure := 0
	lastMeasureRows := 0
	sawSemicolon := false

	finalize := func() {
		if len(measure) == 0 {
			res.MeasureDensities = append(res.MeasureDensities, 0)
			measureIdx++
			return
		}
		measure = minimizeMeasure(measure)

		numRows := len(measure)
		measureStart := float32(measureIdx) * 4.0
		rowStep := 4.0 / float32(numRows)

		density := 0
		for i, line := range measure {
			if countLine(line, &res.Stats) {
				density++
			}
			for _, b := range line {
				if b == '1' || b == '2' || b == '3' || b == '4' {
					lastMeasureIdx = measureIdx
					lastRowInMeasure = i
					lastMeasureRows = numRows
					break
				}
			}
			res.Minimized = append(res.Minimized, line...)
			res.Minimized = append(res.Minimized, '\n')
			if wantRows {
				res.Rows = append(res.Rows, line)
				res.RowToBeat = append(res.RowToBeat, measureStart+float32(i)*rowStep)
			}
			if wantBits {
				res.Bitmasks = append(res.Bitmasks, rowBitmask(line))
			}
		}
		measure = measure[:0:0]
		res.MeasureDensities = append(res.MeasureDensities, density)
		measureIdx++
	}

	for _, line := range splitLines(notesData) {
		line = trimCR(line)
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case ',':
			finalize()
			res.Minimized = append(res.Minimized, ',', '\n')
		case ';':
			finalize()
			sawSemicolon = true
		case ' ', '/':
			// space-only and comment lines
		default:
			if len(line) < lanes {
				continue
			}
			row := make([]byte, lanes)
			copy(row, line[:lanes])
			measure = append(measure, row)
		}
		if sawSemicolon {
			break
		}
	}
	if !sawSemicolon && len(measure) > 0 {
		finalize()
	}

	if n := len(res.Minimized); n >= 2 && res.Minimized[n-2] == ',' && res.Minimized[n-1] == '\n' {
		res.Minimized = res.Minimized[:n-2]
	}

	if lastMeasureIdx >= 0 {
		totalRows := lastMeasureRows
		if totalRows < 1 {
			totalRows = 1
		}
		res.LastBeat = float64(lastMeasureIdx)*4.0 + 4.0*(float64(lastRowInMeasure)/float64(totalRows))
	}
	return res, nil
}

// MinimizeForHash produces only the canonical minimized bytes, with any
// trailing newlines stripped, for hashing.
func MinimizeForHash(notesData []byte, lanes int) ([]byte, error) {
	res, err := MinimizeChart(notesData, lanes, false, false)
	if err != nil {
		return nil, err
	}
	return TrimTrailingNewlines(res.Minimized), nil
}

// TrimTrailingNewlines removes trailing '\n' bytes in place.
func TrimTrailingNewlines(data []byte) []byte {
	end := len(data)
	for end > 0 && data[end-1] == '\n' {
		end--
	}
	return data[:end]
}

// MeasureDensities computes per-measure step densities without keeping
// the minimized bytes.
func MeasureDensities(notesData []byte, lanes int) ([]int, error) {
	res, err := MinimizeChart(notesData, lanes, false, false)
	if err != nil {
		return nil, err
	}
	return res.MeasureDensities, nil
}

// MeasureEquallySpaced reports, per raw measure, whether every row in
// the measure carries a step.
func MeasureEquallySpaced(data []byte, lanes int) []bool {
	if lanes < 1 {
		lanes = 1
	}
	var results []bool
	rows, notes := 0, 0
	sawTerm := false

	for _, raw := range splitLines(data) {
		line := trimCR(raw)
		if len(line) == 0 {
			continue
		}
		switch {
		case line[0] == ',':
			results = append(results, notes == rows)
			rows, notes = 0, 0
		case line[0] == ';':
			results = append(results, notes == rows)
			sawTerm = true
		case len(line) >= lanes:
			rows++
			for _, b := range line[:lanes] {
				if isNoteByte(b) {
					notes++
					break
				}
			}
		}
		if sawTerm {
			break
		}
	}
	if !sawTerm {
		results = append(results, notes == rows)
	}
	return results
}

func trimCR(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}
	return line
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
