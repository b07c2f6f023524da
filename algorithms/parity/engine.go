package parity

import (
	"math"
	"sort"

	"github.com/stridelab/stepscan/algorithms/timing"
)

// searchNode is one entry in the layered search arena. pred indexes the
// arena; -1 marks the virtual start.
type searchNode struct {
	stateIdx int32
	pred     int32
	second   float32
	cost     float32
}

type permEntry struct {
	perms    [][maxLanes]Foot
	fallback bool
}

// Scratch carries the reusable buffers for one worker. It is not safe
// for concurrent use; allocate one per goroutine.
type Scratch struct {
	lanes   int
	layout  *StageLayout
	weights Weights

	rows       []chartRow
	states     []state
	stateIndex map[state]int32
	permCache  map[uint16]permEntry
	nodes      []searchNode

	degraded bool
}

// NewScratch prepares buffers for charts of the given lane count. Lane
// counts without a stage layout yield a scratch whose analyses return
// zero counts.
func NewScratch(lanes int) *Scratch {
	return &Scratch{
		lanes:      lanes,
		layout:     LayoutForLanes(lanes),
		weights:    DefaultWeights(),
		stateIndex: make(map[state]int32),
		permCache:  make(map[uint16]permEntry),
	}
}

// SetWeights overrides the cost tuning for subsequent analyses.
func (s *Scratch) SetWeights(w Weights) { s.weights = w }

// Degraded reports whether the last analysis had to fall back to a
// best-effort placement (row content no two feet could cover exactly).
func (s *Scratch) Degraded() bool { return s.degraded }

func (s *Scratch) reset() {
	s.rows = s.rows[:0]
	s.states = s.states[:0]
	s.nodes = s.nodes[:0]
	clear(s.stateIndex)
	s.degraded = false
}

// AnalyzeRows runs the foot-placement search over pre-split note rows
// and derives tech counts from the winning assignment. rowToBeat maps
// each row to its beat; seconds come from the timing data, so stops,
// delays and warps shift rows the way they do in play. Rows a warp or
// fake region makes unjudgable contribute no notes.
func AnalyzeRows(rows [][]byte, rowToBeat []float32, td *timing.Data, s *Scratch) TechCounts {
	if s.layout == nil {
		return TechCounts{}
	}
	s.reset()
	s.buildRows(rows, rowToBeat, td)
	if len(s.rows) == 0 {
		return TechCounts{}
	}
	if !s.search() {
		s.degraded = true
		return TechCounts{}
	}
	return techCountsFromRows(s.rows, s.layout)
}

// AnalyzeChart is AnalyzeRows for a minimized chart whose rows were not
// retained. It splits the chart itself and derives beats from measure
// positions.
func AnalyzeChart(minimized []byte, td *timing.Data, lanes int) TechCounts {
	s := NewScratch(lanes)
	if s.layout == nil {
		return TechCounts{}
	}
	rowToBeat := timing.ComputeRowToBeat(minimized)
	rows := make([][]byte, 0, len(rowToBeat))
	line := make([]byte, 0, lanes)
	flush := func() {
		if len(line) >= lanes {
			row := make([]byte, lanes)
			copy(row, line[:lanes])
			rows = append(rows, row)
		}
		line = line[:0]
	}
	for _, b := range minimized {
		switch b {
		case '\n':
			flush()
		case ',', '\r':
		default:
			line = append(line, b)
		}
	}
	flush()
	return AnalyzeRows(rows, rowToBeat, td, s)
}

// buildRows converts note lines into time-resolved rows. Lines whose
// float32 seconds coincide (warped rows land on their destination time)
// merge into a single row.
func (s *Scratch) buildRows(rows [][]byte, rowToBeat []float32, td *timing.Data) {
	rowAt := make(map[uint32]int, len(rows))
	holdEnds := make(map[uint32]*[maxLanes]bool)
	keys := make([]uint32, 0, len(rows))

	for i, line := range rows {
		if i >= len(rowToBeat) {
			break
		}
		beat := float64(rowToBeat[i])
		second := float32(td.TimeForBeatF32(beat))
		judgable := td.IsJudgableAtBeat(beat)
		key := math.Float32bits(second)

		idx, ok := rowAt[key]
		if !ok {
			idx = len(s.rows)
			s.rows = append(s.rows, newChartRow(second, rowToBeat[i]))
			rowAt[key] = idx
			keys = append(keys, key)
		}
		row := &s.rows[idx]
		for col := 0; col < s.lanes && col < len(line); col++ {
			switch line[col] {
			case '1', '2', '4':
				if judgable {
					row.notes[col] = line[col]
					row.noteCount++
				}
			case '3':
				ends := holdEnds[key]
				if ends == nil {
					ends = new([maxLanes]bool)
					holdEnds[key] = ends
				}
				ends[col] = true
			case 'M':
				if judgable {
					row.mines[col] = true
				}
			}
		}
	}

	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })

	ordered := make([]chartRow, len(keys))
	var activeHolds [maxLanes]bool
	for i, key := range keys {
		ordered[i] = s.rows[rowAt[key]]
		row := &ordered[i]
		ends := holdEnds[key]
		for col := 0; col < s.lanes; col++ {
			if activeHolds[col] {
				row.holds[col] = true
			}
			if row.notes[col] == '2' || row.notes[col] == '4' {
				activeHolds[col] = true
			}
			if ends != nil && ends[col] {
				activeHolds[col] = false
			}
		}
	}
	s.rows = append(s.rows[:0], ordered...)
}

// search fills in per-row foot placements by relaxing a layered DAG of
// foot states in row order and backtracking the cheapest path.
func (s *Scratch) search() bool {
	start := newState()
	startIdx := s.internState(start)
	s.nodes = append(s.nodes, searchNode{
		stateIdx: startIdx,
		pred:     -1,
		second:   s.rows[0].second - 1.0,
		cost:     0,
	})

	calc := costCalc{layout: s.layout, w: &s.weights, lanes: s.lanes}
	inf := float32(math.Inf(1))

	prevLayer := []int32{0}
	currLayer := make([]int32, 0, 16)
	currByState := make(map[int32]int32, 16)

	for i := range s.rows {
		row := &s.rows[i]
		entry := s.permutations(row)
		if entry.fallback {
			s.degraded = true
		}

		currLayer = currLayer[:0]
		clear(currByState)

		for _, prevID := range prevLayer {
			prevNode := s.nodes[prevID]
			if math.IsInf(float64(prevNode.cost), 1) {
				continue
			}
			initial := s.states[prevNode.stateIdx]
			elapsed := row.second - prevNode.second
			for p := range entry.perms {
				perm := &entry.perms[p]
				resultIdx := s.initResultState(&initial, row, perm)
				cost := prevNode.cost +
					calc.actionCost(&initial, &s.states[resultIdx], perm, s.rows, i, elapsed)

				nodeID, ok := currByState[resultIdx]
				if !ok {
					nodeID = int32(len(s.nodes))
					s.nodes = append(s.nodes, searchNode{
						stateIdx: resultIdx,
						pred:     -1,
						second:   row.second,
						cost:     inf,
					})
					currByState[resultIdx] = nodeID
					currLayer = append(currLayer, nodeID)
				}
				if cost < s.nodes[nodeID].cost {
					s.nodes[nodeID].cost = cost
					s.nodes[nodeID].pred = prevID
				}
			}
		}

		if len(currLayer) == 0 {
			return false
		}
		prevLayer = append(prevLayer[:0], currLayer...)
	}

	best := int32(-1)
	bestCost := inf
	for _, id := range prevLayer {
		if s.nodes[id].cost < bestCost {
			bestCost = s.nodes[id].cost
			best = id
		}
	}
	if best < 0 {
		return false
	}

	for i, id := len(s.rows)-1, best; i >= 0; i-- {
		if id < 0 {
			return false
		}
		st := &s.states[s.nodes[id].stateIdx]
		s.rows[i].setFootPlacement(&st.combinedColumns)
		id = s.nodes[id].pred
	}
	return true
}

func (s *Scratch) internState(st state) int32 {
	if idx, ok := s.stateIndex[st]; ok {
		return idx
	}
	idx := int32(len(s.states))
	s.states = append(s.states, st)
	s.stateIndex[st] = idx
	return idx
}

// initResultState derives the state reached by covering row with the
// given column assignment starting from initial, and interns it.
func (s *Scratch) initResultState(initial *state, row *chartRow, columns *[maxLanes]Foot) int32 {
	result := newState()
	result.columns = *columns

	for col := 0; col < s.lanes; col++ {
		foot := columns[col]
		if foot == footNone {
			continue
		}
		result.whatNote[foot] = int8(col)
		if !row.holds[col] {
			result.movedColumns[col] = foot
			result.didMove[foot] = true
			continue
		}
		if initial.combinedColumns[col] != foot {
			result.movedColumns[col] = foot
			result.didMove[foot] = true
		}
	}

	for col := 0; col < s.lanes; col++ {
		if row.holds[col] && columns[col] != footNone {
			result.holdColumns[col] = columns[col]
			result.isHolding[columns[col]] = true
		}
	}

	s.mergeCombined(initial, &result)

	for col := 0; col < s.lanes; col++ {
		if f := result.combinedColumns[col]; f != footNone {
			result.whereTheFeetAre[f] = int8(col)
		}
	}

	return s.internState(result)
}

// mergeCombined carries resting feet forward from the previous state.
// A toe only rests in place while its whole foot stayed put.
func (s *Scratch) mergeCombined(initial, result *state) {
	for i := 0; i < s.lanes; i++ {
		if f := result.columns[i]; f != footNone {
			result.combinedColumns[i] = f
			continue
		}
		switch prev := initial.combinedColumns[i]; prev {
		case LeftHeel, RightHeel:
			if !result.didMove[prev] {
				result.combinedColumns[i] = prev
			}
		case LeftToe:
			if !result.didMove[LeftToe] && !result.didMove[LeftHeel] {
				result.combinedColumns[i] = LeftToe
			}
		case RightToe:
			if !result.didMove[RightToe] && !result.didMove[RightHeel] {
				result.combinedColumns[i] = RightToe
			}
		}
	}
}

// permutations returns every legal way to cover the row's active
// columns with foot parts. Rows no exact cover exists for fall back to
// ignoring hold bodies, then to an empty placement.
func (s *Scratch) permutations(row *chartRow) permEntry {
	var key uint16
	for i := 0; i < s.lanes; i++ {
		if row.notes[i] != '0' || row.holds[i] {
			key |= 1 << i
		}
	}
	if entry, ok := s.permCache[key]; ok {
		return entry
	}

	var empty [maxLanes]Foot
	for i := range empty {
		empty[i] = footNone
	}

	entry := permEntry{}
	s.permuteRecursive(row, empty, 0, false, &entry.perms)
	if len(entry.perms) == 0 {
		entry.fallback = true
		s.permuteRecursive(row, empty, 0, true, &entry.perms)
	}
	if len(entry.perms) == 0 {
		entry.perms = append(entry.perms, empty)
	}
	s.permCache[key] = entry
	return entry
}

func (s *Scratch) permuteRecursive(row *chartRow, columns [maxLanes]Foot, colIdx int, ignoreHolds bool, out *[][maxLanes]Foot) {
	if colIdx >= s.lanes {
		if s.validPlacement(&columns) {
			*out = append(*out, columns)
		}
		return
	}
	if row.notes[colIdx] == '0' && (ignoreHolds || !row.holds[colIdx]) {
		s.permuteRecursive(row, columns, colIdx+1, ignoreHolds, out)
		return
	}
	for _, foot := range feet {
		taken := false
		for i := 0; i < s.lanes; i++ {
			if columns[i] == foot {
				taken = true
				break
			}
		}
		if taken {
			continue
		}
		next := columns
		next[colIdx] = foot
		s.permuteRecursive(row, next, colIdx+1, ignoreHolds, out)
	}
}

// validPlacement rejects a toe without its heel and brackets wider than
// one foot can span.
func (s *Scratch) validPlacement(columns *[maxLanes]Foot) bool {
	pos := [numFeet]int{-1, -1, -1, -1}
	for i := 0; i < s.lanes; i++ {
		if f := columns[i]; f != footNone {
			pos[f] = i
		}
	}
	if pos[LeftHeel] < 0 && pos[LeftToe] >= 0 {
		return false
	}
	if pos[RightHeel] < 0 && pos[RightToe] >= 0 {
		return false
	}
	if pos[LeftHeel] >= 0 && pos[LeftToe] >= 0 && !s.layout.BracketCheck(pos[LeftHeel], pos[LeftToe]) {
		return false
	}
	if pos[RightHeel] >= 0 && pos[RightToe] >= 0 && !s.layout.BracketCheck(pos[RightHeel], pos[RightToe]) {
		return false
	}
	return true
}
