package parity

// Foot identifies one of the four foot parts used for placement. Heels
// carry single-panel steps; a heel plus its toe forms a bracket.
type Foot int8

const (
	footNone Foot = iota - 1
	LeftHeel
	LeftToe
	RightHeel
	RightToe
)

const numFeet = 4

var feet = [numFeet]Foot{LeftHeel, LeftToe, RightHeel, RightToe}

// otherPartOfFoot pairs each heel with its toe and vice versa.
var otherPartOfFoot = [numFeet]Foot{LeftToe, LeftHeel, RightToe, RightHeel}

// state captures foot positions after resolving one row. columns holds
// the row's own assignment, combinedColumns the assignment merged with
// feet resting from earlier rows. The struct is comparable and serves
// as its own dedup key when layering the search.
type state struct {
	columns         [maxLanes]Foot
	combinedColumns [maxLanes]Foot
	movedColumns    [maxLanes]Foot
	holdColumns     [maxLanes]Foot
	whereTheFeetAre [numFeet]int8
	whatNote        [numFeet]int8
	didMove         [numFeet]bool
	isHolding       [numFeet]bool
}

func newState() state {
	var s state
	for i := range s.columns {
		s.columns[i] = footNone
		s.combinedColumns[i] = footNone
		s.movedColumns[i] = footNone
		s.holdColumns[i] = footNone
	}
	for f := 0; f < numFeet; f++ {
		s.whereTheFeetAre[f] = invalidColumn
		s.whatNote[f] = invalidColumn
	}
	return s
}

// chartRow is a time-resolved row handed to the search. Rows landing on
// the same float32 second are merged before the search runs.
type chartRow struct {
	second    float32
	beat      float32
	notes     [maxLanes]byte
	holds     [maxLanes]bool
	mines     [maxLanes]bool
	parity    [maxLanes]Foot
	feetAt    [numFeet]int8
	noteCount int
}

func newChartRow(second, beat float32) chartRow {
	r := chartRow{second: second, beat: beat}
	for i := range r.notes {
		r.notes[i] = '0'
		r.parity[i] = footNone
	}
	for f := 0; f < numFeet; f++ {
		r.feetAt[f] = invalidColumn
	}
	return r
}

func (r *chartRow) setFootPlacement(placement *[maxLanes]Foot) {
	r.parity = *placement
	for f := 0; f < numFeet; f++ {
		r.feetAt[f] = invalidColumn
	}
	for col, foot := range placement {
		if foot != footNone {
			r.feetAt[foot] = int8(col)
		}
	}
}

// footPlacement is the per-foot column view of a column assignment.
type footPlacement struct {
	leftHeel     int8
	leftToe      int8
	rightHeel    int8
	rightToe     int8
	leftBracket  bool
	rightBracket bool
}

func placementFromColumns(columns *[maxLanes]Foot, lanes int) footPlacement {
	p := footPlacement{
		leftHeel:  invalidColumn,
		leftToe:   invalidColumn,
		rightHeel: invalidColumn,
		rightToe:  invalidColumn,
	}
	for i := 0; i < lanes; i++ {
		switch columns[i] {
		case LeftHeel:
			p.leftHeel = int8(i)
		case LeftToe:
			p.leftToe = int8(i)
		case RightHeel:
			p.rightHeel = int8(i)
		case RightToe:
			p.rightToe = int8(i)
		}
	}
	p.leftBracket = p.leftHeel != invalidColumn && p.leftToe != invalidColumn
	p.rightBracket = p.rightHeel != invalidColumn && p.rightToe != invalidColumn
	return p
}
