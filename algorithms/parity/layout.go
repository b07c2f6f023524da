// Package parity assigns feet to note rows by running a cost-minimizing
// search over foot placements, then derives technical step counts
// (crossovers, footswitches, brackets, jacks, doublesteps) from the
// chosen assignment.
package parity

// maxLanes is the widest supported stage. Narrower stages leave the
// trailing columns unused.
const maxLanes = 8

const invalidColumn int8 = -1

// StagePoint is a panel position on the dance stage, in panel units.
type StagePoint struct {
	X float32
	Y float32
}

// StageLayout describes panel geometry for one step type. UpArrows,
// DownArrows and SideArrows index into Columns.
type StageLayout struct {
	Columns    []StagePoint
	UpArrows   []int
	DownArrows []int
	SideArrows []int
}

// DanceSingleLayout returns the four-panel single stage.
func DanceSingleLayout() *StageLayout {
	return &StageLayout{
		Columns: []StagePoint{
			{X: 0, Y: 1}, // left
			{X: 1, Y: 0}, // down
			{X: 1, Y: 2}, // up
			{X: 2, Y: 1}, // right
		},
		UpArrows:   []int{2},
		DownArrows: []int{1},
		SideArrows: []int{0, 3},
	}
}

// DanceDoubleLayout returns the eight-panel double stage, second pad
// directly to the right of the first.
func DanceDoubleLayout() *StageLayout {
	return &StageLayout{
		Columns: []StagePoint{
			{X: 0, Y: 1},
			{X: 1, Y: 0},
			{X: 1, Y: 2},
			{X: 2, Y: 1},
			{X: 3, Y: 1},
			{X: 4, Y: 0},
			{X: 4, Y: 2},
			{X: 5, Y: 1},
		},
		UpArrows:   []int{2, 6},
		DownArrows: []int{1, 5},
		SideArrows: []int{0, 3, 4, 7},
	}
}

// LayoutForLanes maps a lane count to its stage layout, or nil when the
// step type has no known geometry.
func LayoutForLanes(lanes int) *StageLayout {
	switch lanes {
	case 4:
		return DanceSingleLayout()
	case 8:
		return DanceDoubleLayout()
	default:
		return nil
	}
}

// BracketCheck reports whether one foot can cover both columns at once.
func (l *StageLayout) BracketCheck(c1, c2 int) bool {
	p1, p2 := l.Columns[c1], l.Columns[c2]
	dx, dy := p1.X-p2.X, p1.Y-p2.Y
	return dx*dx+dy*dy <= 2.0
}

// AveragePoint returns the midpoint of two columns. A single valid
// column stands for itself and two invalid columns collapse to origin.
func (l *StageLayout) AveragePoint(c1, c2 int8) StagePoint {
	switch {
	case c1 == invalidColumn && c2 == invalidColumn:
		return StagePoint{}
	case c1 == invalidColumn:
		return l.Columns[c2]
	case c2 == invalidColumn:
		return l.Columns[c1]
	default:
		return StagePoint{
			X: (l.Columns[c1].X + l.Columns[c2].X) / 2,
			Y: (l.Columns[c1].Y + l.Columns[c2].Y) / 2,
		}
	}
}

func (l *StageLayout) distanceSq(c1, c2 int) float32 {
	p1, p2 := l.Columns[c1], l.Columns[c2]
	dx, dy := p1.X-p2.X, p1.Y-p2.Y
	return dx*dx + dy*dy
}

func (l *StageLayout) xDifference(c1, c2 int8) float32 {
	if c1 == invalidColumn || c2 == invalidColumn {
		return 0
	}
	return l.Columns[c2].X - l.Columns[c1].X
}

func (l *StageLayout) yDifference(c1, c2 int8) float32 {
	if c1 == invalidColumn || c2 == invalidColumn {
		return 0
	}
	return l.Columns[c2].Y - l.Columns[c1].Y
}
