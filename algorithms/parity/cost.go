package parity

import "math"

// Cutoffs used when translating placements into tech counts.
const (
	jackCutoff       float32 = 0.176
	footswitchCutoff float32 = 0.3
	doublestepCutoff float32 = 0.235
)

// Thresholds used inside the transition cost model.
const (
	slowBracketThreshold    float32 = 0.15
	jackThreshold           float32 = 0.1
	slowFootswitchThreshold float32 = 0.2
	slowFootswitchIgnore    float32 = 0.4
)

// Weights tunes the foot-placement cost model. Every penalty is named
// so callers can override individual terms; DefaultWeights matches the
// ITGmania tuning.
type Weights struct {
	Mine             float32
	HoldSwitch       float32
	BracketTap       float32
	MovingWithoutPad float32
	BracketJack      float32
	Doublestep       float32
	Jump             float32
	SlowBracket      float32
	TwistedFoot      float32
	Facing           float32
	Spin             float32
	Footswitch       float32
	Sideswitch       float32
	MissedFootswitch float32
	Jack             float32
	Distance         float32
	CrowdedBracket   float32
}

// DefaultWeights returns the standard cost tuning.
func DefaultWeights() Weights {
	return Weights{
		Mine:             1000,
		HoldSwitch:       50,
		BracketTap:       20,
		MovingWithoutPad: 150,
		BracketJack:      100,
		Doublestep:       100,
		Jump:             10,
		SlowBracket:      50,
		TwistedFoot:      1000,
		Facing:           1,
		Spin:             200,
		Footswitch:       50,
		Sideswitch:       50,
		MissedFootswitch: 100,
		Jack:             50,
		Distance:         10,
		CrowdedBracket:   100,
	}
}

type costCalc struct {
	layout *StageLayout
	w      *Weights
	lanes  int
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

func pow32(v, e float32) float32 {
	return float32(math.Pow(float64(v), float64(e)))
}

func (c *costCalc) actionCost(initial, result *state, columns *[maxLanes]Foot, rows []chartRow, rowIndex int, elapsed float32) float32 {
	row := &rows[rowIndex]

	movedLeft := result.didMove[LeftHeel] || result.didMove[LeftToe]
	movedRight := result.didMove[RightHeel] || result.didMove[RightToe]

	didJump := ((initial.didMove[LeftHeel] && !initial.isHolding[LeftHeel]) ||
		(initial.didMove[LeftToe] && !initial.isHolding[LeftToe])) &&
		((initial.didMove[RightHeel] && !initial.isHolding[RightHeel]) ||
			(initial.didMove[RightToe] && !initial.isHolding[RightToe]))

	initialPlacement := placementFromColumns(&initial.combinedColumns, c.lanes)
	resultPlacement := placementFromColumns(columns, c.lanes)
	combinedPlacement := placementFromColumns(&result.combinedColumns, c.lanes)

	jackedLeft := c.didJackLeft(initial, result, &resultPlacement, movedLeft, didJump)
	jackedRight := c.didJackRight(initial, result, &resultPlacement, movedRight, didJump)

	var cost float32
	cost += c.mineCost(&result.combinedColumns, row)
	cost += c.holdSwitchCost(initial, &result.combinedColumns, row)
	cost += c.bracketTapCost(initial, row, &resultPlacement, elapsed)
	cost += c.movingWithoutPadCost(initial, result)
	cost += c.bracketJackCost(movedLeft, movedRight, didJump, jackedLeft, jackedRight, result)
	cost += c.doublestepCost(initial, result, rows, rowIndex, movedLeft, movedRight, didJump, jackedLeft, jackedRight)
	cost += c.jumpCost(row, movedLeft, movedRight, elapsed)
	cost += c.slowBracketCost(row, movedLeft, movedRight, elapsed)
	cost += c.twistedFootCost(&combinedPlacement)
	cost += c.facingCost(&combinedPlacement)
	cost += c.spinCost(initial, &combinedPlacement)
	cost += c.footswitchCost(initial, columns, row, elapsed)
	cost += c.sideswitchCost(initial, result)
	cost += c.missedFootswitchCost(row, jackedLeft, jackedRight)
	cost += c.jackCost(movedLeft, movedRight, jackedLeft, jackedRight, elapsed)
	cost += c.distanceCost(initial, result, elapsed)
	cost += c.crowdedBracketCost(&initialPlacement, &resultPlacement, elapsed)
	return cost
}

func (c *costCalc) didJackSide(initial, result *state, heelCol, toeCol int8, heel, toe Foot) bool {
	movedNonHold := (initial.didMove[heel] && !initial.isHolding[heel]) ||
		(initial.didMove[toe] && !initial.isHolding[toe])
	jacked := false
	if heelCol != invalidColumn &&
		initial.combinedColumns[heelCol] == heel &&
		!result.isHolding[heel] && movedNonHold {
		jacked = true
	}
	if toeCol != invalidColumn &&
		initial.combinedColumns[toeCol] == toe &&
		!result.isHolding[toe] && movedNonHold {
		jacked = true
	}
	return jacked
}

func (c *costCalc) didJackLeft(initial, result *state, p *footPlacement, movedLeft, didJump bool) bool {
	if didJump || !movedLeft {
		return false
	}
	return c.didJackSide(initial, result, p.leftHeel, p.leftToe, LeftHeel, LeftToe)
}

func (c *costCalc) didJackRight(initial, result *state, p *footPlacement, movedRight, didJump bool) bool {
	if didJump || !movedRight {
		return false
	}
	return c.didJackSide(initial, result, p.rightHeel, p.rightToe, RightHeel, RightToe)
}

func (c *costCalc) didDoubleStep(initial *state, rows []chartRow, rowIndex int, movedLeft, jackedLeft, movedRight, jackedRight bool) bool {
	doublestepped := false
	if movedLeft && !jackedLeft &&
		((initial.didMove[LeftHeel] && !initial.isHolding[LeftHeel]) ||
			(initial.didMove[LeftToe] && !initial.isHolding[LeftToe])) {
		doublestepped = true
	}
	if movedRight && !jackedRight &&
		((initial.didMove[RightHeel] && !initial.isHolding[RightHeel]) ||
			(initial.didMove[RightToe] && !initial.isHolding[RightToe])) {
		doublestepped = true
	}
	if rowIndex > 0 {
		lastRow := &rows[rowIndex-1]
		startBeat := lastRow.beat
		endBeat := rows[rowIndex].beat
		for col := 0; col < c.lanes; col++ {
			if !lastRow.holds[col] {
				continue
			}
			// A hold bridging the gap excuses the repeated foot.
			end := float32(math.MaxFloat32)
			for j := rowIndex; j < len(rows); j++ {
				if !rows[j].holds[col] {
					end = rows[j].beat
					break
				}
			}
			if end > startBeat && end < endBeat {
				doublestepped = false
			}
			if end >= endBeat {
				doublestepped = false
			}
		}
	}
	return doublestepped
}

func (c *costCalc) mineCost(combined *[maxLanes]Foot, row *chartRow) float32 {
	for i := 0; i < c.lanes; i++ {
		if combined[i] != footNone && row.mines[i] {
			return c.w.Mine
		}
	}
	return 0
}

func (c *costCalc) holdSwitchCost(initial *state, combined *[maxLanes]Foot, row *chartRow) float32 {
	var cost float32
	for col := 0; col < c.lanes; col++ {
		if !row.holds[col] {
			continue
		}
		f := combined[col]
		if f == footNone {
			continue
		}
		isLeft := f == LeftHeel || f == LeftToe
		initialFoot := initial.combinedColumns[col]
		initialIsLeft := initialFoot == LeftHeel || initialFoot == LeftToe
		initialIsRight := initialFoot == RightHeel || initialFoot == RightToe
		switchLeft := isLeft && !initialIsLeft
		switchRight := !isLeft && !initialIsRight
		if switchLeft || switchRight {
			previousCol := initial.whereTheFeetAre[f]
			scale := float32(1)
			if previousCol != invalidColumn {
				scale = sqrt32(c.layout.distanceSq(col, int(previousCol)))
			}
			cost += c.w.HoldSwitch * scale
		}
	}
	return cost
}

func (c *costCalc) bracketTapSideCost(initial *state, row *chartRow, heelCol, toeCol int8, heel, toe Foot, elapsed float32) float32 {
	jackPenalty := float32(1)
	if initial.didMove[heel] || initial.didMove[toe] {
		jackPenalty = 1 / elapsed
	}
	var cost float32
	if row.holds[heelCol] && !row.holds[toeCol] {
		cost += c.w.BracketTap * jackPenalty
	}
	if row.holds[toeCol] && !row.holds[heelCol] {
		cost += c.w.BracketTap * jackPenalty
	}
	return cost
}

func (c *costCalc) bracketTapCost(initial *state, row *chartRow, p *footPlacement, elapsed float32) float32 {
	var cost float32
	if p.leftBracket {
		cost += c.bracketTapSideCost(initial, row, p.leftHeel, p.leftToe, LeftHeel, LeftToe, elapsed)
	}
	if p.rightBracket {
		cost += c.bracketTapSideCost(initial, row, p.rightHeel, p.rightToe, RightHeel, RightToe, elapsed)
	}
	return cost
}

func (c *costCalc) movingWithoutPadCost(initial, result *state) float32 {
	hasAny := false
	for i := 0; i < c.lanes; i++ {
		if initial.combinedColumns[i] != footNone {
			hasAny = true
			break
		}
	}
	if !hasAny {
		return 0
	}
	var cost float32
	for f := 0; f < numFeet; f++ {
		if !result.didMove[f] {
			continue
		}
		switch feet[f] {
		case LeftHeel, LeftToe:
			if initial.whereTheFeetAre[RightHeel] == invalidColumn &&
				initial.whereTheFeetAre[RightToe] == invalidColumn {
				cost += c.w.MovingWithoutPad
			}
		case RightHeel, RightToe:
			if initial.whereTheFeetAre[LeftHeel] == invalidColumn &&
				initial.whereTheFeetAre[LeftToe] == invalidColumn {
				cost += c.w.MovingWithoutPad
			}
		}
	}
	return cost
}

func (c *costCalc) noHolds(result *state) bool {
	for i := 0; i < c.lanes; i++ {
		if result.holdColumns[i] != footNone {
			return false
		}
	}
	return true
}

func (c *costCalc) bracketJackCost(movedLeft, movedRight, didJump, jackedLeft, jackedRight bool, result *state) float32 {
	var cost float32
	if movedLeft != movedRight && (movedLeft || movedRight) && c.noHolds(result) && !didJump {
		if jackedLeft && result.didMove[LeftHeel] && result.didMove[LeftToe] {
			cost += c.w.BracketJack
		}
		if jackedRight && result.didMove[RightHeel] && result.didMove[RightToe] {
			cost += c.w.BracketJack
		}
	}
	return cost
}

func (c *costCalc) doublestepCost(initial, result *state, rows []chartRow, rowIndex int, movedLeft, movedRight, didJump, jackedLeft, jackedRight bool) float32 {
	if movedLeft != movedRight && (movedLeft || movedRight) && c.noHolds(result) && !didJump {
		if c.didDoubleStep(initial, rows, rowIndex, movedLeft, jackedLeft, movedRight, jackedRight) {
			return c.w.Doublestep
		}
	}
	return 0
}

func (c *costCalc) jumpCost(row *chartRow, movedLeft, movedRight bool, elapsed float32) float32 {
	if movedLeft && movedRight && row.noteCount >= 2 {
		return c.w.Jump / elapsed
	}
	return 0
}

func (c *costCalc) slowBracketCost(row *chartRow, movedLeft, movedRight bool, elapsed float32) float32 {
	if elapsed > slowBracketThreshold && movedLeft != movedRight && row.noteCount >= 2 {
		return (elapsed - slowBracketThreshold) * c.w.SlowBracket
	}
	return 0
}

func (c *costCalc) twistedFootCost(p *footPlacement) float32 {
	leftPos := c.layout.AveragePoint(p.leftHeel, p.leftToe)
	rightPos := c.layout.AveragePoint(p.rightHeel, p.rightToe)

	crossedOver := rightPos.X < leftPos.X
	rightBackwards := p.rightHeel != invalidColumn && p.rightToe != invalidColumn &&
		c.layout.Columns[p.rightToe].Y < c.layout.Columns[p.rightHeel].Y
	leftBackwards := p.leftHeel != invalidColumn && p.leftToe != invalidColumn &&
		c.layout.Columns[p.leftToe].Y < c.layout.Columns[p.leftHeel].Y

	if !crossedOver && (rightBackwards || leftBackwards) {
		return c.w.TwistedFoot
	}
	return 0
}

func (c *costCalc) facingCost(p *footPlacement) float32 {
	heelFacing := c.layout.xDifference(p.leftHeel, p.rightHeel)
	toeFacing := c.layout.xDifference(p.leftToe, p.rightToe)
	leftFacing := c.layout.yDifference(p.leftHeel, p.leftToe)
	rightFacing := c.layout.yDifference(p.rightHeel, p.rightToe)

	penalty := func(facing float32) float32 {
		if facing > 0 {
			facing = 0
		}
		return pow32(-facing, 1.8) * 100
	}

	var cost float32
	if v := penalty(heelFacing); v > 0 {
		cost += v * c.w.Facing
	}
	if v := penalty(toeFacing); v > 0 {
		cost += v * c.w.Facing
	}
	if v := penalty(leftFacing); v > 0 {
		cost += v * c.w.Facing
	}
	if v := penalty(rightFacing); v > 0 {
		cost += v * c.w.Facing
	}
	return cost
}

func (c *costCalc) spinCost(initial *state, p *footPlacement) float32 {
	prevLeft := c.layout.AveragePoint(initial.whereTheFeetAre[LeftHeel], initial.whereTheFeetAre[LeftToe])
	prevRight := c.layout.AveragePoint(initial.whereTheFeetAre[RightHeel], initial.whereTheFeetAre[RightToe])
	left := c.layout.AveragePoint(p.leftHeel, p.leftToe)
	right := c.layout.AveragePoint(p.rightHeel, p.rightToe)

	var cost float32
	if right.X < left.X && prevRight.X < prevLeft.X &&
		right.Y < left.Y && prevRight.Y > prevLeft.Y {
		cost += c.w.Spin
	}
	if right.X < left.X && prevRight.X < prevLeft.X &&
		right.Y > left.Y && prevRight.Y < prevLeft.Y {
		cost += c.w.Spin
	}
	return cost
}

func (c *costCalc) footswitchCost(initial *state, columns *[maxLanes]Foot, row *chartRow, elapsed float32) float32 {
	if elapsed < slowFootswitchThreshold || elapsed >= slowFootswitchIgnore {
		return 0
	}
	for i := 0; i < c.lanes; i++ {
		if row.mines[i] {
			return 0
		}
	}
	var cost float32
	timeScaled := elapsed - slowFootswitchThreshold
	for i := 0; i < c.lanes; i++ {
		initialFoot := initial.combinedColumns[i]
		resultFoot := columns[i]
		if initialFoot == footNone || resultFoot == footNone {
			continue
		}
		if initialFoot != resultFoot && initialFoot != otherPartOfFoot[resultFoot] {
			cost += (timeScaled / (slowFootswitchThreshold + timeScaled)) * c.w.Footswitch
		}
	}
	return cost
}

func (c *costCalc) sideswitchCost(initial, result *state) float32 {
	var cost float32
	for _, col := range c.layout.SideArrows {
		initialFoot := initial.combinedColumns[col]
		resultFoot := result.columns[col]
		if initialFoot == footNone || resultFoot == footNone {
			continue
		}
		if initialFoot != resultFoot && initialFoot != otherPartOfFoot[resultFoot] &&
			!result.didMove[initialFoot] {
			cost += c.w.Sideswitch
		}
	}
	return cost
}

func (c *costCalc) missedFootswitchCost(row *chartRow, jackedLeft, jackedRight bool) float32 {
	if !jackedLeft && !jackedRight {
		return 0
	}
	for i := 0; i < c.lanes; i++ {
		if row.mines[i] {
			return c.w.MissedFootswitch
		}
	}
	return 0
}

func (c *costCalc) jackCost(movedLeft, movedRight, jackedLeft, jackedRight bool, elapsed float32) float32 {
	if elapsed < jackThreshold && movedLeft != movedRight && (jackedLeft || jackedRight) {
		timeScaled := jackThreshold - elapsed
		return (1/timeScaled - 1/jackThreshold) * c.w.Jack
	}
	return 0
}

func (c *costCalc) distanceCost(initial, result *state, elapsed float32) float32 {
	var cost float32
	for f := 0; f < numFeet; f++ {
		if !result.didMove[f] {
			continue
		}
		initialCol := initial.whereTheFeetAre[f]
		if initialCol == invalidColumn {
			continue
		}
		resultCol := result.whereTheFeetAre[f]
		other := otherPartOfFoot[f]
		isBracketing := result.whereTheFeetAre[other] != invalidColumn
		if isBracketing && result.whereTheFeetAre[other] == initialCol {
			continue
		}
		dist := sqrt32(c.layout.distanceSq(int(initialCol), int(resultCol))) * c.w.Distance / elapsed
		if isBracketing {
			dist *= 0.2
		}
		cost += dist
	}
	return cost
}

func leftFootOverlapsRight(initial, result *footPlacement) bool {
	if initial.rightHeel != invalidColumn &&
		(initial.rightHeel == result.leftHeel || initial.rightHeel == result.leftToe) {
		return true
	}
	if initial.rightToe != invalidColumn &&
		(initial.rightToe == result.leftHeel || initial.rightToe == result.leftToe) {
		return true
	}
	return false
}

func rightFootOverlapsLeft(initial, result *footPlacement) bool {
	if initial.leftHeel != invalidColumn &&
		(initial.leftHeel == result.rightHeel || initial.leftHeel == result.rightToe) {
		return true
	}
	if initial.leftToe != invalidColumn &&
		(initial.leftToe == result.rightHeel || initial.leftToe == result.rightToe) {
		return true
	}
	return false
}

func (c *costCalc) crowdedBracketCost(initial, result *footPlacement, elapsed float32) float32 {
	var cost float32
	if result.leftBracket && leftFootOverlapsRight(initial, result) {
		cost += c.w.CrowdedBracket / elapsed
	} else if initial.leftBracket && rightFootOverlapsLeft(initial, result) {
		cost += c.w.CrowdedBracket / elapsed
	}
	if result.rightBracket && rightFootOverlapsLeft(initial, result) {
		cost += c.w.CrowdedBracket / elapsed
	} else if initial.rightBracket && leftFootOverlapsRight(initial, result) {
		cost += c.w.CrowdedBracket / elapsed
	}
	return cost
}
