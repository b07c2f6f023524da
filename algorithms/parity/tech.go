package parity

// TechCounts aggregates the technical step statistics recognized from
// the winning foot assignment.
type TechCounts struct {
	Crossovers       uint32
	HalfCrossovers   uint32
	FullCrossovers   uint32
	Footswitches     uint32
	UpFootswitches   uint32
	DownFootswitches uint32
	Sideswitches     uint32
	Jacks            uint32
	Brackets         uint32
	Doublesteps      uint32
}

func techCountsFromRows(rows []chartRow, layout *StageLayout) TechCounts {
	var out TechCounts
	if len(rows) < 2 {
		return out
	}

	for i := 1; i < len(rows); i++ {
		current := &rows[i]
		previous := &rows[i-1]
		elapsed := current.second - previous.second

		if current.noteCount == 1 && previous.noteCount == 1 {
			for f := 0; f < numFeet; f++ {
				currentCol := current.feetAt[f]
				previousCol := previous.feetAt[f]
				if currentCol == invalidColumn || previousCol == invalidColumn {
					continue
				}
				if currentCol == previousCol {
					if elapsed < jackCutoff {
						out.Jacks++
					}
				} else if elapsed < doublestepCutoff {
					out.Doublesteps++
				}
			}
		}

		if current.noteCount >= 2 {
			if current.feetAt[LeftHeel] != invalidColumn && current.feetAt[LeftToe] != invalidColumn {
				out.Brackets++
			}
			if current.feetAt[RightHeel] != invalidColumn && current.feetAt[RightToe] != invalidColumn {
				out.Brackets++
			}
		}

		for _, col := range layout.UpArrows {
			if isFootswitch(col, current, previous, elapsed) {
				out.UpFootswitches++
				out.Footswitches++
			}
		}
		for _, col := range layout.DownArrows {
			if isFootswitch(col, current, previous, elapsed) {
				out.DownFootswitches++
				out.Footswitches++
			}
		}
		for _, col := range layout.SideArrows {
			if isFootswitch(col, current, previous, elapsed) {
				out.Sideswitches++
			}
		}

		countCrossover(rows, i, layout, &out)
	}

	return out
}

// countCrossover detects a foot landing on the far side of the other
// resting foot, classifying it as half or full by where that foot came
// from two rows back.
func countCrossover(rows []chartRow, i int, layout *StageLayout, out *TechCounts) {
	current := &rows[i]
	previous := &rows[i-1]

	rightHeel := current.feetAt[RightHeel]
	leftHeel := current.feetAt[LeftHeel]
	prevLeftHeel := previous.feetAt[LeftHeel]
	prevLeftToe := previous.feetAt[LeftToe]
	prevRightHeel := previous.feetAt[RightHeel]
	prevRightToe := previous.feetAt[RightToe]

	if rightHeel != invalidColumn && prevLeftHeel != invalidColumn && prevRightHeel == invalidColumn {
		leftPos := layout.AveragePoint(prevLeftHeel, prevLeftToe)
		rightPos := layout.AveragePoint(rightHeel, current.feetAt[RightToe])
		if rightPos.X >= leftPos.X {
			return
		}
		if i > 1 {
			beforeHeel := rows[i-2].feetAt[RightHeel]
			if beforeHeel != invalidColumn && beforeHeel != rightHeel {
				if layout.Columns[beforeHeel].X > leftPos.X {
					out.FullCrossovers++
				} else {
					out.HalfCrossovers++
				}
				out.Crossovers++
			}
		} else {
			out.HalfCrossovers++
			out.Crossovers++
		}
	} else if leftHeel != invalidColumn && prevRightHeel != invalidColumn && prevLeftHeel == invalidColumn {
		leftPos := layout.AveragePoint(leftHeel, current.feetAt[LeftToe])
		rightPos := layout.AveragePoint(prevRightHeel, prevRightToe)
		if rightPos.X >= leftPos.X {
			return
		}
		if i > 1 {
			beforeHeel := rows[i-2].feetAt[LeftHeel]
			if beforeHeel != invalidColumn && beforeHeel != leftHeel {
				if rightPos.X > layout.Columns[beforeHeel].X {
					out.FullCrossovers++
				} else {
					out.HalfCrossovers++
				}
				out.Crossovers++
			}
		} else {
			out.HalfCrossovers++
			out.Crossovers++
		}
	}
}

func isFootswitch(column int, current, previous *chartRow, elapsed float32) bool {
	if elapsed >= footswitchCutoff {
		return false
	}
	prev := previous.parity[column]
	curr := current.parity[column]
	if prev == footNone || curr == footNone {
		return false
	}
	return prev != curr && otherPartOfFoot[prev] != curr
}
