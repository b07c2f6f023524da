package patterns

type arrow int

const (
	arrowL arrow = iota
	arrowD
	arrowU
	arrowR
)

type foot int

const (
	footNone foot = iota
	footLeft
	footRight
)

type facingDirection int

const (
	facingNone facingDirection = iota
	facingLeft
	facingRight
)

func mapBitmaskToArrow(mask uint8) (arrow, bool) {
	switch mask {
	case maskLeft:
		return arrowL, true
	case maskDown:
		return arrowD, true
	case maskUp:
		return arrowU, true
	case maskRight:
		return arrowR, true
	}
	return 0, false
}

// transitionDirection classifies a two-step move as rotating the body
// left, right, or neither (straight crossings like L to R).
func transitionDirection(a, b arrow) facingDirection {
	switch {
	case (a == arrowL && b == arrowU) || (a == arrowD && b == arrowR) ||
		(a == arrowR && b == arrowD) || (a == arrowU && b == arrowL):
		return facingLeft
	case (a == arrowL && b == arrowD) || (a == arrowU && b == arrowR) ||
		(a == arrowR && b == arrowU) || (a == arrowD && b == arrowL):
		return facingRight
	}
	return facingNone
}

type facingState struct {
	dir   facingDirection
	count int
}

// CountFacingSteps counts steps spent in left-facing and right-facing
// mono segments. A segment is a run of single-arrow steps whose
// rotations all turn the same way under alternating feet; it only
// counts once it reaches monoThreshold steps. Rows with zero or
// multiple arrows break the sequence.
func CountFacingSteps(bitmasks []uint8, monoThreshold int) (uint32, uint32) {
	var finalLeft, finalRight uint32
	var current []arrow

	flush := func() {
		l, r := countFacingStepsInArrows(current, monoThreshold)
		finalLeft += l
		finalRight += r
		current = current[:0]
	}

	for _, mask := range bitmasks {
		if a, ok := mapBitmaskToArrow(mask); ok {
			current = append(current, a)
		} else {
			flush()
		}
	}
	flush()
	return finalLeft, finalRight
}

func countFacingStepsInArrows(arrows []arrow, monoThreshold int) (uint32, uint32) {
	if len(arrows) == 0 {
		return 0, 0
	}

	var finalLeft, finalRight uint32
	state := facingState{dir: facingNone, count: 1}

	finalizeSegment := func() {
		switch state.dir {
		case facingLeft:
			if state.count >= monoThreshold {
				finalLeft += uint32(state.count)
			}
		case facingRight:
			if state.count >= monoThreshold {
				finalRight += uint32(state.count)
			}
		}
		state = facingState{dir: facingNone, count: 0}
	}

	// Feet alternate within a segment; L and R force their foot, U and
	// D stay pending until a forced arrow resolves the chain backward.
	footUsage := make([]foot, len(arrows))

	switch arrows[0] {
	case arrowL:
		footUsage[0] = footLeft
	case arrowR:
		footUsage[0] = footRight
	}
	pendingCount := 0
	if footUsage[0] == footNone {
		pendingCount = 1
	}

	backPropagate := func(idx, pending int) {
		for i := idx - 1; i >= 0 && idx-i <= pending; i-- {
			if footUsage[i+1] == footLeft {
				footUsage[i] = footRight
			} else {
				footUsage[i] = footLeft
			}
		}
	}

	for i := 1; i < len(arrows); i++ {
		prev, curr := arrows[i-1], arrows[i]
		trans := transitionDirection(prev, curr)

		if footUsage[i-1] == footNone {
			if curr == arrowL || curr == arrowR {
				if curr == arrowL {
					footUsage[i] = footLeft
				} else {
					footUsage[i] = footRight
				}
				backPropagate(i, pendingCount)
				pendingCount = 0
			} else {
				pendingCount++
			}
		} else {
			altFoot := footLeft
			if footUsage[i-1] == footLeft {
				altFoot = footRight
			}
			if curr == arrowL || curr == arrowR {
				neededFoot := footLeft
				if curr == arrowR {
					neededFoot = footRight
				}
				if neededFoot != altFoot {
					// Double-step on the same foot breaks the segment.
					finalizeSegment()
					footUsage[i] = neededFoot
				} else {
					footUsage[i] = altFoot
				}
			} else {
				footUsage[i] = altFoot
			}
		}

		switch state.dir {
		case facingNone:
			switch trans {
			case facingLeft:
				state = facingState{dir: facingLeft, count: state.count + 1}
			case facingRight:
				state = facingState{dir: facingRight, count: state.count + 1}
			default:
				state.count++
			}
		case facingLeft:
			if trans == facingRight {
				if state.count >= monoThreshold {
					finalLeft += uint32(state.count)
				}
				state = facingState{dir: facingRight, count: 1}
			} else {
				state.count++
			}
		case facingRight:
			if trans == facingLeft {
				if state.count >= monoThreshold {
					finalRight += uint32(state.count)
				}
				state = facingState{dir: facingLeft, count: 1}
			} else {
				state.count++
			}
		}
	}

	switch state.dir {
	case facingLeft:
		if state.count >= monoThreshold {
			finalLeft += uint32(state.count)
		}
	case facingRight:
		if state.count >= monoThreshold {
			finalRight += uint32(state.count)
		}
	}
	return finalLeft, finalRight
}
