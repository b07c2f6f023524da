package patterns

import (
	"reflect"
	"testing"
)

func masks(letters string) []uint8 {
	out := make([]uint8, 0, len(letters))
	for _, c := range letters {
		switch c {
		case 'L':
			out = append(out, maskLeft)
		case 'D':
			out = append(out, maskDown)
		case 'U':
			out = append(out, maskUp)
		case 'R':
			out = append(out, maskRight)
		default:
			out = append(out, 0)
		}
	}
	return out
}

func TestDetectDefaultPatternsStaircase(t *testing.T) {
	counts := DetectDefaultPatterns(masks("LDUR"))
	if counts[StaircaseRight] != 1 {
		t.Errorf("StaircaseRight = %d, want 1", counts[StaircaseRight])
	}
	for v := PatternVariant(0); v < PatternCount; v++ {
		if v != StaircaseRight && counts[v] != 0 {
			t.Errorf("variant %d = %d, want 0", v, counts[v])
		}
	}
}

func TestDetectDefaultPatternsPrefersLongest(t *testing.T) {
	// The sweep consumes its rows, so the staircase it contains never
	// counts separately.
	counts := DetectDefaultPatterns(masks("LDURUDL"))
	if counts[SweepLeft] != 1 {
		t.Errorf("SweepLeft = %d, want 1", counts[SweepLeft])
	}
	if counts[StaircaseRight] != 0 {
		t.Errorf("StaircaseRight = %d, want 0", counts[StaircaseRight])
	}
}

func TestDetectDefaultPatternsNonOverlapping(t *testing.T) {
	counts := DetectDefaultPatterns(masks("LRLRLRLR"))
	// Eight alternating steps split into a five-row tower and then run
	// out of rows for a second box.
	if counts[TowerLR] != 1 {
		t.Errorf("TowerLR = %d, want 1", counts[TowerLR])
	}
	if counts[BoxLR] != 0 {
		t.Errorf("BoxLR = %d, want 0", counts[BoxLR])
	}
}

func TestDetectDefaultPatternsBoxOrientations(t *testing.T) {
	if counts := DetectDefaultPatterns(masks("LRLR")); counts[BoxLR] != 1 {
		t.Errorf("LRLR BoxLR = %d, want 1", counts[BoxLR])
	}
	if counts := DetectDefaultPatterns(masks("RLRL")); counts[BoxLR] != 1 {
		t.Errorf("RLRL BoxLR = %d, want 1", counts[BoxLR])
	}
}

func TestDetectDefaultPatternsRestRow(t *testing.T) {
	counts := DetectDefaultPatterns(masks("LURNRD"))
	if counts[SideswitchGallopLeft] != 1 {
		t.Errorf("SideswitchGallopLeft = %d, want 1", counts[SideswitchGallopLeft])
	}
}

func TestCountAnchors(t *testing.T) {
	left, down, up, right := CountAnchors(masks("LDLDL"))
	if left != 1 || down != 0 || up != 0 || right != 0 {
		t.Errorf("anchors = (%d, %d, %d, %d), want (1, 0, 0, 0)", left, down, up, right)
	}

	left, _, _, right = CountAnchors(masks("LDU"))
	if left != 0 || right != 0 {
		t.Errorf("short input anchors = (%d, %d), want zeros", left, right)
	}
}

func TestCompileCustomPatterns(t *testing.T) {
	c := CompileCustomPatterns([]string{"ldur", "L", "LXUR", " du "})
	if c.Empty() {
		t.Fatal("expected compiled patterns")
	}
	// Templates count independently, so "DU" also matches inside the
	// staircase.
	got := DetectCustomPatterns(masks("LDURDU"), c)
	want := []CustomPatternCount{
		{Pattern: "LDUR", Count: 1},
		{Pattern: "DU", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DetectCustomPatterns = %+v, want %+v", got, want)
	}
}

func TestCompiledCustomPatternsEmpty(t *testing.T) {
	var nilC *CompiledCustomPatterns
	if !nilC.Empty() {
		t.Error("nil compiled set should be empty")
	}
	if !CompileCustomPatterns([]string{"X", "L"}).Empty() {
		t.Error("all-invalid templates should compile to empty")
	}
	if got := DetectCustomPatterns(masks("LDUR"), nilC); got != nil {
		t.Errorf("nil compiled set should detect nothing, got %+v", got)
	}
}

func TestDetectCustomPatternsNonOverlapping(t *testing.T) {
	c := CompileCustomPatterns([]string{"LDUR"})
	got := DetectCustomPatterns(masks("LDURLDUR"), c)
	if len(got) != 1 || got[0].Count != 2 {
		t.Errorf("DetectCustomPatterns = %+v, want count 2", got)
	}
}

func TestCountFacingSteps(t *testing.T) {
	// L to U and U to L both rotate the body left.
	left, right := CountFacingSteps(masks("LULULU"), 6)
	if left != 6 || right != 0 {
		t.Errorf("facing = (%d, %d), want (6, 0)", left, right)
	}

	left, right = CountFacingSteps(masks("LULULU"), 7)
	if left != 0 || right != 0 {
		t.Errorf("below-threshold facing = (%d, %d), want zeros", left, right)
	}

	left, right = CountFacingSteps(masks("LDLD"), 4)
	if left != 0 || right != 4 {
		t.Errorf("right-facing = (%d, %d), want (0, 4)", left, right)
	}
}

func TestCountFacingStepsJumpBreaksSequence(t *testing.T) {
	bitmasks := masks("LULU")
	bitmasks = append(bitmasks, maskLeft|maskRight)
	bitmasks = append(bitmasks, masks("LU")...)

	left, right := CountFacingSteps(bitmasks, 4)
	if left != 4 || right != 0 {
		t.Errorf("facing = (%d, %d), want (4, 0)", left, right)
	}
}
