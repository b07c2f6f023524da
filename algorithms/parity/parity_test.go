package parity

import (
	"testing"

	"github.com/stridelab/stepscan/algorithms/timing"
)

func testTiming(t *testing.T) *timing.Data {
	t.Helper()
	return timing.NewData(0, 0, &timing.TimingSegments{
		BPMs: [][2]float32{{0, 120}},
	})
}

func toRows(lines ...string) [][]byte {
	rows := make([][]byte, len(lines))
	for i, l := range lines {
		rows[i] = []byte(l)
	}
	return rows
}

func beats(step float32, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i) * step
	}
	return out
}

func TestAnalyzeRowsQuarterStreamHasNoTech(t *testing.T) {
	// At 120 BPM quarter notes are half a second apart, outside every
	// jack/footswitch/doublestep cutoff.
	rows := toRows("1000", "0100", "0010", "0001")
	got := AnalyzeRows(rows, beats(1, 4), testTiming(t), NewScratch(4))
	if got != (TechCounts{}) {
		t.Errorf("tech counts = %+v, want all zero", got)
	}
}

func TestAnalyzeRowsCountsJacks(t *testing.T) {
	// Left forces onto the repeated arrow once both feet are placed;
	// resting feet repeat their column on every following row too.
	rows := toRows("1000", "0001", "1000", "1000")
	got := AnalyzeRows(rows, beats(0.25, 4), testTiming(t), NewScratch(4))
	if got.Jacks != 5 {
		t.Errorf("Jacks = %d, want 5", got.Jacks)
	}
	if got.Doublesteps != 0 {
		t.Errorf("Doublesteps = %d, want 0", got.Doublesteps)
	}
}

func TestAnalyzeRowsFreshFootTakesRepeat(t *testing.T) {
	// With only one foot placed, stepping the idle foot is cheaper
	// than reusing the planted one, so the repeat reads as a switch.
	rows := toRows("1000", "1000")
	got := AnalyzeRows(rows, beats(0.25, 2), testTiming(t), NewScratch(4))
	if got.Sideswitches != 1 {
		t.Errorf("Sideswitches = %d, want 1", got.Sideswitches)
	}
	if got.Jacks != 0 {
		t.Errorf("Jacks = %d, want 0", got.Jacks)
	}
}

func TestAnalyzeRowsDegradesOnUncoverableRow(t *testing.T) {
	s := NewScratch(8)
	got := AnalyzeRows(toRows("11111000"), []float32{0}, testTiming(t), s)
	if got != (TechCounts{}) {
		t.Errorf("tech counts = %+v, want all zero", got)
	}
	if !s.Degraded() {
		t.Error("Degraded() = false, want true after fallback placement")
	}
}

func TestAnalyzeChartMatchesAnalyzeRows(t *testing.T) {
	minimized := []byte("1000\n0001\n1000\n1000")
	want := AnalyzeRows(
		toRows("1000", "0001", "1000", "1000"),
		beats(1, 4),
		testTiming(t),
		NewScratch(4),
	)
	got := AnalyzeChart(minimized, testTiming(t), 4)
	if got != want {
		t.Errorf("AnalyzeChart = %+v, want %+v", got, want)
	}
}

func TestPermutations(t *testing.T) {
	tests := []struct {
		name  string
		lanes int
		line  string
		want  int
	}{
		{"single tap heel only", 4, "1000", 2},
		{"spread taps need both heels", 4, "1001", 2},
		{"adjacent taps allow brackets", 4, "1100", 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScratch(tt.lanes)
			row := newChartRow(0, 0)
			for col, ch := range []byte(tt.line) {
				if ch != '0' {
					row.notes[col] = ch
					row.noteCount++
				}
			}
			entry := s.permutations(&row)
			if len(entry.perms) != tt.want {
				t.Errorf("got %d placements, want %d", len(entry.perms), tt.want)
			}
			if entry.fallback {
				t.Error("fallback = true, want false")
			}
		})
	}
}

func TestUnsupportedLanesReturnZero(t *testing.T) {
	got := AnalyzeRows(toRows("100000", "010000"), beats(1, 2), testTiming(t), NewScratch(6))
	if got != (TechCounts{}) {
		t.Errorf("tech counts = %+v, want all zero", got)
	}
}
