package matrix

import (
	"math"
	"testing"

	"github.com/stridelab/stepscan/algorithms/timing"
)

func TestGetDifficultyTableValues(t *testing.T) {
	tests := []struct {
		bpm      float64
		measures float64
		want     float64
	}{
		{120, 8, 9},
		{120, 16, 10},
		{200, 16, 14},
		{200, 512, 20},
	}
	for _, tt := range tests {
		if got := GetDifficulty(tt.bpm, tt.measures); got != tt.want {
			t.Errorf("GetDifficulty(%v, %v) = %v, want %v", tt.bpm, tt.measures, got, tt.want)
		}
	}
}

func TestGetDifficultyExtrapolatesBelowTable(t *testing.T) {
	// Shorter than the shortest rated run: difficulty falls off with
	// the log of the shortfall.
	want := 13 - math.Log(2)
	if got := GetDifficulty(200, 4); math.Abs(got-want) > 1e-9 {
		t.Errorf("GetDifficulty(200, 4) = %v, want %v", got, want)
	}
	if got := GetDifficulty(200, 0); got != 0 {
		t.Errorf("GetDifficulty(200, 0) = %v, want 0", got)
	}
}

func TestGetDifficultyPlateau(t *testing.T) {
	// Past the longest rated run the rating keeps climbing slowly.
	base := GetDifficulty(200, 512)
	longer := GetDifficulty(200, 1024)
	if longer <= base {
		t.Errorf("plateau rating did not grow: %v then %v", base, longer)
	}
	want := base + math.Log(1024.0/512.0)
	if math.Abs(longer-want) > 1e-9 {
		t.Errorf("GetDifficulty(200, 1024) = %v, want %v", longer, want)
	}
}

func TestGetDifficultyMonotonicity(t *testing.T) {
	if GetDifficulty(300, 64) <= GetDifficulty(200, 64) {
		t.Error("faster streams should rate higher")
	}
	if GetDifficulty(200, 128) <= GetDifficulty(200, 16) {
		t.Error("longer streams should rate higher")
	}
}

func TestGetDifficultyInterpolatesBetweenRows(t *testing.T) {
	lo := GetDifficulty(200, 64)
	hi := GetDifficulty(210, 64)
	mid := GetDifficulty(205, 64)
	if mid <= lo || mid >= hi {
		t.Errorf("GetDifficulty(205, 64) = %v, want between %v and %v", mid, lo, hi)
	}
}

func TestComputeMatrixRating(t *testing.T) {
	bpmMap := []timing.BPMChange{{Beat: 0, BPM: 120}}

	densities := make([]int, 16)
	for i := range densities {
		densities[i] = 16
	}
	if got := ComputeMatrixRating(densities, bpmMap); got != 10 {
		t.Errorf("ComputeMatrixRating = %v, want 10", got)
	}

	// Break measures do not join the stream group.
	withBreaks := append(append([]int{0, 0}, densities...), 0)
	if got := ComputeMatrixRating(withBreaks, bpmMap); got != 10 {
		t.Errorf("rating with breaks = %v, want 10", got)
	}
}

func TestComputeMatrixRatingDensityMultiplier(t *testing.T) {
	bpmMap := []timing.BPMChange{{Beat: 0, BPM: 150}}
	sixteenths := []int{16, 16, 16, 16, 16, 16, 16, 16}
	twentyFourths := []int{24, 24, 24, 24, 24, 24, 24, 24}
	if ComputeMatrixRating(twentyFourths, bpmMap) <= ComputeMatrixRating(sixteenths, bpmMap) {
		t.Error("24ths at the same tempo should rate higher than 16ths")
	}
}

func TestComputeMatrixRatingEmpty(t *testing.T) {
	if got := ComputeMatrixRating(nil, []timing.BPMChange{{Beat: 0, BPM: 120}}); got != 0 {
		t.Errorf("empty densities = %v, want 0", got)
	}
	if got := ComputeMatrixRating([]int{16}, nil); got != 0 {
		t.Errorf("empty bpm map = %v, want 0", got)
	}
}
