package common

import (
	"math"
	"testing"
)

func TestRoundDP(t *testing.T) {
	tests := []struct {
		value float64
		dp    int
		want  float64
	}{
		{1.23456, 2, 1.23},
		{1.005, 0, 1},
		{-2.675, 1, -2.7},
		{120, 2, 120},
		{2.5, 0, 2}, // ties to even
		{3.5, 0, 4},
	}
	for _, tt := range tests {
		if got := RoundDP(tt.value, tt.dp); got != tt.want {
			t.Errorf("RoundDP(%v, %d) = %v, want %v", tt.value, tt.dp, got, tt.want)
		}
	}
	if got := RoundDP(math.Inf(1), 2); !math.IsInf(got, 1) {
		t.Errorf("RoundDP(+Inf) = %v, want +Inf", got)
	}
}

func TestRoundSigFigs6(t *testing.T) {
	tests := []struct {
		value float64
		want  float64
	}{
		{123456.789, 123457},
		{0.001234567, 0.00123457},
		{3.5, 3.5},
		{0, 0},
	}
	for _, tt := range tests {
		if got := RoundSigFigs6(tt.value); got != tt.want {
			t.Errorf("RoundSigFigs6(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestFmtDec3(t *testing.T) {
	if got, want := FmtDec3ITG(0.009), "0.009"; got != want {
		t.Errorf("FmtDec3ITG(0.009) = %q, want %q", got, want)
	}
	if got, want := FmtDec3ITG(120), "120.000"; got != want {
		t.Errorf("FmtDec3ITG(120) = %q, want %q", got, want)
	}
	// 62.5 is exact in binary, so this pins the half-up tie behavior.
	if got, want := FmtDec3HalfUp(0.0625), "0.063"; got != want {
		t.Errorf("FmtDec3HalfUp(0.0625) = %q, want %q", got, want)
	}
}

func TestLrint(t *testing.T) {
	if got := LrintF64(2.5); got != 2 {
		t.Errorf("LrintF64(2.5) = %v, want 2", got)
	}
	if got := LrintF64(3.5); got != 4 {
		t.Errorf("LrintF64(3.5) = %v, want 4", got)
	}
	if got := LrintF32(-1.5); got != -2 {
		t.Errorf("LrintF32(-1.5) = %v, want -2", got)
	}
	if got := LrintF64(math.NaN()); got != 0 {
		t.Errorf("LrintF64(NaN) = %v, want 0", got)
	}
}
