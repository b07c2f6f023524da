package hashing

import "testing"

func TestComputeChartHash(t *testing.T) {
	tests := []struct {
		name  string
		chart string
		bpms  string
		want  string
	}{
		{
			name:  "chart with tempo",
			chart: "1000\n0001",
			bpms:  "0.000=180.000",
			want:  "f537b717d630bf65",
		},
		{
			name:  "empty input",
			chart: "",
			bpms:  "",
			want:  "da39a3ee5e6b4b0d",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeChartHash([]byte(tt.chart), tt.bpms)
			if got != tt.want {
				t.Errorf("ComputeChartHash() = %q, want %q", got, tt.want)
			}
			if len(got) != 16 {
				t.Errorf("hash length = %d, want 16", len(got))
			}
		})
	}
}

func TestComputeTempoNeutralHash(t *testing.T) {
	chart := []byte("1000\n0001")
	got := ComputeTempoNeutralHash(chart)
	if want := "ef8af2133d4942a6"; got != want {
		t.Errorf("ComputeTempoNeutralHash() = %q, want %q", got, want)
	}
	if got == ComputeChartHash(chart, "0.000=180.000") {
		t.Error("tempo-neutral hash should differ from tempo-sensitive hash")
	}
}
