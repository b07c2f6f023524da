package analysis

import "testing"

func TestComputeAllHashesMatchesAnalyze(t *testing.T) {
	summary, err := Analyze([]byte(basicSM), "sm", DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	hashes, err := ComputeAllHashes([]byte(basicSM), "sm")
	if err != nil {
		t.Fatalf("ComputeAllHashes() error = %v", err)
	}
	if len(hashes) != 1 {
		t.Fatalf("len(hashes) = %d, want 1", len(hashes))
	}
	h := hashes[0]
	if got, want := h.StepType, "dance-single"; got != want {
		t.Errorf("StepType = %q, want %q", got, want)
	}
	if got, want := h.Difficulty, "Hard"; got != want {
		t.Errorf("Difficulty = %q, want %q", got, want)
	}
	if got, want := h.Hash, summary.Charts[0].ShortHash; got != want {
		t.Errorf("fast path hash = %q, analysis hash = %q", got, want)
	}
}

func TestComputeAllHashesIgnoresWhitespaceAndComments(t *testing.T) {
	padded := `#TITLE:Example Song;
#ARTIST:Example Artist;
#OFFSET:0.000;
#BPMS:0.000=120.000;
#NOTES:
     dance-single:
     Stepper:
     Hard:
     9:
     0.1,0.2:
// leading comment

0001

0010
0100
1000
,
// second measure
1000
0100
0010
0001
;
`

	base, err := ComputeAllHashes([]byte(basicSM), "sm")
	if err != nil {
		t.Fatalf("ComputeAllHashes(base) error = %v", err)
	}
	got, err := ComputeAllHashes([]byte(padded), "sm")
	if err != nil {
		t.Fatalf("ComputeAllHashes(padded) error = %v", err)
	}
	if got[0].Hash != base[0].Hash {
		t.Errorf("padded hash = %q, want %q", got[0].Hash, base[0].Hash)
	}
}

func TestComputeAllHashesSkipsUnsupportedCharts(t *testing.T) {
	src := `#TITLE:Pump;
#BPMS:0.000=120.000;
#NOTES:
     pump-single:
     :
     Hard:
     9:
     :
10000
;
`
	hashes, err := ComputeAllHashes([]byte(src), "sm")
	if err != nil {
		t.Fatalf("ComputeAllHashes() error = %v", err)
	}
	if len(hashes) != 0 {
		t.Errorf("len(hashes) = %d, want 0", len(hashes))
	}
}
