package analysis

import (
	"errors"
	"strings"
	"testing"

	"github.com/stridelab/stepscan/algorithms/parity"
)

const basicSM = `#TITLE:Example Song;
#ARTIST:Example Artist;
#OFFSET:0.000;
#BPMS:0.000=120.000;
#NOTES:
     dance-single:
     Stepper:
     Hard:
     9:
     0.1,0.2:
0001
0010
0100
1000
,
1000
0100
0010
0001
;
`

func TestAnalyzeBasicSM(t *testing.T) {
	summary, err := Analyze([]byte(basicSM), "sm", DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if got, want := summary.Title, "Example Song"; got != want {
		t.Errorf("Title = %q, want %q", got, want)
	}
	if got, want := summary.Artist, "Example Artist"; got != want {
		t.Errorf("Artist = %q, want %q", got, want)
	}
	if got, want := summary.NormalizedBPMs, "0.000=120.000"; got != want {
		t.Errorf("NormalizedBPMs = %q, want %q", got, want)
	}
	if summary.MinBPM != 120 || summary.MaxBPM != 120 {
		t.Errorf("BPM range = [%v, %v], want [120, 120]", summary.MinBPM, summary.MaxBPM)
	}
	if summary.MedianBPM != 120 || summary.AverageBPM != 120 {
		t.Errorf("BPM stats = (%v, %v), want (120, 120)", summary.MedianBPM, summary.AverageBPM)
	}

	if len(summary.Charts) != 1 {
		t.Fatalf("len(Charts) = %d, want 1", len(summary.Charts))
	}
	c := &summary.Charts[0]
	if got, want := c.StepType, "dance-single"; got != want {
		t.Errorf("StepType = %q, want %q", got, want)
	}
	if got, want := c.Difficulty, "Hard"; got != want {
		t.Errorf("Difficulty = %q, want %q", got, want)
	}
	if got, want := c.Rating, "9"; got != want {
		t.Errorf("Rating = %q, want %q", got, want)
	}
	if got, want := c.Stats.TotalSteps, uint32(8); got != want {
		t.Errorf("TotalSteps = %d, want %d", got, want)
	}
	if got, want := c.TotalMeasures, 2; got != want {
		t.Errorf("TotalMeasures = %d, want %d", got, want)
	}
	// Two measures of quarter notes at 120 BPM: 4 notes over 2 seconds.
	if c.MaxNPS != 2 || c.MedianNPS != 2 {
		t.Errorf("NPS = (max %v, median %v), want (2, 2)", c.MaxNPS, c.MedianNPS)
	}
	if got, want := c.DurationSeconds, 3.5; got != want {
		t.Errorf("DurationSeconds = %v, want %v", got, want)
	}
	if got, want := summary.TotalLength, 3; got != want {
		t.Errorf("TotalLength = %d, want %d", got, want)
	}
	if len(c.ShortHash) != 16 {
		t.Errorf("ShortHash = %q, want 16 hex chars", c.ShortHash)
	}
	if c.BPMNeutralHash == c.ShortHash {
		t.Error("BPMNeutralHash matches ShortHash, tempo should be folded out")
	}
	if c.ChartHasOwnTiming {
		t.Error("ChartHasOwnTiming = true for an SM chart")
	}
	// Half-second gaps exceed every tech cutoff.
	if c.TechCounts != (parity.TechCounts{}) {
		t.Errorf("TechCounts = %+v, want zero", c.TechCounts)
	}
	if len(c.Degradations) != 0 {
		t.Errorf("Degradations = %v, want none", c.Degradations)
	}
	// No stream measures: the break share is the full adjusted range.
	if c.StreamPercent != 0 || c.AdjStreamPercent != 0 || c.BreakPercent != 100 {
		t.Errorf("stream percentages = (%v, %v, %v), want (0, 0, 100)",
			c.StreamPercent, c.AdjStreamPercent, c.BreakPercent)
	}
}

func TestAnalyzeStreamPercentages(t *testing.T) {
	sixteenths := strings.Repeat("1000\n0100\n0010\n0001\n", 4)
	src := "#TITLE:Streams;\n#ARTIST:A;\n#OFFSET:0.000;\n#BPMS:0.000=120.000;\n" +
		"#NOTES:\n     dance-single:\n     :\n     Challenge:\n     12:\n     :\n" +
		sixteenths + ",\n" + sixteenths + ",\n0001\n0010\n0100\n1000\n;\n"

	summary, err := Analyze([]byte(src), "sm", DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	c := &summary.Charts[0]
	if got, want := c.TotalStreams, uint32(2); got != want {
		t.Fatalf("TotalStreams = %d, want %d", got, want)
	}
	if got, want := c.TotalMeasures, 3; got != want {
		t.Fatalf("TotalMeasures = %d, want %d", got, want)
	}
	// Two of three measures stream; no break inside the active range.
	if want := 2.0 / 3.0 * 100.0; c.StreamPercent != want {
		t.Errorf("StreamPercent = %v, want %v", c.StreamPercent, want)
	}
	if c.AdjStreamPercent != 100 || c.BreakPercent != 0 {
		t.Errorf("adjusted percentages = (%v, %v), want (100, 0)",
			c.AdjStreamPercent, c.BreakPercent)
	}
}

func TestAnalyzeSmoothedNPSFlat(t *testing.T) {
	sixteenths := strings.Repeat("1000\n0100\n0010\n0001\n", 4)
	measures := make([]string, 5)
	for i := range measures {
		measures[i] = sixteenths
	}
	src := "#TITLE:Flat;\n#ARTIST:A;\n#OFFSET:0.000;\n#BPMS:0.000=120.000;\n" +
		"#NOTES:\n     dance-single:\n     :\n     Challenge:\n     12:\n     :\n" +
		strings.Join(measures, ",\n") + ";\n"

	summary, err := Analyze([]byte(src), "sm", DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	c := &summary.Charts[0]
	if got, want := len(c.SmoothedNPS), len(c.MeasureNPS); got != want {
		t.Fatalf("len(SmoothedNPS) = %d, want %d", got, want)
	}
	// A flat series is a fixed point of the weighted average.
	for i, v := range c.SmoothedNPS {
		if v != c.MeasureNPS[i] {
			t.Errorf("SmoothedNPS[%d] = %v, want %v", i, v, c.MeasureNPS[i])
		}
	}
}

func TestAnalyzeSmoothedNPSSoftensSpike(t *testing.T) {
	quarters := "1000\n0100\n0010\n0001\n"
	sixteenths := strings.Repeat(quarters, 4)
	src := "#TITLE:Spike;\n#ARTIST:A;\n#OFFSET:0.000;\n#BPMS:0.000=120.000;\n" +
		"#NOTES:\n     dance-single:\n     :\n     Challenge:\n     12:\n     :\n" +
		quarters + ",\n" + quarters + ",\n" + sixteenths + ",\n" + quarters + ",\n" + quarters + ";\n"

	summary, err := Analyze([]byte(src), "sm", DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	c := &summary.Charts[0]
	if got, want := c.MeasureNPS[2], 8.0; got != want {
		t.Fatalf("MeasureNPS[2] = %v, want %v", got, want)
	}
	if s := c.SmoothedNPS[2]; s >= 8.0 || s <= 2.0 {
		t.Errorf("SmoothedNPS[2] = %v, want strictly between 2 and 8", s)
	}
}

func TestAnalyzeOffsetRounded(t *testing.T) {
	src := `#TITLE:Offset;
#ARTIST:A;
#OFFSET:-0.009;
#BPMS:0.000=120.000;
#NOTES:
     dance-single:
     :
     Hard:
     9:
     :
1000
;
`
	summary, err := Analyze([]byte(src), "sm", DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got, want := summary.OffsetSeconds, -0.009; got != want {
		t.Errorf("OffsetSeconds = %v, want %v", got, want)
	}
}

func TestAnalyzeStopExtendsDuration(t *testing.T) {
	src := `#TITLE:Stopper;
#ARTIST:A;
#OFFSET:0.000;
#BPMS:0.000=120.000;
#STOPS:4.000=2.000;
#NOTES:
     dance-single:
     :
     Hard:
     9:
     :
0001
0010
0100
1000
,
1000
0100
0010
0001
;
`
	summary, err := Analyze([]byte(src), "sm", DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	c := &summary.Charts[0]
	// 3.5 seconds of notes plus the two second stop at beat 4.
	if got, want := c.DurationSeconds, 5.5; got != want {
		t.Errorf("DurationSeconds = %v, want %v", got, want)
	}
	if got, want := summary.TotalLength, 5; got != want {
		t.Errorf("TotalLength = %d, want %d", got, want)
	}
}

const warpSSC = `#VERSION:0.83;
#TITLE:Warped;
#ARTIST:A;
#OFFSET:0.000;
#BPMS:0.000=120.000;
#WARPS:8.000=2.000;
#NOTEDATA:;
#STEPSTYPE:dance-single;
#DESCRIPTION:;
#DIFFICULTY:Challenge;
#METER:10;
#NOTES:
0001
0010
0100
1000
,
1000
0100
0010
0001
,
0001
0010
0100
1000
;
`

func TestAnalyzeWarpSkipsNotes(t *testing.T) {
	summary, err := Analyze([]byte(warpSSC), "ssc", DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	c := &summary.Charts[0]
	if got, want := c.Difficulty, "Challenge"; got != want {
		t.Errorf("Difficulty = %q, want %q", got, want)
	}
	// The warp covers beats [8, 10): the first two notes of the third
	// measure vanish from the judgable recount but the raw step total
	// stays authoritative.
	if got, want := c.Stats.TotalSteps, uint32(12); got != want {
		t.Errorf("TotalSteps = %d, want %d", got, want)
	}
	if got, want := c.Stats.TotalArrows, uint32(10); got != want {
		t.Errorf("TotalArrows = %d, want %d", got, want)
	}
	// Two beats warp away instantly: 12 beats of chart in 10 beats of
	// song time.
	if got, want := c.DurationSeconds, 4.5; got != want {
		t.Errorf("DurationSeconds = %v, want %v", got, want)
	}
}

func TestAnalyzeSplitTimingSSC(t *testing.T) {
	src := `#VERSION:0.83;
#TITLE:Split;
#ARTIST:A;
#OFFSET:0.000;
#BPMS:0.000=120.000;
#NOTEDATA:;
#STEPSTYPE:dance-single;
#DESCRIPTION:;
#DIFFICULTY:Challenge;
#METER:10;
#BPMS:0.000=240.000;
#NOTES:
0001
0010
0100
1000
,
1000
0100
0010
0001
;
`
	summary, err := Analyze([]byte(src), "ssc", DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	c := &summary.Charts[0]
	if !c.ChartHasOwnTiming {
		t.Fatal("ChartHasOwnTiming = false, want true")
	}
	if got, want := c.ChartBPMs, "0.000=240.000"; got != want {
		t.Errorf("ChartBPMs = %q, want %q", got, want)
	}
	// Chart timing replaces song timing: beat 7 at 240 BPM.
	if got, want := c.DurationSeconds, 1.75; got != want {
		t.Errorf("DurationSeconds = %v, want %v", got, want)
	}
	if got, want := summary.NormalizedBPMs, "0.000=120.000"; got != want {
		t.Errorf("NormalizedBPMs = %q, want %q", got, want)
	}
}

func TestAnalyzeNoCharts(t *testing.T) {
	src := "#TITLE:Empty;\n#BPMS:0.000=120.000;\n"
	_, err := Analyze([]byte(src), "sm", DefaultOptions())
	if !errors.Is(err, ErrNoMatchingSteps) {
		t.Fatalf("Analyze() error = %v, want ErrNoMatchingSteps", err)
	}
}

func TestAnalyzeUnknownArtistFallback(t *testing.T) {
	src := `#TITLE:Nameless;
#OFFSET:0.000;
#BPMS:0.000=120.000;
#NOTES:
     dance-single:
     :
     Hard:
     9:
     :
1000
;
`
	summary, err := Analyze([]byte(src), "sm", DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got, want := summary.Artist, "Unknown artist"; got != want {
		t.Errorf("Artist = %q, want %q", got, want)
	}
	if got, want := summary.ArtistTranslit, "Unknown artist"; got != want {
		t.Errorf("ArtistTranslit = %q, want %q", got, want)
	}
}

func TestAnalyzeStripTitleTags(t *testing.T) {
	src := `#TITLE:[16] [200] Example;
#ARTIST:A;
#OFFSET:0.000;
#BPMS:0.000=120.000;
#NOTES:
     dance-single:
     :
     Hard:
     9:
     :
1000
;
`
	opts := DefaultOptions()
	opts.StripTags = true
	summary, err := Analyze([]byte(src), "sm", opts)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got, want := summary.Title, "Example"; got != want {
		t.Errorf("Title = %q, want %q", got, want)
	}

	opts.StripTags = false
	summary, err = Analyze([]byte(src), "sm", opts)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got, want := summary.Title, "[16] [200] Example"; got != want {
		t.Errorf("Title = %q, want %q", got, want)
	}
}

func TestAnalyzeSkipsUnsupportedStepsTypes(t *testing.T) {
	src := `#TITLE:Pump;
#ARTIST:A;
#OFFSET:0.000;
#BPMS:0.000=120.000;
#NOTES:
     pump-single:
     :
     Hard:
     9:
     :
10000
;
#NOTES:
     dance-single:
     :
     Hard:
     9:
     :
1000
;
`
	summary, err := Analyze([]byte(src), "sm", DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(summary.Charts) != 1 {
		t.Fatalf("len(Charts) = %d, want 1", len(summary.Charts))
	}
	if got, want := summary.Charts[0].StepType, "dance-single"; got != want {
		t.Errorf("StepType = %q, want %q", got, want)
	}
}
