package analysis

import "testing"

func TestParseRadarValues(t *testing.T) {
	smRow := "0.5,0.3,0.2,0.1,0.4,120,100,10,5,0,2,0,0,0"
	sscRow := smRow + "," + smRow

	t.Run("sm row", func(t *testing.T) {
		got := parseRadarValues([]byte(smRow), false)
		if got == nil {
			t.Fatal("parseRadarValues() = nil, want values")
		}
		if len(got) != radarCategoryCount {
			t.Fatalf("len = %d, want %d", len(got), radarCategoryCount)
		}
		if got[0] != 0.5 || got[radarCategoryNotes] != 120 {
			t.Errorf("values = [%v ... %v], want [0.5 ... 120]", got[0], got[radarCategoryNotes])
		}
	})

	t.Run("ssc row needs both players", func(t *testing.T) {
		if got := parseRadarValues([]byte(smRow), true); got != nil {
			t.Errorf("single player row = %v, want nil", got)
		}
		if got := parseRadarValues([]byte(sscRow), true); got == nil {
			t.Error("both player rows = nil, want values")
		}
	})

	t.Run("short row rejected", func(t *testing.T) {
		if got := parseRadarValues([]byte("0.1,0.2"), false); got != nil {
			t.Errorf("short row = %v, want nil", got)
		}
	})

	t.Run("negative count rejected", func(t *testing.T) {
		bad := "0.5,0.3,0.2,0.1,0.4,-1,100,10,5,0,2,0,0,0"
		if got := parseRadarValues([]byte(bad), false); got != nil {
			t.Errorf("negative note count = %v, want nil", got)
		}
	})

	t.Run("absent tag", func(t *testing.T) {
		if got := parseRadarValues(nil, false); got != nil {
			t.Errorf("nil tag = %v, want nil", got)
		}
	})
}
