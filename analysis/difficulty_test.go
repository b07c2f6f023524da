package analysis

import "testing"

func TestResolveDifficultyLabel(t *testing.T) {
	tests := []struct {
		name       string
		difficulty string
		desc       string
		meter      string
		ext        string
		want       string
	}{
		{"canonical ssc", "Challenge", "", "10", "ssc", "Challenge"},
		{"old style synonym sm", "smaniac", "", "9", "sm", "Challenge"},
		{"basic maps to easy", "basic", "", "3", "sm", "Easy"},
		{"another maps to medium", "another", "", "5", "sm", "Medium"},
		{"heavy maps to hard", "heavy", "", "9", "sm", "Hard"},
		{"sm hard with smaniac description", "Hard", "SMANIAC", "9", "sm", "Challenge"},
		{"sm hard with challenge description", "hard", "challenge", "9", "sm", "Challenge"},
		{"ssc rejects old style synonym", "expert", "", "9", "ssc", "Hard"},
		{"description fallback", "bogus", "Challenge", "9", "ssc", "Challenge"},
		{"meter one is beginner", "", "", "1", "ssc", "Beginner"},
		{"low meter is easy", "", "", "3", "ssc", "Easy"},
		{"mid meter is medium", "", "", "6", "ssc", "Medium"},
		{"high meter is hard", "", "", "12", "ssc", "Hard"},
		{"sm empty meter is beginner", "", "", "", "sm", "Beginner"},
		{"unparseable meter is easy", "", "", "abc", "ssc", "Easy"},
		{"edit passes through", "Edit", "", "9", "ssc", "Edit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDifficultyLabel(tt.difficulty, tt.desc, tt.meter, tt.ext)
			if got != tt.want {
				t.Errorf("ResolveDifficultyLabel(%q, %q, %q, %q) = %q, want %q",
					tt.difficulty, tt.desc, tt.meter, tt.ext, got, tt.want)
			}
		})
	}
}

func TestNormalizeDifficultyLabel(t *testing.T) {
	if got, want := NormalizeDifficultyLabel(" Expert "), "Challenge"; got != want {
		t.Errorf("NormalizeDifficultyLabel = %q, want %q", got, want)
	}
	if got, want := NormalizeDifficultyLabel(" Custom "), "Custom"; got != want {
		t.Errorf("NormalizeDifficultyLabel = %q, want %q", got, want)
	}
}

func TestStepTypeLanes(t *testing.T) {
	tests := []struct {
		stepType string
		want     int
	}{
		{"dance-single", 4},
		{"dance-double", 8},
		{"Dance_Double", 8},
		{"pump-single", 4},
	}
	for _, tt := range tests {
		if got := StepTypeLanes(tt.stepType); got != tt.want {
			t.Errorf("StepTypeLanes(%q) = %d, want %d", tt.stepType, got, tt.want)
		}
	}
}

func TestSupportedStepsTypeLanes(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"dance-single", 4},
		{" dance_single ", 4},
		{"DANCE-DOUBLE", 8},
		{"pump-single", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := supportedStepsTypeLanes([]byte(tt.raw)); got != tt.want {
			t.Errorf("supportedStepsTypeLanes(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}
