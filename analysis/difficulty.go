package analysis

import (
	"strconv"
	"strings"
)

var canonicalLabels = map[string]string{
	"beginner":  "Beginner",
	"easy":      "Easy",
	"medium":    "Medium",
	"hard":      "Hard",
	"challenge": "Challenge",
	"edit":      "Edit",
}

// oldStyleLabels covers the pre-SSC synonyms (basic, another, maniac
// and friends) accepted inside .sm files.
var oldStyleLabels = map[string]string{
	"beginner":  "Beginner",
	"easy":      "Easy",
	"basic":     "Easy",
	"light":     "Easy",
	"medium":    "Medium",
	"another":   "Medium",
	"trick":     "Medium",
	"standard":  "Medium",
	"difficult": "Medium",
	"hard":      "Hard",
	"ssr":       "Hard",
	"maniac":    "Hard",
	"heavy":     "Hard",
	"challenge": "Challenge",
	"expert":    "Challenge",
	"oni":       "Challenge",
	"smaniac":   "Challenge",
	"edit":      "Edit",
}

func canonicalDifficultyLabel(raw string) string {
	return canonicalLabels[strings.ToLower(strings.TrimSpace(raw))]
}

func oldStyleDifficultyLabel(raw string) string {
	return oldStyleLabels[strings.ToLower(strings.TrimSpace(raw))]
}

// NormalizeDifficultyLabel maps legacy labels onto their canonical
// form, passing unknown labels through trimmed.
func NormalizeDifficultyLabel(raw string) string {
	if label := oldStyleDifficultyLabel(raw); label != "" {
		return label
	}
	return strings.TrimSpace(raw)
}

func parseMeterForDifficulty(meter, extension string) int {
	trimmed := strings.TrimSpace(meter)
	if strings.EqualFold(extension, "sm") && trimmed == "" {
		return 1
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0
	}
	return n
}

// ResolveDifficultyLabel determines the difficulty slot for a chart the
// way ITGmania's Steps::TidyUpData does: label first, then the
// description, then the meter.
func ResolveDifficultyLabel(rawDifficulty, description, meterStr, extension string) string {
	var difficulty string
	if strings.EqualFold(extension, "sm") {
		difficulty = oldStyleDifficultyLabel(rawDifficulty)
	} else {
		difficulty = canonicalDifficultyLabel(rawDifficulty)
	}

	if strings.EqualFold(extension, "sm") && difficulty == "Hard" {
		desc := strings.TrimSpace(description)
		if strings.EqualFold(desc, "smaniac") || strings.EqualFold(desc, "challenge") {
			difficulty = "Challenge"
		}
	}

	if difficulty == "" {
		difficulty = canonicalDifficultyLabel(description)
	}
	if difficulty != "" {
		return difficulty
	}

	switch meter := parseMeterForDifficulty(meterStr, extension); {
	case meter == 1:
		return "Beginner"
	case meter <= 3:
		return "Easy"
	case meter <= 6:
		return "Medium"
	default:
		return "Hard"
	}
}

// StepTypeLanes returns the lane count for a steps type, defaulting to
// four for anything that is not a doubles chart.
func StepTypeLanes(stepType string) int {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(stepType)), "_", "-")
	if normalized == "dance-double" {
		return 8
	}
	return 4
}

// supportedStepsTypeLanes reports the lane count for charts the
// analyzer handles, or 0 for steps types it skips.
func supportedStepsTypeLanes(raw []byte) int {
	s := strings.TrimSpace(string(raw))
	switch {
	case strings.EqualFold(s, "dance-single") || strings.EqualFold(s, "dance_single"):
		return 4
	case strings.EqualFold(s, "dance-double") || strings.EqualFold(s, "dance_double"):
		return 8
	default:
		return 0
	}
}
