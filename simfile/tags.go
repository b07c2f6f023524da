package simfile

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Simfile format version constants. SM files predate the split-timing
// era, so they are treated as the last pre-SSC version.
const (
	StepfileVersionNumber float32 = 0.83
	VersionSplitTiming    float32 = 0.7
	VersionChartNameTag   float32 = 0.74
)

// StripTitleTags removes leading sorting decorations like "[12] " or
// "3.2- " that packs prepend to song titles.
func StripTitleTags(title string) string {
	for {
		original := title
		title = strings.TrimLeft(title, " \t\n\v\f\r")

		if strings.HasPrefix(title, "[") {
			if idx := strings.Index(title, "]"); idx >= 0 {
				title = strings.TrimLeft(title[idx+1:], " \t\n\v\f\r")
				continue
			}
		}

		if pos := strings.Index(title, "- "); pos >= 0 {
			numeric := true
			for _, c := range title[:pos] {
				if !(c >= '0' && c <= '9') && c != '.' {
					numeric = false
					break
				}
			}
			if numeric {
				title = strings.TrimLeft(title[pos+2:], " \t\n\v\f\r")
				continue
			}
		}

		if title == original {
			return title
		}
	}
}

// CleanTag drops control characters from a decoded tag value.
func CleanTag(tag string) string {
	hasControl := false
	for _, c := range tag {
		if unicode.IsControl(c) {
			hasControl = true
			break
		}
	}
	if !hasControl {
		return tag
	}
	var out strings.Builder
	out.Grow(len(tag))
	for _, c := range tag {
		if !unicode.IsControl(c) {
			out.WriteRune(c)
		}
	}
	return out.String()
}

// UnescapeTag resolves backslash escapes in a tag value.
func UnescapeTag(tag string) string {
	if !strings.ContainsRune(tag, '\\') {
		return tag
	}
	var out strings.Builder
	out.Grow(len(tag))
	runes := []rune(tag)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) {
			i++
		}
		out.WriteRune(runes[i])
	}
	return out.String()
}

// UnescapeTrim unescapes a tag value and trims surrounding whitespace.
func UnescapeTrim(tag string) string {
	return strings.TrimSpace(UnescapeTag(tag))
}

// ParseOffsetSeconds parses the #OFFSET value. The value is round-tripped
// through float32 to match the precision the game engine stores it at.
func ParseOffsetSeconds(raw []byte) float64 {
	if raw == nil {
		return 0
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0
	}
	return float64(float32(f))
}

// ParseVersion parses the #VERSION tag. SSC files without a version
// report NaN so that version-gated features stay disabled; SM files
// behave as the newest pre-split version.
func ParseVersion(raw []byte, ssc bool) float32 {
	if raw != nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 32); err == nil {
			return float32(f)
		}
	}
	if ssc {
		return float32(math.NaN())
	}
	return StepfileVersionNumber
}

// NormalizeChartDesc clears the description field for SSC versions that
// predate the chart-name tag, where the field held unrelated data.
func NormalizeChartDesc(desc string, ssc bool, version float32) string {
	if ssc && version < VersionChartNameTag {
		return ""
	}
	return desc
}
