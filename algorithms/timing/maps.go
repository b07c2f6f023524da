package timing

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/stridelab/stepscan/algorithms/common"
)

// CleanTimingMap strips whitespace and control characters from a raw
// beat=value tag body so entries can be split on ',' and '='.
func CleanTimingMap(s string) string {
	needs := false
	for i := 0; i < len(s); i++ {
		if s[i] <= ' ' || s[i] == 0x7F {
			needs = true
			break
		}
	}
	if !needs {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c > ' ' && c != 0x7F {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// normalizeDecimal renders a numeric string at exactly three decimals,
// rounding halves upward, mirroring the game engine's serializer.
func normalizeDecimal(s string) (string, bool) {
	var cleaned strings.Builder
	for _, c := range s {
		if c >= ' ' && c != 0x7F {
			cleaned.WriteRune(c)
		}
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(cleaned.String()), 64)
	if err != nil {
		return "", false
	}
	return common.FmtDec3HalfUp(value), true
}

func normalizeEntry(entry string) string {
	trimmed := strings.TrimSpace(entry)
	if beatStr, bpmStr, found := strings.Cut(trimmed, "="); found {
		if beat, ok1 := normalizeDecimal(beatStr); ok1 {
			if bpm, ok2 := normalizeDecimal(bpmStr); ok2 {
				return beat + "=" + bpm
			}
		}
	}
	return trimmed
}

// NormalizeFloatDigits renders every beat=value entry of a timing map at
// three decimals, preserving order and dropping empty entries.
func NormalizeFloatDigits(param string) string {
	var out []string
	for _, part := range strings.Split(param, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, normalizeEntry(part))
	}
	return strings.Join(out, ",")
}

func normalized3dpToThousandths(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	sign := int64(1)
	body := s
	if rest, found := strings.CutPrefix(s, "-"); found {
		sign = -1
		body = rest
	}
	intPart, fracPart, found := strings.Cut(body, ".")
	if !found {
		fracPart = "0"
	}
	for _, c := range intPart {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	for _, c := range fracPart {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	intValue, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, false
	}
	if len(fracPart) > 3 {
		fracPart = fracPart[:3]
	}
	for len(fracPart) < 3 {
		fracPart += "0"
	}
	fracValue, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, false
	}
	return sign * (intValue*1000 + fracValue), true
}

type normalizedTimingEntry struct {
	beatThousandths  int64
	beatStr          string
	valueThousandths int64
	valueStr         string
	index            int
}

// NormalizeAndTidyBPMs normalizes a BPM map the way the game engine
// would store it: three decimals, sorted by beat (stable on input
// order), last entry per beat wins, the first beat forced to zero, and
// consecutive equal tempos collapsed. An empty map becomes the default
// 60 BPM entry.
func NormalizeAndTidyBPMs(param string) string {
	var entries []normalizedTimingEntry
	for i, raw := range strings.Split(param, ",") {
		trimmed := strings.TrimSpace(raw)
		beatRaw, valueRaw, found := strings.Cut(trimmed, "=")
		if !found {
			continue
		}
		beatStr, ok := normalizeDecimal(beatRaw)
		if !ok {
			continue
		}
		valueStr, ok := normalizeDecimal(valueRaw)
		if !ok {
			continue
		}
		beatTh, ok := normalized3dpToThousandths(beatStr)
		if !ok {
			continue
		}
		valueTh, ok := normalized3dpToThousandths(valueStr)
		if !ok {
			continue
		}
		entries = append(entries, normalizedTimingEntry{
			beatThousandths:  beatTh,
			beatStr:          beatStr,
			valueThousandths: valueTh,
			valueStr:         valueStr,
			index:            i,
		})
	}
	if len(entries) == 0 {
		return "0.000=60.000"
	}

	sort.Slice(entries, func(a, b int) bool {
		if entries[a].beatThousandths != entries[b].beatThousandths {
			return entries[a].beatThousandths < entries[b].beatThousandths
		}
		return entries[a].index < entries[b].index
	})

	lastPerBeat := entries[:0:0]
	for _, entry := range entries {
		if n := len(lastPerBeat); n > 0 && lastPerBeat[n-1].beatThousandths == entry.beatThousandths {
			lastPerBeat[n-1] = entry
			continue
		}
		lastPerBeat = append(lastPerBeat, entry)
	}
	if lastPerBeat[0].beatThousandths != 0 {
		lastPerBeat[0].beatThousandths = 0
		lastPerBeat[0].beatStr = "0.000"
	}

	var parts []string
	haveLast := false
	var lastValue int64
	for _, entry := range lastPerBeat {
		if haveLast && lastValue == entry.valueThousandths {
			continue
		}
		haveLast = true
		lastValue = entry.valueThousandths
		parts = append(parts, entry.beatStr+"="+entry.valueStr)
	}
	return strings.Join(parts, ",")
}

// ParseBPMMap parses a cleaned beat=value map into beat-sorted changes.
func ParseBPMMap(normalized string) []BPMChange {
	var out []BPMChange
	for _, chunk := range strings.Split(normalized, ",") {
		left, right, found := strings.Cut(strings.TrimSpace(chunk), "=")
		if !found {
			continue
		}
		beat, err1 := strconv.ParseFloat(strings.TrimSpace(left), 64)
		bpm, err2 := strconv.ParseFloat(strings.TrimSpace(right), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, BPMChange{Beat: beat, BPM: bpm})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Beat < out[b].Beat })
	return out
}

// GetCurrentBPM returns the tempo in effect at the given beat.
func GetCurrentBPM(beat float64, bpmMap []BPMChange) float64 {
	if len(bpmMap) == 0 {
		return 0
	}
	pos := sort.Search(len(bpmMap), func(i int) bool { return bpmMap[i].Beat > beat })
	if pos == 0 {
		return bpmMap[0].BPM
	}
	return bpmMap[pos-1].BPM
}

// GimmickBPMThreshold separates playable tempos from warp-style visual
// gimmicks (values in the millions).
const GimmickBPMThreshold = 10000.0

// IsDisplayBPM reports whether a tempo is playable for display/stats
// purposes (positive and below the gimmick threshold).
func IsDisplayBPM(bpm float64) bool {
	return bpm > 0 && bpm < GimmickBPMThreshold
}

// ComputeBPMRange returns the rounded min/max display BPM, falling back
// to the unfiltered range when only gimmick tempos exist.
func ComputeBPMRange(bpmMap []BPMChange) (int, int) {
	if len(bpmMap) == 0 {
		return 0, 0
	}
	minBPM, maxBPM := math.MaxFloat64, -math.MaxFloat64
	count := 0
	for _, c := range bpmMap {
		if IsDisplayBPM(c.BPM) {
			minBPM = math.Min(minBPM, c.BPM)
			maxBPM = math.Max(maxBPM, c.BPM)
			count++
		}
	}
	if count == 0 {
		minBPM, maxBPM = math.MaxFloat64, -math.MaxFloat64
		for _, c := range bpmMap {
			minBPM = math.Min(minBPM, c.BPM)
			maxBPM = math.Max(maxBPM, c.BPM)
		}
	}
	return int(math.Round(minBPM)), int(math.Round(maxBPM))
}

func medianOfSorted(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// ComputeBPMStats returns the median and mean display BPM, falling back
// to all values when every tempo is a gimmick.
func ComputeBPMStats(bpmValues []float64) (median, average float64) {
	if len(bpmValues) == 0 {
		return 0, 0
	}
	filtered := make([]float64, 0, len(bpmValues))
	for _, b := range bpmValues {
		if IsDisplayBPM(b) {
			filtered = append(filtered, b)
		}
	}
	if len(filtered) == 0 {
		filtered = append(filtered, bpmValues...)
	}
	sort.Float64s(filtered)
	return medianOfSorted(filtered), stat.Mean(filtered, nil)
}
