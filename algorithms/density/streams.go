// Package density classifies per-measure note densities into stream
// runs and breaks, renders the breakdown strings players read on score
// screens, and derives notes-per-second series and statistics.
package density

import (
	"fmt"
	"strconv"
	"strings"
)

// RunDensity buckets a measure by its step count.
type RunDensity int

const (
	Run32 RunDensity = iota
	Run24
	Run20
	Run16
	Break
)

// streamThreshold is the minimum measure density that counts as stream.
const streamThreshold = 16

// Categorize buckets one measure density.
func Categorize(d int) RunDensity {
	switch {
	case d >= 32:
		return Run32
	case d >= 24:
		return Run24
	case d >= 20:
		return Run20
	case d >= 16:
		return Run16
	default:
		return Break
	}
}

// StreamCounts tallies measures per run bucket. TotalBreaks counts
// break measures between stream sequences; SNBreaks counts every break
// measure inside the active range.
type StreamCounts struct {
	Run16Streams uint32
	Run20Streams uint32
	Run24Streams uint32
	Run32Streams uint32
	TotalBreaks  uint32
	SNBreaks     uint32
}

// StreamSegment is a contiguous run of stream or break measures, in
// one-based measure positions with End exclusive.
type StreamSegment struct {
	Start   int
	End     int
	IsBreak bool
}

// StreamSequences groups measures at or above the stream threshold
// into segments, inserting break segments of two or more measures
// between them.
func StreamSequences(measures []int) []StreamSegment {
	var streams []int
	for i, n := range measures {
		if n >= streamThreshold {
			streams = append(streams, i+1)
		}
	}
	if len(streams) == 0 {
		return nil
	}

	var segs []StreamSegment
	if firstBreak := streams[0] - 1; firstBreak >= 2 {
		segs = append(segs, StreamSegment{Start: 0, End: firstBreak, IsBreak: true})
	}

	count := 1
	end := -1
	for i, cur := range streams {
		next := -1
		if i+1 < len(streams) {
			next = streams[i+1]
		}

		if next == cur+1 {
			count++
			end = cur + 1
			continue
		}

		e := cur
		if end >= 0 {
			e = end
		}
		segs = append(segs, StreamSegment{Start: e - count, End: e})

		bstart := cur
		bend := len(measures)
		if next >= 0 {
			bend = next - 1
		}
		if bend >= bstart+2 {
			segs = append(segs, StreamSegment{Start: bstart, End: bend, IsBreak: true})
		}

		count = 1
		end = -1
	}
	return segs
}

// ComputeStreamCounts tallies run and break measures between the first
// and last stream measure.
func ComputeStreamCounts(measures []int) StreamCounts {
	var sc StreamCounts
	start, end, ok := activeRange(measures)
	if !ok {
		return sc
	}
	for _, d := range measures[start : end+1] {
		switch Categorize(d) {
		case Run16:
			sc.Run16Streams++
		case Run20:
			sc.Run20Streams++
		case Run24:
			sc.Run24Streams++
		case Run32:
			sc.Run32Streams++
		case Break:
			sc.SNBreaks++
		}
	}
	for _, seg := range StreamSequences(measures) {
		if seg.IsBreak {
			sc.TotalBreaks += uint32(seg.End - seg.Start)
		}
	}
	return sc
}

func activeRange(measures []int) (int, int, bool) {
	start, end := -1, -1
	for i, d := range measures {
		if Categorize(d) != Break {
			if start < 0 {
				start = i
			}
			end = i
		}
	}
	if start < 0 {
		return 0, 0, false
	}
	return start, end, true
}

// BreakdownMode selects how aggressively breaks merge adjacent runs in
// the density-bucket breakdown.
type BreakdownMode int

const (
	BreakdownDetailed BreakdownMode = iota
	BreakdownPartial
	BreakdownSimplified
)

type token struct {
	cat    RunDensity
	length int
}

func tokenize(dens []int) []token {
	if len(dens) == 0 {
		return nil
	}
	var tokens []token
	cur := Categorize(dens[0])
	count := 1
	for _, d := range dens[1:] {
		next := Categorize(d)
		if next == cur {
			count++
			continue
		}
		tokens = append(tokens, token{cur, count})
		cur = next
		count = 1
	}
	return append(tokens, token{cur, count})
}

// GenerateBreakdown renders the density-bucket breakdown. Runs keep
// their bucket's bracket symbol; a star marks runs extended across
// merged breaks.
func GenerateBreakdown(measures []int, mode BreakdownMode) string {
	start, end, ok := activeRange(measures)
	if !ok {
		return ""
	}

	tokens := tokenize(measures[start : end+1])
	threshold := 0
	switch mode {
	case BreakdownPartial:
		threshold = 1
	case BreakdownSimplified:
		threshold = 4
	}

	var out strings.Builder
	i := 0
	for i < len(tokens) {
		t := tokens[i]
		if t.cat != Break {
			total, star, next := mergeRuns(tokens, i, t.cat, threshold, mode)
			if out.Len() > 0 {
				out.WriteByte(' ')
			}
			writeRun(&out, t.cat, total, star)
			i = next
			continue
		}
		formatBreak(&out, t.length, mode)
		i++
	}
	return out.String()
}

func mergeRuns(tokens []token, start int, cat RunDensity, thresh int, mode BreakdownMode) (total int, star bool, next int) {
	total = tokens[start].length
	next = start + 1

	for next+1 < len(tokens) {
		bk := tokens[next]
		if bk.cat != Break || bk.length > thresh {
			break
		}
		nt := tokens[next+1]
		if nt.cat == Break {
			break
		}
		if nt.cat == cat {
			total += bk.length + nt.length
			star = true
			next += 2
			continue
		}
		if mode == BreakdownSimplified && bk.length > 1 && bk.length <= 4 {
			total += bk.length
			star = true
		}
		next++
		break
	}
	return total, star, next
}

func writeRun(out *strings.Builder, cat RunDensity, length int, star bool) {
	var pre, suf string
	switch cat {
	case Run20:
		pre, suf = "~", "~"
	case Run24:
		pre, suf = `\`, `\`
	case Run32:
		pre, suf = "=", "="
	}
	out.WriteString(pre)
	out.WriteString(strconv.Itoa(length))
	out.WriteString(suf)
	if star {
		out.WriteByte('*')
	}
}

func formatBreak(out *strings.Builder, n int, mode BreakdownMode) {
	var sym string
	switch mode {
	case BreakdownDetailed:
		if n > 1 {
			if out.Len() > 0 {
				out.WriteByte(' ')
			}
			fmt.Fprintf(out, "(%d)", n)
		}
		return
	case BreakdownPartial:
		switch {
		case n == 1:
			return
		case n <= 4:
			sym = "-"
		case n <= 32:
			sym = "/"
		default:
			sym = "|"
		}
	case BreakdownSimplified:
		switch {
		case n <= 4:
			return
		case n <= 32:
			sym = "/"
		default:
			sym = "|"
		}
	}
	if out.Len() > 0 {
		out.WriteByte(' ')
	}
	out.WriteString(sym)
}

// FormatRunSymbol renders one run token the way GenerateBreakdown does.
func FormatRunSymbol(cat RunDensity, length int, star bool) string {
	var out strings.Builder
	writeRun(&out, cat, length, star)
	return out.String()
}

// StreamBreakdownLevel selects the granularity of the sequence-based
// stream breakdown.
type StreamBreakdownLevel int

const (
	StreamDetailed StreamBreakdownLevel = iota
	StreamPartial
	StreamSimple
	StreamTotal
)

// StreamBreakdown renders the sequence-based stream summary: segment
// lengths joined by break symbols, a single starred sum at the Simple
// level, or an "N Total" count.
func StreamBreakdown(measures []int, level StreamBreakdownLevel) string {
	if len(measures) == 0 {
		return "No Streams!"
	}
	segs := StreamSequences(measures)
	if len(segs) == 0 {
		return "No Streams!"
	}

	var out strings.Builder
	sum, total := 0, 0
	broken := false

	for i, seg := range segs {
		size := seg.End - seg.Start
		if seg.IsBreak {
			if i != 0 && i+1 != len(segs) {
				flushStream(&out, &sum, &broken, &total, level, size)
			}
			continue
		}
		switch level {
		case StreamSimple, StreamTotal:
			if i > 0 && !segs[i-1].IsBreak {
				broken = true
				if level == StreamSimple {
					sum++
				}
			}
			sum += size
		default:
			if i > 0 && !segs[i-1].IsBreak {
				out.WriteByte('-')
			}
			out.WriteString(strconv.Itoa(size))
		}
	}

	if sum != 0 {
		switch level {
		case StreamSimple:
			out.WriteString(strconv.Itoa(sum))
			if broken {
				out.WriteByte('*')
			}
		case StreamTotal:
			total += sum
		}
	}

	if level == StreamTotal {
		return fmt.Sprintf("%d Total", total)
	}
	if out.Len() == 0 {
		return "No Streams!"
	}
	return out.String()
}

func flushStream(out *strings.Builder, sum *int, broken *bool, total *int, level StreamBreakdownLevel, size int) {
	var sym string
	switch {
	case size <= 4:
		sym = "-"
	case size <= 31:
		sym = "/"
	default:
		sym = " | "
	}

	if level == StreamDetailed {
		fmt.Fprintf(out, " (%d) ", size)
		return
	}

	if *sum != 0 && level == StreamSimple {
		out.WriteString(strconv.Itoa(*sum))
		if *broken {
			out.WriteByte('*')
		}
	} else if level == StreamTotal {
		*total += *sum
	}

	if level != StreamTotal {
		out.WriteString(sym)
	}

	*sum = 0
	*broken = false
}
