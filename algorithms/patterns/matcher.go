package patterns

import "strings"

func matchesAt(bitmasks []uint8, pos int, bits []uint8) bool {
	if pos+len(bits) > len(bitmasks) {
		return false
	}
	for k, b := range bits {
		if bitmasks[pos+k] != b {
			return false
		}
	}
	return true
}

// DetectDefaultPatterns scans the row bitmasks once with the compiled
// catalog. At each row the longest matching template wins, the match is
// counted, and the scan resumes past it, so occurrences of a variant
// never overlap.
func DetectDefaultPatterns(bitmasks []uint8) PatternCounts {
	var counts PatternCounts
	i := 0
	for i < len(bitmasks) {
		advanced := false
		for _, def := range defaultPatterns {
			if matchesAt(bitmasks, i, def.bits) {
				counts[def.variant]++
				i += len(def.bits)
				advanced = true
				break
			}
		}
		if !advanced {
			i++
		}
	}
	return counts
}

// CountAnchors counts, per column, windows where the column is pressed
// on rows i, i+2 and i+4.
func CountAnchors(bitmasks []uint8) (left, down, up, right uint32) {
	for i := 0; i+4 < len(bitmasks); i++ {
		if bitmasks[i]&maskLeft != 0 && bitmasks[i+2]&maskLeft != 0 && bitmasks[i+4]&maskLeft != 0 {
			left++
		}
		if bitmasks[i]&maskDown != 0 && bitmasks[i+2]&maskDown != 0 && bitmasks[i+4]&maskDown != 0 {
			down++
		}
		if bitmasks[i]&maskUp != 0 && bitmasks[i+2]&maskUp != 0 && bitmasks[i+4]&maskUp != 0 {
			up++
		}
		if bitmasks[i]&maskRight != 0 && bitmasks[i+2]&maskRight != 0 && bitmasks[i+4]&maskRight != 0 {
			right++
		}
	}
	return left, down, up, right
}

// CompiledCustomPatterns holds user-supplied templates compiled once
// per analysis run.
type CompiledCustomPatterns struct {
	defs []customDef
}

type customDef struct {
	name string
	bits []uint8
}

// CustomPatternCount pairs a custom template with its occurrence count.
type CustomPatternCount struct {
	Pattern string
	Count   uint32
}

// CompileCustomPatterns turns column-letter sequences (L, D, U, R, and
// N for a rest row) into matchable templates. Sequences shorter than
// two columns and unknown letters are dropped.
func CompileCustomPatterns(templates []string) *CompiledCustomPatterns {
	c := &CompiledCustomPatterns{}
	for _, raw := range templates {
		t := strings.ToUpper(strings.TrimSpace(raw))
		if len(t) < 2 {
			continue
		}
		valid := true
		for _, ch := range t {
			switch ch {
			case 'L', 'D', 'U', 'R', 'N':
			default:
				valid = false
			}
		}
		if !valid {
			continue
		}
		c.defs = append(c.defs, customDef{name: t, bits: templateToBits(t)})
	}
	return c
}

// Empty reports whether no usable templates were compiled.
func (c *CompiledCustomPatterns) Empty() bool {
	return c == nil || len(c.defs) == 0
}

// DetectCustomPatterns counts each compiled template independently,
// non-overlapping per template, and reports counts in compile order.
func DetectCustomPatterns(bitmasks []uint8, compiled *CompiledCustomPatterns) []CustomPatternCount {
	if compiled.Empty() {
		return nil
	}
	out := make([]CustomPatternCount, 0, len(compiled.defs))
	for _, def := range compiled.defs {
		var count uint32
		i := 0
		for i < len(bitmasks) {
			if matchesAt(bitmasks, i, def.bits) {
				count++
				i += len(def.bits)
			} else {
				i++
			}
		}
		out = append(out, CustomPatternCount{Pattern: def.name, Count: count})
	}
	return out
}
