package simfile

import (
	"bytes"
	"fmt"
	"strings"
)

// ParseError describes a chart-fatal problem with the source file
// structure, carrying the tag (when known) for diagnostics.
type ParseError struct {
	Tag string
	Msg string
}

func (e *ParseError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("simfile: %s: %s", e.Tag, e.Msg)
	}
	return "simfile: " + e.Msg
}

// ChartEntry is one chart block sliced out of the file. Field slices
// alias the input buffer; nil means the tag was absent.
type ChartEntry struct {
	FieldCount int
	// Fields holds stepsType, description, difficulty, meter, credit
	// (credit is the SM radar-values slot for .sm files).
	Fields   [5][]byte
	NoteData []byte

	BPMs           []byte
	Stops          []byte
	Delays         []byte
	Warps          []byte
	Speeds         []byte
	Scrolls        []byte
	Fakes          []byte
	Attacks        []byte
	Offset         []byte
	DisplayBPM     []byte
	TimeSignatures []byte
	Labels         []byte
	Tickcounts     []byte
	Combos         []byte
	RadarValues    []byte

	// Scan-time aliases resolved by finalizeNotedata.
	notes2  []byte
	freezes []byte
}

// Sections holds the raw byte slices for every recognized song-level tag
// plus the chart blocks, in file order.
type Sections struct {
	Title            []byte
	Subtitle         []byte
	Artist           []byte
	TitleTranslit    []byte
	SubtitleTranslit []byte
	ArtistTranslit   []byte
	Version          []byte
	Offset           []byte
	BPMs             []byte
	Stops            []byte
	Delays           []byte
	Warps            []byte
	Speeds           []byte
	Scrolls          []byte
	Fakes            []byte
	Attacks          []byte
	TimeSignatures   []byte
	Labels           []byte
	Tickcounts       []byte
	Combos           []byte
	Banner           []byte
	Background       []byte
	CDTitle          []byte
	Jacket           []byte
	Music            []byte
	SampleStart      []byte
	SampleLength     []byte
	DisplayBPM       []byte
	Charts           []ChartEntry
}

func startsWithFold(s, tag []byte) bool {
	if len(s) < len(tag) {
		return false
	}
	for i, b := range tag {
		c := s[i]
		if c == b {
			continue
		}
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		if c != b {
			return false
		}
	}
	return true
}

func isASCIISpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// scanTagEnd finds where a tag value ends: an unescaped ';', an
// unescaped ':' when the value is single-parameter, or a newline whose
// next non-blank character opens another tag. Returns the value end and
// the scan resume position, or ok=false when no terminator exists.
func scanTagEnd(s []byte, allowNL bool) (end, next int, ok bool) {
	bs := 0
	for i := 0; i < len(s); i++ {
		b := s[i]
		escaped := bs&1 != 0
		switch {
		case b == ';' && !escaped:
			return i, i + 1, true
		case b == ':' && !allowNL && !escaped:
			return i, i + 1, true
		case b == '\n' || b == '\r':
			j := i + 1
			if b == '\r' && j < len(s) && s[j] == '\n' {
				j++
			}
			for j < len(s) && isASCIISpace(s[j]) && s[j] != '\n' && s[j] != '\r' {
				j++
			}
			if j < len(s) && s[j] == '#' {
				return i, j, true
			}
			if !allowNL && (j >= len(s) || s[j] != ';') {
				return 0, 0, false
			}
		}
		if b == '\\' {
			bs++
		} else {
			bs = 0
		}
	}
	return 0, 0, false
}

// parseTagVal slices out the value of the tag starting at s (tag prefix
// length tagLen) and reports how far the scan advanced.
func parseTagVal(s []byte, tagLen int, allowNL bool) (val []byte, adv int, ok bool) {
	if tagLen > len(s) {
		return nil, 0, false
	}
	rest := s[tagLen:]
	end, next, ok := scanTagEnd(rest, allowNL)
	if !ok {
		return nil, 0, false
	}
	return rest[:end], tagLen + next, true
}

// tryTag assigns the tag value into *out when s starts with tag. Returns
// whether the prefix matched regardless of whether a value was found.
func tryTag(s []byte, tag string, out *[]byte, enabled bool) bool {
	if !enabled || !startsWithFold(s, []byte(tag)) {
		return false
	}
	if v, _, ok := parseTagVal(s, len(tag), true); ok {
		*out = v
	}
	return true
}

// tryTagAdv is the notedata-block variant: on a match it returns the
// amount to advance the scan by, skipping the whole value.
func tryTagAdv(s []byte, tag string, allowNL bool, out *[]byte) (int, bool) {
	if !startsWithFold(s, []byte(tag)) {
		return 0, false
	}
	v, adv, ok := parseTagVal(s, len(tag), allowNL)
	if !ok {
		return 0, false
	}
	*out = v
	return adv, true
}

type notedataTag struct {
	tag     string
	allowNL bool
	slot    func(*ChartEntry) *[]byte
}

var notedataTags = []notedataTag{
	{"#STEPSTYPE:", false, func(e *ChartEntry) *[]byte { return &e.Fields[0] }},
	{"#DESCRIPTION:", false, func(e *ChartEntry) *[]byte { return &e.Fields[1] }},
	{"#CREDIT:", false, func(e *ChartEntry) *[]byte { return &e.Fields[4] }},
	{"#DIFFICULTY:", false, func(e *ChartEntry) *[]byte { return &e.Fields[2] }},
	{"#METER:", false, func(e *ChartEntry) *[]byte { return &e.Fields[3] }},
	{"#NOTES:", true, func(e *ChartEntry) *[]byte { return &e.NoteData }},
	{"#NOTES2:", true, func(e *ChartEntry) *[]byte { return &e.notes2 }},
	{"#BPMS:", true, func(e *ChartEntry) *[]byte { return &e.BPMs }},
	{"#STOPS:", true, func(e *ChartEntry) *[]byte { return &e.Stops }},
	{"#FREEZES:", true, func(e *ChartEntry) *[]byte { return &e.freezes }},
	{"#DELAYS:", true, func(e *ChartEntry) *[]byte { return &e.Delays }},
	{"#WARPS:", true, func(e *ChartEntry) *[]byte { return &e.Warps }},
	{"#SPEEDS:", true, func(e *ChartEntry) *[]byte { return &e.Speeds }},
	{"#SCROLLS:", true, func(e *ChartEntry) *[]byte { return &e.Scrolls }},
	{"#FAKES:", true, func(e *ChartEntry) *[]byte { return &e.Fakes }},
	{"#ATTACKS:", true, func(e *ChartEntry) *[]byte { return &e.Attacks }},
	{"#OFFSET:", true, func(e *ChartEntry) *[]byte { return &e.Offset }},
	{"#DISPLAYBPM:", true, func(e *ChartEntry) *[]byte { return &e.DisplayBPM }},
	{"#TIMESIGNATURES:", true, func(e *ChartEntry) *[]byte { return &e.TimeSignatures }},
	{"#LABELS:", true, func(e *ChartEntry) *[]byte { return &e.Labels }},
	{"#TICKCOUNTS:", true, func(e *ChartEntry) *[]byte { return &e.Tickcounts }},
	{"#COMBOS:", true, func(e *ChartEntry) *[]byte { return &e.Combos }},
	{"#RADARVALUES:", true, func(e *ChartEntry) *[]byte { return &e.RadarValues }},
}

// parseNotedataEntry scans one SSC #NOTEDATA block starting at `start`
// (just past the opening tag). Returns the entry, or nil when the block
// carried no note data, plus the resume position.
func parseNotedataEntry(data []byte, start int) (*ChartEntry, int) {
	entry := &ChartEntry{}
	i := start

scan:
	for i < len(data) {
		pos := bytes.IndexByte(data[i:], '#')
		if pos < 0 {
			i = len(data)
			break
		}
		i += pos
		s := data[i:]

		if startsWithFold(s, []byte("#NOTEDATA:")) {
			if i != start {
				break
			}
			if _, next, ok := scanTagEnd(s[10:], true); ok {
				i += 10 + next
			} else {
				i += 10
			}
			continue
		}

		for _, t := range notedataTags {
			if adv, ok := tryTagAdv(s, t.tag, t.allowNL, t.slot(entry)); ok {
				i += adv
				continue scan
			}
		}
		i++
	}

	return finalizeNotedata(entry), i
}

func finalizeNotedata(e *ChartEntry) *ChartEntry {
	if e.NoteData == nil && e.notes2 == nil {
		return nil
	}
	if e.NoteData == nil {
		e.NoteData = e.notes2
	}
	if e.Stops == nil {
		e.Stops = e.freezes
	}
	e.FieldCount = 5
	for i := range e.Fields {
		if e.Fields[i] == nil {
			e.Fields[i] = []byte{}
		}
	}
	return e
}

// ExtractSections tokenizes a .sm or .ssc file into tag slices and chart
// blocks. The returned slices alias data.
func ExtractSections(data []byte, extension string) (*Sections, error) {
	ext := strings.ToLower(extension)
	if ext != "sm" && ext != "ssc" {
		return nil, &ParseError{Msg: "unsupported file extension (must be .sm or .ssc)"}
	}
	ssc := ext == "ssc"

	r := &Sections{}
	i := 0
	for i < len(data) {
		pos := bytes.IndexByte(data[i:], '#')
		if pos < 0 {
			break
		}
		i += pos
		s := data[i:]

		if ssc && startsWithFold(s, []byte("#NOTEDATA:")) {
			entry, next := parseNotedataEntry(data, i)
			if entry != nil {
				r.Charts = append(r.Charts, *entry)
			}
			i = next
			continue
		}

		if !ssc && (startsWithFold(s, []byte("#NOTES:")) || startsWithFold(s, []byte("#NOTES2:"))) {
			tagLen := 7
			if startsWithFold(s, []byte("#NOTES2:")) {
				tagLen = 8
			}
			start := i + tagLen
			end := len(data)
			if p := bytes.IndexByte(data[start:], ';'); p >= 0 {
				end = start + p
			}
			count, fields, noteData := splitNoteFields(data[start:end])
			if count == 5 {
				r.Charts = append(r.Charts, ChartEntry{
					FieldCount: count,
					Fields:     fields,
					NoteData:   noteData,
				})
			}
			i = end + 1
			continue
		}

		_ = tryTag(s, "#TITLE:", &r.Title, true) ||
			tryTag(s, "#SUBTITLE:", &r.Subtitle, true) ||
			tryTag(s, "#ARTIST:", &r.Artist, true) ||
			tryTag(s, "#TITLETRANSLIT:", &r.TitleTranslit, true) ||
			tryTag(s, "#SUBTITLETRANSLIT:", &r.SubtitleTranslit, true) ||
			tryTag(s, "#ARTISTTRANSLIT:", &r.ArtistTranslit, true) ||
			tryTag(s, "#VERSION:", &r.Version, true) ||
			tryTag(s, "#OFFSET:", &r.Offset, true) ||
			tryTag(s, "#BPMS:", &r.BPMs, true) ||
			tryTag(s, "#STOPS:", &r.Stops, true) ||
			tryTag(s, "#FREEZES:", &r.Stops, true) ||
			tryTag(s, "#DELAYS:", &r.Delays, true) ||
			tryTag(s, "#ATTACKS:", &r.Attacks, true) ||
			tryTag(s, "#TIMESIGNATURES:", &r.TimeSignatures, true) ||
			tryTag(s, "#TICKCOUNTS:", &r.Tickcounts, true) ||
			tryTag(s, "#BANNER:", &r.Banner, true) ||
			tryTag(s, "#BACKGROUND:", &r.Background, true) ||
			tryTag(s, "#CDTITLE:", &r.CDTitle, true) ||
			tryTag(s, "#JACKET:", &r.Jacket, true) ||
			tryTag(s, "#MUSIC:", &r.Music, true) ||
			tryTag(s, "#SAMPLESTART:", &r.SampleStart, true) ||
			tryTag(s, "#SAMPLELENGTH:", &r.SampleLength, true) ||
			tryTag(s, "#DISPLAYBPM:", &r.DisplayBPM, true) ||
			tryTag(s, "#FAKES:", &r.Fakes, ssc) ||
			tryTag(s, "#WARPS:", &r.Warps, ssc) ||
			tryTag(s, "#SPEEDS:", &r.Speeds, ssc) ||
			tryTag(s, "#SCROLLS:", &r.Scrolls, ssc) ||
			tryTag(s, "#LABELS:", &r.Labels, ssc) ||
			tryTag(s, "#COMBOS:", &r.Combos, ssc)
		i++
	}
	return r, nil
}

// splitNoteFields splits an SM #NOTES block body: five unescaped-colon
// separated header fields, then note data running to the next unescaped
// colon or the block end.
func splitNoteFields(block []byte) (int, [5][]byte, []byte) {
	var fields [5][]byte
	count := 0
	start := 0
	bsRun := 0

	for i, b := range block {
		if b == '\\' {
			bsRun++
			continue
		}
		if b == ':' && bsRun&1 == 0 && count < 5 {
			fields[count] = block[start:i]
			count++
			start = i + 1
			if count == 5 {
				break
			}
		}
		bsRun = 0
	}

	rest := block[min(start, len(block)):]
	end := len(rest)
	bsRun = 0
	for i, b := range rest {
		if b == '\\' {
			bsRun++
			continue
		}
		if b == ':' && bsRun&1 == 0 {
			end = i
			break
		}
		bsRun = 0
	}

	return count, fields, rest[:end]
}

// MSDFirstParam returns everything before the first unescaped ':' in a
// multi-parameter tag value.
func MSDFirstParam(b []byte) []byte {
	bsRun := 0
	for i, c := range b {
		if c == ':' && bsRun&1 == 0 {
			return b[:i]
		}
		if c == '\\' {
			bsRun++
		} else {
			bsRun = 0
		}
	}
	return b
}
