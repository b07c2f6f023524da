package simfile

import (
	"bytes"
	"math"
	"testing"
)

func TestExtractSectionsSM(t *testing.T) {
	src := []byte(`#TITLE:Example Song;
#SUBTITLE:;
#ARTIST:Someone;
#OFFSET:-0.100;
#BPMS:0.000=150.000;
#STOPS:4.000=0.500;
#NOTES:
     dance-single:
     Author:
     Challenge:
     11:
     0,0,0,0,0:
1000
0100
;
`)
	sections, err := ExtractSections(src, "sm")
	if err != nil {
		t.Fatalf("ExtractSections() error = %v", err)
	}
	if got, want := string(sections.Title), "Example Song"; got != want {
		t.Errorf("Title = %q, want %q", got, want)
	}
	if got, want := string(sections.BPMs), "0.000=150.000"; got != want {
		t.Errorf("BPMs = %q, want %q", got, want)
	}
	if got, want := string(sections.Stops), "4.000=0.500"; got != want {
		t.Errorf("Stops = %q, want %q", got, want)
	}
	if len(sections.Charts) != 1 {
		t.Fatalf("len(Charts) = %d, want 1", len(sections.Charts))
	}
	c := &sections.Charts[0]
	if c.FieldCount != 5 {
		t.Fatalf("FieldCount = %d, want 5", c.FieldCount)
	}
	if got, want := UnescapeTrim(DecodeBytes(c.Fields[0])), "dance-single"; got != want {
		t.Errorf("Fields[0] = %q, want %q", got, want)
	}
	if got, want := UnescapeTrim(DecodeBytes(c.Fields[2])), "Challenge"; got != want {
		t.Errorf("Fields[2] = %q, want %q", got, want)
	}
	if !bytes.Contains(c.NoteData, []byte("1000")) {
		t.Errorf("NoteData = %q, want note rows", c.NoteData)
	}
}

func TestExtractSectionsSSC(t *testing.T) {
	src := []byte(`#VERSION:0.83;
#TITLE:Split Song;
#BPMS:0.000=120.000;
#NOTEDATA:;
#STEPSTYPE:dance-single;
#DESCRIPTION:Author;
#DIFFICULTY:Hard;
#METER:9;
#BPMS:0.000=180.000;
#RADARVALUES:0,0,0,0,0;
#NOTES:
1000
0100
;
#NOTEDATA:;
#STEPSTYPE:dance-double;
#DESCRIPTION:;
#DIFFICULTY:Challenge;
#METER:11;
#NOTES:
10000000
;
`)
	sections, err := ExtractSections(src, "ssc")
	if err != nil {
		t.Fatalf("ExtractSections() error = %v", err)
	}
	if got, want := string(sections.BPMs), "0.000=120.000"; got != want {
		t.Errorf("song BPMs = %q, want %q", got, want)
	}
	if len(sections.Charts) != 2 {
		t.Fatalf("len(Charts) = %d, want 2", len(sections.Charts))
	}

	c := &sections.Charts[0]
	if got, want := string(c.Fields[0]), "dance-single"; got != want {
		t.Errorf("chart 0 steps type = %q, want %q", got, want)
	}
	if got, want := string(c.BPMs), "0.000=180.000"; got != want {
		t.Errorf("chart 0 BPMs = %q, want %q", got, want)
	}
	if c.RadarValues == nil {
		t.Error("chart 0 RadarValues = nil, want tag value")
	}
	if sections.Charts[1].BPMs != nil {
		t.Errorf("chart 1 BPMs = %q, want absent", sections.Charts[1].BPMs)
	}
}

func TestExtractSectionsRejectsUnknownExtension(t *testing.T) {
	if _, err := ExtractSections([]byte("#TITLE:x;"), "dwi"); err == nil {
		t.Fatal("ExtractSections(dwi) error = nil, want error")
	}
}

func TestExtractSectionsSkipsShortNotesBlocks(t *testing.T) {
	src := []byte("#TITLE:x;\n#NOTES:\n   dance-single:\n   only-two-fields\n;\n")
	sections, err := ExtractSections(src, "sm")
	if err != nil {
		t.Fatalf("ExtractSections() error = %v", err)
	}
	if len(sections.Charts) != 0 {
		t.Errorf("len(Charts) = %d, want 0", len(sections.Charts))
	}
}

func TestDecodeBytes(t *testing.T) {
	if got, want := DecodeBytes([]byte("plain")), "plain"; got != want {
		t.Errorf("DecodeBytes(utf8) = %q, want %q", got, want)
	}
	// 0x93/0x94 are CP1252 curly quotes, invalid as UTF-8.
	if got, want := DecodeBytes([]byte{0x93, 'h', 'i', 0x94}), "“hi”"; got != want {
		t.Errorf("DecodeBytes(cp1252) = %q, want %q", got, want)
	}
}

func TestUnescapeTag(t *testing.T) {
	if got, want := UnescapeTag(`a\:b\;c`), "a:b;c"; got != want {
		t.Errorf("UnescapeTag = %q, want %q", got, want)
	}
	if got, want := UnescapeTag(`back\\slash`), `back\slash`; got != want {
		t.Errorf("UnescapeTag = %q, want %q", got, want)
	}
}

func TestCleanTag(t *testing.T) {
	if got, want := CleanTag("ab\x01cd\ne"), "abcde"; got != want {
		t.Errorf("CleanTag = %q, want %q", got, want)
	}
	if got, want := CleanTag("clean"), "clean"; got != want {
		t.Errorf("CleanTag = %q, want %q", got, want)
	}
}

func TestStripTitleTags(t *testing.T) {
	tests := []struct{ in, want string }{
		{"[16] Song", "Song"},
		{"[16] [200] Song", "Song"},
		{"3.2- Song", "Song"},
		{"Almost - Song", "Almost - Song"},
		{"Song", "Song"},
	}
	for _, tt := range tests {
		if got := StripTitleTags(tt.in); got != tt.want {
			t.Errorf("StripTitleTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseOffsetSeconds(t *testing.T) {
	if got := ParseOffsetSeconds([]byte("-0.050")); got != float64(float32(-0.05)) {
		t.Errorf("ParseOffsetSeconds(-0.050) = %v", got)
	}
	if got := ParseOffsetSeconds(nil); got != 0 {
		t.Errorf("ParseOffsetSeconds(nil) = %v, want 0", got)
	}
	if got := ParseOffsetSeconds([]byte("junk")); got != 0 {
		t.Errorf("ParseOffsetSeconds(junk) = %v, want 0", got)
	}
}

func TestParseVersion(t *testing.T) {
	if got := ParseVersion([]byte("0.83"), true); got != 0.83 {
		t.Errorf("ParseVersion(0.83) = %v", got)
	}
	if got := ParseVersion(nil, true); !math.IsNaN(float64(got)) {
		t.Errorf("ParseVersion(nil, ssc) = %v, want NaN", got)
	}
	if got := ParseVersion(nil, false); got != StepfileVersionNumber {
		t.Errorf("ParseVersion(nil, sm) = %v, want %v", got, StepfileVersionNumber)
	}
}

func TestNormalizeChartDesc(t *testing.T) {
	if got := NormalizeChartDesc("Author", true, 0.56); got != "" {
		t.Errorf("pre chart-name SSC desc = %q, want empty", got)
	}
	if got := NormalizeChartDesc("Author", true, 0.83); got != "Author" {
		t.Errorf("modern SSC desc = %q, want Author", got)
	}
	if got := NormalizeChartDesc("Author", false, 0); got != "Author" {
		t.Errorf("SM desc = %q, want Author", got)
	}
}

func TestMSDFirstParam(t *testing.T) {
	if got, want := string(MSDFirstParam([]byte("0.000=Label:extra"))), "0.000=Label"; got != want {
		t.Errorf("MSDFirstParam = %q, want %q", got, want)
	}
	if got, want := string(MSDFirstParam([]byte(`esc\:aped:rest`))), `esc\:aped`; got != want {
		t.Errorf("MSDFirstParam = %q, want %q", got, want)
	}
}

func TestParseStepArtistAndTech(t *testing.T) {
	artist, tech := ParseStepArtistAndTech("Some Artist XO FS+")
	if artist != "Some Artist" {
		t.Errorf("artist = %q, want %q", artist, "Some Artist")
	}
	if len(tech) != 2 || tech[0] != "XO" || tech[1] != "FS+" {
		t.Errorf("tech = %v, want [XO FS+]", tech)
	}
}

func TestParseTechNotation(t *testing.T) {
	if got, want := ParseTechNotation("Artist XO", "whatever"), "XO"; got != want {
		t.Errorf("credit notation = %q, want %q", got, want)
	}
	if got, want := ParseTechNotation("Just A Name", "FS DS"), "FS DS"; got != want {
		t.Errorf("description fallback = %q, want %q", got, want)
	}
}
