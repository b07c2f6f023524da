package simfile

import "unicode/utf8"

// cp1252Table maps the 0x80-0x9F range, where CP1252 diverges from
// Latin-1, to the corresponding Unicode code points.
var cp1252Table = [32]rune{
	0x20AC, 0xFFFD, 0x201A, 0x0192, 0x201E, 0x2026, 0x2020, 0x2021,
	0x02C6, 0x2030, 0x0160, 0x2039, 0x0152, 0xFFFD, 0x017D, 0xFFFD,
	0xFFFD, 0x2018, 0x2019, 0x201C, 0x201D, 0x2022, 0x2013, 0x2014,
	0x02DC, 0x2122, 0x0161, 0x203A, 0x0153, 0xFFFD, 0x017E, 0x0178,
}

func decodeCP1252(b []byte) string {
	out := make([]rune, 0, len(b))
	for _, c := range b {
		switch {
		case c <= 0x7F:
			out = append(out, rune(c))
		case c <= 0x9F:
			out = append(out, cp1252Table[c-0x80])
		default:
			out = append(out, rune(c))
		}
	}
	return string(out)
}

// DecodeBytes interprets tag bytes as UTF-8, falling back to CP1252 for
// files written by older editors.
func DecodeBytes(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return decodeCP1252(b)
}
