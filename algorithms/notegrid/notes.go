package notegrid

// NoteKind classifies a parsed note event.
type NoteKind int

const (
	NoteTap NoteKind = iota
	NoteHold
	NoteRoll
	NoteMine
	NoteFake
)

// ParsedNote is one note event in a minimized chart. TailRowIndex is
// set on hold and roll heads once their release row is seen; -1 means
// the tail never arrived.
type ParsedNote struct {
	RowIndex     int
	Column       int
	Kind         NoteKind
	TailRowIndex int
}

// ParseChartNotes expands minimized note data into note events,
// resolving hold and roll tails to their head notes.
func ParseChartNotes(minimized []byte, lanes int) []ParsedNote {
	if lanes < 1 {
		lanes = 1
	}
	var notes []ParsedNote
	rowIndex := 0
	holdHeads := make([]int, lanes)
	for i := range holdHeads {
		holdHeads[i] = -1
	}

	for _, raw := range splitLines(minimized) {
		line := trimCR(raw)
		if len(line) == 0 || (len(line) == 1 && line[0] == ',') {
			continue
		}
		if len(line) >= lanes {
			for col, ch := range line[:lanes] {
				switch ch {
				case '1':
					notes = append(notes, ParsedNote{rowIndex, col, NoteTap, -1})
				case 'F', 'f':
					notes = append(notes, ParsedNote{rowIndex, col, NoteFake, -1})
				case '2', '4':
					kind := NoteHold
					if ch == '4' {
						kind = NoteRoll
					}
					holdHeads[col] = len(notes)
					notes = append(notes, ParsedNote{rowIndex, col, kind, -1})
				case 'M', 'm':
					notes = append(notes, ParsedNote{rowIndex, col, NoteMine, -1})
				case '3':
					if head := holdHeads[col]; head >= 0 {
						notes[head].TailRowIndex = rowIndex
						holdHeads[col] = -1
					}
				}
			}
		}
		rowIndex++
	}
	return notes
}
