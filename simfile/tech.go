package simfile

import "strings"

// knownTechNotations lists the technical-notation tokens step artists
// embed in the credit/description fields, each with its +/- strength
// suffixes.
var knownTechNotations = buildTechList([]string{
	"BR", "BT", "BU", "BXF", "bXF", "BxF", "bXf", "bxF",
	"DS", "DT", "FL", "FS", "GH", "HS", "JA", "JUMPS",
	"KS", "KT", "MA", "MD", "RH", "SC", "SDS", "SJ",
	"SK", "SS", "SKT", "STR", "TR", "XMOD", "XO",
})

func buildTechList(bases []string) []string {
	out := make([]string, 0, len(bases)*3)
	for _, b := range bases {
		out = append(out, b, b+"+", b+"-")
	}
	return out
}

// parseChunkAsTech splits chunk into a sequence of known tech tokens
// with no leftover, preferring the longest token at each position.
// Returns nil when the chunk cannot be fully consumed.
func parseChunkAsTech(chunk string) []string {
	remainder := chunk
	var results []string
	for remainder != "" {
		best := ""
		for _, pat := range knownTechNotations {
			if strings.HasPrefix(remainder, pat) && len(pat) > len(best) {
				best = pat
			}
		}
		if best == "" {
			return nil
		}
		results = append(results, best)
		remainder = remainder[len(best):]
	}
	return results
}

// ParseStepArtistAndTech separates a credit field into the step artist
// text and any recognized tech-notation tokens.
func ParseStepArtistAndTech(input string) (string, []string) {
	var artist strings.Builder
	var notations []string
	for _, chunk := range strings.Fields(input) {
		if parsed := parseChunkAsTech(chunk); parsed != nil {
			notations = append(notations, parsed...)
			continue
		}
		if artist.Len() > 0 {
			artist.WriteByte(' ')
		}
		artist.WriteString(chunk)
	}
	return artist.String(), notations
}

// ParseTechNotation extracts the tech-notation string for a chart,
// preferring tokens found in the credit field and falling back to the
// description.
func ParseTechNotation(credit, description string) string {
	_, fromCredit := ParseStepArtistAndTech(credit)
	if len(fromCredit) > 0 {
		return strings.Join(fromCredit, " ")
	}
	_, fromDesc := ParseStepArtistAndTech(description)
	return strings.Join(fromDesc, " ")
}
