package analysis

import (
	"github.com/stridelab/stepscan/algorithms/notegrid"
	"github.com/stridelab/stepscan/algorithms/timing"
	"github.com/stridelab/stepscan/hashing"
	"github.com/stridelab/stepscan/simfile"
)

// ComputeAllHashes is the hash-only fast path: it parses, minimizes
// and hashes every supported chart without running the analysis
// stages.
func ComputeAllHashes(data []byte, extension string) ([]ChartHashInfo, error) {
	sections, err := simfile.ExtractSections(data, extension)
	if err != nil {
		return nil, err
	}
	format := timing.FormatFromExtension(extension)
	sscVersion := simfile.ParseVersion(sections.Version, format == timing.FormatSSC)

	normalizedGlobalBPMs := timing.NormalizeFloatDigits(string(sections.BPMs))

	results := make([]ChartHashInfo, 0, len(sections.Charts))
	for i := range sections.Charts {
		entry := &sections.Charts[i]
		if entry.FieldCount < 5 {
			continue
		}
		lanes := supportedStepsTypeLanes(entry.Fields[0])
		if lanes == 0 {
			continue
		}

		stepType := simfile.UnescapeTrim(simfile.DecodeBytes(entry.Fields[0]))
		descriptionRaw := simfile.UnescapeTrim(simfile.DecodeBytes(entry.Fields[1]))
		description := simfile.NormalizeChartDesc(descriptionRaw, format == timing.FormatSSC, sscVersion)
		difficultyRaw := simfile.UnescapeTrim(simfile.DecodeBytes(entry.Fields[2]))
		meterRaw := simfile.UnescapeTrim(simfile.DecodeBytes(entry.Fields[3]))
		difficulty := ResolveDifficultyLabel(difficultyRaw, description, meterRaw, extension)

		minimized, err := notegrid.MinimizeForHash(entry.NoteData, lanes)
		if err != nil {
			continue
		}

		bpmsToUse := normalizedGlobalBPMs
		if entry.BPMs != nil {
			bpmsToUse = timing.NormalizeFloatDigits(string(entry.BPMs))
		}

		results = append(results, ChartHashInfo{
			StepType:   stepType,
			Difficulty: difficulty,
			Hash:       hashing.ComputeChartHash(minimized, bpmsToUse),
		})
	}
	return results, nil
}
