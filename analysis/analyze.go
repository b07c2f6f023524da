// Package analysis orchestrates the per-chart pipeline: parsing,
// timing resolution, density and pattern stages, step parity, and
// hashing, folded into one summary per simfile.
package analysis

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/stridelab/stepscan/algorithms/common"
	"github.com/stridelab/stepscan/algorithms/parity"
	"github.com/stridelab/stepscan/algorithms/patterns"
	"github.com/stridelab/stepscan/algorithms/timing"
	"github.com/stridelab/stepscan/logging"
	"github.com/stridelab/stepscan/simfile"
)

// ErrNoMatchingSteps is returned when a file parses but carries no
// chart the analyzer supports.
var ErrNoMatchingSteps = errors.New("no matching steps")

func decodeTag(raw []byte) string {
	return simfile.UnescapeTag(simfile.DecodeBytes(raw))
}

func parseSampleSeconds(raw []byte) float64 {
	if raw == nil {
		return 0
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0
	}
	return f
}

// Analyze runs the full pipeline over one simfile and returns its
// summary. The extension selects the timing dialect ("sm" or "ssc").
func Analyze(data []byte, extension string, opts Options) (*SimfileSummary, error) {
	start := time.Now()

	sections, err := simfile.ExtractSections(data, extension)
	if err != nil {
		return nil, err
	}

	title := "<invalid-title>"
	if sections.Title != nil {
		title = simfile.CleanTag(decodeTag(sections.Title))
	}
	if opts.StripTags {
		title = simfile.StripTitleTags(title)
	}
	title = strings.TrimSpace(title)
	subtitle := strings.TrimSpace(decodeTag(sections.Subtitle))
	artist := strings.TrimSpace(decodeTag(sections.Artist))
	titleTranslit := decodeTag(sections.TitleTranslit)
	subtitleTranslit := decodeTag(sections.SubtitleTranslit)
	artistTranslit := decodeTag(sections.ArtistTranslit)
	if artist == "" && strings.TrimSpace(artistTranslit) == "" {
		artist = "Unknown artist"
		artistTranslit = "Unknown artist"
	}

	format := timing.FormatFromExtension(extension)
	offset := simfile.ParseOffsetSeconds(sections.Offset)
	sscVersion := simfile.ParseVersion(sections.Version, format == timing.FormatSSC)

	globalBPMsRaw := "<invalid-bpms>"
	if sections.BPMs != nil {
		globalBPMsRaw = string(sections.BPMs)
	}
	normalizedBPMs := timing.NormalizeFloatDigits(globalBPMsRaw)
	cleanedBPMs := timing.CleanTimingMap(globalBPMsRaw)

	type tagForms struct{ normalized, cleaned string }
	timingTag := func(raw []byte) tagForms {
		s := string(raw)
		return tagForms{timing.NormalizeFloatDigits(s), timing.CleanTimingMap(s)}
	}
	stops := timingTag(sections.Stops)
	delays := timingTag(sections.Delays)
	warps := timingTag(sections.Warps)
	speeds := timingTag(sections.Speeds)
	scrolls := timingTag(sections.Scrolls)
	fakes := timingTag(sections.Fakes)

	normalizedTimeSignatures := strings.TrimSpace(string(sections.TimeSignatures))
	normalizedLabels := simfile.CleanTag(decodeTag(simfile.MSDFirstParam(sections.Labels)))
	normalizedTickcounts := strings.TrimSpace(string(sections.Tickcounts))
	normalizedCombos := strings.TrimSpace(string(sections.Combos))

	allowStepsTiming := timing.StepsTimingAllowed(sscVersion, format)

	var compiledCustom *patterns.CompiledCustomPatterns
	if opts.ComputePatternCounts && len(opts.CustomPatterns) > 0 {
		compiledCustom = patterns.CompileCustomPatterns(opts.CustomPatterns)
	}

	globalSegments := timing.ComputeTimingSegments(timing.SegmentSource{
		GlobalBPMs:    cleanedBPMs,
		GlobalStops:   stops.cleaned,
		GlobalDelays:  delays.cleaned,
		GlobalWarps:   warps.cleaned,
		GlobalSpeeds:  speeds.cleaned,
		GlobalScrolls: scrolls.cleaned,
		GlobalFakes:   fakes.cleaned,
	}, format, true)
	globalBPMMap := globalSegments.BPMMap64()

	minBPM, maxBPM := timing.ComputeBPMRange(globalBPMMap)
	bpmValues := make([]float64, len(globalBPMMap))
	for i, c := range globalBPMMap {
		bpmValues[i] = c.BPM
	}
	medianBPM, averageBPM := timing.ComputeBPMStats(bpmValues)

	song := &songContext{
		extension:        extension,
		format:           format,
		sscVersion:       sscVersion,
		allowStepsTiming: allowStepsTiming,
		songOffset:       offset,

		cleanedBPMs:    cleanedBPMs,
		cleanedStops:   stops.cleaned,
		cleanedDelays:  delays.cleaned,
		cleanedWarps:   warps.cleaned,
		cleanedSpeeds:  speeds.cleaned,
		cleanedScrolls: scrolls.cleaned,
		cleanedFakes:   fakes.cleaned,
		normalizedBPMs: normalizedBPMs,
		globalAttacks:  sections.Attacks,

		globalSegments: globalSegments,
		globalBPMMap:   globalBPMMap,

		opts:           &opts,
		compiledCustom: compiledCustom,
		scratch4:       parity.NewScratch(4),
		scratch8:       parity.NewScratch(8),
	}

	charts := make([]ChartSummary, 0, len(sections.Charts))
	totalLength := 0
	for i := range sections.Charts {
		summary, chartLength, ok := buildChartSummary(&sections.Charts[i], song)
		if !ok {
			continue
		}
		if chartLength > totalLength {
			totalLength = chartLength
		}
		charts = append(charts, *summary)
	}
	if len(charts) == 0 {
		return nil, ErrNoMatchingSteps
	}

	logging.Debug("analyzed simfile", logging.Fields{
		"title":  title,
		"format": extension,
		"charts": len(charts),
	})

	return &SimfileSummary{
		Title:            title,
		Subtitle:         subtitle,
		Artist:           artist,
		TitleTranslit:    titleTranslit,
		SubtitleTranslit: subtitleTranslit,
		ArtistTranslit:   artistTranslit,

		OffsetSeconds: common.RoundDP(offset, 3),

		NormalizedBPMs:           normalizedBPMs,
		NormalizedStops:          stops.normalized,
		NormalizedDelays:         delays.normalized,
		NormalizedWarps:          warps.normalized,
		NormalizedSpeeds:         speeds.normalized,
		NormalizedScrolls:        scrolls.normalized,
		NormalizedFakes:          fakes.normalized,
		NormalizedTimeSignatures: normalizedTimeSignatures,
		NormalizedLabels:         normalizedLabels,
		NormalizedTickcounts:     normalizedTickcounts,
		NormalizedCombos:         normalizedCombos,

		SSCVersion: sscVersion,
		Format:     format,

		BannerPath:     decodeTag(sections.Banner),
		BackgroundPath: decodeTag(sections.Background),
		CDTitlePath:    decodeTag(sections.CDTitle),
		JacketPath:     decodeTag(sections.Jacket),
		MusicPath:      decodeTag(sections.Music),

		DisplayBPM:   decodeTag(sections.DisplayBPM),
		SampleStart:  parseSampleSeconds(sections.SampleStart),
		SampleLength: parseSampleSeconds(sections.SampleLength),

		MinBPM:     float64(minBPM),
		MaxBPM:     float64(maxBPM),
		MedianBPM:  common.RoundDP(medianBPM, 2),
		AverageBPM: common.RoundDP(averageBPM, 2),

		TotalLength: totalLength,

		PatternCountsEnabled: opts.ComputePatternCounts,
		TechCountsEnabled:    opts.ComputeTechCounts,

		Charts: charts,

		Elapsed: time.Since(start),
	}, nil
}
