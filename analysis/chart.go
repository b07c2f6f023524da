package analysis

import (
	"math"
	"strings"
	"time"

	"github.com/stridelab/stepscan/algorithms/common"
	"github.com/stridelab/stepscan/algorithms/density"
	"github.com/stridelab/stepscan/algorithms/matrix"
	"github.com/stridelab/stepscan/algorithms/notegrid"
	"github.com/stridelab/stepscan/algorithms/parity"
	"github.com/stridelab/stepscan/algorithms/patterns"
	"github.com/stridelab/stepscan/algorithms/timing"
	"github.com/stridelab/stepscan/hashing"
	"github.com/stridelab/stepscan/simfile"
)

// songContext bundles the song-level state shared by every chart of
// one file.
type songContext struct {
	extension        string
	format           timing.Format
	sscVersion       float32
	allowStepsTiming bool
	songOffset       float64

	cleanedBPMs    string
	cleanedStops   string
	cleanedDelays  string
	cleanedWarps   string
	cleanedSpeeds  string
	cleanedScrolls string
	cleanedFakes   string
	normalizedBPMs string
	globalAttacks  []byte

	globalSegments *timing.TimingSegments
	globalBPMMap   []timing.BPMChange

	opts           *Options
	compiledCustom *patterns.CompiledCustomPatterns
	scratch4       *parity.Scratch
	scratch8       *parity.Scratch
}

// chartTimingTagPair returns the cleaned and normalized forms of a
// per-chart timing tag. Both come back empty when the tag is absent
// or cleans away to nothing.
func chartTimingTagPair(tag []byte) (cleaned, normalized string) {
	if tag == nil {
		return "", ""
	}
	text := string(tag)
	return timing.CleanTimingMap(text), timing.NormalizeFloatDigits(text)
}

func chartTimingTagCleaned(tag []byte) string {
	if tag == nil {
		return ""
	}
	return timing.CleanTimingMap(string(tag))
}

func chartTagTrimmed(tag []byte) string {
	return strings.TrimSpace(string(tag))
}

func chartDisplayBPMTag(tag []byte) string {
	return strings.TrimSpace(simfile.DecodeBytes(tag))
}

func timingTagPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// hasOwnTiming reports whether the chart carries any of the split
// timing tags an SSC chart may override the song with.
func hasOwnTiming(entry *simfile.ChartEntry) bool {
	return entry.BPMs != nil ||
		entry.Stops != nil ||
		entry.Delays != nil ||
		entry.Warps != nil ||
		entry.Speeds != nil ||
		entry.Scrolls != nil ||
		entry.Fakes != nil ||
		entry.TimeSignatures != nil ||
		entry.Labels != nil ||
		entry.Tickcounts != nil ||
		entry.Combos != nil ||
		entry.Offset != nil
}

type derivedChartMetrics struct {
	streamCounts density.StreamCounts
	totalStreams uint32

	snDetailedBreakdown string
	snPartialBreakdown  string
	snSimpleBreakdown   string
	detailedBreakdown   string
	partialBreakdown    string
	simpleBreakdown     string

	shortHash      string
	bpmNeutralHash string
	tierBPM        float64
	matrixRating   float64
}

func computeDerivedChartMetrics(measureDensities []int, bpmMap []timing.BPMChange, minimized []byte, bpmsToUse string) derivedChartMetrics {
	sc := density.ComputeStreamCounts(measureDensities)
	return derivedChartMetrics{
		streamCounts: sc,
		totalStreams: sc.Run16Streams + sc.Run20Streams + sc.Run24Streams + sc.Run32Streams,

		snDetailedBreakdown: density.GenerateBreakdown(measureDensities, density.BreakdownDetailed),
		snPartialBreakdown:  density.GenerateBreakdown(measureDensities, density.BreakdownPartial),
		snSimpleBreakdown:   density.GenerateBreakdown(measureDensities, density.BreakdownSimplified),
		detailedBreakdown:   density.StreamBreakdown(measureDensities, density.StreamDetailed),
		partialBreakdown:    density.StreamBreakdown(measureDensities, density.StreamPartial),
		simpleBreakdown:     density.StreamBreakdown(measureDensities, density.StreamSimple),

		shortHash:      hashing.ComputeChartHash(minimized, bpmsToUse),
		bpmNeutralHash: hashing.ComputeTempoNeutralHash(minimized),
		tierBPM:        common.RoundDP(matrix.ComputeTierBPM(measureDensities, bpmMap, 4.0), 2),
		matrixRating:   common.RoundDP(matrix.ComputeMatrixRating(measureDensities, bpmMap), 2),
	}
}

// streamPercentages derives the raw stream share of the whole chart,
// the adjusted share of the active stream region, and the break share
// as the adjusted complement.
func streamPercentages(totalStreams, totalBreaks uint32, totalMeasures int) (stream, adjusted, breaks float64) {
	if totalStreams+totalBreaks > 0 {
		adjusted = float64(totalStreams) / float64(totalStreams+totalBreaks) * 100.0
	}
	if totalMeasures > 0 {
		stream = float64(totalStreams) / float64(totalMeasures) * 100.0
	}
	return stream, adjusted, 100.0 - adjusted
}

// buildChartSummary runs the full per-chart pipeline. Returns false
// when the chart is malformed or its steps type is unsupported.
func buildChartSummary(entry *simfile.ChartEntry, song *songContext) (*ChartSummary, int, bool) {
	start := time.Now()

	if entry.FieldCount < 5 {
		return nil, 0, false
	}
	lanes := supportedStepsTypeLanes(entry.Fields[0])
	if lanes == 0 {
		return nil, 0, false
	}

	isSSC := strings.EqualFold(song.extension, "ssc")
	stepType := simfile.UnescapeTrim(simfile.DecodeBytes(entry.Fields[0]))
	descriptionRaw := simfile.UnescapeTrim(simfile.DecodeBytes(entry.Fields[1]))
	description := simfile.NormalizeChartDesc(descriptionRaw, isSSC, song.sscVersion)
	difficultyRaw := simfile.UnescapeTrim(simfile.DecodeBytes(entry.Fields[2]))
	rating := simfile.UnescapeTrim(simfile.DecodeBytes(entry.Fields[3]))
	difficulty := ResolveDifficultyLabel(difficultyRaw, description, rating, song.extension)

	var credit string
	if isSSC {
		credit = simfile.UnescapeTag(simfile.DecodeBytes(entry.Fields[4]))
	}
	techNotation := simfile.ParseTechNotation(credit, description)
	stepArtist := description
	if isSSC {
		stepArtist = credit
	}

	computePatterns := lanes == 4 && song.opts.ComputePatternCounts
	res, err := notegrid.MinimizeChart(entry.NoteData, lanes, true, computePatterns)
	if err != nil {
		return nil, 0, false
	}
	minimized := notegrid.TrimTrailingNewlines(res.Minimized)

	chartBPMs, chartBPMsNorm := chartTimingTagPair(entry.BPMs)
	bpmsToUse := chartBPMsNorm
	if bpmsToUse == "" {
		bpmsToUse = song.normalizedBPMs
	}
	chartStops := chartTimingTagCleaned(entry.Stops)
	chartDelays := chartTimingTagCleaned(entry.Delays)
	chartWarps := chartTimingTagCleaned(entry.Warps)
	chartSpeeds := chartTimingTagCleaned(entry.Speeds)
	chartScrolls := chartTimingTagCleaned(entry.Scrolls)
	chartFakes := chartTimingTagCleaned(entry.Fakes)

	chartTimeSignatures := chartTagTrimmed(entry.TimeSignatures)
	chartLabels := strings.TrimSpace(simfile.CleanTag(simfile.UnescapeTag(simfile.DecodeBytes(simfile.MSDFirstParam(entry.Labels)))))
	chartTickcounts := chartTagTrimmed(entry.Tickcounts)
	chartCombos := chartTagTrimmed(entry.Combos)
	attacksRaw := entry.Attacks
	if attacksRaw == nil {
		attacksRaw = song.globalAttacks
	}
	chartAttacks := chartTagTrimmed(attacksRaw)
	chartDisplayBPM := chartDisplayBPMTag(entry.DisplayBPM)

	chartOffset := song.songOffset
	if song.allowStepsTiming && entry.Offset != nil {
		chartOffset = simfile.ParseOffsetSeconds(entry.Offset)
	}
	chartHasOwnTiming := song.allowStepsTiming && hasOwnTiming(entry)

	var cachedRadarValues []float32
	if isSSC {
		cachedRadarValues = parseRadarValues(entry.RadarValues, true)
	} else {
		cachedRadarValues = parseRadarValues(entry.Fields[4], false)
	}

	segments := song.globalSegments
	bpmMap := song.globalBPMMap
	if chartHasOwnTiming {
		// Split timing replaces song timing wholesale, so the song
		// tags are blanked rather than inherited per tag.
		segments = timing.ComputeTimingSegments(timing.SegmentSource{
			ChartBPMs:    timingTagPtr(chartBPMs),
			ChartStops:   timingTagPtr(chartStops),
			ChartDelays:  timingTagPtr(chartDelays),
			ChartWarps:   timingTagPtr(chartWarps),
			ChartSpeeds:  timingTagPtr(chartSpeeds),
			ChartScrolls: timingTagPtr(chartScrolls),
			ChartFakes:   timingTagPtr(chartFakes),
		}, song.format, true)
		bpmMap = segments.BPMMap64()
	}

	metrics := computeDerivedChartMetrics(res.MeasureDensities, bpmMap, minimized, bpmsToUse)
	streamPercent, adjStreamPercent, breakPercent := streamPercentages(
		metrics.totalStreams, metrics.streamCounts.TotalBreaks, len(res.MeasureDensities))

	var detected patterns.PatternCounts
	var anchorLeft, anchorDown, anchorUp, anchorRight uint32
	if res.Bitmasks != nil {
		detected = patterns.DetectDefaultPatterns(res.Bitmasks)
		anchorLeft, anchorDown, anchorUp, anchorRight = patterns.CountAnchors(res.Bitmasks)
	}

	var facingLeft, facingRight, monoTotal, candleTotal uint32
	var monoPercent, candlePercent float64
	if res.Bitmasks != nil && res.Stats.TotalSteps > 1 {
		facingLeft, facingRight = patterns.CountFacingSteps(res.Bitmasks, song.opts.MonoThreshold)
		monoTotal = facingLeft + facingRight
		monoPercent = common.RoundDP(float64(monoTotal)/float64(res.Stats.TotalSteps)*100.0, 2)

		candleTotal = detected[patterns.CandleLeft] + detected[patterns.CandleRight]
		if maxCandles := (res.Stats.TotalSteps - 1) / 2; maxCandles > 0 {
			candlePercent = common.RoundDP(float64(candleTotal)/float64(maxCandles)*100.0, 2)
		}
	}

	var customCounts []patterns.CustomPatternCount
	if computePatterns && !song.compiledCustom.Empty() {
		customCounts = patterns.DetectCustomPatterns(res.Bitmasks, song.compiledCustom)
	}

	td := timing.NewData(chartOffset, 0, segments)

	var durationSeconds float64
	chartLength := 0
	if res.LastBeat > 0 {
		durationSeconds = common.RoundSigFigsITG(td.TimeForBeatF32(res.LastBeat))
		chartLength = int(math.Floor(td.TimeForBeat(res.LastBeat) + (song.songOffset - chartOffset)))
	}

	measureNPSRaw := density.ComputeMeasureNPSVecWithTiming(res.MeasureDensities, td)
	maxNPSRaw, medianNPSRaw := density.GetNPSStats(measureNPSRaw)
	maxNPS := common.RoundSigFigs6(maxNPSRaw)
	medianNPS := common.RoundDP(medianNPSRaw, 2)
	smoothedNPS := density.SmoothNPSVec(measureNPSRaw, density.DefaultSmoothingSpan)
	for i, v := range smoothedNPS {
		smoothedNPS[i] = common.RoundSigFigs6(v)
	}
	measureNPS := measureNPSRaw
	for i, v := range measureNPS {
		measureNPS[i] = common.RoundSigFigs6(v)
	}

	// Timing-aware recount drops fake and warped notes, but the raw
	// step and hold totals stay authoritative.
	rawTotalSteps := res.Stats.TotalSteps
	rawHolding := res.Stats.Holding
	stats := notegrid.ComputeTimingAwareStats(res.Rows, res.RowToBeat, td)

	var techCounts parity.TechCounts
	var degradations []Degradation
	if song.opts.ComputeTechCounts {
		scratch := song.scratch4
		if lanes == 8 {
			scratch = song.scratch8
		}
		techCounts = parity.AnalyzeRows(res.Rows, res.RowToBeat, td, scratch)
		if scratch.Degraded() {
			degradations = append(degradations, Degradation{
				Stage:  "step-parity",
				Reason: "no valid foot placement for at least one row, placements relaxed",
			})
		}
	}

	stats.TotalSteps = rawTotalSteps
	stats.Holding = rawHolding
	minesNonfake := stats.Mines

	summary := &ChartSummary{
		StepType:     stepType,
		StepArtist:   stepArtist,
		Description:  description,
		Difficulty:   difficulty,
		Rating:       rating,
		TechNotation: techNotation,

		TierBPM:      metrics.tierBPM,
		MatrixRating: metrics.matrixRating,

		Stats:         stats,
		StreamCounts:  metrics.streamCounts,
		TotalStreams:  metrics.totalStreams,
		MinesNonfake:  minesNonfake,
		TotalMeasures: len(res.MeasureDensities),

		StreamPercent:    streamPercent,
		AdjStreamPercent: adjStreamPercent,
		BreakPercent:     breakPercent,

		SNDetailedBreakdown: metrics.snDetailedBreakdown,
		SNPartialBreakdown:  metrics.snPartialBreakdown,
		SNSimpleBreakdown:   metrics.snSimpleBreakdown,
		DetailedBreakdown:   metrics.detailedBreakdown,
		PartialBreakdown:    metrics.partialBreakdown,
		SimpleBreakdown:     metrics.simpleBreakdown,

		MaxNPS:          maxNPS,
		MedianNPS:       medianNPS,
		DurationSeconds: durationSeconds,

		DetectedPatterns: detected,
		AnchorLeft:       anchorLeft,
		AnchorDown:       anchorDown,
		AnchorUp:         anchorUp,
		AnchorRight:      anchorRight,
		FacingLeft:       facingLeft,
		FacingRight:      facingRight,
		MonoTotal:        monoTotal,
		MonoPercent:      monoPercent,
		CandleTotal:      candleTotal,
		CandlePercent:    candlePercent,

		TechCounts:     techCounts,
		CustomPatterns: customCounts,

		ShortHash:      metrics.shortHash,
		BPMNeutralHash: metrics.bpmNeutralHash,

		MeasureDensities: res.MeasureDensities,
		MeasureNPS:       measureNPS,
		SmoothedNPS:      smoothedNPS,
		RowToBeat:        res.RowToBeat,

		TimingSegments:     segments,
		ChartOffsetSeconds: chartOffset,
		ChartHasOwnTiming:  chartHasOwnTiming,

		MinimizedNoteData: minimized,

		ChartBPMs:           chartBPMs,
		ChartStops:          chartStops,
		ChartDelays:         chartDelays,
		ChartWarps:          chartWarps,
		ChartSpeeds:         chartSpeeds,
		ChartScrolls:        chartScrolls,
		ChartFakes:          chartFakes,
		ChartAttacks:        chartAttacks,
		ChartDisplayBPM:     chartDisplayBPM,
		ChartTimeSignatures: chartTimeSignatures,
		ChartLabels:         chartLabels,
		ChartTickcounts:     chartTickcounts,
		ChartCombos:         chartCombos,

		CachedRadarValues: cachedRadarValues,

		Degradations: degradations,

		Elapsed: time.Since(start),
	}
	return summary, chartLength, true
}
