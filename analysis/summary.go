package analysis

import (
	"time"

	"github.com/stridelab/stepscan/algorithms/density"
	"github.com/stridelab/stepscan/algorithms/notegrid"
	"github.com/stridelab/stepscan/algorithms/parity"
	"github.com/stridelab/stepscan/algorithms/patterns"
	"github.com/stridelab/stepscan/algorithms/timing"
)

// Degradation records a soft failure inside one analysis stage. The
// stage still produced a result, but a fallback path was taken.
type Degradation struct {
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

func (d Degradation) Error() string {
	return d.Stage + ": " + d.Reason
}

// ChartSummary is the full per-chart analysis result.
type ChartSummary struct {
	StepType     string `json:"step_type"`
	StepArtist   string `json:"step_artist"`
	Description  string `json:"description"`
	Difficulty   string `json:"difficulty"`
	Rating       string `json:"rating"`
	TechNotation string `json:"tech_notation,omitempty"`

	TierBPM      float64 `json:"tier_bpm"`
	MatrixRating float64 `json:"matrix_rating"`

	Stats         notegrid.ArrowStats  `json:"stats"`
	StreamCounts  density.StreamCounts `json:"stream_counts"`
	TotalStreams  uint32               `json:"total_streams"`
	MinesNonfake  uint32               `json:"mines_nonfake"`
	TotalMeasures int                  `json:"total_measures"`

	StreamPercent    float64 `json:"stream_percent"`
	AdjStreamPercent float64 `json:"adj_stream_percent"`
	BreakPercent     float64 `json:"break_percent"`

	SNDetailedBreakdown string `json:"sn_detailed_breakdown"`
	SNPartialBreakdown  string `json:"sn_partial_breakdown"`
	SNSimpleBreakdown   string `json:"sn_simple_breakdown"`
	DetailedBreakdown   string `json:"detailed_breakdown"`
	PartialBreakdown    string `json:"partial_breakdown"`
	SimpleBreakdown     string `json:"simple_breakdown"`

	MaxNPS          float64 `json:"max_nps"`
	MedianNPS       float64 `json:"median_nps"`
	DurationSeconds float64 `json:"duration_seconds"`

	DetectedPatterns patterns.PatternCounts `json:"detected_patterns"`
	AnchorLeft       uint32                 `json:"anchor_left"`
	AnchorDown       uint32                 `json:"anchor_down"`
	AnchorUp         uint32                 `json:"anchor_up"`
	AnchorRight      uint32                 `json:"anchor_right"`
	FacingLeft       uint32                 `json:"facing_left"`
	FacingRight      uint32                 `json:"facing_right"`
	MonoTotal        uint32                 `json:"mono_total"`
	MonoPercent      float64                `json:"mono_percent"`
	CandleTotal      uint32                 `json:"candle_total"`
	CandlePercent    float64                `json:"candle_percent"`

	TechCounts     parity.TechCounts             `json:"tech_counts"`
	CustomPatterns []patterns.CustomPatternCount `json:"custom_patterns,omitempty"`

	ShortHash      string `json:"short_hash"`
	BPMNeutralHash string `json:"bpm_neutral_hash"`

	MeasureDensities []int     `json:"measure_densities"`
	MeasureNPS       []float64 `json:"measure_nps"`
	SmoothedNPS      []float64 `json:"smoothed_nps"`
	RowToBeat        []float32 `json:"-"`

	TimingSegments     *timing.TimingSegments `json:"-"`
	ChartOffsetSeconds float64                `json:"chart_offset_seconds"`
	ChartHasOwnTiming  bool                   `json:"chart_has_own_timing"`

	MinimizedNoteData []byte `json:"-"`

	// Per-chart timing tag echoes, cleaned. Empty when the chart does
	// not carry its own tag.
	ChartBPMs           string `json:"chart_bpms,omitempty"`
	ChartStops          string `json:"chart_stops,omitempty"`
	ChartDelays         string `json:"chart_delays,omitempty"`
	ChartWarps          string `json:"chart_warps,omitempty"`
	ChartSpeeds         string `json:"chart_speeds,omitempty"`
	ChartScrolls        string `json:"chart_scrolls,omitempty"`
	ChartFakes          string `json:"chart_fakes,omitempty"`
	ChartAttacks        string `json:"chart_attacks,omitempty"`
	ChartDisplayBPM     string `json:"chart_display_bpm,omitempty"`
	ChartTimeSignatures string `json:"chart_time_signatures,omitempty"`
	ChartLabels         string `json:"chart_labels,omitempty"`
	ChartTickcounts     string `json:"chart_tickcounts,omitempty"`
	ChartCombos         string `json:"chart_combos,omitempty"`

	// CachedRadarValues holds the file's precomputed radar row when it
	// parses cleanly, nil otherwise.
	CachedRadarValues []float32 `json:"cached_radar_values,omitempty"`

	Degradations []Degradation `json:"degradations,omitempty"`

	Elapsed time.Duration `json:"elapsed"`
}

// SimfileSummary is the per-file analysis result.
type SimfileSummary struct {
	Title            string `json:"title"`
	Subtitle         string `json:"subtitle,omitempty"`
	Artist           string `json:"artist"`
	TitleTranslit    string `json:"title_translit,omitempty"`
	SubtitleTranslit string `json:"subtitle_translit,omitempty"`
	ArtistTranslit   string `json:"artist_translit,omitempty"`

	OffsetSeconds float64 `json:"offset_seconds"`

	NormalizedBPMs           string `json:"normalized_bpms"`
	NormalizedStops          string `json:"normalized_stops,omitempty"`
	NormalizedDelays         string `json:"normalized_delays,omitempty"`
	NormalizedWarps          string `json:"normalized_warps,omitempty"`
	NormalizedSpeeds         string `json:"normalized_speeds,omitempty"`
	NormalizedScrolls        string `json:"normalized_scrolls,omitempty"`
	NormalizedFakes          string `json:"normalized_fakes,omitempty"`
	NormalizedTimeSignatures string `json:"normalized_time_signatures,omitempty"`
	NormalizedLabels         string `json:"normalized_labels,omitempty"`
	NormalizedTickcounts     string `json:"normalized_tickcounts,omitempty"`
	NormalizedCombos         string `json:"normalized_combos,omitempty"`

	SSCVersion float32       `json:"ssc_version,omitempty"`
	Format     timing.Format `json:"-"`

	BannerPath     string `json:"banner_path,omitempty"`
	BackgroundPath string `json:"background_path,omitempty"`
	CDTitlePath    string `json:"cdtitle_path,omitempty"`
	JacketPath     string `json:"jacket_path,omitempty"`
	MusicPath      string `json:"music_path,omitempty"`

	DisplayBPM   string  `json:"display_bpm,omitempty"`
	SampleStart  float64 `json:"sample_start"`
	SampleLength float64 `json:"sample_length"`

	MinBPM     float64 `json:"min_bpm"`
	MaxBPM     float64 `json:"max_bpm"`
	MedianBPM  float64 `json:"median_bpm"`
	AverageBPM float64 `json:"average_bpm"`

	// TotalLength is the longest chart's playable length in whole
	// seconds.
	TotalLength int `json:"total_length"`

	PatternCountsEnabled bool `json:"pattern_counts_enabled"`
	TechCountsEnabled    bool `json:"tech_counts_enabled"`

	Charts []ChartSummary `json:"charts"`

	Elapsed time.Duration `json:"elapsed"`
}

// ChartHashInfo is the hash-only fast path result for one chart.
type ChartHashInfo struct {
	StepType   string `json:"step_type"`
	Difficulty string `json:"difficulty"`
	Hash       string `json:"hash"`
}
