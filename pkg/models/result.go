package models

// CalculationMethod is the literal string stamped into
// meta.calculation_method (spec §6).
const CalculationMethod = "General Accessibility Index = 0.7 * Network Accessibility Score + 0.3 * Opportunity Accessibility Score. Blockers are ranked by simulated post-fix score delta and unlocked passable meters."

// MetricsRatios are the primitive ratios the scoring core derives the
// accessibility scores from (spec §4.8).
type MetricsRatios struct {
	CoverageRatio   float64
	ContinuityRatio float64
	QualityRatio    float64
	BlockerPressure float64
}

// AccessibilityBlock is the baseline accessibility summary carried in
// meta.
type AccessibilityBlock struct {
	NAS     float64
	OAS     float64
	GAI     float64
	Metrics MetricsRatios
}

// Counts is the meta.counts block.
type Counts struct {
	PedestrianWays int
	GraphNodes     int
	PassEdges      int
	LimitedEdges   int
	BlockedEdges   int
	Components     int
	SnappedPOIs    int
	UnsnappedPOIs  int
	ReportsUsed    int
}

// AnchorDebug carries the anchor resolver's diagnostics (spec §4.12
// debug block).
type AnchorDebug struct {
	AnchorPOIID         string
	AnchorNodeOSMID     int64
	Snapped             bool
	SnapDistanceM       float64
	UsedBruteForce      bool
	UsedLargestFallback bool
}

// DebugBlock is the meta.debug block.
type DebugBlock struct {
	Anchor                  AnchorDebug
	RawCandidateCount       int
	GroupedCandidateCount   int
	SyntheticCandidateCount int
}

// Meta is the meta block of the result payload.
type Meta struct {
	CalculationMethod    string
	ProfileAssumptions   string
	OverpassQueryVersion string
	BoundingBox          BoundingBox
	Warnings             []string
	Accessibility        AccessibilityBlock
	Counts               Counts
	Debug                DebugBlock
}

// AnalysisResultPayload is the single artifact the engine returns. Once
// emitted it is immutable; it is the only entity that escapes the
// engine's per-job scope.
type AnalysisResultPayload struct {
	StreamsGeoJSON           FeatureCollection
	AccessibleStreamsGeoJSON FeatureCollection
	BlockedSegmentsGeoJSON   FeatureCollection
	BarriersGeoJSON          FeatureCollection
	ScoreGridGeoJSON         FeatureCollection
	Rankings                 []Candidate
	Meta                     Meta
}
