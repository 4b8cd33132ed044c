package models

// GroupKey identifies the pair of components a candidate's fix would
// join. Used by the grouper to deduplicate candidates that would
// reconnect the same two components.
type GroupKey struct {
	Base  int32
	Other int32
}

// Candidate is a proposed accessibility fix: either a non-PASS edge
// incident to the base component, or a synthetic point derived from an
// unmatched hard report.
type Candidate struct {
	ID                        string
	BlockerType               BlockerKind
	OSMID                     string
	Confidence                Confidence
	Reason                    string
	Tags                      map[string]string
	Signals                   []string
	SourceReportIDs           []string
	UnlockedDestinationCounts map[string]int
	GroupKey                  GroupKey

	BaselineNAS float64
	BaselineOAS float64
	BaselineGAI float64
	PostFixNAS  float64
	PostFixOAS  float64
	PostFixGAI  float64

	DeltaNAS     float64
	DeltaOAS     float64
	DeltaGeneral float64

	UnlockM          float64
	GainKM           float64
	UnlockedPOICount int
	AnchorDistanceM  float64

	FixCostPenalty    float64
	ConfidenceBonus   float64
	ReportSignalCount int

	BlockedM float64

	Score float64

	Lon float64
	Lat float64

	Synthetic bool
}
