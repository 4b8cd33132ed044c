package engine

import (
	"time"

	"github.com/accessmap/aae/pkg/models"
)

// Stage names passed to Hooks.OnStageComplete, in pipeline order.
const (
	StageIngest             = "ingest"
	StageSpatialIndex       = "spatial_index"
	StageEdgeClassifier     = "edge_classifier"
	StageReportFusion       = "report_fusion"
	StageGraphComponents    = "graph_components"
	StagePOISnapper         = "poi_snapper"
	StageAnchorResolver     = "anchor_resolver"
	StageScoringCore        = "scoring_core"
	StageCandidateGenerator = "candidate_generator"
	StageReportBonus        = "report_bonus"
	StageGrouperRanker      = "grouper_ranker"
	StageOutputAssembler    = "output_assembler"
)

// Hooks lets a host observe per-stage timing without the engine itself
// depending on any metrics backend. A nil OnStageComplete is a no-op.
// Hosts that want OpenTelemetry histograms wire OnStageComplete to
// record against an otel/metric instrument; the engine package itself
// never imports otel.
type Hooks struct {
	OnStageComplete func(stage string, d time.Duration)

	// OnEdgesReady, if set, is called once with the final classified and
	// report-fused edge set, after report fusion but before scoring. A
	// host that wants to mirror the street graph elsewhere (graphexport)
	// hangs that side effect off this hook rather than the engine
	// depending on a graph backend directly.
	OnEdgesReady func(edges []models.Edge)
}

func (h Hooks) timeStage(stage string, fn func()) {
	start := time.Now()
	fn()
	if h.OnStageComplete != nil {
		h.OnStageComplete(stage, time.Since(start))
	}
}
