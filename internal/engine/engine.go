// Package engine orchestrates the twelve-stage accessibility analysis
// pipeline (spec §2): ingest, spatial indexing, edge classification,
// report fusion, graph/component construction, POI snapping, anchor
// resolution, scoring, candidate generation, report bonus, ranking, and
// output assembly. The engine is single-threaded and synchronous within
// one job (spec §5); it never logs and never performs I/O — it
// consumes already-materialized inputs and returns a value.
package engine

import (
	"github.com/accessmap/aae/internal/anchor"
	"github.com/accessmap/aae/internal/candidates"
	"github.com/accessmap/aae/internal/classify"
	"github.com/accessmap/aae/internal/engineerr"
	"github.com/accessmap/aae/internal/graph"
	"github.com/accessmap/aae/internal/ingest"
	"github.com/accessmap/aae/internal/output"
	"github.com/accessmap/aae/internal/poi"
	"github.com/accessmap/aae/internal/reports"
	"github.com/accessmap/aae/internal/scoring"
	"github.com/accessmap/aae/internal/spatial"
	"github.com/accessmap/aae/pkg/models"
)

// indexCellDeg is the default grid-bucket cell size used for every
// spatial index the engine builds, when Input doesn't override it. It
// is larger than any default snap/fusion radius in the pipeline (max
// 450m, ~0.004°), so a query never needs to expand past its own cell's
// immediate neighbors; a host that widens the radii via Input should
// widen the matching cell size too.
const indexCellDeg = 0.01

// Input bundles everything one analysis job needs. BoundingBox,
// Elements, POIs, and Reports are borrowed read-only; the engine makes
// defensive copies of any field it annotates.
//
// The tunable fields below (cell sizes, snap/fusion radii, ranking
// truncation) let a host thread its configured profile through to the
// pipeline; a zero value falls back to the stage's own documented
// default, so callers that don't care can leave Input's zero value in
// place.
type Input struct {
	BoundingBox          models.BoundingBox
	Elements             []models.Element
	POIs                 []models.POI
	Reports              []models.AggregatedReport
	AnchorPOIID          string
	HasAnchor            bool
	AnchorLon            float64
	AnchorLat            float64
	OverpassQueryVersion string
	ProfileAssumptions   string

	NodeIndexCellDeg    float64
	EdgeIndexCellDeg    float64
	ReportIndexCellDeg  float64
	POISnapRadiusM      float64
	AnchorSnapRadiusM   float64
	ReportFusionRadiusM float64
	ReportBonusRadiusM  float64
	MaxRankedCandidates int
}

func orDefault(v, fallback float64) float64 {
	if v <= 0 {
		return fallback
	}
	return v
}

// Run executes the full pipeline and returns the result payload, or a
// fatal *engineerr.EngineError for TooLarge/InvalidInput/Internal
// conditions. Soft-degrade conditions (empty edge set, unsnappable
// anchor, no graph nodes) are not errors: they produce a valid payload
// with an appended meta.warnings entry.
func Run(in Input, hooks Hooks) (*models.AnalysisResultPayload, *engineerr.EngineError) {
	if !in.BoundingBox.Valid() {
		return nil, engineerr.New(engineerr.InvalidInput, "bounding box is malformed")
	}

	var warnings []string

	nodeCellDeg := orDefault(in.NodeIndexCellDeg, indexCellDeg)
	edgeCellDeg := orDefault(in.EdgeIndexCellDeg, indexCellDeg)
	reportCellDeg := orDefault(in.ReportIndexCellDeg, indexCellDeg)
	poiRadiusM := orDefault(in.POISnapRadiusM, poi.SnapRadiusM)
	anchorRadiusM := orDefault(in.AnchorSnapRadiusM, anchor.SnapRadiusM)
	fusionRadiusM := orDefault(in.ReportFusionRadiusM, reports.FusionRadiusM)
	bonusRadiusM := orDefault(in.ReportBonusRadiusM, candidates.ReportBonusRadiusM)
	maxRanked := in.MaxRankedCandidates
	if maxRanked <= 0 {
		maxRanked = candidates.MaxRanked
	}

	var ingestResult *ingest.Result
	var ingestErr *engineerr.EngineError
	hooks.timeStage(StageIngest, func() {
		ingestResult, ingestErr = ingest.Ingest(in.Elements)
	})
	if ingestErr != nil {
		return nil, ingestErr
	}

	if len(ingestResult.Edges) == 0 {
		warnings = append(warnings, "No mapped pedestrian network found")
	}

	var nodeIndex, edgeIndex, reportIndex *spatial.Index
	hooks.timeStage(StageSpatialIndex, func() {
		nodeIndex = spatial.New(nodeCellDeg, nodeCellDeg)
		for i := range ingestResult.NodeLon {
			nodeIndex.InsertPoint(int32(i), ingestResult.NodeLon[i], ingestResult.NodeLat[i])
		}

		edgeIndex = spatial.New(edgeCellDeg, edgeCellDeg)
		for i := range ingestResult.Edges {
			e := &ingestResult.Edges[i]
			minLon, maxLon := e.FromLon, e.ToLon
			if minLon > maxLon {
				minLon, maxLon = maxLon, minLon
			}
			minLat, maxLat := e.FromLat, e.ToLat
			if minLat > maxLat {
				minLat, maxLat = maxLat, minLat
			}
			edgeIndex.InsertBBox(int32(i), minLon, minLat, maxLon, maxLat)
		}

		reportIndex = spatial.New(reportCellDeg, reportCellDeg)
		for i, r := range in.Reports {
			if r.HasCoordinates {
				reportIndex.InsertPoint(int32(i), r.Lon, r.Lat)
			}
		}
	})

	hooks.timeStage(StageEdgeClassifier, func() {
		for i := range ingestResult.Edges {
			e := &ingestResult.Edges[i]
			e.Class = classify.Edge(e.Tags, ingestResult.RaisedKerb[e.FromNode], ingestResult.RaisedKerb[e.ToNode])
		}
	})

	var unmatchedReports []models.AggregatedReport
	hooks.timeStage(StageReportFusion, func() {
		unmatchedReports = reports.Fuse(ingestResult.Edges, edgeIndex, in.Reports, fusionRadiusM)
	})

	if hooks.OnEdgesReady != nil {
		hooks.OnEdgesReady(ingestResult.Edges)
	}

	var buildResult *graph.BuildResult
	hooks.timeStage(StageGraphComponents, func() {
		buildResult = graph.Build(len(ingestResult.NodeLon), ingestResult.Edges)
	})

	pois := make([]models.POI, len(in.POIs))
	copy(pois, in.POIs)
	hooks.timeStage(StagePOISnapper, func() {
		poi.Snap(pois, nodeIndex, ingestResult.NodeLon, ingestResult.NodeLat, buildResult.NodeComponent, buildResult.ComponentStats, poiRadiusM)
	})

	var baseComponent int32
	var anchorDebug models.AnchorDebug
	hooks.timeStage(StageAnchorResolver, func() {
		var anchorWarning string
		baseComponent, anchorDebug, anchorWarning = anchor.Resolve(anchor.Input{
			NodeLon:        ingestResult.NodeLon,
			NodeLat:        ingestResult.NodeLat,
			NodeOSMID:      ingestResult.NodeOSMID,
			NodeComponent:  buildResult.NodeComponent,
			ComponentStats: buildResult.ComponentStats,
			NodeIndex:      nodeIndex,
			DSU:            buildResult.DSU,
			AnchorPOIID:    in.AnchorPOIID,
			HasAnchor:      in.HasAnchor,
			AnchorLon:      in.AnchorLon,
			AnchorLat:      in.AnchorLat,
			SnapRadiusM:    anchorRadiusM,
		})
		if anchorWarning != "" {
			warnings = append(warnings, anchorWarning)
		}
	})

	network := candidates.Network{}
	var baselineNAS, baselineOAS, baselineGAI float64
	var ratios scoring.Ratios
	totalSnappedPOIs, totalUnsnappedPOIs := 0, 0
	hooks.timeStage(StageScoringCore, func() {
		for _, p := range pois {
			if p.Snapped {
				totalSnappedPOIs++
			} else {
				totalUnsnappedPOIs++
			}
		}

		blockedEdgeCount := 0
		for i := range ingestResult.Edges {
			e := &ingestResult.Edges[i]
			network.TotalLengthM += e.LengthM
			switch e.Class.Status {
			case models.StatusPass:
				network.PassLengthM += e.LengthM
			case models.StatusLimited:
				network.LimitedLengthM += e.LengthM
			case models.StatusBlocked:
				blockedEdgeCount++
			}
		}
		network.BlockedEdgeCount = blockedEdgeCount
		network.TotalSnappedPOIs = totalSnappedPOIs

		for _, c := range buildResult.ComponentStats {
			if c.PassLengthM > network.LargestPassLenM {
				network.LargestPassLenM = c.PassLengthM
			}
		}

		ratios = scoring.ComputeRatios(scoring.Inputs{
			PassLengthM:              network.PassLengthM,
			LimitedLengthM:           network.LimitedLengthM,
			TotalLengthM:             network.TotalLengthM,
			LargestPassComponentLenM: network.LargestPassLenM,
			BlockedEdgeCount:         network.BlockedEdgeCount,
		})
		baselineNAS = scoring.NAS(ratios)
		if len(ingestResult.Edges) == 0 {
			// An empty network scores 0, not the 15 points the
			// blocker-pressure term alone would otherwise contribute.
			baselineNAS = 0
		}
		reachablePOIs := 0
		if c, ok := buildResult.ComponentStats[baseComponent]; ok {
			reachablePOIs = c.POICount
		}
		baselineOAS = scoring.OAS(reachablePOIs, totalSnappedPOIs)
		baselineGAI = scoring.GAI(baselineNAS, baselineOAS)
	})

	candInput := candidates.Input{
		Edges:            ingestResult.Edges,
		NodeComponent:    buildResult.NodeComponent,
		ComponentStats:   buildResult.ComponentStats,
		BaseComponent:    baseComponent,
		Network:          network,
		BaselineNAS:      baselineNAS,
		BaselineOAS:      baselineOAS,
		BaselineGAI:      baselineGAI,
		AnchorLon:        in.AnchorLon,
		AnchorLat:        in.AnchorLat,
		UnmatchedReports: unmatchedReports,
		NodeIndex:        nodeIndex,
		NodeLon:          ingestResult.NodeLon,
		NodeLat:          ingestResult.NodeLat,
		EdgeIndex:        edgeIndex,
	}

	var rawCandidates []models.Candidate
	var syntheticCount int
	hooks.timeStage(StageCandidateGenerator, func() {
		edgeCands := candidates.GenerateEdgeCandidates(candInput)
		reportCands := candidates.GenerateReportCandidates(candInput)
		syntheticCount = len(reportCands)
		rawCandidates = append(edgeCands, reportCands...)
	})

	hooks.timeStage(StageReportBonus, func() {
		rawCandidates = candidates.ApplyReportBonus(rawCandidates, in.Reports, reportIndex, bonusRadiusM)
	})

	var ranked []models.Candidate
	hooks.timeStage(StageGrouperRanker, func() {
		ranked = candidates.GroupAndRank(rawCandidates, maxRanked)
	})

	var payload models.AnalysisResultPayload
	hooks.timeStage(StageOutputAssembler, func() {
		payload = output.Assemble(ingestResult.Edges, buildResult.NodeComponent, baseComponent, ranked, output.MetaInput{
			BoundingBox:          in.BoundingBox,
			Warnings:             warnings,
			ProfileAssumptions:   in.ProfileAssumptions,
			OverpassQueryVersion: in.OverpassQueryVersion,
			Accessibility: models.AccessibilityBlock{
				NAS: baselineNAS,
				OAS: baselineOAS,
				GAI: baselineGAI,
				Metrics: models.MetricsRatios{
					CoverageRatio:   ratios.CoverageRatio,
					ContinuityRatio: ratios.ContinuityRatio,
					QualityRatio:    ratios.QualityRatio,
					BlockerPressure: ratios.BlockerPressure,
				},
			},
			Counts: models.Counts{
				PedestrianWays: ingestResult.WayCount,
				GraphNodes:     len(ingestResult.NodeLon),
				PassEdges:      countByStatus(ingestResult.Edges, models.StatusPass),
				LimitedEdges:   countByStatus(ingestResult.Edges, models.StatusLimited),
				BlockedEdges:   countByStatus(ingestResult.Edges, models.StatusBlocked),
				Components:     len(buildResult.ComponentStats),
				SnappedPOIs:    totalSnappedPOIs,
				UnsnappedPOIs:  totalUnsnappedPOIs,
				ReportsUsed:    len(in.Reports) - len(unmatchedReports),
			},
			Debug: models.DebugBlock{
				Anchor:                  anchorDebug,
				RawCandidateCount:       len(rawCandidates),
				GroupedCandidateCount:   len(ranked),
				SyntheticCandidateCount: syntheticCount,
			},
		})
	})

	return &payload, nil
}

func countByStatus(edges []models.Edge, status models.Status) int {
	n := 0
	for i := range edges {
		if edges[i].Class.Status == status {
			n++
		}
	}
	return n
}
