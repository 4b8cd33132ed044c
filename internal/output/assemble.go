package output

import "github.com/accessmap/aae/pkg/models"

// MetaInput bundles everything Assemble needs to build the meta block,
// beyond the geometries and rankings it derives directly.
type MetaInput struct {
	BoundingBox          models.BoundingBox
	Warnings             []string
	ProfileAssumptions   string
	OverpassQueryVersion string
	Accessibility        models.AccessibilityBlock
	Counts               models.Counts
	Debug                models.DebugBlock
}

// RoundRankings returns a copy of rankings with every numeric field
// rounded per the output precision rules (spec §6). The input slice is
// left untouched.
func RoundRankings(rankings []models.Candidate) []models.Candidate {
	out := make([]models.Candidate, len(rankings))
	for i, c := range rankings {
		c.BaselineNAS = Score(c.BaselineNAS)
		c.BaselineOAS = Score(c.BaselineOAS)
		c.BaselineGAI = Score(c.BaselineGAI)
		c.PostFixNAS = Score(c.PostFixNAS)
		c.PostFixOAS = Score(c.PostFixOAS)
		c.PostFixGAI = Score(c.PostFixGAI)
		c.DeltaNAS = Score(c.DeltaNAS)
		c.DeltaOAS = Score(c.DeltaOAS)
		c.DeltaGeneral = Score(c.DeltaGeneral)
		c.FixCostPenalty = Score(c.FixCostPenalty)
		c.ConfidenceBonus = Score(c.ConfidenceBonus)
		c.Score = Score(c.Score)
		c.GainKM = Score(c.GainKM)
		c.UnlockM = Meters(c.UnlockM)
		c.BlockedM = Meters(c.BlockedM)
		c.AnchorDistanceM = Meters(c.AnchorDistanceM)
		c.Lon = Coord(c.Lon)
		c.Lat = Coord(c.Lat)
		out[i] = c
	}
	return out
}

// roundAccessibility rounds an accessibility block's scores and ratios
// per spec §6 (score fields to 3dp, metrics ratios to 4dp).
func roundAccessibility(a models.AccessibilityBlock) models.AccessibilityBlock {
	a.NAS = Score(a.NAS)
	a.OAS = Score(a.OAS)
	a.GAI = Score(a.GAI)
	a.Metrics.CoverageRatio = Ratio(a.Metrics.CoverageRatio)
	a.Metrics.ContinuityRatio = Ratio(a.Metrics.ContinuityRatio)
	a.Metrics.QualityRatio = Ratio(a.Metrics.QualityRatio)
	a.Metrics.BlockerPressure = Ratio(a.Metrics.BlockerPressure)
	return a
}

// BuildMeta assembles the meta block, applying rounding to its
// accessibility sub-block and the anchor's snap distance.
func BuildMeta(in MetaInput) models.Meta {
	in.Debug.Anchor.SnapDistanceM = Meters(in.Debug.Anchor.SnapDistanceM)
	return models.Meta{
		CalculationMethod:    models.CalculationMethod,
		ProfileAssumptions:   in.ProfileAssumptions,
		OverpassQueryVersion: in.OverpassQueryVersion,
		BoundingBox:          in.BoundingBox,
		Warnings:             in.Warnings,
		Accessibility:        roundAccessibility(in.Accessibility),
		Counts:               in.Counts,
		Debug:                in.Debug,
	}
}

// Assemble builds the full result payload from the pipeline's final
// state. Rankings are rounded here; every geometry builder rounds its
// own coordinates inline.
func Assemble(edges []models.Edge, nodeComponent []int32, baseComponent int32, rankings []models.Candidate, meta MetaInput) models.AnalysisResultPayload {
	return models.AnalysisResultPayload{
		StreamsGeoJSON:           BuildStreams(edges),
		AccessibleStreamsGeoJSON: BuildAccessibleStreams(edges, nodeComponent, baseComponent),
		BlockedSegmentsGeoJSON:   BuildBlockedSegments(edges),
		BarriersGeoJSON:          BuildBarriers(rankings),
		ScoreGridGeoJSON:         BuildScoreGrid(meta.BoundingBox, edges),
		Rankings:                 RoundRankings(rankings),
		Meta:                     BuildMeta(meta),
	}
}
