package candidates

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/accessmap/aae/internal/spatial"
	"github.com/accessmap/aae/pkg/models"
)

type CandidatesSuite struct {
	suite.Suite
}

func TestCandidatesSuite(t *testing.T) {
	suite.Run(t, new(CandidatesSuite))
}

// twoComponentInput builds a base component (0) and a second component
// (2) joined by exactly one BLOCKED edge: exactly one candidate, whose
// unlock_m is the other component's PASS length plus the bridge edge's
// own length.
func (s *CandidatesSuite) twoComponentInput() Input {
	nodeLon := []float64{0, 0.001, 0.002}
	nodeLat := []float64{0, 0, 0}
	nodeComponent := []int32{0, 0, 2}

	edges := []models.Edge{
		{
			ID:       "e-bridge",
			FromNode: 1,
			ToNode:   2,
			MidLon:   0.0015,
			MidLat:   0,
			LengthM:  50,
			WayID:    42,
			Class: models.Classification{
				Status:     models.StatusBlocked,
				Kind:       models.BlockerStairs,
				Confidence: models.ConfidenceHigh,
			},
		},
	}

	stats := map[int32]*models.Component{
		0: {Representative: 0, PassLengthM: 500, POICount: 3, DestinationCounts: map[string]int{"cafe": 1}},
		2: {Representative: 2, PassLengthM: 200, POICount: 1, DestinationCounts: map[string]int{"pharmacy": 1}},
	}

	nodeIndex := spatial.New(0.01, 0.01)
	for i := range nodeLon {
		nodeIndex.InsertPoint(int32(i), nodeLon[i], nodeLat[i])
	}

	edgeIndex := spatial.New(0.01, 0.01)
	for i := range edges {
		edgeIndex.InsertPoint(int32(i), edges[i].MidLon, edges[i].MidLat)
	}

	return Input{
		Edges:          edges,
		NodeComponent:  nodeComponent,
		ComponentStats: stats,
		BaseComponent:  0,
		Network: Network{
			TotalLengthM:     1000,
			PassLengthM:      700,
			LimitedLengthM:   0,
			LargestPassLenM:  500,
			BlockedEdgeCount: 1,
			TotalSnappedPOIs: 4,
		},
		BaselineNAS: 80,
		BaselineOAS: 75,
		BaselineGAI: 78.5,
		NodeIndex:   nodeIndex,
		NodeLon:     nodeLon,
		NodeLat:     nodeLat,
		EdgeIndex:   edgeIndex,
	}
}

func (s *CandidatesSuite) TestGenerateEdgeCandidates_UnlockIsOtherComponentPassLengthPlusEdge() {
	in := s.twoComponentInput()
	cands := GenerateEdgeCandidates(in)

	s.Require().Len(cands, 1)
	s.InDelta(250.0, cands[0].UnlockM, 1e-9)
	s.Equal(models.BlockerStairs, cands[0].BlockerType)
	s.Equal(1, cands[0].UnlockedPOICount)
}

func (s *CandidatesSuite) TestGenerateEdgeCandidates_SkipsPassEdges() {
	in := s.twoComponentInput()
	in.Edges[0].Class.Status = models.StatusPass
	cands := GenerateEdgeCandidates(in)
	s.Empty(cands)
}

func (s *CandidatesSuite) TestGenerateEdgeCandidates_SkipsEdgesWithinSameComponent() {
	in := s.twoComponentInput()
	in.NodeComponent[2] = 0
	cands := GenerateEdgeCandidates(in)
	s.Empty(cands)
}

func (s *CandidatesSuite) TestGenerateReportCandidates_DeltaNASForcedZero() {
	in := s.twoComponentInput()
	in.UnmatchedReports = []models.AggregatedReport{
		{ReportID: "r1", Category: "blocked sidewalk", Confidence: models.ConfidenceMedium, EffectiveReports: 2, HasCoordinates: true, Lon: 0.0019, Lat: 0},
	}

	cands := GenerateReportCandidates(in)
	s.Require().Len(cands, 1)
	s.InDelta(0.0, cands[0].DeltaNAS, 1e-9)
	s.True(cands[0].Synthetic)
	s.Equal(models.BlockerReport, cands[0].BlockerType)
}

func (s *CandidatesSuite) TestGenerateReportCandidates_SkipsUnreachableReport() {
	in := s.twoComponentInput()
	in.UnmatchedReports = []models.AggregatedReport{
		{ReportID: "far", Category: "blocked sidewalk", Confidence: models.ConfidenceLow, EffectiveReports: 1, HasCoordinates: true, Lon: 5, Lat: 5},
	}
	cands := GenerateReportCandidates(in)
	s.Empty(cands)
}

func (s *CandidatesSuite) TestApplyReportBonus_BoostsNearbyCandidate() {
	cands := []models.Candidate{
		{ID: "c1", Lon: 0.0015, Lat: 0, Score: 1.0, Confidence: models.ConfidenceLow},
	}
	reports := []models.AggregatedReport{
		{ReportID: "r1", Confidence: models.ConfidenceHigh, EffectiveReports: 2, HasCoordinates: true, Lon: 0.0015, Lat: 0.00001},
	}
	idx := spatial.New(0.01, 0.01)
	idx.InsertPoint(0, reports[0].Lon, reports[0].Lat)

	out := ApplyReportBonus(cands, reports, idx, ReportBonusRadiusM)
	s.Greater(out[0].Score, 1.0)
	s.Equal(models.ConfidenceHigh, out[0].Confidence)
	s.Equal(2, out[0].ReportSignalCount)
}

func (s *CandidatesSuite) TestApplyReportBonus_IgnoresSynthetic() {
	cands := []models.Candidate{
		{ID: "c1", Lon: 0.0015, Lat: 0, Score: 1.0, Synthetic: true},
	}
	reports := []models.AggregatedReport{
		{ReportID: "r1", Confidence: models.ConfidenceHigh, EffectiveReports: 5, HasCoordinates: true, Lon: 0.0015, Lat: 0},
	}
	idx := spatial.New(0.01, 0.01)
	idx.InsertPoint(0, reports[0].Lon, reports[0].Lat)

	out := ApplyReportBonus(cands, reports, idx, ReportBonusRadiusM)
	s.InDelta(1.0, out[0].Score, 1e-9)
}

func (s *CandidatesSuite) TestGroupAndRank_DeduplicatesByGroupKeyKeepingBest() {
	cands := []models.Candidate{
		{ID: "a", GroupKey: models.GroupKey{Base: 0, Other: 1}, Score: 1.0, UnlockM: 10},
		{ID: "b", GroupKey: models.GroupKey{Base: 0, Other: 1}, Score: 5.0, UnlockM: 20},
		{ID: "c", GroupKey: models.GroupKey{Base: 0, Other: 2}, Score: 2.0, UnlockM: 15},
	}

	out := GroupAndRank(cands, MaxRanked)
	s.Require().Len(out, 2)
	s.Equal("b", out[0].ID)
	s.Equal("c", out[1].ID)
}

func (s *CandidatesSuite) TestGroupAndRank_TruncatesToMax() {
	cands := make([]models.Candidate, MaxRanked+10)
	for i := range cands {
		cands[i] = models.Candidate{
			ID:       string(rune('a' + i%26)),
			GroupKey: models.GroupKey{Base: 0, Other: int32(i + 1)},
			Score:    float64(i),
		}
	}
	out := GroupAndRank(cands, MaxRanked)
	s.Len(out, MaxRanked)
	s.Equal(float64(len(cands)-1), out[0].Score)
}
