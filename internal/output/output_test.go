package output

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/accessmap/aae/pkg/models"
)

type OutputSuite struct {
	suite.Suite
}

func TestOutputSuite(t *testing.T) {
	suite.Run(t, new(OutputSuite))
}

func (s *OutputSuite) TestRoundingPrecisions() {
	s.InDelta(3.0, Meters(2.6), 1e-9)
	s.InDelta(1.235, Score(1.23456), 1e-9)
	s.InDelta(1.234568, Coord(1.2345678), 1e-9)
	s.InDelta(0.1235, Ratio(0.12346), 1e-9)
}

func (s *OutputSuite) TestMeters_ClampsNegative() {
	s.InDelta(0.0, Meters(-5), 1e-9)
}

func (s *OutputSuite) sampleEdges() []models.Edge {
	return []models.Edge{
		{
			ID: "e1", FromNode: 0, ToNode: 1,
			FromLon: 0, FromLat: 0, ToLon: 0.001, ToLat: 0, MidLon: 0.0005, MidLat: 0,
			LengthM: 100.4,
			Class:   models.Classification{Status: models.StatusPass},
		},
		{
			ID: "e2", FromNode: 1, ToNode: 2,
			FromLon: 0.001, FromLat: 0, ToLon: 0.002, ToLat: 0, MidLon: 0.0015, MidLat: 0,
			LengthM: 50,
			Class:   models.Classification{Status: models.StatusBlocked, Kind: models.BlockerStairs},
		},
	}
}

func (s *OutputSuite) TestBuildStreams_IncludesAllEdges() {
	fc := BuildStreams(s.sampleEdges())
	s.Len(fc.Features, 2)
	s.Equal("Feature", fc.Features[0].Type)
}

func (s *OutputSuite) TestBuildAccessibleStreams_OnlyPassEdgesTaggedWithBaseComponent() {
	edges := s.sampleEdges()
	nodeComponent := []int32{0, 0, 1}
	fc := BuildAccessibleStreams(edges, nodeComponent, 0)
	s.Len(fc.Features, 1)
	s.Equal(true, fc.Features[0].Properties["in_base_component"])
}

func (s *OutputSuite) TestBuildBlockedSegments_OnlyNonPassEdges() {
	fc := BuildBlockedSegments(s.sampleEdges())
	s.Len(fc.Features, 1)
	s.Equal("blocked", fc.Features[0].Properties["status"])
}

func (s *OutputSuite) TestBuildScoreGrid_OnlyNonEmptyCells() {
	bbox := models.BoundingBox{MinLon: 0, MinLat: 0, MaxLon: 0.008, MaxLat: 0.008}
	fc := BuildScoreGrid(bbox, s.sampleEdges())
	s.NotEmpty(fc.Features)
	s.LessOrEqual(len(fc.Features), GridSize*GridSize)
}

func (s *OutputSuite) TestRoundRankings_DoesNotMutateInput() {
	rankings := []models.Candidate{{Score: 1.23456, Lon: 1.2345678}}
	out := RoundRankings(rankings)
	s.InDelta(1.23456, rankings[0].Score, 1e-9)
	s.InDelta(1.235, out[0].Score, 1e-9)
}
