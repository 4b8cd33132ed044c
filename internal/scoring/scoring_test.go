package scoring

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ScoringSuite struct {
	suite.Suite
}

func TestScoringSuite(t *testing.T) {
	suite.Run(t, new(ScoringSuite))
}

func (s *ScoringSuite) TestComputeRatios_FullyPassable() {
	r := ComputeRatios(Inputs{
		PassLengthM:              1000,
		LimitedLengthM:           0,
		TotalLengthM:             1000,
		LargestPassComponentLenM: 1000,
		BlockedEdgeCount:         0,
	})

	s.InDelta(1.0, r.CoverageRatio, 1e-9)
	s.InDelta(1.0, r.ContinuityRatio, 1e-9)
	s.InDelta(1.0, r.QualityRatio, 1e-9)
	s.InDelta(0.0, r.BlockerPressure, 1e-9)
}

func (s *ScoringSuite) TestComputeRatios_EmptyNetwork() {
	r := ComputeRatios(Inputs{})
	s.InDelta(0.0, r.CoverageRatio, 1e-9)
	s.InDelta(0.0, r.ContinuityRatio, 1e-9)
	s.InDelta(0.0, r.QualityRatio, 1e-9)
	s.InDelta(0.0, r.BlockerPressure, 1e-9)
}

func (s *ScoringSuite) TestNAS_AllPassable() {
	r := Ratios{CoverageRatio: 1, ContinuityRatio: 1, QualityRatio: 1, BlockerPressure: 0}
	s.InDelta(100.0, NAS(r), 1e-9)
}

func (s *ScoringSuite) TestOAS_NoSnappedPOIs() {
	s.InDelta(50.0, OAS(0, 0), 1e-9)
}

func (s *ScoringSuite) TestOAS_HalfReachable() {
	s.InDelta(50.0, OAS(5, 10), 1e-9)
}

func (s *ScoringSuite) TestGAI_Weighting() {
	s.InDelta(70.0, GAI(100, 0), 1e-9)
	s.InDelta(30.0, GAI(0, 100), 1e-9)
}
