package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/accessmap/aae/internal/engineerr"
	"github.com/accessmap/aae/internal/ingest"
	"github.com/accessmap/aae/pkg/models"
)

type EngineSuite struct {
	suite.Suite
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func node(id int64, lon, lat float64, tags map[string]string) models.Element {
	return models.Element{Type: models.ElementNode, ID: id, Lon: lon, Lat: lat, Tags: tags}
}

func way(id int64, tags map[string]string, nodes ...int64) models.Element {
	return models.Element{Type: models.ElementWay, ID: id, Tags: tags, Nodes: nodes}
}

var defaultBBox = models.BoundingBox{MinLon: -0.01, MinLat: -0.01, MaxLon: 0.01, MaxLat: 0.01}

// s1Elements builds the literal S1 scenario: a footway (1→2) followed
// by a steps segment (2→3).
func s1Elements() []models.Element {
	return []models.Element{
		node(1, 0, 0, nil),
		node(2, 0.001, 0, nil),
		node(3, 0.002, 0, nil),
		way(10, map[string]string{"highway": "footway"}, 1, 2),
		way(11, map[string]string{"highway": "steps"}, 2, 3),
	}
}

func (s *EngineSuite) TestS1_TrivialStairsBlocker() {
	payload, engErr := Run(Input{
		BoundingBox: defaultBBox,
		Elements:    s1Elements(),
		HasAnchor:   true,
		AnchorLon:   0,
		AnchorLat:   0,
	}, Hooks{})
	s.Require().Nil(engErr)

	s.Equal(2, payload.Meta.Counts.Components)
	s.Require().Len(payload.Rankings, 1)

	c := payload.Rankings[0]
	s.Equal(models.BlockerStairs, c.BlockerType)
	s.Equal(models.ConfidenceHigh, c.Confidence)
	s.InDelta(0.0, c.DeltaOAS, 1e-9)
	s.Greater(c.Score, 0.0)
	s.Greater(c.UnlockM, 0.0)
}

func (s *EngineSuite) TestS2_RaisedKerbOverride() {
	elements := append(s1Elements(),
		node(4, 0.0015, 0, map[string]string{"barrier": "kerb", "kerb": "raised"}),
		way(12, map[string]string{"highway": "footway"}, 2, 4),
	)

	payload, engErr := Run(Input{
		BoundingBox: defaultBBox,
		Elements:    elements,
		HasAnchor:   true,
		AnchorLon:   0,
		AnchorLat:   0,
	}, Hooks{})
	s.Require().Nil(engErr)

	s.Require().Len(payload.Rankings, 2)
	kinds := map[models.BlockerKind]bool{}
	for _, c := range payload.Rankings {
		kinds[c.BlockerType] = true
	}
	s.True(kinds[models.BlockerStairs])
	s.True(kinds[models.BlockerRaisedKerb])
}

func (s *EngineSuite) TestS3_ReportFusedEdge() {
	reports := []models.AggregatedReport{
		{
			ReportID: "rep-1", Category: "Blocked sidewalk", Confidence: models.ConfidenceHigh,
			EffectiveReports: 3, HasCoordinates: true, Lon: 0.001, Lat: 0,
		},
	}

	payload, engErr := Run(Input{
		BoundingBox: defaultBBox,
		Elements:    s1Elements(),
		Reports:     reports,
		HasAnchor:   true,
		AnchorLon:   0,
		AnchorLat:   0,
	}, Hooks{})
	s.Require().Nil(engErr)

	s.Require().Len(payload.Rankings, 2)
	var reportCand *models.Candidate
	for i := range payload.Rankings {
		if payload.Rankings[i].BlockerType == models.BlockerReport {
			reportCand = &payload.Rankings[i]
		}
	}
	s.Require().NotNil(reportCand)
	s.Equal("N/A", reportCand.OSMID)
}

func (s *EngineSuite) TestS4_WheelchairLimited() {
	elements := []models.Element{
		node(1, 0, 0, nil),
		node(2, 0.001, 0, nil),
		way(10, map[string]string{"highway": "footway", "wheelchair": "limited"}, 1, 2),
	}

	payload, engErr := Run(Input{
		BoundingBox: defaultBBox,
		Elements:    elements,
		HasAnchor:   true,
		AnchorLon:   0,
		AnchorLat:   0,
	}, Hooks{})
	s.Require().Nil(engErr)
	s.Equal(1, payload.Meta.Counts.LimitedEdges)
}

func (s *EngineSuite) TestS5_AnchorFallback() {
	payload, engErr := Run(Input{
		BoundingBox: defaultBBox,
		Elements:    s1Elements(),
		HasAnchor:   true,
		AnchorLon:   10,
		AnchorLat:   10,
	}, Hooks{})
	s.Require().Nil(engErr)

	s.Require().NotEmpty(payload.Meta.Warnings)
	s.Contains(payload.Meta.Warnings[0], "Anchor POI could not be snapped")
	s.NotEmpty(payload.Rankings)
}

func (s *EngineSuite) TestS6_GraphCapExceeded() {
	const n = ingest.MaxEdges + 2
	elements := make([]models.Element, 0, n+1)
	nodeIDs := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		id := int64(i + 1)
		elements = append(elements, node(id, float64(i)*0.0001, 0, nil))
		nodeIDs = append(nodeIDs, id)
	}
	elements = append(elements, way(1, map[string]string{"highway": "footway"}, nodeIDs...))

	_, engErr := Run(Input{BoundingBox: defaultBBox, Elements: elements}, Hooks{})
	s.Require().NotNil(engErr)
	s.Equal(engineerr.TooLarge, engErr.Kind)
	s.Contains(engErr.Message, "Area too large for analysis")
}

func (s *EngineSuite) TestBoundary_EmptyInput() {
	payload, engErr := Run(Input{BoundingBox: defaultBBox}, Hooks{})
	s.Require().Nil(engErr)
	s.Empty(payload.Rankings)
	s.InDelta(0.0, payload.Meta.Accessibility.NAS, 1e-9)
	s.Contains(payload.Meta.Warnings, "No mapped pedestrian network found")
}

func (s *EngineSuite) TestBoundary_SingleDisconnectedEdge() {
	elements := []models.Element{
		node(1, 0, 0, nil),
		node(2, 0.001, 0, nil),
		way(10, map[string]string{"highway": "footway"}, 1, 2),
	}
	payload, engErr := Run(Input{BoundingBox: defaultBBox, Elements: elements, HasAnchor: true}, Hooks{})
	s.Require().Nil(engErr)
	s.Equal(1, payload.Meta.Counts.Components)
	s.Empty(payload.Rankings)
}

func (s *EngineSuite) TestInvariant_RankingsSortedByScoreThenUnlockM() {
	elements := append(s1Elements(),
		node(4, 0.0015, 0, map[string]string{"barrier": "kerb", "kerb": "raised"}),
		way(12, map[string]string{"highway": "footway"}, 2, 4),
	)
	payload, engErr := Run(Input{BoundingBox: defaultBBox, Elements: elements, HasAnchor: true}, Hooks{})
	s.Require().Nil(engErr)

	for i := 1; i < len(payload.Rankings); i++ {
		prev, cur := payload.Rankings[i-1], payload.Rankings[i]
		s.GreaterOrEqual(prev.Score, cur.Score)
		if prev.Score == cur.Score {
			s.GreaterOrEqual(prev.UnlockM, cur.UnlockM)
		}
	}
}

func (s *EngineSuite) TestInvariant_UnlockedPOICountMatchesDestinationCounts() {
	payload, engErr := Run(Input{
		BoundingBox: defaultBBox,
		Elements:    s1Elements(),
		POIs:        []models.POI{{ID: "poi-1", Kind: "pharmacy", Lon: 0.002, Lat: 0}},
		HasAnchor:   true,
	}, Hooks{})
	s.Require().Nil(engErr)

	for _, c := range payload.Rankings {
		sum := 0
		for _, v := range c.UnlockedDestinationCounts {
			sum += v
		}
		s.Equal(c.UnlockedPOICount, sum)
	}
}

func (s *EngineSuite) TestIdempotence_SameInputsSameOutput() {
	first, err1 := Run(Input{BoundingBox: defaultBBox, Elements: s1Elements(), HasAnchor: true}, Hooks{})
	second, err2 := Run(Input{BoundingBox: defaultBBox, Elements: s1Elements(), HasAnchor: true}, Hooks{})
	s.Require().Nil(err1)
	s.Require().Nil(err2)
	s.Equal(first, second)
}

func (s *EngineSuite) TestInvalidBoundingBox() {
	_, engErr := Run(Input{BoundingBox: models.BoundingBox{MinLon: 1, MaxLon: 0, MinLat: 0, MaxLat: 1}}, Hooks{})
	s.Require().NotNil(engErr)
	s.Equal(engineerr.InvalidInput, engErr.Kind)
}

func (s *EngineSuite) TestHooks_OnStageCompleteCalledForEveryStage() {
	var stages []string
	_, engErr := Run(Input{BoundingBox: defaultBBox, Elements: s1Elements(), HasAnchor: true}, Hooks{
		OnStageComplete: func(stage string, _ time.Duration) {
			stages = append(stages, stage)
		},
	})
	s.Require().Nil(engErr)
	s.Equal([]string{
		StageIngest, StageSpatialIndex, StageEdgeClassifier, StageReportFusion,
		StageGraphComponents, StagePOISnapper, StageAnchorResolver, StageScoringCore,
		StageCandidateGenerator, StageReportBonus, StageGrouperRanker, StageOutputAssembler,
	}, stages)
}

func (s *EngineSuite) TestHooks_OnEdgesReadyCarriesFinalClassifiedEdges() {
	var gotEdges []models.Edge
	_, engErr := Run(Input{BoundingBox: defaultBBox, Elements: s1Elements(), HasAnchor: true}, Hooks{
		OnEdgesReady: func(edges []models.Edge) {
			gotEdges = edges
		},
	})
	s.Require().Nil(engErr)
	s.Require().Len(gotEdges, 2)
	s.Equal(models.StatusPass, gotEdges[0].Class.Status)
	s.Equal(models.StatusBlocked, gotEdges[1].Class.Status)
}
