// Package candidates generates, scores, and ranks accessibility fix
// candidates: for every non-PASS edge bridging the base component to
// another, it simulates fixing that edge and measures the resulting
// NAS/OAS/GAI improvement (spec §4.9–§4.11). The technique — remove (or
// here, hypothetically restore) one graph element, recompute a
// reachable set, and diff the before/after scores — mirrors a
// counterfactual-reachability simulation pattern.
package candidates

import (
	"strconv"
	"strings"

	"github.com/accessmap/aae/internal/geo"
	"github.com/accessmap/aae/internal/scoring"
	"github.com/accessmap/aae/internal/spatial"
	"github.com/accessmap/aae/pkg/models"
)

// fixCostPenalty is the per-blocker-kind cost penalty (spec §4.9).
var fixCostPenalty = map[models.BlockerKind]float64{
	models.BlockerStairs:            1.2,
	models.BlockerAccessNo:          1.1,
	models.BlockerWheelchairNo:      0.95,
	models.BlockerSteepIncline:      0.75,
	models.BlockerRaisedKerb:        0.55,
	models.BlockerReport:            0.55,
	models.BlockerRoughSurface:      0.45,
	models.BlockerWheelchairLimited: 0.40,
	models.BlockerOther:             0.60,
}

// confidenceBonus is the per-confidence-level rank score bonus (spec
// §4.9).
var confidenceBonus = map[models.Confidence]float64{
	models.ConfidenceHigh:   0.6,
	models.ConfidenceMedium: 0.3,
	models.ConfidenceLow:    0.05,
}

// ReportSnapRadiusM is the radius used both for matching an unmatched
// report to a graph node (to find its component) and, separately, to
// the nearest edge (to estimate a representative blocked length) when
// synthesizing a report-only candidate (spec §4.9).
const ReportSnapRadiusM = 260

// fallbackBlockedM is used when an unmatched report has no nearby edge
// to borrow a length estimate from.
const fallbackBlockedM = 30

// Network bundles the raw network measurements that change when a
// candidate edge is hypothetically fixed.
type Network struct {
	TotalLengthM     float64
	PassLengthM      float64
	LimitedLengthM   float64
	LargestPassLenM  float64
	BlockedEdgeCount int
	TotalSnappedPOIs int
}

// Input bundles everything GenerateEdgeCandidates and
// GenerateReportCandidates need.
type Input struct {
	Edges          []models.Edge
	NodeComponent  []int32
	ComponentStats map[int32]*models.Component
	BaseComponent  int32
	Network        Network

	BaselineNAS float64
	BaselineOAS float64
	BaselineGAI float64

	AnchorLon float64
	AnchorLat float64

	UnmatchedReports []models.AggregatedReport
	NodeIndex        *spatial.Index
	NodeLon          []float64
	NodeLat          []float64
	EdgeIndex        *spatial.Index
}

// GenerateEdgeCandidates builds one candidate per non-PASS edge that
// bridges the base component to exactly one other component.
func GenerateEdgeCandidates(in Input) []models.Candidate {
	var out []models.Candidate

	for i := range in.Edges {
		e := &in.Edges[i]
		if e.Class.Status == models.StatusPass {
			continue
		}

		fromComp := in.NodeComponent[e.FromNode]
		toComp := in.NodeComponent[e.ToNode]
		if fromComp == toComp {
			continue
		}

		var other int32
		switch in.BaseComponent {
		case fromComp:
			other = toComp
		case toComp:
			other = fromComp
		default:
			continue
		}

		base := in.ComponentStats[in.BaseComponent]
		otherStats := in.ComponentStats[other]
		if base == nil || otherStats == nil {
			continue
		}

		postNetwork := in.Network
		postNetwork.PassLengthM += e.LengthM
		if e.Class.Status == models.StatusLimited {
			postNetwork.LimitedLengthM -= e.LengthM
		}
		if e.Class.Status == models.StatusBlocked {
			postNetwork.BlockedEdgeCount--
		}
		mergedLen := base.PassLengthM + otherStats.PassLengthM + e.LengthM
		postNetwork.LargestPassLenM = maxOf(mergedLen, maxComponentLenExcluding(in.ComponentStats, in.BaseComponent, other))

		postNAS := scoring.NAS(scoring.ComputeRatios(scoring.Inputs{
			PassLengthM:              postNetwork.PassLengthM,
			LimitedLengthM:           postNetwork.LimitedLengthM,
			TotalLengthM:             postNetwork.TotalLengthM,
			LargestPassComponentLenM: postNetwork.LargestPassLenM,
			BlockedEdgeCount:         postNetwork.BlockedEdgeCount,
		}))
		reachablePOIs := base.POICount + otherStats.POICount
		postOAS := scoring.OAS(reachablePOIs, in.Network.TotalSnappedPOIs)
		postGAI := scoring.GAI(postNAS, postOAS)

		kind := e.Class.Kind
		penalty := fixCostPenalty[kind]
		if _, known := fixCostPenalty[kind]; !known {
			penalty = fixCostPenalty[models.BlockerOther]
		}
		bonus := confidenceBonus[e.Class.Confidence]

		deltaGeneral := postGAI - in.BaselineGAI
		// The edge itself joins the PASS network once fixed, so the
		// unlocked length is the other component's existing PASS length
		// plus the length of the bridge edge fixed here.
		unlockM := otherStats.PassLengthM + e.LengthM
		rankScore := 3*deltaGeneral + unlockM/750 + bonus - penalty

		c := models.Candidate{
			ID:                        e.ID,
			BlockerType:               kind,
			OSMID:                     strconv.FormatInt(e.WayID, 10),
			Confidence:                e.Class.Confidence,
			Tags:                      e.Tags,
			Signals:                   append([]string(nil), e.Class.Signals...),
			UnlockedDestinationCounts: copyCounts(otherStats.DestinationCounts),
			GroupKey:                  models.GroupKey{Base: in.BaseComponent, Other: other},
			BaselineNAS:               in.BaselineNAS,
			BaselineOAS:               in.BaselineOAS,
			BaselineGAI:               in.BaselineGAI,
			PostFixNAS:                postNAS,
			PostFixOAS:                postOAS,
			PostFixGAI:                postGAI,
			DeltaNAS:                  postNAS - in.BaselineNAS,
			DeltaOAS:                  postOAS - in.BaselineOAS,
			DeltaGeneral:              deltaGeneral,
			UnlockM:                   unlockM,
			GainKM:                    unlockM / 1000,
			UnlockedPOICount:          otherStats.POICount,
			AnchorDistanceM:           geo.Haversine(in.AnchorLon, in.AnchorLat, e.MidLon, e.MidLat),
			FixCostPenalty:            penalty,
			ConfidenceBonus:           bonus,
			BlockedM:                  e.LengthM,
			Score:                     rankScore,
			Lon:                       e.MidLon,
			Lat:                       e.MidLat,
		}
		c.Reason = reasonFor(c)
		out = append(out, c)
	}

	return out
}

// GenerateReportCandidates synthesizes a candidate for every unmatched
// hard report whose nearest graph node lies in a component other than
// the base.
func GenerateReportCandidates(in Input) []models.Candidate {
	var out []models.Candidate

	for _, r := range in.UnmatchedReports {
		node, ok := nearestNode(in, r.Lon, r.Lat, ReportSnapRadiusM)
		if !ok {
			continue
		}
		other := in.NodeComponent[node]
		if other == in.BaseComponent {
			continue
		}

		base := in.ComponentStats[in.BaseComponent]
		otherStats := in.ComponentStats[other]
		if base == nil || otherStats == nil {
			continue
		}

		reachablePOIs := base.POICount + otherStats.POICount
		postOAS := scoring.OAS(reachablePOIs, in.Network.TotalSnappedPOIs)
		postNAS := in.BaselineNAS
		postGAI := scoring.GAI(postNAS, postOAS)
		deltaGeneral := postGAI - in.BaselineGAI

		bonus := confidenceBonus[r.Confidence] + minOf(1.2, float64(r.EffectiveReports)*0.2)
		penalty := fixCostPenalty[models.BlockerReport]
		unlockM := otherStats.PassLengthM
		rankScore := 3*deltaGeneral + unlockM/750 + bonus - penalty

		blockedM := fallbackBlockedM
		if edgeIdx, dist, found := nearestEdge(in, r.Lon, r.Lat, ReportSnapRadiusM); found {
			_ = dist
			blockedM = int(in.Edges[edgeIdx].LengthM)
		}

		c := models.Candidate{
			ID:                        "report-" + r.ReportID,
			BlockerType:               models.BlockerReport,
			OSMID:                     "N/A",
			Confidence:                r.Confidence,
			Signals:                   []string{"Unmatched community report near component boundary"},
			SourceReportIDs:           []string{r.ReportID},
			UnlockedDestinationCounts: copyCounts(otherStats.DestinationCounts),
			GroupKey:                  models.GroupKey{Base: in.BaseComponent, Other: other},
			BaselineNAS:               in.BaselineNAS,
			BaselineOAS:               in.BaselineOAS,
			BaselineGAI:               in.BaselineGAI,
			PostFixNAS:                postNAS,
			PostFixOAS:                postOAS,
			PostFixGAI:                postGAI,
			DeltaNAS:                  0,
			DeltaOAS:                  postOAS - in.BaselineOAS,
			DeltaGeneral:              deltaGeneral,
			UnlockM:                   unlockM,
			GainKM:                    unlockM / 1000,
			UnlockedPOICount:          otherStats.POICount,
			AnchorDistanceM:           geo.Haversine(in.AnchorLon, in.AnchorLat, r.Lon, r.Lat),
			FixCostPenalty:            penalty,
			ConfidenceBonus:           bonus,
			ReportSignalCount:         r.EffectiveReports,
			BlockedM:                  float64(blockedM),
			Score:                     rankScore,
			Lon:                       r.Lon,
			Lat:                       r.Lat,
			Synthetic:                 true,
		}
		c.Reason = reasonFor(c)
		out = append(out, c)
	}

	return out
}

func nearestNode(in Input, lon, lat, radiusM float64) (int32, bool) {
	best := int32(-1)
	bestDist := radiusM + 1
	for _, n := range in.NodeIndex.QueryRadius(lon, lat, radiusM, geo.DegreesForMeters) {
		d := geo.Haversine(lon, lat, in.NodeLon[n], in.NodeLat[n])
		if d <= radiusM && d < bestDist {
			best = n
			bestDist = d
		}
	}
	return best, best >= 0
}

func nearestEdge(in Input, lon, lat, radiusM float64) (int32, float64, bool) {
	best := int32(-1)
	bestDist := radiusM + 1
	for _, c := range in.EdgeIndex.QueryRadius(lon, lat, radiusM, geo.DegreesForMeters) {
		d := geo.Haversine(lon, lat, in.Edges[c].MidLon, in.Edges[c].MidLat)
		if d <= radiusM && d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best, bestDist, best >= 0
}

func maxComponentLenExcluding(stats map[int32]*models.Component, a, b int32) float64 {
	best := 0.0
	for rep, c := range stats {
		if rep == a || rep == b {
			continue
		}
		if c.PassLengthM > best {
			best = c.PassLengthM
		}
	}
	return best
}

func maxOf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minOf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func reasonFor(c models.Candidate) string {
	var b strings.Builder
	b.WriteString("Fixing this ")
	b.WriteString(string(c.BlockerType))
	b.WriteString(" blocker would unlock ~")
	b.WriteString(strconv.Itoa(int(c.UnlockM)))
	b.WriteString("m of passable path")
	if c.UnlockedPOICount > 0 {
		b.WriteString(" and ")
		b.WriteString(strconv.Itoa(c.UnlockedPOICount))
		b.WriteString(" destinations")
	}
	if c.ReportSignalCount > 0 {
		b.WriteString(", backed by ")
		b.WriteString(strconv.Itoa(c.ReportSignalCount))
		b.WriteString(" community reports")
	}
	b.WriteString(".")
	return b.String()
}
