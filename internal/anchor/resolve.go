// Package anchor resolves the baseline component: the PASS-connected
// component the rest of the scoring pipeline treats as "already
// reachable" (spec §4.7).
package anchor

import (
	"github.com/accessmap/aae/internal/geo"
	"github.com/accessmap/aae/internal/graph"
	"github.com/accessmap/aae/internal/spatial"
	"github.com/accessmap/aae/pkg/models"
)

// SnapRadiusM is the maximum anchor-to-node snap distance (spec §4.7).
const SnapRadiusM = 450

// Input bundles everything Resolve needs from the ingested graph.
type Input struct {
	NodeLon        []float64
	NodeLat        []float64
	NodeOSMID      []int64
	NodeComponent  []int32
	ComponentStats map[int32]*models.Component
	NodeIndex      *spatial.Index
	DSU            *graph.DSU

	AnchorPOIID string
	HasAnchor   bool
	AnchorLon   float64
	AnchorLat   float64

	// SnapRadiusM is the maximum anchor-to-node snap distance to try
	// before falling back to brute-force nearest. Callers that don't
	// need a host-configured override can leave it at SnapRadiusM.
	SnapRadiusM float64
}

// Resolve implements the anchor priority chain: snap within radius,
// else brute-force nearest node, else largest PASS component. It
// returns the chosen base component representative, diagnostics for
// meta.debug, and a warning string (empty if none).
func Resolve(in Input) (int32, models.AnchorDebug, string) {
	debug := models.AnchorDebug{AnchorPOIID: in.AnchorPOIID}

	if in.HasAnchor && len(in.NodeLon) > 0 {
		if node, dist, ok := snapNearest(in, in.SnapRadiusM); ok {
			debug.Snapped = true
			debug.AnchorNodeOSMID = in.NodeOSMID[node]
			debug.SnapDistanceM = dist
			return in.NodeComponent[node], debug, ""
		}
	}

	if len(in.NodeLon) > 0 {
		node, dist := bruteForceNearest(in)
		debug.UsedBruteForce = true
		debug.AnchorNodeOSMID = in.NodeOSMID[node]
		debug.SnapDistanceM = dist
		return in.NodeComponent[node], debug, "Anchor POI could not be snapped within range; used nearest available node"
	}

	debug.UsedLargestFallback = true
	return graph.LargestPassComponent(in.ComponentStats), debug, "No graph nodes available; used the largest passable component"
}

func snapNearest(in Input, radiusM float64) (int32, float64, bool) {
	best := int32(-1)
	bestDist := radiusM + 1
	for _, n := range in.NodeIndex.QueryRadius(in.AnchorLon, in.AnchorLat, radiusM, geo.DegreesForMeters) {
		d := geo.Haversine(in.AnchorLon, in.AnchorLat, in.NodeLon[n], in.NodeLat[n])
		if d <= radiusM && d < bestDist {
			best = n
			bestDist = d
		}
	}
	if best < 0 {
		return 0, 0, false
	}
	return best, bestDist, true
}

// bruteForceNearest scans every graph node unconditionally, measuring
// from AnchorLon/AnchorLat as given. Resolve calls it whenever the graph
// has nodes, including when no anchor was supplied (the coordinate is
// then its zero value).
func bruteForceNearest(in Input) (int32, float64) {
	best := int32(0)
	bestDist := geo.Haversine(in.AnchorLon, in.AnchorLat, in.NodeLon[0], in.NodeLat[0])
	for n := 1; n < len(in.NodeLon); n++ {
		d := geo.Haversine(in.AnchorLon, in.AnchorLat, in.NodeLon[n], in.NodeLat[n])
		if d < bestDist {
			best = int32(n)
			bestDist = d
		}
	}
	return best, bestDist
}
