// Package reports implements report fusion: snapping hard-category
// accessibility reports onto the nearest unblocked edge and overriding
// its classification, before the graph's connected components are
// built (spec §4.4, §4.5).
package reports

import (
	"sort"
	"strconv"
	"strings"

	"github.com/accessmap/aae/internal/geo"
	"github.com/accessmap/aae/internal/spatial"
	"github.com/accessmap/aae/pkg/models"
)

// FusionRadiusM is the maximum distance a hard report may be snapped to
// an edge (spec §4.4).
const FusionRadiusM = 260

// Fuse snaps every eligible aggregated report onto its nearest
// non-BLOCKED edge within radiusM (the host's configured
// ReportFusionRadiusM, or FusionRadiusM if unset), overriding that
// edge's classification to BLOCKED/report and accumulating evidence. It
// returns the reports that could not be matched, in input order, for
// the candidate generator to turn into synthetic candidates.
//
// edgeIndex must be a spatial.Index over the edges, keyed by the edge's
// position in edges (the engine inserts each edge's endpoint bounding
// box); distances are then measured to edge midpoints.
func Fuse(edges []models.Edge, edgeIndex *spatial.Index, reports []models.AggregatedReport, radiusM float64) []models.AggregatedReport {
	var unmatched []models.AggregatedReport

	for _, r := range reports {
		if r.EffectiveReports <= 0 || !r.HasCoordinates || !isHardCategory(r.Category) {
			continue
		}

		best := findNearestUnblockedEdge(edges, edgeIndex, r.Lon, r.Lat, radiusM)
		if best < 0 {
			unmatched = append(unmatched, r)
			continue
		}

		e := &edges[best]
		e.Class.Status = models.StatusBlocked
		e.Class.Kind = models.BlockerReport
		if r.Confidence.Rank() > e.Class.Confidence.Rank() {
			e.Class.Confidence = r.Confidence
		}
		e.Class.Quality = 0
		e.AddReportEvidence(r)
		e.Class.Signals = append(e.Class.Signals, reportSignal(e))
	}

	return unmatched
}

func isHardCategory(category string) bool {
	return models.HardReportCategories[strings.ToLower(category)]
}

// findNearestUnblockedEdge returns the index into edges of the nearest
// non-BLOCKED edge within radiusM of (lon, lat), or -1. Distance ties
// fall back to comparing endpoint distances, per spec §4.4.
func findNearestUnblockedEdge(edges []models.Edge, idx *spatial.Index, lon, lat, radiusM float64) int {
	candidates := idx.QueryRadius(lon, lat, radiusM, geo.DegreesForMeters)

	best := -1
	bestDist := radiusM + 1
	for _, c := range candidates {
		e := &edges[c]
		if e.Class.Status == models.StatusBlocked {
			continue
		}
		d := geo.Haversine(lon, lat, e.MidLon, e.MidLat)
		if d > radiusM {
			continue
		}
		if d < bestDist || (d == bestDist && best >= 0 && endpointDistance(edges[int(c)], lon, lat) < endpointDistance(edges[best], lon, lat)) {
			best = int(c)
			bestDist = d
		}
	}
	return best
}

func endpointDistance(e models.Edge, lon, lat float64) float64 {
	df := geo.Haversine(lon, lat, e.FromLon, e.FromLat)
	dt := geo.Haversine(lon, lat, e.ToLon, e.ToLat)
	if df < dt {
		return df
	}
	return dt
}

func reportSignal(e *models.Edge) string {
	categories := make([]string, 0, len(e.ReportCategories))
	for c := range e.ReportCategories {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	top := categories
	if len(top) > 2 {
		top = top[:2]
	}
	return "Community reports (" + strconv.Itoa(e.EffectiveReports) + " effective): " + strings.Join(top, ", ")
}
