// Package poi snaps point-of-interest features onto the nearest graph
// node within a radius, and folds snapped POIs into their owning
// component's statistics (spec §4.6).
package poi

import (
	"github.com/accessmap/aae/internal/geo"
	"github.com/accessmap/aae/internal/spatial"
	"github.com/accessmap/aae/pkg/models"
)

// SnapRadiusM is the maximum POI-to-node snap distance (spec §4.6).
const SnapRadiusM = 220

// Snap attempts to snap every POI onto the nearest node within
// radiusM (the host's configured POISnapRadiusM, or SnapRadiusM if
// unset), using nodeIndex (a spatial.Index over node coordinates, keyed
// by node index) to shortlist candidates. Snapped POIs increment their
// owning component's POI count and destination histogram.
func Snap(pois []models.POI, nodeIndex *spatial.Index, nodeLon, nodeLat []float64, nodeComponent []int32, stats map[int32]*models.Component, radiusM float64) {
	for i := range pois {
		p := &pois[i]
		best := int32(-1)
		bestDist := radiusM + 1.0

		for _, n := range nodeIndex.QueryRadius(p.Lon, p.Lat, radiusM, geo.DegreesForMeters) {
			d := geo.Haversine(p.Lon, p.Lat, nodeLon[n], nodeLat[n])
			if d <= radiusM && d < bestDist {
				best = n
				bestDist = d
			}
		}

		if best < 0 {
			p.Snapped = false
			continue
		}

		p.Snapped = true
		p.SnappedNode = best
		p.SnapDistanceM = bestDist

		rep := nodeComponent[best]
		c, ok := stats[rep]
		if !ok {
			c = models.NewComponent(rep)
			stats[rep] = c
		}
		c.AddPOI(p.Kind)
	}
}
