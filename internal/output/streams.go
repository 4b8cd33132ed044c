// Package output assembles the engine's final artifact: the GeoJSON
// layers, score grid, rankings, and meta block, with all numeric output
// rounded in one centralized place (spec §4.12, §6).
package output

import "github.com/accessmap/aae/pkg/models"

// BuildStreams returns one LineString feature per pedestrian edge,
// carrying its full classification.
func BuildStreams(edges []models.Edge) models.FeatureCollection {
	fc := models.NewFeatureCollection()
	for i := range edges {
		e := &edges[i]
		fc.Features = append(fc.Features, models.Feature{
			Type:     "Feature",
			Geometry: models.LineStringGeometry(edgeCoords(e)),
			Properties: map[string]any{
				"id":           e.ID,
				"way_id":       e.WayID,
				"status":       string(e.Class.Status),
				"blocker_type": string(e.Class.Kind),
				"confidence":   string(e.Class.Confidence),
				"quality":      Score(e.Class.Quality),
				"signals":      e.Class.Signals,
				"length_m":     Meters(e.LengthM),
				"tags":         e.Tags,
			},
		})
	}
	return fc
}

// BuildAccessibleStreams returns one feature per PASS edge, tagged with
// its component and whether that component is the base component.
func BuildAccessibleStreams(edges []models.Edge, nodeComponent []int32, baseComponent int32) models.FeatureCollection {
	fc := models.NewFeatureCollection()
	for i := range edges {
		e := &edges[i]
		if e.Class.Status != models.StatusPass {
			continue
		}
		comp := nodeComponent[e.FromNode]
		fc.Features = append(fc.Features, models.Feature{
			Type:     "Feature",
			Geometry: models.LineStringGeometry(edgeCoords(e)),
			Properties: map[string]any{
				"id":                e.ID,
				"component_id":      comp,
				"in_base_component": comp == baseComponent,
				"length_m":          Meters(e.LengthM),
			},
		})
	}
	return fc
}

// BuildBlockedSegments returns one feature per non-PASS edge.
func BuildBlockedSegments(edges []models.Edge) models.FeatureCollection {
	fc := models.NewFeatureCollection()
	for i := range edges {
		e := &edges[i]
		if e.Class.Status == models.StatusPass {
			continue
		}
		fc.Features = append(fc.Features, models.Feature{
			Type:     "Feature",
			Geometry: models.LineStringGeometry(edgeCoords(e)),
			Properties: map[string]any{
				"id":           e.ID,
				"status":       string(e.Class.Status),
				"blocker_type": string(e.Class.Kind),
				"confidence":   string(e.Class.Confidence),
				"signals":      e.Class.Signals,
				"length_m":     Meters(e.LengthM),
			},
		})
	}
	return fc
}

// BuildBarriers returns one point feature per ranked candidate.
func BuildBarriers(rankings []models.Candidate) models.FeatureCollection {
	fc := models.NewFeatureCollection()
	for _, c := range rankings {
		fc.Features = append(fc.Features, models.Feature{
			Type:     "Feature",
			Geometry: models.PointGeometry(Coord(c.Lon), Coord(c.Lat)),
			Properties: map[string]any{
				"id":                  c.ID,
				"blocker_type":        string(c.BlockerType),
				"confidence":          string(c.Confidence),
				"score":               Score(c.Score),
				"delta_general":       Score(c.DeltaGeneral),
				"unlock_m":            Meters(c.UnlockM),
				"report_signal_count": c.ReportSignalCount,
				"reason":              c.Reason,
			},
		})
	}
	return fc
}

func edgeCoords(e *models.Edge) [][2]float64 {
	return [][2]float64{
		{Coord(e.FromLon), Coord(e.FromLat)},
		{Coord(e.ToLon), Coord(e.ToLat)},
	}
}
