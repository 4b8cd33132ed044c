package output

import (
	"github.com/accessmap/aae/internal/scoring"
	"github.com/accessmap/aae/pkg/models"
)

// GridSize is the fixed score-grid resolution (spec §4.12).
const GridSize = 8

// BuildScoreGrid buckets edges into an 8x8 grid over bbox and computes
// a local NAS per non-empty cell from the edges whose midpoint falls
// there. A cell's continuity ratio is taken as 1 whenever it has any
// PASS length, since a local cell is too small to carry a meaningful
// largest-component distinction of its own.
func BuildScoreGrid(bbox models.BoundingBox, edges []models.Edge) models.FeatureCollection {
	fc := models.NewFeatureCollection()

	lonStep := (bbox.MaxLon - bbox.MinLon) / GridSize
	latStep := (bbox.MaxLat - bbox.MinLat) / GridSize
	if lonStep <= 0 || latStep <= 0 {
		return fc
	}

	type cellAgg struct {
		passM, limitedM, totalM float64
		blockedCount            int
	}
	cells := make(map[[2]int]*cellAgg)

	for i := range edges {
		e := &edges[i]
		cx := cellIndex(e.MidLon, bbox.MinLon, lonStep)
		cy := cellIndex(e.MidLat, bbox.MinLat, latStep)
		key := [2]int{cx, cy}
		c, ok := cells[key]
		if !ok {
			c = &cellAgg{}
			cells[key] = c
		}
		c.totalM += e.LengthM
		switch e.Class.Status {
		case models.StatusPass:
			c.passM += e.LengthM
		case models.StatusLimited:
			c.limitedM += e.LengthM
		case models.StatusBlocked:
			c.blockedCount++
		}
	}

	for cy := 0; cy < GridSize; cy++ {
		for cx := 0; cx < GridSize; cx++ {
			c, ok := cells[[2]int{cx, cy}]
			if !ok {
				continue
			}

			largest := 0.0
			if c.passM > 0 {
				largest = c.passM
			}
			ratios := scoring.ComputeRatios(scoring.Inputs{
				PassLengthM:              c.passM,
				LimitedLengthM:           c.limitedM,
				TotalLengthM:             c.totalM,
				LargestPassComponentLenM: largest,
				BlockedEdgeCount:         c.blockedCount,
			})
			nas := scoring.NAS(ratios)

			minLon := bbox.MinLon + float64(cx)*lonStep
			minLat := bbox.MinLat + float64(cy)*latStep
			maxLon := minLon + lonStep
			maxLat := minLat + latStep

			ring := [][2]float64{
				{Coord(minLon), Coord(minLat)},
				{Coord(maxLon), Coord(minLat)},
				{Coord(maxLon), Coord(maxLat)},
				{Coord(minLon), Coord(maxLat)},
				{Coord(minLon), Coord(minLat)},
			}

			fc.Features = append(fc.Features, models.Feature{
				Type:     "Feature",
				Geometry: models.PolygonGeometry(ring),
				Properties: map[string]any{
					"cell_x": cx,
					"cell_y": cy,
					"nas":    Score(nas),
				},
			})
		}
	}

	return fc
}

func cellIndex(v, min, step float64) int {
	idx := int((v - min) / step)
	if idx < 0 {
		idx = 0
	}
	if idx >= GridSize {
		idx = GridSize - 1
	}
	return idx
}
