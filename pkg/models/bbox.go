// Package models contains the shared data types for the accessibility
// analysis engine: inputs borrowed from the host, the engine's internal
// entities, and the result payload the engine returns.
package models

// BoundingBox is a normalized, validated geographic bounding box in
// [minLon, minLat, maxLon, maxLat] order. Validation (minLon<maxLon,
// minLat<maxLat, area<=0.24 square degrees) is the host's responsibility;
// the engine only checks Valid() defensively on entry.
type BoundingBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Valid reports whether the box is well-formed.
func (b BoundingBox) Valid() bool {
	return b.MinLon < b.MaxLon && b.MinLat < b.MaxLat
}

// AreaDeg2 returns the box's area in square degrees.
func (b BoundingBox) AreaDeg2() float64 {
	return (b.MaxLon - b.MinLon) * (b.MaxLat - b.MinLat)
}

// Contains reports whether (lon, lat) falls within the box, inclusive.
func (b BoundingBox) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}
