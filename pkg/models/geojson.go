package models

// Geometry is a minimal GeoJSON geometry. Coordinates shape depends on
// Type: "Point" -> [2]float64, "LineString" -> [][2]float64, "Polygon"
// -> [][][2]float64.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// Feature is a minimal GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection is a minimal GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection returns an empty, non-nil feature collection.
func NewFeatureCollection() FeatureCollection {
	return FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}

// PointGeometry builds a GeoJSON Point geometry.
func PointGeometry(lon, lat float64) Geometry {
	return Geometry{Type: "Point", Coordinates: [2]float64{lon, lat}}
}

// LineStringGeometry builds a GeoJSON LineString geometry.
func LineStringGeometry(coords [][2]float64) Geometry {
	return Geometry{Type: "LineString", Coordinates: coords}
}

// PolygonGeometry builds a GeoJSON Polygon geometry from one ring.
func PolygonGeometry(ring [][2]float64) Geometry {
	return Geometry{Type: "Polygon", Coordinates: [][][2]float64{ring}}
}
