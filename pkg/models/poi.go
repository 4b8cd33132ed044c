package models

// POI is a point-of-interest feature from the input payload, after the
// POI snapper has attempted to attach it to the graph.
type POI struct {
	ID                string
	Kind              string
	Theme             string
	Wheelchair        string
	ToiletsWheelchair string
	Lon               float64
	Lat               float64
	SnapDistanceM     float64
	SnappedNode       int32
	Snapped           bool
}

// POI themes (spec §3).
const (
	ThemeHealthcare = "healthcare"
	ThemeEssential  = "essential"
)
