package models

// Component is an equivalence class of nodes under the PASS-edge
// union-find: a connected island of the passable pedestrian network.
type Component struct {
	DestinationCounts map[string]int
	Representative    int32
	PassLengthM       float64
	POICount          int
}

// NewComponent returns an empty component record for the given
// representative node index.
func NewComponent(representative int32) *Component {
	return &Component{
		Representative:    representative,
		DestinationCounts: make(map[string]int),
	}
}

// AddPOI folds one snapped POI of the given kind into the component's
// POI count and destination histogram.
func (c *Component) AddPOI(kind string) {
	c.POICount++
	c.DestinationCounts[kind]++
}
