package graph

import "github.com/accessmap/aae/pkg/models"

// BuildResult is the output of Build: a DSU over the graph's nodes, a
// per-node component-representative lookup, and per-component stats
// accumulated from PASS edges only.
type BuildResult struct {
	DSU            *DSU
	NodeComponent  []int32
	ComponentStats map[int32]*models.Component
}

// Build unions the endpoints of every PASS edge, then accumulates
// per-component PASS length. Every graph node gets a component record,
// even singleton nodes with no PASS edges.
func Build(nodeCount int, edges []models.Edge) *BuildResult {
	dsu := NewDSU(nodeCount)

	for i := range edges {
		if edges[i].Class.Status == models.StatusPass {
			dsu.Union(edges[i].FromNode, edges[i].ToNode)
		}
	}

	nodeComponent := make([]int32, nodeCount)
	stats := make(map[int32]*models.Component)
	for n := 0; n < nodeCount; n++ {
		rep := dsu.Find(int32(n))
		nodeComponent[n] = rep
		if _, ok := stats[rep]; !ok {
			stats[rep] = models.NewComponent(rep)
		}
	}

	for i := range edges {
		if edges[i].Class.Status != models.StatusPass {
			continue
		}
		rep := nodeComponent[edges[i].FromNode]
		stats[rep].PassLengthM += edges[i].LengthM
	}

	return &BuildResult{DSU: dsu, NodeComponent: nodeComponent, ComponentStats: stats}
}

// LargestPassComponent returns the representative id of the component
// with the greatest PASS length, or -1 if stats is empty.
func LargestPassComponent(stats map[int32]*models.Component) int32 {
	best := int32(-1)
	bestLen := -1.0
	// Deterministic: the map is visited in unspecified order, so ties are
	// broken explicitly toward the lowest representative id.
	for rep, c := range stats {
		if c.PassLengthM > bestLen || (c.PassLengthM == bestLen && rep < best) {
			best = rep
			bestLen = c.PassLengthM
		}
	}
	return best
}
