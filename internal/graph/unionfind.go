// Package graph builds the undirected PASS-edge graph and its connected
// components via union-find, per spec §4.5 and §9's explicit guidance
// to use an iterative (non-recursive) find with path compression and
// union-by-size over dense int32 node indices.
package graph

// DSU is a disjoint-set-union over dense int32 indices.
type DSU struct {
	parent []int32
	size   []int32
}

// NewDSU returns a DSU over n singleton sets.
func NewDSU(n int) *DSU {
	parent := make([]int32, n)
	size := make([]int32, n)
	for i := range parent {
		parent[i] = int32(i)
		size[i] = 1
	}
	return &DSU{parent: parent, size: size}
}

// Find returns the representative of x's set, compressing the path
// iteratively so no recursion depth is incurred on pathological chains.
func (d *DSU) Find(x int32) int32 {
	root := x
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for d.parent[x] != root {
		next := d.parent[x]
		d.parent[x] = root
		x = next
	}
	return root
}

// Union merges the sets containing a and b, attaching the smaller set
// under the larger one's root.
func (d *DSU) Union(a, b int32) {
	ra, rb := d.Find(a), d.Find(b)
	if ra == rb {
		return
	}
	if d.size[ra] < d.size[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	d.size[ra] += d.size[rb]
}
