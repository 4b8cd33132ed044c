// Package ingest partitions a raw OSM element stream into the dense
// node/edge arrays the rest of the engine operates on, discarding
// everything that is not part of the pedestrian network and enforcing
// the engine's graph size cap.
package ingest

import (
	"strconv"

	"github.com/accessmap/aae/internal/engineerr"
	"github.com/accessmap/aae/internal/geo"
	"github.com/accessmap/aae/pkg/models"
)

// MaxNodes and MaxEdges are the graph caps from spec §4.1. Exceeding
// either is a fatal TooLarge error.
const (
	MaxNodes = 220_000
	MaxEdges = 360_000
)

// pedestrianHighways are the highway tag values that make a way part of
// the pedestrian network on their own.
var pedestrianHighways = map[string]bool{
	"footway":       true,
	"path":          true,
	"pedestrian":    true,
	"steps":         true,
	"living_street": true,
}

// Result is the ingestor's output: dense node coordinate arrays, the
// kept pedestrian edges (FromNode/ToNode as indices into the node
// arrays), and the set of raised-kerb node indices.
type Result struct {
	NodeLon    []float64
	NodeLat    []float64
	NodeOSMID  []int64
	RaisedKerb []bool // indexed like NodeLon/NodeLat
	Edges      []models.Edge
	WayCount   int
}

// Ingest partitions elements into a Result. Nodes are assigned a dense
// internal index the first time they are referenced by a kept way;
// nodes never referenced by a pedestrian way do not occupy a graph
// index. Orphan way-node references (a way referring to an id never
// seen as a node element) are silently skipped per spec §7.
func Ingest(elements []models.Element) (*Result, *engineerr.EngineError) {
	nodeByOSMID := make(map[int64]int32)
	nodeTagsRaisedKerb := make(map[int64]bool)
	nodeCoords := make(map[int64][2]float64)

	type wayRec struct {
		id   int64
		tags map[string]string
		refs []int64
	}
	var ways []wayRec

	for _, el := range elements {
		switch el.Type {
		case models.ElementNode:
			nodeCoords[el.ID] = [2]float64{el.Lon, el.Lat}
			if el.Tags["barrier"] == "kerb" && el.Tags["kerb"] == "raised" {
				nodeTagsRaisedKerb[el.ID] = true
			}
		case models.ElementWay:
			if !isPedestrianWay(el.Tags) || len(el.Nodes) < 2 {
				continue
			}
			ways = append(ways, wayRec{id: el.ID, tags: el.Tags, refs: el.Nodes})
		}
	}

	res := &Result{}

	internalIndex := func(osmID int64) (int32, bool) {
		if idx, ok := nodeByOSMID[osmID]; ok {
			return idx, true
		}
		coords, ok := nodeCoords[osmID]
		if !ok {
			return 0, false
		}
		idx := int32(len(res.NodeLon))
		nodeByOSMID[osmID] = idx
		res.NodeLon = append(res.NodeLon, coords[0])
		res.NodeLat = append(res.NodeLat, coords[1])
		res.NodeOSMID = append(res.NodeOSMID, osmID)
		res.RaisedKerb = append(res.RaisedKerb, nodeTagsRaisedKerb[osmID])
		return idx, true
	}

	for _, w := range ways {
		var prevIdx int32
		var havePrev bool
		segIdx := 0
		for _, ref := range w.refs {
			idx, ok := internalIndex(ref)
			if !ok {
				// Orphan node reference: break the chain here but keep
				// scanning the rest of the way's node list.
				havePrev = false
				continue
			}
			if len(res.NodeLon) > MaxNodes {
				return nil, engineerr.New(engineerr.TooLarge, "Area too large for analysis")
			}
			if havePrev {
				if len(res.Edges) >= MaxEdges {
					return nil, engineerr.New(engineerr.TooLarge, "Area too large for analysis")
				}
				edge := buildEdge(w.id, segIdx, prevIdx, idx, w.tags, res)
				res.Edges = append(res.Edges, edge)
				segIdx++
			}
			prevIdx = idx
			havePrev = true
		}
		res.WayCount++
	}

	return res, nil
}

func isPedestrianWay(tags map[string]string) bool {
	highway := tags["highway"]
	if pedestrianHighways[highway] {
		return true
	}
	return highway == "service" && tags["service"] == "alley"
}

func buildEdge(wayID int64, segIdx int, from, to int32, tags map[string]string, res *Result) models.Edge {
	fromLon, fromLat := res.NodeLon[from], res.NodeLat[from]
	toLon, toLat := res.NodeLon[to], res.NodeLat[to]
	return models.Edge{
		ID:       edgeID(wayID, segIdx),
		WayID:    wayID,
		Tags:     tags,
		Location: "way " + strconv.FormatInt(wayID, 10),
		FromNode: from,
		ToNode:   to,
		FromLon:  fromLon,
		FromLat:  fromLat,
		ToLon:    toLon,
		ToLat:    toLat,
		MidLon:   (fromLon + toLon) / 2,
		MidLat:   (fromLat + toLat) / 2,
		LengthM:  geo.Haversine(fromLon, fromLat, toLon, toLat),
	}
}

func edgeID(wayID int64, segIdx int) string {
	return strconv.FormatInt(wayID, 10) + "-" + strconv.Itoa(segIdx)
}
