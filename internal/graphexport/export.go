// Package graphexport mirrors a job's classified street graph (every
// edge it is given, with its status) and ranked candidates into FalkorDB, write-only, for ad-hoc Cypher
// inspection outside the JSON result payload. Nothing in the pipeline
// reads this graph back.
package graphexport

import (
	"fmt"

	"github.com/falkordb/falkordb-go"
	"github.com/rs/zerolog/log"

	"github.com/accessmap/aae/pkg/models"
)

// batchSize bounds how many nodes/edges/candidates go into one Cypher
// UNWIND statement, keeping individual queries off the Redis command
// size ceiling for large bounding boxes.
const batchSize = 500

// Exporter writes one job's graph snapshot to a FalkorDB graph, named
// after the job ID so concurrent jobs never collide.
type Exporter struct {
	db *falkordb.FalkorDB
}

// NewExporter connects to FalkorDB at host:port.
func NewExporter(host string, port int) (*Exporter, error) {
	db, err := falkordb.FalkorDBNew(&falkordb.ConnectionOption{Host: host, Port: port})
	if err != nil {
		return nil, fmt.Errorf("connect falkordb: %w", err)
	}
	return &Exporter{db: db}, nil
}

// Export mirrors edges and ranked candidates for jobID into its own
// graph. Failures are returned to the caller (not logged here) and never
// retried — graph
// mirroring is a side channel, not part of the pipeline's success path.
func (e *Exporter) Export(jobID string, edges []models.Edge, rankings []models.Candidate) error {
	graph := e.db.SelectGraph(fmt.Sprintf("aae_job_%s", jobID))

	if err := e.writeEdges(graph, edges); err != nil {
		return fmt.Errorf("write edges: %w", err)
	}
	if err := e.writeCandidates(graph, rankings); err != nil {
		return fmt.Errorf("write candidates: %w", err)
	}

	log.Info().Str("job_id", jobID).Int("edges", len(edges)).Int("candidates", len(rankings)).Msg("graph export complete")
	return nil
}

func buildEdgeRows(edges []models.Edge) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(edges))
	for _, edge := range edges {
		rows = append(rows, map[string]interface{}{
			"id":       edge.ID,
			"way_id":   edge.WayID,
			"status":   string(edge.Class.Status),
			"kind":     string(edge.Class.Kind),
			"from_lon": edge.FromLon,
			"from_lat": edge.FromLat,
			"to_lon":   edge.ToLon,
			"to_lat":   edge.ToLat,
			"length_m": edge.LengthM,
		})
	}
	return rows
}

func buildCandidateRows(rankings []models.Candidate) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(rankings))
	for _, c := range rankings {
		rows = append(rows, map[string]interface{}{
			"id":        c.ID,
			"osm_id":    c.OSMID,
			"blocker":   string(c.BlockerType),
			"score":     c.Score,
			"unlock_m":  c.UnlockM,
			"lon":       c.Lon,
			"lat":       c.Lat,
			"synthetic": c.Synthetic,
		})
	}
	return rows
}

func (e *Exporter) writeEdges(graph *falkordb.Graph, edges []models.Edge) error {
	for start := 0; start < len(edges); start += batchSize {
		end := min(start+batchSize, len(edges))
		rows := buildEdgeRows(edges[start:end])

		query := `
UNWIND $rows AS row
MERGE (a:Node {lon: row.from_lon, lat: row.from_lat})
MERGE (b:Node {lon: row.to_lon, lat: row.to_lat})
MERGE (a)-[r:STREET {id: row.id}]->(b)
SET r.way_id = row.way_id, r.status = row.status, r.kind = row.kind, r.length_m = row.length_m
`
		if _, err := graph.Query(query, map[string]interface{}{"rows": rows}, nil); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeCandidates(graph *falkordb.Graph, rankings []models.Candidate) error {
	for start := 0; start < len(rankings); start += batchSize {
		end := min(start+batchSize, len(rankings))
		rows := buildCandidateRows(rankings[start:end])

		query := `
UNWIND $rows AS row
MERGE (c:Candidate {id: row.id})
SET c.osm_id = row.osm_id, c.blocker = row.blocker, c.score = row.score,
    c.unlock_m = row.unlock_m, c.lon = row.lon, c.lat = row.lat, c.synthetic = row.synthetic
`
		if _, err := graph.Query(query, map[string]interface{}{"rows": rows}, nil); err != nil {
			return err
		}
	}
	return nil
}
