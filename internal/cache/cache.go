// Package cache provides a ResultCache for analysis payloads, keyed by
// a caller-chosen job fingerprint (typically bounding box + input
// checksum). Two implementations are provided: an in-process LRU for a
// single host, and a Redis-backed one for a multi-host deployment.
package cache

import "github.com/accessmap/aae/pkg/models"

// ResultCache caches AnalysisResultPayload values by key.
type ResultCache interface {
	Get(key string) (*models.AnalysisResultPayload, bool)
	Set(key string, payload *models.AnalysisResultPayload)
}
