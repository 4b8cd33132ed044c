package models

import "time"

// JobStatus is the lifecycle state of a persisted analysis job.
type JobStatus string

const (
	JobStatusQueued  JobStatus = "queued"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusError   JobStatus = "error"
)

// JobRecord is the persistence-facing shape consumed by internal/store.
// It is never referenced by the engine's own types — the engine takes a
// BoundingBox, elements, and reports, and returns an
// AnalysisResultPayload; JobRecord exists only to let a host track that
// request across a queue and a database.
type JobRecord struct {
	CreatedAt   time.Time
	StartedAt   *time.Time
	FinishedAt  *time.Time
	ID          string
	Status      JobStatus
	ErrorKind   string
	ErrorMsg    string
	BoundingBox BoundingBox
}
