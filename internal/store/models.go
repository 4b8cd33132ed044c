package store

import "time"

// jobRow is the GORM-mapped persistence shape for a models.JobRecord.
type jobRow struct {
	ID         string `gorm:"primaryKey"`
	Status     string `gorm:"index"`
	ErrorKind  string
	ErrorMsg   string
	MinLon     float64
	MinLat     float64
	MaxLon     float64
	MaxLat     float64
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

func (jobRow) TableName() string { return "jobs" }

// resultRow stores one job's result payload as an encoded blob,
// decoupling the schema from the payload's internal shape.
type resultRow struct {
	JobID       string `gorm:"primaryKey"`
	PayloadJSON []byte
	CreatedAt   time.Time
}

func (resultRow) TableName() string { return "job_results" }
