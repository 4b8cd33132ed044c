package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/accessmap/aae/pkg/models"
)

func onConflictUpdatePayload() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload_json", "created_at"}),
	}
}

// ErrJobNotFound is returned by JobStore reads when no row matches.
var ErrJobNotFound = errors.New("store: job not found")

// JobStore persists models.JobRecord and models.AnalysisResultPayload
// values through the underlying Store's GORM connection.
type JobStore struct {
	store *Store
}

// NewJobStore returns a JobStore backed by s.
func NewJobStore(s *Store) *JobStore {
	return &JobStore{store: s}
}

func toRow(j models.JobRecord) jobRow {
	return jobRow{
		ID:         j.ID,
		Status:     string(j.Status),
		ErrorKind:  j.ErrorKind,
		ErrorMsg:   j.ErrorMsg,
		MinLon:     j.BoundingBox.MinLon,
		MinLat:     j.BoundingBox.MinLat,
		MaxLon:     j.BoundingBox.MaxLon,
		MaxLat:     j.BoundingBox.MaxLat,
		CreatedAt:  j.CreatedAt,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
	}
}

func fromRow(r jobRow) models.JobRecord {
	return models.JobRecord{
		ID:        r.ID,
		Status:    models.JobStatus(r.Status),
		ErrorKind: r.ErrorKind,
		ErrorMsg:  r.ErrorMsg,
		BoundingBox: models.BoundingBox{
			MinLon: r.MinLon,
			MinLat: r.MinLat,
			MaxLon: r.MaxLon,
			MaxLat: r.MaxLat,
		},
		CreatedAt:  r.CreatedAt,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

// CreateJob inserts a new job row in the queued state.
func (js *JobStore) CreateJob(ctx context.Context, j models.JobRecord) error {
	ctx, cancel := js.store.WithTimeout(ctx, 2*time.Second, "CreateJob")
	defer cancel()

	row := toRow(j)
	if err := js.store.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// UpdateJobStatus transitions a job's status, stamping started_at /
// finished_at and the error fields as appropriate.
func (js *JobStore) UpdateJobStatus(ctx context.Context, id string, status models.JobStatus, errKind, errMsg string) error {
	ctx, cancel := js.store.WithTimeout(ctx, 2*time.Second, "UpdateJobStatus")
	defer cancel()

	updates := map[string]interface{}{
		"status":     string(status),
		"error_kind": errKind,
		"error_msg":  errMsg,
	}
	now := time.Now()
	switch status {
	case models.JobStatusRunning:
		updates["started_at"] = &now
	case models.JobStatusDone, models.JobStatusError:
		updates["finished_at"] = &now
	}

	res := js.store.DB.WithContext(ctx).Model(&jobRow{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update job status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// GetJob fetches a job record by ID.
func (js *JobStore) GetJob(ctx context.Context, id string) (models.JobRecord, error) {
	ctx, cancel := js.store.WithTimeout(ctx, 2*time.Second, "GetJob")
	defer cancel()

	var row jobRow
	err := js.store.DB.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.JobRecord{}, ErrJobNotFound
	}
	if err != nil {
		return models.JobRecord{}, fmt.Errorf("get job: %w", err)
	}
	return fromRow(row), nil
}

// SaveResult encodes and stores payload as the result for jobID.
func (js *JobStore) SaveResult(ctx context.Context, jobID string, payload *models.AnalysisResultPayload) error {
	ctx, cancel := js.store.WithTimeout(ctx, 5*time.Second, "SaveResult")
	defer cancel()

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	row := resultRow{JobID: jobID, PayloadJSON: encoded, CreatedAt: time.Now()}
	err = js.store.DB.WithContext(ctx).Clauses(onConflictUpdatePayload()).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// GetResult fetches and decodes the result payload for jobID.
func (js *JobStore) GetResult(ctx context.Context, jobID string) (*models.AnalysisResultPayload, error) {
	ctx, cancel := js.store.WithTimeout(ctx, 2*time.Second, "GetResult")
	defer cancel()

	var row resultRow
	err := js.store.DB.WithContext(ctx).First(&row, "job_id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}

	var payload models.AnalysisResultPayload
	if err := json.Unmarshal(row.PayloadJSON, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &payload, nil
}
