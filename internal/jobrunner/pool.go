// Package jobrunner runs independent analysis jobs concurrently, up to
// a fixed concurrency limit, modeled on the teacher's errgroup-based
// parallel loader.
package jobrunner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/accessmap/aae/internal/engine"
	"github.com/accessmap/aae/internal/engineerr"
	"github.com/accessmap/aae/pkg/models"
)

// Job is one unit of work submitted to the pool: an engine input plus
// the job ID it should be reported under.
type Job struct {
	ID    string
	Input engine.Input
	Hooks engine.Hooks
}

// Result is one job's outcome. Exactly one of Payload/Err is non-nil.
type Result struct {
	JobID   string
	Payload *models.AnalysisResultPayload
	Err     *engineerr.EngineError
}

// Pool runs submitted jobs concurrently, capping concurrency at Limit.
type Pool struct {
	Limit int
}

// NewPool returns a Pool that runs at most limit jobs at once. limit<=0
// means unbounded.
func NewPool(limit int) *Pool {
	return &Pool{Limit: limit}
}

// Run executes every job in jobs concurrently (bounded by p.Limit) and
// returns one Result per job, in the same order as jobs. An individual
// job's engine error is captured in its Result, not propagated — one
// job's failure never aborts the others, matching spec §5's "jobs are
// independent."
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if p.Limit > 0 {
		g.SetLimit(p.Limit)
	}

	for i, job := range jobs {
		i, job := i, job

		g.Go(func() error {
			select {
			case <-ctx.Done():
				results[i] = Result{
					JobID: job.ID,
					Err:   engineerr.New(engineerr.Internal, ctx.Err().Error()),
				}
				return nil
			default:
			}

			payload, err := engine.Run(job.Input, job.Hooks)
			results[i] = Result{JobID: job.ID, Payload: payload, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
