package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/domain/ports/repository"
)

var _ repository.RoadmapJobRepository = (*roadmapJobRepo)(nil)

type roadmapJobRepo struct {
	pool *pgxpool.Pool
}

func NewRoadmapJobRepo(pool *pgxpool.Pool) *roadmapJobRepo {
	return &roadmapJobRepo{pool: pool}
}

func (r *roadmapJobRepo) Create(ctx context.Context, tx repository.Tx, job *model.RoadmapJob) error {
	if job.Status != model.RoadmapJobPending {
		return fmt.Errorf("%w: new job must be pending, got %s", domain.ErrInvalidArgument, job.Status)
	}
	const q = `
INSERT INTO roadmap_jobs (job_id, owner_id, learning_target, status, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id;`
	row, err := pickRow(ctx, r.pool, tx, q, job.JobID, job.OwnerID, job.Target, string(job.Status), job.CreatedAt)
	if err != nil {
		return err
	}
	if err := row.Scan(&job.ID); err != nil {
		return fmt.Errorf("create roadmap job: %w", translateErr(err))
	}
	return nil
}

func (r *roadmapJobRepo) FindByJobID(ctx context.Context, tx repository.Tx, jobID string) (*model.RoadmapJob, error) {
	const q = `
SELECT id, job_id, owner_id, learning_target, status, result, error, created_at, completed_at
  FROM roadmap_jobs
 WHERE job_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, jobID)
	if err != nil {
		return nil, err
	}

	var (
		job    model.RoadmapJob
		status string
		result []byte
	)
	if err := row.Scan(&job.ID, &job.JobID, &job.OwnerID, &job.Target, &status, &result, &job.Error, &job.CreatedAt, &job.CompletedAt); err != nil {
		if err = translateErr(err); err == domain.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
	}
	job.Status = model.RoadmapJobStatus(status)
	if len(result) > 0 {
		var rm model.Roadmap
		if err := json.Unmarshal(result, &rm); err != nil {
			return nil, fmt.Errorf("%w: decode roadmap result: %v", domain.ErrReadDatabaseRow, err)
		}
		job.Result = &rm
	}
	return &job, nil
}

// Transition writes the job's mutable fields guarded by the expected current
// status, so a job can only move forward and only from the state its writer
// last observed.
func (r *roadmapJobRepo) Transition(ctx context.Context, tx repository.Tx, job *model.RoadmapJob, from model.RoadmapJobStatus) error {
	if !from.CanTransitionTo(job.Status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, job.Status)
	}

	var result *string
	if job.Result != nil {
		b, err := json.Marshal(job.Result)
		if err != nil {
			return fmt.Errorf("encode roadmap result: %w", err)
		}
		s := string(b)
		result = &s
	}

	const q = `
UPDATE roadmap_jobs
   SET status=$3, result=$4::jsonb, error=$5, completed_at=$6
 WHERE job_id=$1 AND status=$2;`
	tag, err := execSQL(ctx, r.pool, tx, q, job.JobID, string(from), string(job.Status), result, job.Error, job.CompletedAt)
	if err != nil {
		return fmt.Errorf("transition roadmap job: %w", translateErr(err))
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	row, err := pickRow(ctx, r.pool, tx, `SELECT status FROM roadmap_jobs WHERE job_id=$1;`, job.JobID)
	if err != nil {
		return err
	}
	var current string
	if err := row.Scan(&current); err != nil {
		return translateErr(err)
	}
	return fmt.Errorf("%w: expected %s, found %s", domain.ErrStaleJobState, from, current)
}

func (r *roadmapJobRepo) CountStale(ctx context.Context, tx repository.Tx, status model.RoadmapJobStatus, olderThan time.Time) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM roadmap_jobs WHERE status=$1 AND created_at < $2;`, string(status), olderThan)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count stale roadmap jobs: %w", err)
	}
	return n, nil
}
