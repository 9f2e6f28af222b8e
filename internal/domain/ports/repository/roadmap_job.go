package repository

import (
	"context"
	"time"

	"ai-tutor-backend/internal/domain/model"
)

// -----------------------------
// Roadmap jobs
// -----------------------------

// RoadmapJobReader is the read side used by status polling.
type RoadmapJobReader interface {
	FindByJobID(ctx context.Context, tx Tx, jobID string) (*model.RoadmapJob, error)
}

// RoadmapJobCreator is what the request path gets: it can insert and read jobs
// but has no way to mutate an existing row.
type RoadmapJobCreator interface {
	RoadmapJobReader
	Create(ctx context.Context, tx Tx, job *model.RoadmapJob) error
}

// RoadmapJobRepository is the full store. Transition is reserved for the
// roadmap runner, the single writer of a job row after its insert.
type RoadmapJobRepository interface {
	RoadmapJobCreator
	// Transition persists job's status, result, error and completed_at only if
	// the stored status still equals from. It returns domain.ErrStaleJobState
	// otherwise.
	Transition(ctx context.Context, tx Tx, job *model.RoadmapJob, from model.RoadmapJobStatus) error
	// CountStale counts jobs in status whose created_at is before olderThan.
	CountStale(ctx context.Context, tx Tx, status model.RoadmapJobStatus, olderThan time.Time) (int, error)
}
