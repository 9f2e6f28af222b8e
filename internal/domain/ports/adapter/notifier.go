package adapter

import (
	"context"

	"ai-tutor-backend/internal/domain/model"
)

// JobNotifier tells operators about jobs that ended badly. Implementations are
// best effort; a notification error never affects the job.
type JobNotifier interface {
	NotifyJobFailed(ctx context.Context, job *model.RoadmapJob) error
}
