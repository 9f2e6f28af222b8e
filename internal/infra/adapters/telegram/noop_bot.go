package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/domain/ports/adapter"
)

var _ adapter.JobNotifier = (*NoopNotifier)(nil)

// NoopNotifier logs alerts instead of sending them. Used when no bot token is
// configured.
type NoopNotifier struct {
	log *zerolog.Logger
}

func NewNoopNotifier(log *zerolog.Logger) *NoopNotifier {
	return &NoopNotifier{log: log}
}

func (n *NoopNotifier) NotifyJobFailed(ctx context.Context, job *model.RoadmapJob) error {
	n.log.Debug().Str("job_id", job.JobID).Msg("[noop-telegram] roadmap job failed")
	return nil
}
