package sched

import (
	"context"
	"time"

	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/domain/ports/repository"
	"ai-tutor-backend/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// StaleJobCounter is the read-only slice of the job store the reporter needs.
type StaleJobCounter interface {
	CountStale(ctx context.Context, tx repository.Tx, status model.RoadmapJobStatus, olderThan time.Time) (int, error)
}

// OrphanReporter periodically counts roadmap jobs stuck in a non-terminal
// state and exports the result. It never writes to the job store.
type OrphanReporter struct {
	interval time.Duration
	after    time.Duration
	jobs     StaleJobCounter
	log      *zerolog.Logger
	now      func() time.Time
}

func NewOrphanReporter(interval, after time.Duration, jobs StaleJobCounter, logger *zerolog.Logger) *OrphanReporter {
	orphanLog := logger.With().Str("component", "OrphanReporter").Logger()
	return &OrphanReporter{
		interval: interval,
		after:    after,
		jobs:     jobs,
		log:      &orphanLog,
		now:      time.Now,
	}
}

func (w *OrphanReporter) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("after", w.after).Msg("Starting orphan reporter")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping orphan reporter")
			return ctx.Err()
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one pass and returns the stale count per status. Statuses
// that could not be counted are absent from the result.
func (w *OrphanReporter) Sweep(ctx context.Context) map[model.RoadmapJobStatus]int {
	cutoff := w.now().Add(-w.after)
	out := make(map[model.RoadmapJobStatus]int, 2)
	for _, st := range []model.RoadmapJobStatus{model.RoadmapJobPending, model.RoadmapJobProcessing} {
		n, err := w.jobs.CountStale(ctx, repository.NoTX, st, cutoff)
		if err != nil {
			w.log.Error().Err(err).Str("status", string(st)).Msg("orphan count failed")
			continue
		}
		out[st] = n
		metrics.SetRoadmapJobsOrphaned(string(st), n)
		if n > 0 {
			w.log.Warn().Int("count", n).Str("status", string(st)).Time("older_than", cutoff).
				Msg("roadmap jobs stuck without a terminal state")
		}
	}
	return out
}
