package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/domain/ports/repository"
	"ai-tutor-backend/internal/domain/ports/usecase"
	"ai-tutor-backend/internal/infra/logging"
	"ai-tutor-backend/internal/infra/metrics"
)

// Compile-time check
var _ RoadmapUseCase = (*roadmapUC)(nil)

// RoadmapUseCase is the request-side API of roadmap generation.
type RoadmapUseCase interface {
	// Submit records a pending job, commits it, then schedules its run.
	Submit(ctx context.Context, ownerID, target string) (*model.RoadmapJob, error)
	// GetStatus returns the job if requesterID owns it.
	GetStatus(ctx context.Context, requesterID, jobID string) (*model.RoadmapJob, error)
}

type roadmapUC struct {
	jobs       repository.RoadmapJobCreator
	users      repository.UserRepository
	dispatcher usecase.RoadmapDispatcher
	tm         repository.TransactionManager
	log        *zerolog.Logger
	now        func() time.Time
}

func NewRoadmapUseCase(
	jobs repository.RoadmapJobCreator,
	users repository.UserRepository,
	dispatcher usecase.RoadmapDispatcher,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *roadmapUC {
	return &roadmapUC{
		jobs:       jobs,
		users:      users,
		dispatcher: dispatcher,
		tm:         tm,
		log:        logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *roadmapUC) Submit(ctx context.Context, ownerID, target string) (*model.RoadmapJob, error) {
	log := logging.With(ctx, r.log)
	defer logging.TraceDuration(log, "RoadmapUC.Submit")()

	job, err := model.NewRoadmapJob(ownerID, target, r.now())
	if err != nil {
		return nil, err
	}

	err = r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		owner, err := r.users.FindByID(ctx, tx, ownerID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: unknown owner", domain.ErrUnauthorized)
			}
			return err
		}
		if !owner.IsPremium {
			return domain.ErrPremiumRequired
		}
		return r.jobs.Create(ctx, tx, job)
	})
	if err != nil {
		return nil, err
	}
	metrics.IncRoadmapJobSubmitted()

	// The row is committed; scheduling happens strictly afterwards.
	if err := r.dispatcher.Dispatch(job.JobID, job.OwnerID, job.Target); err != nil {
		// The job stays pending and is reported by the orphan reporter.
		log.Error().Err(err).Str("job_id", job.JobID).Msg("failed to schedule roadmap job")
	} else {
		log.Info().Str("job_id", job.JobID).Msg("roadmap job submitted")
	}

	out := *job
	return &out, nil
}

// GetStatus checks existence before ownership, so a non-owner learns that a
// job id exists. Job ids are random ULIDs, which keeps probing impractical.
func (r *roadmapUC) GetStatus(ctx context.Context, requesterID, jobID string) (*model.RoadmapJob, error) {
	defer logging.TraceDuration(r.log, "RoadmapUC.GetStatus")()

	job, err := r.jobs.FindByJobID(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, err
	}
	if !job.OwnedBy(requesterID) {
		return nil, domain.ErrForbidden
	}
	return job, nil
}
