package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/domain/ports/adapter"
	"ai-tutor-backend/internal/domain/ports/repository"
	"ai-tutor-backend/internal/domain/ports/usecase"
	"ai-tutor-backend/internal/infra/logging"
	"ai-tutor-backend/internal/infra/metrics"
)

var _ usecase.RoadmapDispatcher = (*RoadmapJobProcessor)(nil)

type ProcessorOptions struct {
	// CallTimeout bounds a single oracle call.
	CallTimeout time.Duration
	// FinalizeTimeout bounds the terminal write, which runs even after
	// shutdown has cancelled the pool context.
	FinalizeTimeout time.Duration
}

// RoadmapJobProcessor is the only writer of a roadmap job after its insert.
// Each run moves the job pending -> processing -> completed|failed with one
// commit per step and never retries.
type RoadmapJobProcessor struct {
	jobs     repository.RoadmapJobRepository
	users    repository.UserRepository
	oracle   adapter.TutoringOracle
	notifier adapter.JobNotifier
	tm       repository.TransactionManager
	pool     *Pool
	opts     ProcessorOptions
	log      *zerolog.Logger
	now      func() time.Time
}

func NewRoadmapJobProcessor(
	jobs repository.RoadmapJobRepository,
	users repository.UserRepository,
	oracle adapter.TutoringOracle,
	notifier adapter.JobNotifier,
	tm repository.TransactionManager,
	pool *Pool,
	opts ProcessorOptions,
	log *zerolog.Logger,
) *RoadmapJobProcessor {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 90 * time.Second
	}
	if opts.FinalizeTimeout <= 0 {
		opts.FinalizeTimeout = 10 * time.Second
	}
	return &RoadmapJobProcessor{
		jobs:     jobs,
		users:    users,
		oracle:   oracle,
		notifier: notifier,
		tm:       tm,
		pool:     pool,
		opts:     opts,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Dispatch hands the run to the worker pool and returns immediately.
func (p *RoadmapJobProcessor) Dispatch(jobID, ownerID, target string) error {
	return p.pool.Submit(func(ctx context.Context) error {
		return p.Run(ctx, jobID, ownerID, target)
	})
}

// Run executes one job. Storage access uses its own connections and never
// the submitting request's transaction.
func (p *RoadmapJobProcessor) Run(ctx context.Context, jobID, ownerID, target string) error {
	ctx = logging.WithJobID(logging.WithUserID(ctx, ownerID), jobID)
	log := logging.With(ctx, p.log)
	defer logging.TraceDuration(log, "RoadmapJobProcessor.Run")()

	// 1. Load job and owner. Either may have been deleted since submission.
	job, err := p.jobs.FindByJobID(ctx, repository.NoTX, jobID)
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn().Msg("roadmap job vanished before processing")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load roadmap job: %w", err)
	}
	user, err := p.users.FindByID(ctx, repository.NoTX, ownerID)
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn().Msg("roadmap job owner vanished before processing")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load roadmap job owner: %w", err)
	}
	if job.Status != model.RoadmapJobPending {
		log.Warn().Str("status", string(job.Status)).Msg("roadmap job already picked up")
		return nil
	}

	// 2. Commit processing before the slow call so pollers can see it.
	if err := job.MarkProcessing(); err != nil {
		return err
	}
	err = p.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		return p.jobs.Transition(ctx, tx, job, model.RoadmapJobPending)
	})
	if errors.Is(err, domain.ErrStaleJobState) {
		log.Warn().Err(err).Msg("another run owns this roadmap job")
		return nil
	}
	if err != nil {
		return fmt.Errorf("mark roadmap job processing: %w", err)
	}
	metrics.IncRoadmapJobTransition(string(model.RoadmapJobProcessing))
	started := time.Now()
	log.Info().Msg("roadmap job processing")

	// 3. Call the oracle.
	roadmap, callErr := p.plan(ctx, user.Profile, target)
	if callErr != nil && ctx.Err() != nil {
		// The pool is shutting down. The job keeps its processing row.
		log.Warn().Err(callErr).Msg("roadmap job interrupted by shutdown; it stays processing")
		return fmt.Errorf("roadmap job interrupted: %w", ctx.Err())
	}

	// 4. Single terminal commit. A result that arrived before shutdown
	// still lands after ctx is cancelled.
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.opts.FinalizeTimeout)
	defer cancel()

	now := p.now()
	if callErr == nil {
		err = job.Complete(roadmap, now)
	} else {
		err = job.Fail(failureReason(callErr), now)
	}
	if err != nil {
		return err
	}
	err = p.tm.WithTx(fctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		return p.jobs.Transition(ctx, tx, job, model.RoadmapJobProcessing)
	})
	if err != nil {
		log.Error().Err(err).Str("status", string(job.Status)).Msg("failed to finalize roadmap job; it stays processing")
		return fmt.Errorf("finalize roadmap job: %w", err)
	}

	metrics.IncRoadmapJobTransition(string(job.Status))
	metrics.ObserveRoadmapJobDuration(string(job.Status), time.Since(started))

	if job.Status == model.RoadmapJobFailed {
		log.Error().Err(callErr).Dur("duration", time.Since(started)).Msg("roadmap job failed")
		if nerr := p.notifier.NotifyJobFailed(fctx, job); nerr != nil {
			log.Warn().Err(nerr).Msg("failed to notify operators")
		}
		return nil
	}
	log.Info().Int("steps", len(roadmap.Steps)).Dur("duration", time.Since(started)).Msg("roadmap job completed")
	return nil
}

// plan calls the oracle under CallTimeout and turns a panic into an error.
func (p *RoadmapJobProcessor) plan(ctx context.Context, profile model.Profile, target string) (rm *model.Roadmap, err error) {
	cctx, cancel := context.WithTimeout(ctx, p.opts.CallTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: oracle panicked: %v", domain.ErrOracleUnavailable, r)
		}
	}()

	rm, err = p.oracle.Plan(cctx, profile, target)
	if err != nil {
		return nil, err
	}
	if rm == nil {
		return nil, fmt.Errorf("%w: empty roadmap", domain.ErrOracleMalformedJSON)
	}
	return rm, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "roadmap generation timed out"
	case errors.Is(err, context.Canceled):
		return "roadmap generation was cancelled"
	default:
		return err.Error()
	}
}
