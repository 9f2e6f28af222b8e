package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/domain/ports/repository"
	"ai-tutor-backend/internal/infra/metrics"
	red "ai-tutor-backend/internal/infra/redis"

	"github.com/rs/zerolog"
)

var _ repository.RoadmapJobRepository = (*roadmapJobRepoCacheDecorator)(nil)

// roadmapJobRepoCacheDecorator caches jobs that reached a terminal state.
// Terminal rows never change again, so a cached entry can never show a job
// moving backwards. Pending and processing jobs are always read from Postgres.
type roadmapJobRepoCacheDecorator struct {
	inner repository.RoadmapJobRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewRoadmapJobRepoCacheDecorator(inner repository.RoadmapJobRepository, cache red.RedisClient, ttl time.Duration, log *zerolog.Logger) repository.RoadmapJobRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &roadmapJobRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: log}
}

func roadmapJobKey(jobID string) string { return fmt.Sprintf("roadmap_job:%s", jobID) }

func (d *roadmapJobRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, job *model.RoadmapJob) error {
	return d.inner.Create(ctx, tx, job)
}

func (d *roadmapJobRepoCacheDecorator) FindByJobID(ctx context.Context, tx repository.Tx, jobID string) (*model.RoadmapJob, error) {
	if tx != nil {
		return d.inner.FindByJobID(ctx, tx, jobID)
	}

	key := roadmapJobKey(jobID)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var job model.RoadmapJob
		if json.Unmarshal([]byte(val), &job) == nil && job.Status.Terminal() {
			metrics.IncCacheRequest("roadmap_job", "hit")
			return &job, nil
		}
	} else if !errors.Is(err, red.Nil) {
		d.log.Warn().Err(err).Str("key", key).Msg("roadmap job cache read failed")
	}

	metrics.IncCacheRequest("roadmap_job", "miss")
	job, err := d.inner.FindByJobID(ctx, tx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() {
		if b, err := json.Marshal(job); err == nil {
			_ = d.cache.Set(ctx, key, b, d.ttl)
		}
	}
	return job, nil
}

func (d *roadmapJobRepoCacheDecorator) Transition(ctx context.Context, tx repository.Tx, job *model.RoadmapJob, from model.RoadmapJobStatus) error {
	return d.inner.Transition(ctx, tx, job, from)
}

func (d *roadmapJobRepoCacheDecorator) CountStale(ctx context.Context, tx repository.Tx, status model.RoadmapJobStatus, olderThan time.Time) (int, error) {
	return d.inner.CountStale(ctx, tx, status, olderThan)
}
