//go:build !integration

package worker

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/domain/ports/repository"
)

// memJobRepo is an in-memory RoadmapJobRepository that enforces the same
// status guard as the Postgres implementation.
type memJobRepo struct {
	mu            sync.Mutex
	jobs          map[string]model.RoadmapJob
	history       map[string][]model.RoadmapJobStatus
	transitionErr map[model.RoadmapJobStatus]error // keyed by target status
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{
		jobs:          map[string]model.RoadmapJob{},
		history:       map[string][]model.RoadmapJobStatus{},
		transitionErr: map[model.RoadmapJobStatus]error{},
	}
}

func (m *memJobRepo) Create(ctx context.Context, tx repository.Tx, job *model.RoadmapJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.JobID]; ok {
		return domain.ErrAlreadyExists
	}
	m.jobs[job.JobID] = *job
	m.history[job.JobID] = []model.RoadmapJobStatus{job.Status}
	return nil
}

func (m *memJobRepo) FindByJobID(ctx context.Context, tx repository.Tx, jobID string) (*model.RoadmapJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &j, nil
}

func (m *memJobRepo) Transition(ctx context.Context, tx repository.Tx, job *model.RoadmapJob, from model.RoadmapJobStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.transitionErr[job.Status]; err != nil {
		return err
	}
	cur, ok := m.jobs[job.JobID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Status != from {
		return domain.ErrStaleJobState
	}
	m.jobs[job.JobID] = *job
	m.history[job.JobID] = append(m.history[job.JobID], job.Status)
	return nil
}

func (m *memJobRepo) CountStale(ctx context.Context, tx repository.Tx, status model.RoadmapJobStatus, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, j := range m.jobs {
		if j.Status == status && j.CreatedAt.Before(olderThan) {
			n++
		}
	}
	return n, nil
}

func (m *memJobRepo) get(jobID string) model.RoadmapJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[jobID]
}

func (m *memJobRepo) statuses(jobID string) []model.RoadmapJobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.RoadmapJobStatus(nil), m.history[jobID]...)
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newMemUserRepo(users ...*model.User) *memUserRepo {
	m := &memUserRepo{users: map[string]model.User{}}
	for _, u := range users {
		m.users[u.ID] = *u
	}
	return m
}

func (m *memUserRepo) Create(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}
func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}
func (m *memUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	return nil, domain.ErrNotFound
}
func (m *memUserRepo) UpdateProfile(ctx context.Context, tx repository.Tx, id string, p model.Profile) error {
	return nil
}
func (m *memUserRepo) SetPremium(ctx context.Context, tx repository.Tx, id string, premium bool) error {
	return nil
}

// txCounter runs fn directly and counts commits.
type txCounter struct {
	mu      sync.Mutex
	commits int
}

func (t *txCounter) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if err := fn(ctx, repository.NoTX); err != nil {
		return err
	}
	t.mu.Lock()
	t.commits++
	t.mu.Unlock()
	return nil
}

type planFunc func(ctx context.Context, p model.Profile, target string) (*model.Roadmap, error)

type stubOracle struct{ plan planFunc }

func (s *stubOracle) Guide(ctx context.Context, exercise string) (string, error) { return "", nil }
func (s *stubOracle) Check(ctx context.Context, exercise, answer string) (*model.CheckResult, error) {
	return &model.CheckResult{}, nil
}
func (s *stubOracle) Similar(ctx context.Context, exercise string) (string, error) { return "", nil }
func (s *stubOracle) Plan(ctx context.Context, p model.Profile, target string) (*model.Roadmap, error) {
	return s.plan(ctx, p, target)
}

type recordingNotifier struct {
	mu     sync.Mutex
	failed []string
}

func (r *recordingNotifier) NotifyJobFailed(ctx context.Context, job *model.RoadmapJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, job.JobID)
	return nil
}
