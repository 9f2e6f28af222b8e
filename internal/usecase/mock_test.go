//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/domain/ports/repository"
)

// --- Mock UserRepository

type MockUserRepo struct {
	mu        sync.RWMutex
	users     map[string]model.User
	CreateErr error
}

func NewMockUserRepo(users ...*model.User) *MockUserRepo {
	m := &MockUserRepo{users: map[string]model.User{}}
	for _, u := range users {
		m.users[u.ID] = *u
	}
	return m
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func (m *MockUserRepo) Create(ctx context.Context, tx repository.Tx, u *model.User) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return domain.ErrAlreadyExists
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) UpdateProfile(ctx context.Context, tx repository.Tx, id string, p model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Profile = p
	m.users[id] = u
	return nil
}

func (m *MockUserRepo) SetPremium(ctx context.Context, tx repository.Tx, id string, premium bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsPremium = premium
	m.users[id] = u
	return nil
}

func (m *MockUserRepo) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// --- Mock RoadmapJobRepository

// MockRoadmapJobRepo records every stored status so tests can assert the
// sequence a poller could ever observe.
type MockRoadmapJobRepo struct {
	mu        sync.Mutex
	jobs      map[string]model.RoadmapJob
	history   map[string][]model.RoadmapJobStatus
	CreateErr error
}

func NewMockRoadmapJobRepo() *MockRoadmapJobRepo {
	return &MockRoadmapJobRepo{jobs: map[string]model.RoadmapJob{}, history: map[string][]model.RoadmapJobStatus{}}
}

var _ repository.RoadmapJobRepository = (*MockRoadmapJobRepo)(nil)

// Len reports how many job rows are stored.
func (m *MockRoadmapJobRepo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

func (m *MockRoadmapJobRepo) Create(ctx context.Context, tx repository.Tx, job *model.RoadmapJob) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.JobID]; ok {
		return domain.ErrAlreadyExists
	}
	m.jobs[job.JobID] = *job
	m.history[job.JobID] = []model.RoadmapJobStatus{job.Status}
	return nil
}

func (m *MockRoadmapJobRepo) FindByJobID(ctx context.Context, tx repository.Tx, jobID string) (*model.RoadmapJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &j, nil
}

func (m *MockRoadmapJobRepo) Transition(ctx context.Context, tx repository.Tx, job *model.RoadmapJob, from model.RoadmapJobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
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

func (m *MockRoadmapJobRepo) CountStale(ctx context.Context, tx repository.Tx, status model.RoadmapJobStatus, olderThan time.Time) (int, error) {
	return 0, nil
}

func (m *MockRoadmapJobRepo) Statuses(jobID string) []model.RoadmapJobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.RoadmapJobStatus(nil), m.history[jobID]...)
}

func (m *MockRoadmapJobRepo) Delete(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, jobID)
}

// --- Mock ExerciseRepository

type MockExerciseRepo struct {
	mu        sync.Mutex
	nextID    int64
	exercises map[int64]model.Exercise
	AddErr    error
}

func NewMockExerciseRepo() *MockExerciseRepo {
	return &MockExerciseRepo{exercises: map[int64]model.Exercise{}}
}

var _ repository.ExerciseRepository = (*MockExerciseRepo)(nil)

func (m *MockExerciseRepo) Create(ctx context.Context, tx repository.Tx, e *model.Exercise) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = m.nextID
	m.exercises[e.ID] = *e
	return nil
}

func (m *MockExerciseRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exercises[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.Interactions = append([]model.Interaction(nil), e.Interactions...)
	return &e, nil
}

func (m *MockExerciseRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id int64) (*model.Exercise, error) {
	return m.FindByID(ctx, tx, id)
}

func (m *MockExerciseRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id int64, status model.ExerciseStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exercises[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = status
	m.exercises[id] = e
	return nil
}

func (m *MockExerciseRepo) AddInteraction(ctx context.Context, tx repository.Tx, in *model.Interaction) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exercises[in.ExerciseID]
	if !ok {
		return domain.ErrNotFound
	}
	in.ID = int64(len(e.Interactions) + 1)
	e.Interactions = append(e.Interactions, *in)
	m.exercises[in.ExerciseID] = e
	return nil
}

// --- Mock TransactionManager

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// --- Mock TutoringOracle

type MockOracle struct {
	mu          sync.Mutex
	GuideFunc   func(ctx context.Context, exercise string) (string, error)
	CheckFunc   func(ctx context.Context, exercise, answer string) (*model.CheckResult, error)
	SimilarFunc func(ctx context.Context, exercise string) (string, error)
	PlanFunc    func(ctx context.Context, p model.Profile, target string) (*model.Roadmap, error)
	PlanCalls   int
}

func (m *MockOracle) Guide(ctx context.Context, exercise string) (string, error) {
	if m.GuideFunc == nil {
		return "hint", nil
	}
	return m.GuideFunc(ctx, exercise)
}

func (m *MockOracle) Check(ctx context.Context, exercise, answer string) (*model.CheckResult, error) {
	if m.CheckFunc == nil {
		return &model.CheckResult{IsCorrect: true, Explanation: "correct"}, nil
	}
	return m.CheckFunc(ctx, exercise, answer)
}

func (m *MockOracle) Similar(ctx context.Context, exercise string) (string, error) {
	if m.SimilarFunc == nil {
		return "similar", nil
	}
	return m.SimilarFunc(ctx, exercise)
}

func (m *MockOracle) Plan(ctx context.Context, p model.Profile, target string) (*model.Roadmap, error) {
	m.mu.Lock()
	m.PlanCalls++
	m.mu.Unlock()
	if m.PlanFunc == nil {
		return &model.Roadmap{Title: target, StudyIntensity: "moderate", Steps: []model.RoadmapStep{{Title: "Start"}}}, nil
	}
	return m.PlanFunc(ctx, p, target)
}

// --- Mock dispatcher

// MockDispatcher captures dispatched runs so tests decide when they execute.
type MockDispatcher struct {
	mu      sync.Mutex
	Pending []func(ctx context.Context) error
	Err     error
	run     func(ctx context.Context, jobID, ownerID, target string) error
}

func (m *MockDispatcher) Dispatch(jobID, ownerID, target string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pending = append(m.Pending, func(ctx context.Context) error {
		if m.run == nil {
			return errors.New("no runner wired")
		}
		return m.run(ctx, jobID, ownerID, target)
	})
	return nil
}

// Drain runs every captured dispatch in order.
func (m *MockDispatcher) Drain(ctx context.Context) error {
	m.mu.Lock()
	pending := m.Pending
	m.Pending = nil
	m.mu.Unlock()
	for _, fn := range pending {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

type NoopNotifier struct{}

func (NoopNotifier) NotifyJobFailed(ctx context.Context, job *model.RoadmapJob) error { return nil }

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
