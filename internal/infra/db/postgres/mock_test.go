//go:build !integration

package postgres

import (
	"context"
	"sync"
	"time"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/domain/ports/repository"
	red "ai-tutor-backend/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerUserRepo mocks the database repository that the User decorator wraps.
type mockInnerUserRepo struct {
	CreateFunc        func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByIDFunc      func(ctx context.Context, tx repository.Tx, id string) (*model.User, error)
	FindByEmailFunc   func(ctx context.Context, tx repository.Tx, email string) (*model.User, error)
	UpdateProfileFunc func(ctx context.Context, tx repository.Tx, id string, p model.Profile) error
	SetPremiumFunc    func(ctx context.Context, tx repository.Tx, id string, premium bool) error
}

func (m *mockInnerUserRepo) Create(ctx context.Context, tx repository.Tx, u *model.User) error {
	return m.CreateFunc(ctx, tx, u)
}
func (m *mockInnerUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	return m.FindByEmailFunc(ctx, tx, email)
}
func (m *mockInnerUserRepo) UpdateProfile(ctx context.Context, tx repository.Tx, id string, p model.Profile) error {
	return m.UpdateProfileFunc(ctx, tx, id, p)
}
func (m *mockInnerUserRepo) SetPremium(ctx context.Context, tx repository.Tx, id string, premium bool) error {
	return m.SetPremiumFunc(ctx, tx, id, premium)
}

// mockInnerRoadmapJobRepo mocks the database repository that the roadmap job decorator wraps.
type mockInnerRoadmapJobRepo struct {
	CreateFunc      func(ctx context.Context, tx repository.Tx, job *model.RoadmapJob) error
	FindByJobIDFunc func(ctx context.Context, tx repository.Tx, jobID string) (*model.RoadmapJob, error)
	TransitionFunc  func(ctx context.Context, tx repository.Tx, job *model.RoadmapJob, from model.RoadmapJobStatus) error
	CountStaleFunc  func(ctx context.Context, tx repository.Tx, status model.RoadmapJobStatus, olderThan time.Time) (int, error)
}

func (m *mockInnerRoadmapJobRepo) Create(ctx context.Context, tx repository.Tx, job *model.RoadmapJob) error {
	return m.CreateFunc(ctx, tx, job)
}
func (m *mockInnerRoadmapJobRepo) FindByJobID(ctx context.Context, tx repository.Tx, jobID string) (*model.RoadmapJob, error) {
	return m.FindByJobIDFunc(ctx, tx, jobID)
}
func (m *mockInnerRoadmapJobRepo) Transition(ctx context.Context, tx repository.Tx, job *model.RoadmapJob, from model.RoadmapJobStatus) error {
	return m.TransitionFunc(ctx, tx, job, from)
}
func (m *mockInnerRoadmapJobRepo) CountStale(ctx context.Context, tx repository.Tx, status model.RoadmapJobStatus, olderThan time.Time) (int, error) {
	return m.CountStaleFunc(ctx, tx, status, olderThan)
}

// memRedis is a map-backed RedisClient.
type memRedis struct {
	mu   sync.Mutex
	data map[string]string
	sets int
	dels []string
}

var _ red.RedisClient = (*memRedis)(nil)

func newMemRedis() *memRedis { return &memRedis{data: map[string]string{}} }

func (m *memRedis) Ping(ctx context.Context) error { return nil }
func (m *memRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	default:
		return domain.ErrInvalidArgument
	}
	m.sets++
	return nil
}
func (m *memRedis) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", red.Nil
	}
	return v, nil
}
func (m *memRedis) Incr(ctx context.Context, key string) (int64, error) { return 0, nil }
func (m *memRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}
func (m *memRedis) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
		m.dels = append(m.dels, k)
	}
	return nil
}
func (m *memRedis) Close() error { return nil }
