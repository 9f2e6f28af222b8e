//go:build !integration

package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/domain/ports/repository"
	"ai-tutor-backend/internal/infra/logging"
)

func TestUserRepoCacheDecorator(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: "user-123", Email: "a@b.co", HashedPassword: "hash", IsPremium: true}

	t.Run("FindByID fetches from DB on miss and serves hits from cache", func(t *testing.T) {
		calls := 0
		cache := newMemRedis()
		inner := &mockInnerUserRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
				calls++
				return user, nil
			},
		}
		d := NewUserRepoCacheDecorator(inner, cache, time.Minute, logging.Nop())

		for i := 0; i < 2; i++ {
			got, err := d.FindByID(ctx, nil, "user-123")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got.ID != "user-123" || !got.IsPremium {
				t.Fatalf("unexpected user %+v", got)
			}
		}
		if calls != 1 {
			t.Errorf("inner repository should be called once, got %d", calls)
		}
	})

	t.Run("cached entry never holds the password hash", func(t *testing.T) {
		cache := newMemRedis()
		inner := &mockInnerUserRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
				u := *user
				u.HashedPassword = "$2a$10$secrethashvalue"
				return &u, nil
			},
		}
		d := NewUserRepoCacheDecorator(inner, cache, time.Minute, logging.Nop())

		if _, err := d.FindByID(ctx, nil, "user-123"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		stored, ok := cache.data[userKey("user-123")]
		if !ok {
			t.Fatal("expected the user to be cached")
		}
		if strings.Contains(stored, "secrethashvalue") || strings.Contains(stored, "password") {
			t.Fatalf("cached value leaks the password hash: %s", stored)
		}

		hit, err := d.FindByID(ctx, nil, "user-123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if hit.HashedPassword != "" {
			t.Errorf("cache hit should carry no hash, got %q", hit.HashedPassword)
		}
	})

	t.Run("SetPremium invalidates the cached entry", func(t *testing.T) {
		cache := newMemRedis()
		cache.data[userKey("user-123")] = `{}`
		inner := &mockInnerUserRepo{
			SetPremiumFunc: func(ctx context.Context, tx repository.Tx, id string, premium bool) error { return nil },
		}
		d := NewUserRepoCacheDecorator(inner, cache, time.Minute, logging.Nop())

		if err := d.SetPremium(ctx, nil, "user-123", false); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := cache.data[userKey("user-123")]; ok {
			t.Error("did not invalidate cache by user ID")
		}
	})

	t.Run("reads inside a transaction bypass the cache", func(t *testing.T) {
		cache := newMemRedis()
		inner := &mockInnerUserRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id string) (*model.User, error) { return user, nil },
		}
		d := NewUserRepoCacheDecorator(inner, cache, time.Minute, logging.Nop())
		if _, err := d.FindByID(ctx, struct{}{}, "user-123"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cache.sets != 0 {
			t.Errorf("expected no cache writes inside a transaction, got %d", cache.sets)
		}
	})
}

func TestRoadmapJobRepoCacheDecorator(t *testing.T) {
	ctx := context.Background()

	t.Run("pending jobs are never cached", func(t *testing.T) {
		calls := 0
		cache := newMemRedis()
		inner := &mockInnerRoadmapJobRepo{
			FindByJobIDFunc: func(ctx context.Context, tx repository.Tx, jobID string) (*model.RoadmapJob, error) {
				calls++
				return &model.RoadmapJob{JobID: jobID, OwnerID: "u1", Status: model.RoadmapJobPending}, nil
			},
		}
		d := NewRoadmapJobRepoCacheDecorator(inner, cache, time.Minute, logging.Nop())

		for i := 0; i < 3; i++ {
			if _, err := d.FindByJobID(ctx, nil, "j1"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		}
		if calls != 3 {
			t.Errorf("expected every read to hit the database, got %d calls", calls)
		}
		if cache.sets != 0 {
			t.Errorf("non-terminal job was cached")
		}
	})

	t.Run("completed jobs are cached with their result", func(t *testing.T) {
		calls := 0
		now := time.Now().UTC()
		cache := newMemRedis()
		inner := &mockInnerRoadmapJobRepo{
			FindByJobIDFunc: func(ctx context.Context, tx repository.Tx, jobID string) (*model.RoadmapJob, error) {
				calls++
				return &model.RoadmapJob{
					JobID:       jobID,
					OwnerID:     "u1",
					Status:      model.RoadmapJobCompleted,
					Result:      &model.Roadmap{Title: "Calculus I", Steps: []model.RoadmapStep{{Title: "Limits"}}},
					CompletedAt: &now,
				}, nil
			},
		}
		d := NewRoadmapJobRepoCacheDecorator(inner, cache, time.Minute, logging.Nop())

		var last *model.RoadmapJob
		for i := 0; i < 2; i++ {
			job, err := d.FindByJobID(ctx, nil, "j2")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			last = job
		}
		if calls != 1 {
			t.Errorf("expected a single database read, got %d", calls)
		}
		if last.Result == nil || last.Result.Title != "Calculus I" || !last.Consistent() {
			t.Errorf("cached job lost fields: %+v", last)
		}
	})
}
