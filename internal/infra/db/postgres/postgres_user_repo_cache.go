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

var _ repository.UserRepository = (*userRepoCacheDecorator)(nil)

type userRepoCacheDecorator struct {
	inner repository.UserRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewUserRepoCacheDecorator(inner repository.UserRepository, cache red.RedisClient, ttl time.Duration, log *zerolog.Logger) repository.UserRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &userRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: log}
}

func userKey(id string) string { return fmt.Sprintf("user:id:%s", id) }

func (d *userRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, u *model.User) error {
	return d.inner.Create(ctx, tx, u)
}

func (d *userRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	// Reads inside a transaction go straight to the database.
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}

	key := userKey(id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var u model.User
		if json.Unmarshal([]byte(val), &u) == nil {
			metrics.IncCacheRequest("user", "hit")
			return &u, nil
		}
	} else if !errors.Is(err, red.Nil) {
		d.log.Warn().Err(err).Str("key", key).Msg("user cache read failed")
	}

	metrics.IncCacheRequest("user", "miss")
	user, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	// The password hash is tagged out of JSON and never reaches the cache.
	// Login reads through FindByEmail, which is uncached.
	if b, err := json.Marshal(user); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return user, nil
}

// FindByEmail backs login only and is not cached.
func (d *userRepoCacheDecorator) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	return d.inner.FindByEmail(ctx, tx, email)
}

// For write operations, we must invalidate the user's entry.
func (d *userRepoCacheDecorator) UpdateProfile(ctx context.Context, tx repository.Tx, id string, p model.Profile) error {
	if err := d.inner.UpdateProfile(ctx, tx, id, p); err != nil {
		return err
	}
	d.invalidate(ctx, id)
	return nil
}

func (d *userRepoCacheDecorator) SetPremium(ctx context.Context, tx repository.Tx, id string, premium bool) error {
	if err := d.inner.SetPremium(ctx, tx, id, premium); err != nil {
		return err
	}
	d.invalidate(ctx, id)
	return nil
}

func (d *userRepoCacheDecorator) invalidate(ctx context.Context, id string) {
	if err := d.cache.Del(ctx, userKey(id)); err != nil {
		d.log.Warn().Err(err).Str("user_id", id).Msg("user cache invalidation failed")
	}
}
