package repository

import (
	"context"

	"ai-tutor-backend/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	Create(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, tx Tx, id string, p model.Profile) error
	SetPremium(ctx context.Context, tx Tx, id string, premium bool) error
}
