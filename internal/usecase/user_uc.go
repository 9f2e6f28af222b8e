package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/domain/ports/repository"
	"ai-tutor-backend/internal/infra/logging"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes account operations used by the HTTP API.
type UserUseCase interface {
	Register(ctx context.Context, email, username, password string) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, p model.Profile) (*model.User, error)
	SetPremium(ctx context.Context, id string, premium bool) (*model.User, error)
}

type userUC struct {
	users repository.UserRepository
	log   *zerolog.Logger
	cost  int
}

func NewUserUseCase(users repository.UserRepository, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, log: logger, cost: bcrypt.DefaultCost}
}

func (u *userUC) Register(ctx context.Context, email, username, password string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.Register")()

	if len(password) < model.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidArgument, model.MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	user, err := model.NewUser("", email, username, string(hash))
	if err != nil {
		return nil, err
	}
	if err := u.users.Create(ctx, repository.NoTX, user); err != nil {
		return nil, err
	}
	u.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Authenticate returns ErrUnauthorized for both unknown emails and wrong
// passwords.
func (u *userUC) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.Authenticate")()

	user, err := u.users.FindByEmail(ctx, repository.NoTX, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

func (u *userUC) Get(ctx context.Context, id string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.Get")()
	return u.users.FindByID(ctx, repository.NoTX, id)
}

func (u *userUC) UpdateProfile(ctx context.Context, id string, p model.Profile) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.UpdateProfile")()
	if err := u.users.UpdateProfile(ctx, repository.NoTX, id, model.NormalizeProfile(p)); err != nil {
		return nil, err
	}
	return u.users.FindByID(ctx, repository.NoTX, id)
}

func (u *userUC) SetPremium(ctx context.Context, id string, premium bool) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.SetPremium")()
	if err := u.users.SetPremium(ctx, repository.NoTX, id, premium); err != nil {
		return nil, err
	}
	u.log.Info().Str("user_id", id).Bool("premium", premium).Msg("premium flag changed")
	return u.users.FindByID(ctx, repository.NoTX, id)
}
