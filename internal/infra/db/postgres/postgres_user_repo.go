package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

const userColumns = `id, email, username, hashed_password, is_premium,
       profile_year, profile_skill_level, profile_common_mistakes, created_at`

func (r *PostgresUserRepo) Create(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (
  id, email, username, hashed_password, is_premium,
  profile_year, profile_skill_level, profile_common_mistakes, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`
	_, err := execSQL(ctx, r.pool, tx, q,
		u.ID, u.Email, u.Username, u.HashedPassword, u.IsPremium,
		u.Profile.Year, u.Profile.SkillLevel, nonNilStrings(u.Profile.CommonMistakes), u.CreatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", translateErr(err))
	}
	return nil
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return r.findOne(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id=$1;`, id)
}

func (r *PostgresUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	return r.findOne(ctx, tx, `SELECT `+userColumns+` FROM users WHERE email=lower($1);`, email)
}

func (r *PostgresUserRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.User, error) {
	row, err := pickRow(ctx, r.pool, tx, q, arg)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.HashedPassword, &u.IsPremium,
		&u.Profile.Year, &u.Profile.SkillLevel, &u.Profile.CommonMistakes, &u.CreatedAt,
	); err != nil {
		if err = translateErr(err); err == domain.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
	}
	return &u, nil
}

func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, tx repository.Tx, id string, p model.Profile) error {
	const q = `
UPDATE users
   SET profile_year=$2, profile_skill_level=$3, profile_common_mistakes=$4
 WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, p.Year, p.SkillLevel, nonNilStrings(p.CommonMistakes))
	if err != nil {
		return fmt.Errorf("update profile: %w", translateErr(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepo) SetPremium(ctx context.Context, tx repository.Tx, id string, premium bool) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE users SET is_premium=$2 WHERE id=$1;`, id, premium)
	if err != nil {
		return fmt.Errorf("set premium: %w", translateErr(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
