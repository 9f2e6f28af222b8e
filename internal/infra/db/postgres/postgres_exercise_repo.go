package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/domain/ports/repository"
)

var _ repository.ExerciseRepository = (*exerciseRepo)(nil)

type exerciseRepo struct {
	pool *pgxpool.Pool
}

func NewExerciseRepo(pool *pgxpool.Pool) *exerciseRepo {
	return &exerciseRepo{pool: pool}
}

func (r *exerciseRepo) Create(ctx context.Context, tx repository.Tx, e *model.Exercise) error {
	const q = `
INSERT INTO exercises (user_id, content, status, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id;`
	row, err := pickRow(ctx, r.pool, tx, q, e.UserID, e.Content, string(e.Status), e.CreatedAt)
	if err != nil {
		return err
	}
	if err := row.Scan(&e.ID); err != nil {
		return fmt.Errorf("create exercise: %w", translateErr(err))
	}
	return nil
}

func (r *exerciseRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Exercise, error) {
	e, err := r.findOne(ctx, tx, `SELECT id, user_id, content, status, created_at FROM exercises WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	if e.Interactions, err = r.listInteractions(ctx, tx, id); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *exerciseRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id int64) (*model.Exercise, error) {
	if tx == nil {
		return nil, domain.ErrInvalidExecContext
	}
	return r.findOne(ctx, tx, `SELECT id, user_id, content, status, created_at FROM exercises WHERE id=$1 FOR UPDATE;`, id)
}

func (r *exerciseRepo) findOne(ctx context.Context, tx repository.Tx, q string, id int64) (*model.Exercise, error) {
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var e model.Exercise
	var status string
	if err := row.Scan(&e.ID, &e.UserID, &e.Content, &status, &e.CreatedAt); err != nil {
		if err = translateErr(err); err == domain.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
	}
	e.Status = model.ExerciseStatus(status)
	return &e, nil
}

func (r *exerciseRepo) listInteractions(ctx context.Context, tx repository.Tx, exerciseID int64) ([]model.Interaction, error) {
	const q = `
SELECT id, exercise_id, user_answer, ai_response, is_correct, suggested_exercise, created_at
  FROM interactions
 WHERE exercise_id=$1
 ORDER BY created_at, id;`
	rows, err := queryRows(ctx, r.pool, tx, q, exerciseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Interaction, 0)
	for rows.Next() {
		var in model.Interaction
		if err := rows.Scan(&in.ID, &in.ExerciseID, &in.UserAnswer, &in.AIResponse, &in.IsCorrect, &in.SuggestedExercise, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *exerciseRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id int64, status model.ExerciseStatus) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE exercises SET status=$2 WHERE id=$1;`, id, string(status))
	if err != nil {
		return fmt.Errorf("update exercise status: %w", translateErr(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *exerciseRepo) AddInteraction(ctx context.Context, tx repository.Tx, in *model.Interaction) error {
	const q = `
INSERT INTO interactions (exercise_id, user_answer, ai_response, is_correct, suggested_exercise, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id;`
	row, err := pickRow(ctx, r.pool, tx, q, in.ExerciseID, in.UserAnswer, in.AIResponse, in.IsCorrect, in.SuggestedExercise, in.CreatedAt)
	if err != nil {
		return err
	}
	if err := row.Scan(&in.ID); err != nil {
		return fmt.Errorf("add interaction: %w", translateErr(err))
	}
	return nil
}
