package repository

import (
	"context"

	"ai-tutor-backend/internal/domain/model"
)

// -----------------------------
// Exercises
// -----------------------------

type ExerciseRepository interface {
	Create(ctx context.Context, tx Tx, e *model.Exercise) error
	// FindByID returns the exercise with its interactions ordered by creation.
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Exercise, error)
	// FindByIDForUpdate locks the exercise row; tx must be a transaction.
	FindByIDForUpdate(ctx context.Context, tx Tx, id int64) (*model.Exercise, error)
	UpdateStatus(ctx context.Context, tx Tx, id int64, status model.ExerciseStatus) error
	AddInteraction(ctx context.Context, tx Tx, in *model.Interaction) error
}
