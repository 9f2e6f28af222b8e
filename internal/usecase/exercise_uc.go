package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/domain/ports/adapter"
	"ai-tutor-backend/internal/domain/ports/repository"
	"ai-tutor-backend/internal/infra/logging"
)

// Compile-time check
var _ ExerciseUseCase = (*exerciseUC)(nil)

type ExerciseUseCase interface {
	// Start stores a new exercise together with the tutor's first hint.
	Start(ctx context.Context, userID, content string) (*model.Exercise, error)
	// Answer checks an answer; a correct one completes the exercise and
	// suggests a follow-up.
	Answer(ctx context.Context, userID string, exerciseID int64, answer string) (*model.AnswerOutcome, error)
	Get(ctx context.Context, userID string, exerciseID int64) (*model.Exercise, error)
}

type exerciseUC struct {
	exercises repository.ExerciseRepository
	oracle    adapter.TutoringOracle
	tm        repository.TransactionManager
	log       *zerolog.Logger
}

func NewExerciseUseCase(exercises repository.ExerciseRepository, oracle adapter.TutoringOracle, tm repository.TransactionManager, logger *zerolog.Logger) *exerciseUC {
	return &exerciseUC{exercises: exercises, oracle: oracle, tm: tm, log: logger}
}

func (e *exerciseUC) Start(ctx context.Context, userID, content string) (*model.Exercise, error) {
	defer logging.TraceDuration(e.log, "ExerciseUC.Start")()

	ex, err := model.NewExercise(userID, content)
	if err != nil {
		return nil, err
	}

	// Oracle first: no row is written when the tutor is unavailable.
	hint, err := e.oracle.Guide(ctx, ex.Content)
	if err != nil {
		return nil, err
	}

	in := model.Interaction{AIResponse: &hint, CreatedAt: time.Now()}
	err = e.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := e.exercises.Create(ctx, tx, ex); err != nil {
			return err
		}
		in.ExerciseID = ex.ID
		return e.exercises.AddInteraction(ctx, tx, &in)
	})
	if err != nil {
		return nil, err
	}
	ex.Interactions = []model.Interaction{in}
	return ex, nil
}

func (e *exerciseUC) Answer(ctx context.Context, userID string, exerciseID int64, answer string) (*model.AnswerOutcome, error) {
	log := logging.With(ctx, e.log)
	defer logging.TraceDuration(log, "ExerciseUC.Answer")()

	if answer == "" {
		return nil, domain.ErrInvalidArgument
	}
	ex, err := e.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}
	if ex.Completed() {
		return nil, domain.ErrExerciseCompleted
	}

	verdict, err := e.oracle.Check(ctx, ex.Content, answer)
	if err != nil {
		return nil, err
	}
	out := &model.AnswerOutcome{IsCorrect: verdict.IsCorrect, Explanation: verdict.Explanation}
	if verdict.IsCorrect {
		next, err := e.oracle.Similar(ctx, ex.Content)
		if err != nil {
			// The verdict stands without a suggestion.
			log.Warn().Err(err).Int64("exercise_id", ex.ID).Msg("similar exercise generation failed")
		} else {
			out.SuggestedExercise = &next
		}
	}

	in := model.Interaction{
		ExerciseID:        ex.ID,
		UserAnswer:        &answer,
		AIResponse:        &out.Explanation,
		IsCorrect:         &out.IsCorrect,
		SuggestedExercise: out.SuggestedExercise,
		CreatedAt:         time.Now(),
	}
	err = e.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		locked, err := e.exercises.FindByIDForUpdate(ctx, tx, ex.ID)
		if err != nil {
			return err
		}
		// Another answer may have completed it while the oracle was thinking.
		if locked.Completed() {
			return domain.ErrExerciseCompleted
		}
		if err := e.exercises.AddInteraction(ctx, tx, &in); err != nil {
			return err
		}
		if out.IsCorrect {
			return e.exercises.UpdateStatus(ctx, tx, ex.ID, model.ExerciseCompleted)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *exerciseUC) Get(ctx context.Context, userID string, exerciseID int64) (*model.Exercise, error) {
	defer logging.TraceDuration(e.log, "ExerciseUC.Get")()
	return e.ownedExercise(ctx, userID, exerciseID)
}

func (e *exerciseUC) ownedExercise(ctx context.Context, userID string, exerciseID int64) (*model.Exercise, error) {
	ex, err := e.exercises.FindByID(ctx, repository.NoTX, exerciseID)
	if err != nil {
		return nil, err
	}
	if !ex.OwnedBy(userID) {
		return nil, domain.ErrForbidden
	}
	return ex, nil
}
