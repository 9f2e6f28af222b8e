//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/usecase"
)

func newExerciseUC(oracle *MockOracle) (usecase.ExerciseUseCase, *MockExerciseRepo) {
	repo := NewMockExerciseRepo()
	return usecase.NewExerciseUseCase(repo, oracle, NewMockTxManager(), newTestLogger()), repo
}

func TestExerciseUseCase_StartStoresFirstHint(t *testing.T) {
	ctx := context.Background()
	uc, repo := newExerciseUC(&MockOracle{
		GuideFunc: func(ctx context.Context, exercise string) (string, error) {
			return "Isolate x first.", nil
		},
	})

	ex, err := uc.Start(ctx, "U1", "  Solve 2x + 3 = 7  ")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if ex.ID == 0 || ex.Content != "Solve 2x + 3 = 7" || ex.Status != model.ExerciseInProgress {
		t.Fatalf("unexpected exercise %+v", ex)
	}
	stored, err := repo.FindByID(ctx, nil, ex.ID)
	if err != nil {
		t.Fatalf("exercise not stored: %v", err)
	}
	if len(stored.Interactions) != 1 || *stored.Interactions[0].AIResponse != "Isolate x first." {
		t.Fatalf("expected the first hint to be stored, got %+v", stored.Interactions)
	}
}

func TestExerciseUseCase_StartOracleFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	uc, repo := newExerciseUC(&MockOracle{
		GuideFunc: func(ctx context.Context, exercise string) (string, error) {
			return "", domain.ErrOracleUnavailable
		},
	})

	if _, err := uc.Start(ctx, "U1", "Solve x"); !errors.Is(err, domain.ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}
	if _, err := repo.FindByID(ctx, nil, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("no exercise should have been stored")
	}
}

func TestExerciseUseCase_StartRejectsEmptyContent(t *testing.T) {
	uc, _ := newExerciseUC(&MockOracle{})
	if _, err := uc.Start(context.Background(), "U1", "   "); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestExerciseUseCase_Answer(t *testing.T) {
	ctx := context.Background()

	t.Run("correct answer completes and suggests", func(t *testing.T) {
		uc, repo := newExerciseUC(&MockOracle{
			SimilarFunc: func(ctx context.Context, exercise string) (string, error) {
				return "Solve 3x + 1 = 10", nil
			},
		})
		ex, _ := uc.Start(ctx, "U1", "Solve 2x + 3 = 7")

		out, err := uc.Answer(ctx, "U1", ex.ID, "x = 2")
		if err != nil {
			t.Fatalf("Answer failed: %v", err)
		}
		if !out.IsCorrect || out.SuggestedExercise == nil || *out.SuggestedExercise != "Solve 3x + 1 = 10" {
			t.Fatalf("unexpected outcome %+v", out)
		}
		stored, _ := repo.FindByID(ctx, nil, ex.ID)
		if stored.Status != model.ExerciseCompleted || len(stored.Interactions) != 2 {
			t.Fatalf("unexpected stored exercise %+v", stored)
		}

		if _, err := uc.Answer(ctx, "U1", ex.ID, "x = 2"); !errors.Is(err, domain.ErrExerciseCompleted) {
			t.Fatalf("expected ErrExerciseCompleted, got %v", err)
		}
	})

	t.Run("wrong answer keeps exercise open", func(t *testing.T) {
		uc, repo := newExerciseUC(&MockOracle{
			CheckFunc: func(ctx context.Context, exercise, answer string) (*model.CheckResult, error) {
				return &model.CheckResult{IsCorrect: false, Explanation: "Subtract 3 first."}, nil
			},
		})
		ex, _ := uc.Start(ctx, "U1", "Solve 2x + 3 = 7")

		out, err := uc.Answer(ctx, "U1", ex.ID, "x = 5")
		if err != nil {
			t.Fatalf("Answer failed: %v", err)
		}
		if out.IsCorrect || out.SuggestedExercise != nil || out.Explanation != "Subtract 3 first." {
			t.Fatalf("unexpected outcome %+v", out)
		}
		stored, _ := repo.FindByID(ctx, nil, ex.ID)
		if stored.Status != model.ExerciseInProgress {
			t.Fatalf("exercise should stay in progress")
		}
	})

	t.Run("similar failure keeps the verdict", func(t *testing.T) {
		uc, _ := newExerciseUC(&MockOracle{
			SimilarFunc: func(ctx context.Context, exercise string) (string, error) {
				return "", domain.ErrOracleUnavailable
			},
		})
		ex, _ := uc.Start(ctx, "U1", "Solve 2x + 3 = 7")

		out, err := uc.Answer(ctx, "U1", ex.ID, "x = 2")
		if err != nil {
			t.Fatalf("Answer failed: %v", err)
		}
		if !out.IsCorrect || out.SuggestedExercise != nil {
			t.Fatalf("unexpected outcome %+v", out)
		}
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		uc, _ := newExerciseUC(&MockOracle{})
		ex, _ := uc.Start(ctx, "U1", "Solve 2x + 3 = 7")
		if _, err := uc.Answer(ctx, "U2", ex.ID, "x = 2"); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if _, err := uc.Get(ctx, "U2", ex.ID); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("empty answer and unknown exercise", func(t *testing.T) {
		uc, _ := newExerciseUC(&MockOracle{})
		if _, err := uc.Answer(ctx, "U1", 1, ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
		if _, err := uc.Answer(ctx, "U1", 42, "x"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
