package model

import (
	"fmt"
	"strings"
	"time"

	"ai-tutor-backend/internal/domain"
)

type ExerciseStatus string

const (
	ExerciseInProgress ExerciseStatus = "in_progress"
	ExerciseCompleted  ExerciseStatus = "completed"
)

// Exercise is a problem a student is working through with the tutor.
type Exercise struct {
	ID           int64          `json:"id"`
	UserID       string         `json:"-"`
	Content      string         `json:"content"`
	Status       ExerciseStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	Interactions []Interaction  `json:"interactions"`
}

// Interaction is one tutoring step: a hint, or an answer check.
type Interaction struct {
	ID                int64     `json:"id"`
	ExerciseID        int64     `json:"-"`
	UserAnswer        *string   `json:"user_answer"`
	AIResponse        *string   `json:"ai_response"`
	IsCorrect         *bool     `json:"is_correct"`
	SuggestedExercise *string   `json:"suggested_exercise"`
	CreatedAt         time.Time `json:"created_at"`
}

func NewExercise(userID, content string) (*Exercise, error) {
	content = strings.TrimSpace(content)
	if userID == "" || content == "" {
		return nil, fmt.Errorf("%w: exercise content must not be empty", domain.ErrInvalidArgument)
	}
	return &Exercise{
		UserID:    userID,
		Content:   content,
		Status:    ExerciseInProgress,
		CreatedAt: time.Now(),
	}, nil
}

func (e *Exercise) OwnedBy(userID string) bool {
	return e != nil && userID != "" && e.UserID == userID
}

func (e *Exercise) Completed() bool { return e.Status == ExerciseCompleted }

// CheckResult is the oracle's verdict on a submitted answer.
type CheckResult struct {
	IsCorrect   bool   `json:"is_correct"`
	Explanation string `json:"explanation"`
}

// AnswerOutcome is returned to the student after an answer check.
type AnswerOutcome struct {
	IsCorrect         bool    `json:"is_correct"`
	Explanation       string  `json:"explanation"`
	SuggestedExercise *string `json:"suggested_exercise"`
}
