package model

import (
	"fmt"
	"strings"
	"time"

	"ai-tutor-backend/internal/domain"

	"github.com/oklog/ulid/v2"
)

type RoadmapJobStatus string

const (
	RoadmapJobPending    RoadmapJobStatus = "pending"
	RoadmapJobProcessing RoadmapJobStatus = "processing"
	RoadmapJobCompleted  RoadmapJobStatus = "completed"
	RoadmapJobFailed     RoadmapJobStatus = "failed"
)

// MaxTargetLength bounds the learning target accepted at submission.
const MaxTargetLength = 500

func (s RoadmapJobStatus) Valid() bool {
	switch s {
	case RoadmapJobPending, RoadmapJobProcessing, RoadmapJobCompleted, RoadmapJobFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s RoadmapJobStatus) Terminal() bool {
	return s == RoadmapJobCompleted || s == RoadmapJobFailed
}

// CanTransitionTo encodes pending -> processing -> completed|failed.
func (s RoadmapJobStatus) CanTransitionTo(next RoadmapJobStatus) bool {
	switch s {
	case RoadmapJobPending:
		return next == RoadmapJobProcessing
	case RoadmapJobProcessing:
		return next == RoadmapJobCompleted || next == RoadmapJobFailed
	default:
		return false
	}
}

// RoadmapJob tracks one roadmap generation request.
// Result is set iff Status is completed, Error iff Status is failed.
type RoadmapJob struct {
	ID          int64
	JobID       string
	OwnerID     string
	Target      string
	Status      RoadmapJobStatus
	Result      *Roadmap
	Error       *string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// NewRoadmapJobID returns a fresh opaque job identifier.
func NewRoadmapJobID() string {
	return strings.ToLower(ulid.Make().String())
}

// NewRoadmapJob validates the input and returns a pending job.
func NewRoadmapJob(ownerID, target string, now time.Time) (*RoadmapJob, error) {
	target = strings.TrimSpace(target)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", domain.ErrInvalidArgument)
	}
	if target == "" {
		return nil, fmt.Errorf("%w: learning target must not be empty", domain.ErrInvalidArgument)
	}
	if len([]rune(target)) > MaxTargetLength {
		return nil, fmt.Errorf("%w: learning target exceeds %d characters", domain.ErrInvalidArgument, MaxTargetLength)
	}
	return &RoadmapJob{
		JobID:     NewRoadmapJobID(),
		OwnerID:   ownerID,
		Target:    target,
		Status:    RoadmapJobPending,
		CreatedAt: now,
	}, nil
}

func (j *RoadmapJob) OwnedBy(userID string) bool {
	return j != nil && userID != "" && j.OwnerID == userID
}

// MarkProcessing moves a pending job into processing.
func (j *RoadmapJob) MarkProcessing() error {
	return j.transition(RoadmapJobProcessing)
}

// Complete stores the roadmap and finalizes the job.
func (j *RoadmapJob) Complete(result *Roadmap, now time.Time) error {
	if result == nil {
		return fmt.Errorf("%w: completed job requires a result", domain.ErrInvalidArgument)
	}
	if err := j.transition(RoadmapJobCompleted); err != nil {
		return err
	}
	j.Result = result
	j.Error = nil
	j.CompletedAt = &now
	return nil
}

// Fail records the failure and finalizes the job. No partial result is kept.
func (j *RoadmapJob) Fail(reason string, now time.Time) error {
	if strings.TrimSpace(reason) == "" {
		reason = "roadmap generation failed"
	}
	if err := j.transition(RoadmapJobFailed); err != nil {
		return err
	}
	j.Result = nil
	j.Error = &reason
	j.CompletedAt = &now
	return nil
}

func (j *RoadmapJob) transition(next RoadmapJobStatus) error {
	if !j.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, j.Status, next)
	}
	j.Status = next
	return nil
}

// Consistent reports whether result, error and completed_at agree with the status.
func (j *RoadmapJob) Consistent() bool {
	switch j.Status {
	case RoadmapJobPending, RoadmapJobProcessing:
		return j.Result == nil && j.Error == nil && j.CompletedAt == nil
	case RoadmapJobCompleted:
		return j.Result != nil && j.Error == nil && j.CompletedAt != nil
	case RoadmapJobFailed:
		return j.Result == nil && j.Error != nil && j.CompletedAt != nil
	default:
		return false
	}
}
