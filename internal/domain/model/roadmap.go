package model

import (
	"fmt"
	"strings"

	"ai-tutor-backend/internal/domain"
)

// Roadmap is the structured learning plan produced by the tutoring oracle.
type Roadmap struct {
	Title          string        `json:"title"`
	StudyIntensity string        `json:"study_intensity"`
	Steps          []RoadmapStep `json:"steps"`
}

type RoadmapStep struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	TopicsToFocus  []string `json:"topics_to_focus"`
	CommonPitfalls []string `json:"common_pitfalls"`
}

// Validate rejects roadmaps that are missing the fields clients rely on.
func (r *Roadmap) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: roadmap is nil", domain.ErrOracleMalformedJSON)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: roadmap title is empty", domain.ErrOracleMalformedJSON)
	}
	if len(r.Steps) == 0 {
		return fmt.Errorf("%w: roadmap has no steps", domain.ErrOracleMalformedJSON)
	}
	for i, s := range r.Steps {
		if strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("%w: step %d has no title", domain.ErrOracleMalformedJSON, i+1)
		}
	}
	return nil
}
