package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/domain/model"
)

// extractJSON returns the outermost JSON object in s. Models sometimes wrap
// their answer in markdown fences or add a sentence before it.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no JSON object in reply", domain.ErrOracleMalformedJSON)
	}
	return s[start : end+1], nil
}

func decodeInto(reply string, v interface{}) error {
	raw, err := extractJSON(reply)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrOracleMalformedJSON, err)
	}
	return nil
}

func decodeCheck(reply string) (*model.CheckResult, error) {
	var out struct {
		IsCorrect   *bool  `json:"is_correct"`
		Explanation string `json:"explanation"`
	}
	if err := decodeInto(reply, &out); err != nil {
		return nil, err
	}
	if out.IsCorrect == nil {
		return nil, fmt.Errorf("%w: missing is_correct", domain.ErrOracleMalformedJSON)
	}
	return &model.CheckResult{IsCorrect: *out.IsCorrect, Explanation: strings.TrimSpace(out.Explanation)}, nil
}

func decodeSimilar(reply string) (string, error) {
	var out struct {
		NewExercise string `json:"new_exercise"`
	}
	if err := decodeInto(reply, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.NewExercise) == "" {
		return "", fmt.Errorf("%w: empty new_exercise", domain.ErrOracleMalformedJSON)
	}
	return strings.TrimSpace(out.NewExercise), nil
}

func decodeRoadmap(reply string) (*model.Roadmap, error) {
	var rm model.Roadmap
	if err := decodeInto(reply, &rm); err != nil {
		return nil, err
	}
	if err := rm.Validate(); err != nil {
		return nil, err
	}
	return &rm, nil
}
