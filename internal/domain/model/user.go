package model

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"ai-tutor-backend/internal/domain"

	"github.com/google/uuid"
)

const MinPasswordLength = 8

// User is a registered student. Profile feeds roadmap personalization.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username,omitempty"`
	HashedPassword string    `json:"-"`
	IsPremium      bool      `json:"is_premium"`
	Profile        Profile   `json:"profile"`
	CreatedAt      time.Time `json:"created_at"`
}

// Profile is what the tutoring oracle knows about a student.
type Profile struct {
	Year           string   `json:"profile_year,omitempty"`
	SkillLevel     string   `json:"profile_skill_level,omitempty"`
	CommonMistakes []string `json:"profile_common_mistakes,omitempty"`
}

func NewUser(id, email, username, hashedPassword string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrInvalidArgument)
	}
	if hashedPassword == "" {
		return nil, fmt.Errorf("%w: password hash is required", domain.ErrInvalidArgument)
	}
	return &User{
		ID:             id,
		Email:          email,
		Username:       strings.TrimSpace(username),
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now(),
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

// NormalizeProfile trims fields and drops empty mistakes.
func NormalizeProfile(p Profile) Profile {
	out := Profile{
		Year:       strings.TrimSpace(p.Year),
		SkillLevel: strings.TrimSpace(p.SkillLevel),
	}
	for _, m := range p.CommonMistakes {
		if m = strings.TrimSpace(m); m != "" {
			out.CommonMistakes = append(out.CommonMistakes, m)
		}
	}
	return out
}
