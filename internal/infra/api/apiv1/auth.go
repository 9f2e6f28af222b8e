package apiv1

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/infra/api"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.users.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, u)
}

// handleToken accepts the OAuth2 password form (username carries the email)
// as well as a JSON body.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: invalid form", domain.ErrInvalidArgument))
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	} else if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = strings.TrimSpace(req.Username)
	}
	if email == "" || req.Password == "" {
		s.writeError(w, r, domain.ErrUnauthorized)
		return
	}

	u, err := s.users.Authenticate(r.Context(), email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tok, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: tok, TokenType: "bearer", ExpiresAt: exp})
}
