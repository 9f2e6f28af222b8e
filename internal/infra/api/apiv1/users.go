package apiv1

import (
	"net/http"

	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/infra/api"
)

type premiumRequest struct {
	IsPremium *bool `json:"is_premium"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, api.PrincipalFrom(r.Context()))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p model.Profile
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	me := api.PrincipalFrom(r.Context())
	u, err := s.users.UpdateProfile(r.Context(), me.ID, p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, u)
}

func (s *Server) handleSetPremium(w http.ResponseWriter, r *http.Request) {
	var userID string
	if err := bindPath(r, "user_id", &userID); err != nil {
		s.writeError(w, r, err)
		return
	}
	var req premiumRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	premium := true
	if req.IsPremium != nil {
		premium = *req.IsPremium
	}
	u, err := s.users.SetPremium(r.Context(), userID, premium)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, u)
}
