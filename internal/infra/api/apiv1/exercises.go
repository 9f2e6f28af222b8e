package apiv1

import (
	"net/http"

	"ai-tutor-backend/internal/infra/api"
)

type startExerciseRequest struct {
	Content string `json:"content"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (s *Server) handleStartExercise(w http.ResponseWriter, r *http.Request) {
	var req startExerciseRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	me := api.PrincipalFrom(r.Context())
	ex, err := s.exercises.Start(r.Context(), me.ID, req.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, ex)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	var id int64
	if err := bindPath(r, "exercise_id", &id); err != nil {
		s.writeError(w, r, err)
		return
	}
	me := api.PrincipalFrom(r.Context())
	ex, err := s.exercises.Get(r.Context(), me.ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, ex)
}

func (s *Server) handleAnswerExercise(w http.ResponseWriter, r *http.Request) {
	var id int64
	if err := bindPath(r, "exercise_id", &id); err != nil {
		s.writeError(w, r, err)
		return
	}
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	me := api.PrincipalFrom(r.Context())
	out, err := s.exercises.Answer(r.Context(), me.ID, id, req.Answer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, out)
}
