package apiv1

import (
	"net/http"
	"time"

	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/infra/api"
)

type submitRoadmapRequest struct {
	LearningTarget string `json:"learning_target"`
	Target         string `json:"target"`
}

// roadmapJobResponse is the externally visible shape of a job. The owner
// and the internal row id are never exposed.
type roadmapJobResponse struct {
	JobID       string                 `json:"job_id"`
	Status      model.RoadmapJobStatus `json:"status"`
	Target      string                 `json:"target"`
	CreatedAt   time.Time              `json:"created_at"`
	Result      *model.Roadmap         `json:"result"`
	CompletedAt *time.Time             `json:"completed_at"`
	Error       *string                `json:"error"`
}

func toRoadmapJobResponse(j *model.RoadmapJob) roadmapJobResponse {
	return roadmapJobResponse{
		JobID:       j.JobID,
		Status:      j.Status,
		Target:      j.Target,
		CreatedAt:   j.CreatedAt,
		Result:      j.Result,
		CompletedAt: j.CompletedAt,
		Error:       j.Error,
	}
}

func (s *Server) handleSubmitRoadmap(w http.ResponseWriter, r *http.Request) {
	var req submitRoadmapRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	target := req.LearningTarget
	if target == "" {
		target = req.Target
	}
	me := api.PrincipalFrom(r.Context())
	job, err := s.roadmaps.Submit(r.Context(), me.ID, target)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", r.URL.Path+"/"+job.JobID)
	api.WriteJSON(w, http.StatusAccepted, toRoadmapJobResponse(job))
}

func (s *Server) handleGetRoadmap(w http.ResponseWriter, r *http.Request) {
	var jobID string
	if err := bindPath(r, "job_id", &jobID); err != nil {
		s.writeError(w, r, err)
		return
	}
	me := api.PrincipalFrom(r.Context())
	job, err := s.roadmaps.GetStatus(r.Context(), me.ID, jobID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, toRoadmapJobResponse(job))
}
