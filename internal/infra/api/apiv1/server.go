package apiv1

import (
	"time"

	"ai-tutor-backend/internal/infra/api"
	"ai-tutor-backend/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Options struct {
	AdminKey         string
	SubmitRateLimit  int
	SubmitRateWindow time.Duration
}

// Server implements the v1 HTTP handlers on top of the use cases.
type Server struct {
	users     usecase.UserUseCase
	exercises usecase.ExerciseUseCase
	roadmaps  usecase.RoadmapUseCase
	tokens    *api.TokenIssuer
	limiter   api.Limiter
	opts      Options
	log       *zerolog.Logger
}

func NewServer(
	users usecase.UserUseCase,
	exercises usecase.ExerciseUseCase,
	roadmaps usecase.RoadmapUseCase,
	tokens *api.TokenIssuer,
	limiter api.Limiter,
	opts Options,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		users:     users,
		exercises: exercises,
		roadmaps:  roadmaps,
		tokens:    tokens,
		limiter:   limiter,
		opts:      opts,
		log:       logger,
	}
}

// RegisterAPIV1 attaches every v1 route to r, relative to the API prefix.
func RegisterAPIV1(r chi.Router, s *Server) {
	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/token", s.handleToken)

	r.Group(func(r chi.Router) {
		r.Use(api.Authenticate(s.tokens, s.users, s.log))

		r.Get("/users/me", s.handleMe)
		r.Put("/users/me/profile", s.handleUpdateProfile)

		r.Post("/exercises", s.handleStartExercise)
		r.Get("/exercises/{exercise_id}", s.handleGetExercise)
		r.Post("/exercises/{exercise_id}/answer", s.handleAnswerExercise)

		r.With(
			api.RequirePremium(),
			api.RateLimit(s.limiter, redisKey, "roadmap_submit", s.opts.SubmitRateLimit, s.opts.SubmitRateWindow, s.log),
		).Post("/roadmaps", s.handleSubmitRoadmap)
		r.Get("/roadmaps/{job_id}", s.handleGetRoadmap)
	})

	r.Group(func(r chi.Router) {
		r.Use(api.AdminKey(s.opts.AdminKey, s.log))
		r.Post("/admin/users/{user_id}/premium", s.handleSetPremium)
	})
}
