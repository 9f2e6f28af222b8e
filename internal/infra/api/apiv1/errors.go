package apiv1

import (
	"context"
	"errors"
	"net/http"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/infra/api"
	"ai-tutor-backend/internal/infra/logging"
)

// writeError maps domain errors to HTTP status codes in one place.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, detail = http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrPremiumRequired):
		status, detail = http.StatusForbidden, "premium feature"
	case errors.Is(err, domain.ErrForbidden):
		status, detail = http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrUnauthorized):
		status, detail = http.StatusUnauthorized, "could not validate credentials"
	case errors.Is(err, domain.ErrRateLimited):
		status, detail = http.StatusTooManyRequests, "rate limit exceeded"
	case errors.Is(err, domain.ErrInvalidArgument):
		status, detail = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrAlreadyExists):
		status, detail = http.StatusBadRequest, "already registered"
	case errors.Is(err, domain.ErrExerciseCompleted):
		status, detail = http.StatusBadRequest, domain.ErrExerciseCompleted.Error()
	case errors.Is(err, domain.ErrOracleMalformedJSON):
		status, detail = http.StatusBadGateway, "tutor returned an unusable answer"
	case errors.Is(err, domain.ErrOracleUnavailable):
		status, detail = http.StatusServiceUnavailable, "tutor is unavailable, try again later"
	case errors.Is(err, context.DeadlineExceeded):
		status, detail = http.StatusGatewayTimeout, "request timed out"
	}

	l := logging.With(r.Context(), s.log)
	if status >= http.StatusInternalServerError {
		l.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		l.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	api.WriteError(w, status, detail)
}
