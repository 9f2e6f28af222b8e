package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"ai-tutor-backend/internal/infra/logging"
	"ai-tutor-backend/internal/infra/metrics"

	"github.com/rs/zerolog"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// KeyFunc builds the limiter key for an action and an authenticated user.
type KeyFunc func(userID, action string) string

// RateLimit applies a per-user limit to action. It must run after
// Authenticate. Limiter errors fail open so a cache outage does not take the
// endpoint down.
func RateLimit(l Limiter, key KeyFunc, action string, limit int, window time.Duration, logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		if l == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := PrincipalFrom(r.Context())
			if u == nil {
				next.ServeHTTP(w, r)
				return
			}
			ok, err := l.Allow(r.Context(), key(u.ID, action), limit, window)
			if err != nil {
				lg := logging.With(r.Context(), logger)
				lg.Warn().Err(err).Str("action", action).Msg("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				metrics.IncRateLimited(action)
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
