package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/domain/model"
	"ai-tutor-backend/internal/infra/logging"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// ===== Bearer token primitives =====

type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret, issuer string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue signs an HS256 token whose subject is the user id.
func (t *TokenIssuer) Issue(userID string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    t.issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify returns the subject of a valid token.
func (t *TokenIssuer) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !tkn.Valid {
		return "", fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}
	return claims.Subject, nil
}

func bearerToken(r *http.Request) string {
	hdr := r.Header.Get("Authorization")
	if len(hdr) > 7 && strings.EqualFold(hdr[:7], "bearer ") {
		return strings.TrimSpace(hdr[7:])
	}
	return ""
}

// ===== Principal =====

type principalKey struct{}

func WithPrincipal(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, principalKey{}, u)
}

// PrincipalFrom returns the authenticated user, or nil outside Authenticate.
func PrincipalFrom(ctx context.Context) *model.User {
	u, _ := ctx.Value(principalKey{}).(*model.User)
	return u
}

// PrincipalLoader resolves a token subject into the current user record.
type PrincipalLoader interface {
	Get(ctx context.Context, id string) (*model.User, error)
}

// Authenticate verifies the bearer token and loads the principal. Premium
// status is read fresh on every request, never from the token.
func Authenticate(tokens *TokenIssuer, users PrincipalLoader, logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerToken(r)
			if tok == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				WriteError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			sub, err := tokens.Verify(tok)
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				WriteError(w, http.StatusUnauthorized, "could not validate credentials")
				return
			}
			user, err := users.Get(r.Context(), sub)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					WriteError(w, http.StatusUnauthorized, "could not validate credentials")
					return
				}
				l := logging.With(r.Context(), logger)
				l.Error().Err(err).Msg("principal lookup failed")
				WriteError(w, http.StatusInternalServerError, "internal error")
				return
			}
			ctx := logging.WithUserID(WithPrincipal(r.Context(), user), user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePremium must run after Authenticate.
func RequirePremium() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := PrincipalFrom(r.Context())
			if u == nil {
				WriteError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if !u.IsPremium {
				WriteError(w, http.StatusForbidden, "premium feature")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminKey guards operator routes with a static bearer key. An empty key
// disables the routes entirely.
func AdminKey(key string, logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				logger.Error().Msg("admin API key is not configured")
				WriteError(w, http.StatusForbidden, "forbidden")
				return
			}
			tok := bearerToken(r)
			if tok == "" {
				WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if subtle.ConstantTimeCompare([]byte(tok), []byte(key)) != 1 {
				WriteError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
