package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/arcade-go/internal/api/apierr"
	"github.com/mcoot/arcade-go/internal/model"
)

type contextKey string

const identityContextKey contextKey = "identity"

// TokenVerifier turns a bearer token into the caller's identity
type TokenVerifier interface {
	Verify(token string) (model.Identity, error)
}

// Auth rejects requests without a valid bearer token and stores the caller's
// identity in the request context
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin only lets through callers whose user ID is listed. It must run
// after Auth. An empty list refuses everyone.
func RequireAdmin(userIDs []model.UserID) func(http.Handler) http.Handler {
	admins := make(map[model.UserID]struct{}, len(userIDs))
	for _, id := range userIDs {
		admins[id] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentity(r.Context())
			if !ok {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}
			if _, ok := admins[identity.UserID]; !ok {
				apierr.WriteError(w, apierr.NewForbiddenError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// GetIdentity returns the authenticated caller from the request context
func GetIdentity(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	return identity, ok
}

// MustGetIdentity returns the authenticated caller or panics
func MustGetIdentity(ctx context.Context) model.Identity {
	identity, ok := GetIdentity(ctx)
	if !ok {
		panic("no identity in context - auth middleware not applied?")
	}
	return identity
}
