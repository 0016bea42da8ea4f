package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/nestodo/nestodo/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// WithUser returns a context carrying the authenticated user. Exposed
// for handler tests that bypass the Auth middleware.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the authenticated user from the request
// context. Returns nil when the request did not pass the Auth
// middleware.
func UserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(userContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// TokenVerifier resolves a bearer token to the user it names.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*models.User, error)
}

// Auth creates authentication middleware that validates bearer tokens
// and injects the resolved user into the request context. Every
// failure mode is a 401; the response never says which check failed.
func Auth(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				respondError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			ctx := r.Context()
			user, err := verifier.VerifyToken(ctx, parts[1])
			if err != nil {
				logger.Debug("token_verification_failed",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				respondError(w, http.StatusUnauthorized, "Could not validate credentials")
				return
			}

			ctx = context.WithValue(ctx, userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}
	_ = json.NewEncoder(w).Encode(response)
}
