package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nestodo/nestodo/internal/models"
)

type fakeVerifier struct {
	user     *models.User
	err      error
	gotToken string
}

func (f *fakeVerifier) VerifyToken(_ context.Context, token string) (*models.User, error) {
	f.gotToken = token
	return f.user, f.err
}

func TestAuth(t *testing.T) {
	t.Parallel()

	okHandler := func(t *testing.T, wantUser *models.User) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r)
			if user != wantUser {
				t.Errorf("context user = %v, want %v", user, wantUser)
			}
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("valid token passes and injects user", func(t *testing.T) {
		t.Parallel()
		user := &models.User{ID: uuid.New(), Username: "alice"}
		verifier := &fakeVerifier{user: user}
		handler := Auth(verifier, zap.NewNop())(okHandler(t, user))

		req := httptest.NewRequest("GET", "/todos", nil)
		req.Header.Set("Authorization", "Bearer some.token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if verifier.gotToken != "some.token" {
			t.Errorf("token passed to verifier = %q", verifier.gotToken)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		t.Parallel()
		handler := Auth(&fakeVerifier{}, zap.NewNop())(okHandler(t, nil))

		req := httptest.NewRequest("GET", "/todos", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		t.Parallel()
		handler := Auth(&fakeVerifier{}, zap.NewNop())(okHandler(t, nil))

		req := httptest.NewRequest("GET", "/todos", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("verifier rejection", func(t *testing.T) {
		t.Parallel()
		verifier := &fakeVerifier{err: errors.New("expired")}
		handler := Auth(verifier, zap.NewNop())(okHandler(t, nil))

		req := httptest.NewRequest("GET", "/todos", nil)
		req.Header.Set("Authorization", "Bearer expired.token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("lowercase bearer accepted", func(t *testing.T) {
		t.Parallel()
		user := &models.User{ID: uuid.New()}
		handler := Auth(&fakeVerifier{user: user}, zap.NewNop())(okHandler(t, user))

		req := httptest.NewRequest("GET", "/todos", nil)
		req.Header.Set("Authorization", "bearer some.token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

func TestUserFromContextWithoutAuth(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest("GET", "/", nil)
	if user := UserFromContext(req); user != nil {
		t.Errorf("expected nil user, got %v", user)
	}
}
