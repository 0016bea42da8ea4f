package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/nestodo/nestodo/internal/models"
	"github.com/nestodo/nestodo/internal/services/auth"
)

type fakeAuthService struct {
	registerErr error
	loginToken  string
	loginErr    error
	gotUsername string
	gotPassword string
}

func (f *fakeAuthService) Register(_ context.Context, username, password string, email *string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: uuid.New(), Username: username, Email: email}, nil
}

func (f *fakeAuthService) Login(_ context.Context, username, password string) (string, error) {
	f.gotUsername = username
	f.gotPassword = password
	return f.loginToken, f.loginErr
}

func newAuthRouter(service AuthService) *mux.Router {
	r := mux.NewRouter()
	NewAuthHandler(service).RegisterRoutes(r.PathPrefix("/auth").Subrouter())
	return r
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		router := newAuthRouter(&fakeAuthService{})

		body := `{"username": "alice", "password": "s3cret1"}`
		req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				Username string `json:"username"`
			} `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response JSON: %v", err)
		}
		if !resp.Success || resp.Data.Username != "alice" {
			t.Errorf("unexpected response: %s", rec.Body.String())
		}
	})

	t.Run("validation failure returns 422 with field detail", func(t *testing.T) {
		t.Parallel()
		router := newAuthRouter(&fakeAuthService{})

		body := `{"username": "ab", "password": "x"}`
		req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
		var resp struct {
			Detail []struct {
				Field string `json:"field"`
			} `json:"detail"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response JSON: %v", err)
		}
		if len(resp.Detail) == 0 {
			t.Error("expected field-level detail")
		}
	})

	t.Run("duplicate username returns 400", func(t *testing.T) {
		t.Parallel()
		router := newAuthRouter(&fakeAuthService{registerErr: auth.ErrUsernameTaken})

		body := `{"username": "alice", "password": "s3cret1"}`
		req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		t.Parallel()
		router := newAuthRouter(&fakeAuthService{})

		req := httptest.NewRequest("POST", "/auth/register", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	postForm := func(router http.Handler, form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		service := &fakeAuthService{loginToken: "signed.jwt.token"}
		router := newAuthRouter(service)

		rec := postForm(router, url.Values{"username": {"alice"}, "password": {"pw"}})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Data TokenResponse `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response JSON: %v", err)
		}
		if resp.Data.AccessToken != "signed.jwt.token" || resp.Data.TokenType != "bearer" {
			t.Errorf("unexpected token response: %+v", resp.Data)
		}
		if service.gotUsername != "alice" || service.gotPassword != "pw" {
			t.Errorf("credentials not forwarded: %q/%q", service.gotUsername, service.gotPassword)
		}
	})

	t.Run("bad credentials return 401", func(t *testing.T) {
		t.Parallel()
		router := newAuthRouter(&fakeAuthService{loginErr: auth.ErrInvalidCredentials})

		rec := postForm(router, url.Values{"username": {"alice"}, "password": {"bad"}})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("missing fields return 422", func(t *testing.T) {
		t.Parallel()
		router := newAuthRouter(&fakeAuthService{})

		rec := postForm(router, url.Values{"username": {"alice"}})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})
}
