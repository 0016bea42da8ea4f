package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nestodo/nestodo/internal/models"
	"github.com/nestodo/nestodo/internal/services/auth"
	"github.com/nestodo/nestodo/internal/validation"
)

// AuthService is the slice of the auth service the handler needs.
type AuthService interface {
	Register(ctx context.Context, username, password string, email *string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

// AuthHandler handles registration and login requests
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{auth: service}
}

// RegisterRoutes registers auth routes on the given router. The router
// should already carry the /auth prefix.
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Password string  `json:"password" validate:"required,min=6,max=128"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

// RegisterResponse is the public view of a created account
type RegisterResponse struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
}

// Register creates a new user account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Username already registered")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create user")
		return
	}

	respondJSON(w, http.StatusCreated, RegisterResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
	})
}

// TokenResponse is the login response body
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges form-encoded credentials for a bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid form body")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		respondJSONError(w, http.StatusUnprocessableEntity, "Unprocessable Entity", "username and password are required")
		return
	}

	token, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Incorrect username or password")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to log in")
		return
	}

	respondJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
