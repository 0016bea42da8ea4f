// Package auth implements local username/password authentication with
// bcrypt password hashes and HS256-signed bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nestodo/nestodo/internal/models"
	"github.com/nestodo/nestodo/internal/storage"
)

// DefaultTokenTTL is the access token lifetime used when the
// configuration does not override it.
const DefaultTokenTTL = 30 * time.Minute

var (
	// ErrInvalidCredentials is returned when the username or password
	// does not match a stored user.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already registered")
	// ErrInvalidToken is returned for missing, malformed, expired or
	// otherwise unverifiable tokens.
	ErrInvalidToken = errors.New("could not validate credentials")
)

// Service issues and verifies access tokens and manages user accounts.
type Service struct {
	users    storage.UserStore
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
}

// New creates an auth service. tokenTTL <= 0 selects DefaultTokenTTL.
func New(users storage.UserStore, secret string, tokenTTL time.Duration, logger *zap.Logger) *Service {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Register creates a new user account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, password string, email *string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:             uuid.New(),
		Username:       username,
		HashedPassword: string(hash),
		Email:          email,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user_registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)
	return user, nil
}

// Login checks the credentials and returns a signed access token.
// Unknown usernames and wrong passwords produce the same error so the
// response never reveals which half failed.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", err
	}

	s.logger.Info("user_logged_in", zap.String("user_id", user.ID.String()))
	return token, nil
}

func (s *Service) issueToken(user *models.User) (string, error) {
	now := time.Now()
	tok, err := jwt.NewBuilder().
		Subject(user.ID.String()).
		Claim("username", user.Username).
		IssuedAt(now).
		Expiration(now.Add(s.tokenTTL)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), nil
}

// VerifyToken validates a signed token and loads the user it names.
func (s *Service) VerifyToken(ctx context.Context, tokenString string) (*models.User, error) {
	tok, err := jwt.Parse([]byte(tokenString), jwt.WithKey(jwa.HS256, s.secret), jwt.WithValidate(true))
	if err != nil {
		return nil, ErrInvalidToken
	}

	sub := tok.Subject()
	if sub == "" {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}
