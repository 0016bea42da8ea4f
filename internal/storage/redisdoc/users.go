package redisdoc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nestodo/nestodo/internal/models"
	"github.com/nestodo/nestodo/internal/storage"
	"github.com/redis/go-redis/v9"
)

// CreateUser stores a new user. The username index key is claimed with
// SETNX, so a concurrent registration of the same name loses cleanly.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	ok, err := s.client.SetNX(ctx, usernameKey(user.Username), user.ID.String(), 0).Result()
	if err != nil {
		return fmt.Errorf("failed to claim username: %w", err)
	}
	if !ok {
		return fmt.Errorf("username %q: %w", user.Username, storage.ErrDuplicate)
	}

	if err := s.setDoc(ctx, nil, userKey(user.ID), "user", userToDoc(user)); err != nil {
		// Release the claim so the name is not burned by a half write.
		_ = s.client.Del(ctx, usernameKey(user.Username)).Err()
		return err
	}
	return nil
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var doc userDoc
	if err := s.getDoc(ctx, userKey(id), "user", &doc); err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

// GetUserByUsername retrieves a user via the username index.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	idStr, err := s.client.Get(ctx, usernameKey(username)).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("user: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve username: %w", err)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt username index for %q: %w", username, err)
	}
	return s.GetUserByID(ctx, id)
}
