// Package storage defines the backend-neutral persistence contract.
// Two implementations exist with identical semantics: a relational one
// on PostgreSQL (postgres) and a document one on Redis (redisdoc); the
// server selects between them from configuration at startup.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nestodo/nestodo/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist. The service
	// layer also maps "exists but not owned by the caller" to this error
	// so the API never distinguishes the two cases.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated
	// (currently only usernames).
	ErrDuplicate = errors.New("duplicate record")
)

// UserStore handles user records.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// ListStore handles task list records. DeleteList cascades to every
// item in the list.
type ListStore interface {
	CreateList(ctx context.Context, list *models.TaskList) error
	GetList(ctx context.Context, id uuid.UUID) (*models.TaskList, error)
	ListsByOwner(ctx context.Context, userID uuid.UUID) ([]*models.TaskList, error)
	UpdateList(ctx context.Context, list *models.TaskList) error
	DeleteList(ctx context.Context, id uuid.UUID) error
}

// ItemStore handles task item records. ItemsByList returns the flat,
// unordered snapshot the tree builder consumes. DeleteItem cascades to
// all descendants of the item. CountChildren reports the number of
// direct children under parentID (nil for root items) and is used to
// assign the next sibling order index.
type ItemStore interface {
	CreateItem(ctx context.Context, item *models.TaskItem) error
	GetItem(ctx context.Context, id uuid.UUID) (*models.TaskItem, error)
	ItemsByList(ctx context.Context, listID uuid.UUID) ([]*models.TaskItem, error)
	CountChildren(ctx context.Context, listID uuid.UUID, parentID *uuid.UUID) (int, error)
	UpdateItem(ctx context.Context, item *models.TaskItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

// Store is the full persistence backend. Implementations are
// constructed explicitly at startup and closed on shutdown; there is no
// lazily-initialized shared client.
type Store interface {
	UserStore
	ListStore
	ItemStore

	Ping(ctx context.Context) error
	Close() error
}
