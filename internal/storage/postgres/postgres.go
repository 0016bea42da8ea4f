// Package postgres implements storage.Store on PostgreSQL using
// database/sql and lib/pq. Cascading deletes are delegated to the
// schema's ON DELETE CASCADE foreign keys, so removing a list or an
// item removes its whole subtree in one statement.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/nestodo/nestodo/internal/storage"
	"go.uber.org/zap"
)

// Store is the PostgreSQL-backed storage implementation.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

var _ storage.Store = (*Store)(nil)

// New opens a connection pool against databaseURL and verifies it.
func New(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, log: zap.NewNop()}, nil
}

// SetLogger attaches a logger for retry diagnostics.
func (s *Store) SetLogger(log *zap.Logger) {
	if log != nil {
		s.log = log
	}
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Schema is the DDL for all tables. Applied by the configure CLI's
// migrate command; every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	hashed_password TEXT NOT NULL,
	email TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS todo_lists (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	keyword TEXT NOT NULL,
	color TEXT NOT NULL DEFAULT '#3b82f6',
	icon TEXT NOT NULL DEFAULT '📋',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS todo_items (
	id UUID PRIMARY KEY,
	list_id UUID NOT NULL REFERENCES todo_lists(id) ON DELETE CASCADE,
	parent_id UUID REFERENCES todo_items(id) ON DELETE CASCADE,
	description TEXT NOT NULL,
	is_completed BOOLEAN NOT NULL DEFAULT FALSE,
	item_order INTEGER NOT NULL,
	priority TEXT NOT NULL DEFAULT 'none',
	due_date TIMESTAMPTZ,
	reminder_date TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_todo_lists_user_id ON todo_lists(user_id);
CREATE INDEX IF NOT EXISTS idx_todo_items_list_id ON todo_items(list_id);
CREATE INDEX IF NOT EXISTS idx_todo_items_parent_id ON todo_items(parent_id);
`

// Migrate applies the schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
