package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nestodo/nestodo/internal/models"
	"github.com/nestodo/nestodo/internal/storage"
)

// CreateList inserts a new task list.
func (s *Store) CreateList(ctx context.Context, list *models.TaskList) error {
	query := `
		INSERT INTO todo_lists (id, user_id, keyword, color, icon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	return s.withWriteRetry(ctx, "create_list", func() error {
		err := s.db.QueryRowContext(ctx, query,
			list.ID,
			list.UserID,
			list.Keyword,
			list.Color,
			list.Icon,
			now,
			now,
		).Scan(&list.CreatedAt, &list.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create list: %w", err)
		}
		return nil
	})
}

// GetList retrieves a task list by ID. Items are not populated here;
// the service layer builds the tree from ItemsByList.
func (s *Store) GetList(ctx context.Context, id uuid.UUID) (*models.TaskList, error) {
	query := `
		SELECT id, user_id, keyword, color, icon, created_at, updated_at
		FROM todo_lists
		WHERE id = $1
	`

	list := &models.TaskList{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&list.ID,
		&list.UserID,
		&list.Keyword,
		&list.Color,
		&list.Icon,
		&list.CreatedAt,
		&list.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list: %w", err)
	}
	return list, nil
}

// ListsByOwner retrieves all task lists owned by a user, newest first.
func (s *Store) ListsByOwner(ctx context.Context, userID uuid.UUID) ([]*models.TaskList, error) {
	query := `
		SELECT id, user_id, keyword, color, icon, created_at, updated_at
		FROM todo_lists
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}
	defer rows.Close()

	var lists []*models.TaskList
	for rows.Next() {
		list := &models.TaskList{}
		err := rows.Scan(
			&list.ID,
			&list.UserID,
			&list.Keyword,
			&list.Color,
			&list.Icon,
			&list.CreatedAt,
			&list.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lists: %w", err)
	}
	return lists, nil
}

// UpdateList updates an existing task list.
func (s *Store) UpdateList(ctx context.Context, list *models.TaskList) error {
	query := `
		UPDATE todo_lists
		SET keyword = $2, color = $3, icon = $4, updated_at = $5
		WHERE id = $1
		RETURNING updated_at
	`

	now := time.Now()
	return s.withWriteRetry(ctx, "update_list", func() error {
		err := s.db.QueryRowContext(ctx, query,
			list.ID,
			list.Keyword,
			list.Color,
			list.Icon,
			now,
		).Scan(&list.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("list: %w", storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to update list: %w", err)
		}
		return nil
	})
}

// DeleteList deletes a task list; the FK cascade removes every item in
// the list in the same statement.
func (s *Store) DeleteList(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM todo_lists WHERE id = $1`

	return s.withWriteRetry(ctx, "delete_list", func() error {
		result, err := s.db.ExecContext(ctx, query, id)
		if err != nil {
			return fmt.Errorf("failed to delete list: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("list: %w", storage.ErrNotFound)
		}
		return nil
	})
}
