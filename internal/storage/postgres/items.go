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

const itemColumns = `id, list_id, parent_id, description, is_completed, item_order, priority, due_date, reminder_date, created_at, updated_at`

// CreateItem inserts a new task item.
func (s *Store) CreateItem(ctx context.Context, item *models.TaskItem) error {
	query := `
		INSERT INTO todo_items (id, list_id, parent_id, description, is_completed, item_order, priority, due_date, reminder_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	return s.withWriteRetry(ctx, "create_item", func() error {
		err := s.db.QueryRowContext(ctx, query,
			item.ID,
			item.ListID,
			item.ParentID,
			item.Description,
			item.IsCompleted,
			item.Order,
			item.Priority,
			item.DueDate,
			item.ReminderDate,
			now,
			now,
		).Scan(&item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}
		return nil
	})
}

// GetItem retrieves a task item by ID.
func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*models.TaskItem, error) {
	query := `SELECT ` + itemColumns + ` FROM todo_items WHERE id = $1`

	item, err := scanItem(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// ItemsByList retrieves the flat snapshot of every item in a list. The
// tree builder orders siblings afterwards; the fetch order only breaks
// equal-order ties, so creation order is used.
func (s *Store) ItemsByList(ctx context.Context, listID uuid.UUID) ([]*models.TaskItem, error) {
	query := `SELECT ` + itemColumns + ` FROM todo_items WHERE list_id = $1 ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*models.TaskItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

// CountChildren reports the number of direct children under parentID
// within a list; parentID nil counts root items.
func (s *Store) CountChildren(ctx context.Context, listID uuid.UUID, parentID *uuid.UUID) (int, error) {
	var count int
	var err error
	if parentID == nil {
		query := `SELECT COUNT(*) FROM todo_items WHERE list_id = $1 AND parent_id IS NULL`
		err = s.db.QueryRowContext(ctx, query, listID).Scan(&count)
	} else {
		query := `SELECT COUNT(*) FROM todo_items WHERE list_id = $1 AND parent_id = $2`
		err = s.db.QueryRowContext(ctx, query, listID, *parentID).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count children: %w", err)
	}
	return count, nil
}

// UpdateItem updates an existing task item.
func (s *Store) UpdateItem(ctx context.Context, item *models.TaskItem) error {
	query := `
		UPDATE todo_items
		SET description = $2, is_completed = $3, item_order = $4, priority = $5, due_date = $6, reminder_date = $7, updated_at = $8
		WHERE id = $1
		RETURNING updated_at
	`

	now := time.Now()
	return s.withWriteRetry(ctx, "update_item", func() error {
		err := s.db.QueryRowContext(ctx, query,
			item.ID,
			item.Description,
			item.IsCompleted,
			item.Order,
			item.Priority,
			item.DueDate,
			item.ReminderDate,
			now,
		).Scan(&item.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("item: %w", storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
		return nil
	})
}

// DeleteItem deletes a task item; the self-referencing FK cascade
// removes all descendants transitively.
func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM todo_items WHERE id = $1`

	return s.withWriteRetry(ctx, "delete_item", func() error {
		result, err := s.db.ExecContext(ctx, query, id)
		if err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("item: %w", storage.ErrNotFound)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.TaskItem, error) {
	item := &models.TaskItem{}
	var parentID sql.NullString
	var dueDate, reminderDate sql.NullTime

	err := row.Scan(
		&item.ID,
		&item.ListID,
		&parentID,
		&item.Description,
		&item.IsCompleted,
		&item.Order,
		&item.Priority,
		&dueDate,
		&reminderDate,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		pid, err := uuid.Parse(parentID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid parent id %q: %w", parentID.String, err)
		}
		item.ParentID = &pid
	}
	if dueDate.Valid {
		item.DueDate = &dueDate.Time
	}
	if reminderDate.Valid {
		item.ReminderDate = &reminderDate.Time
	}
	return item, nil
}
