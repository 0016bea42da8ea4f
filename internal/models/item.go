package models

import (
	"time"

	"github.com/google/uuid"
)

// Priority represents the urgency of a task item
type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// TaskItem is one task node, optionally nested under a parent item.
// Order ranks an item among its siblings; it is unique per sibling
// group, not globally. Children is populated by the tree builder and is
// always non-nil in API responses.
type TaskItem struct {
	ID           uuid.UUID   `json:"id"`
	ListID       uuid.UUID   `json:"list_id"`
	ParentID     *uuid.UUID  `json:"parent_id,omitempty"`
	Description  string      `json:"description"`
	IsCompleted  bool        `json:"is_completed"`
	Order        int         `json:"order"`
	Priority     Priority    `json:"priority"`
	DueDate      *time.Time  `json:"due_date,omitempty"`
	ReminderDate *time.Time  `json:"reminder_date,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Children     []*TaskItem `json:"children"`
}
