package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultListColor is the color assigned to lists created without one
	DefaultListColor = "#3b82f6"
	// DefaultListIcon is the icon assigned to lists created without one
	DefaultListIcon = "📋"
)

// TaskList is a user-owned collection of tasks generated from one keyword.
// Items holds the root items of the built tree; it is populated by the
// service layer, not by storage reads.
type TaskList struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Keyword   string      `json:"keyword"`
	Color     string      `json:"color"`
	Icon      string      `json:"icon"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Items     []*TaskItem `json:"items"`
}
