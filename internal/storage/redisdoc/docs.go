package redisdoc

import (
	"time"

	"github.com/google/uuid"
	"github.com/nestodo/nestodo/internal/models"
)

// Stored document shapes. These deliberately exclude the in-memory
// Children slice: the tree is rebuilt from flat records on every read.

type userDoc struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"hashed_password"`
	Email          *string   `json:"email,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (d *userDoc) toModel() *models.User {
	return &models.User{
		ID:             d.ID,
		Username:       d.Username,
		HashedPassword: d.HashedPassword,
		Email:          d.Email,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func userToDoc(u *models.User) *userDoc {
	return &userDoc{
		ID:             u.ID,
		Username:       u.Username,
		HashedPassword: u.HashedPassword,
		Email:          u.Email,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

type listDoc struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Keyword   string    `json:"keyword"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *listDoc) toModel() *models.TaskList {
	return &models.TaskList{
		ID:        d.ID,
		UserID:    d.UserID,
		Keyword:   d.Keyword,
		Color:     d.Color,
		Icon:      d.Icon,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func listToDoc(l *models.TaskList) *listDoc {
	return &listDoc{
		ID:        l.ID,
		UserID:    l.UserID,
		Keyword:   l.Keyword,
		Color:     l.Color,
		Icon:      l.Icon,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

type itemDoc struct {
	ID           uuid.UUID       `json:"id"`
	ListID       uuid.UUID       `json:"list_id"`
	ParentID     *uuid.UUID      `json:"parent_id,omitempty"`
	Description  string          `json:"description"`
	IsCompleted  bool            `json:"is_completed"`
	Order        int             `json:"order"`
	Priority     models.Priority `json:"priority"`
	DueDate      *time.Time      `json:"due_date,omitempty"`
	ReminderDate *time.Time      `json:"reminder_date,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (d *itemDoc) toModel() *models.TaskItem {
	return &models.TaskItem{
		ID:           d.ID,
		ListID:       d.ListID,
		ParentID:     d.ParentID,
		Description:  d.Description,
		IsCompleted:  d.IsCompleted,
		Order:        d.Order,
		Priority:     d.Priority,
		DueDate:      d.DueDate,
		ReminderDate: d.ReminderDate,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func itemToDoc(i *models.TaskItem) *itemDoc {
	return &itemDoc{
		ID:           i.ID,
		ListID:       i.ListID,
		ParentID:     i.ParentID,
		Description:  i.Description,
		IsCompleted:  i.IsCompleted,
		Order:        i.Order,
		Priority:     i.Priority,
		DueDate:      i.DueDate,
		ReminderDate: i.ReminderDate,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}
