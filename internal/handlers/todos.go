package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/nestodo/nestodo/internal/middleware"
	"github.com/nestodo/nestodo/internal/models"
	"github.com/nestodo/nestodo/internal/services/todos"
	"github.com/nestodo/nestodo/internal/storage"
	"github.com/nestodo/nestodo/internal/validation"
)

// TodoService is the slice of the todos service the handler needs.
type TodoService interface {
	GenerateList(ctx context.Context, userID uuid.UUID, keyword string, color, icon *string) (*models.TaskList, error)
	ExpandSubtasks(ctx context.Context, userID, itemID uuid.UUID) (*models.TaskItem, error)
	ParseAndCreate(ctx context.Context, userID, listID uuid.UUID, text string) (*models.TaskItem, error)
	QuickAdd(ctx context.Context, userID uuid.UUID, input todos.QuickAddInput) (*models.TaskItem, error)
	ListLists(ctx context.Context, userID uuid.UUID) ([]*models.TaskList, error)
	GetList(ctx context.Context, userID, listID uuid.UUID) (*models.TaskList, error)
	UpdateList(ctx context.Context, userID, listID uuid.UUID, update todos.ListUpdate) (*models.TaskList, error)
	DeleteList(ctx context.Context, userID, listID uuid.UUID) error
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, update todos.ItemUpdate) (*models.TaskItem, error)
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error
}

// TodoHandler handles task list and task item requests
type TodoHandler struct {
	todos TodoService
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(service TodoService) *TodoHandler {
	return &TodoHandler{todos: service}
}

// RegisterRoutes registers todo routes on the given router. The router
// should already carry the /todos prefix. Item routes are registered
// before the list wildcard so "items" never parses as a list id.
func (h *TodoHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/generate", h.GenerateList).Methods("POST")
	r.HandleFunc("/parse-and-create-item", h.ParseAndCreateItem).Methods("POST")
	r.HandleFunc("/items", h.QuickAddItem).Methods("POST")
	r.HandleFunc("/items/{item_id}/generate-subtasks", h.GenerateSubtasks).Methods("POST")
	r.HandleFunc("/items/{item_id}", h.UpdateItem).Methods("PUT")
	r.HandleFunc("/items/{item_id}", h.DeleteItem).Methods("DELETE")
	r.HandleFunc("", h.ListLists).Methods("GET")
	r.HandleFunc("/{list_id}", h.GetList).Methods("GET")
	r.HandleFunc("/{list_id}", h.UpdateList).Methods("PUT")
	r.HandleFunc("/{list_id}", h.DeleteList).Methods("DELETE")
}

const (
	// MaxKeywordLength is the maximum length for a list keyword
	MaxKeywordLength = 100
	// MaxDescriptionLength is the maximum length for an item description
	MaxDescriptionLength = 500
	// MaxParseTextLength is the maximum length for parse-and-create input
	MaxParseTextLength = 1000
)

// GenerateListRequest represents an AI list generation request
type GenerateListRequest struct {
	Keyword string  `json:"keyword" validate:"required,min=1,max=100"`
	Color   *string `json:"color,omitempty" validate:"omitempty,max=20"`
	Icon    *string `json:"icon,omitempty" validate:"omitempty,max=10"`
}

// QuickAddRequest represents a manual item creation request
type QuickAddRequest struct {
	Description string           `json:"description" validate:"required,min=1,max=500"`
	ListID      uuid.UUID        `json:"list_id" validate:"required"`
	Priority    *models.Priority `json:"priority,omitempty" validate:"omitempty,priority"`
	DueDate     *time.Time       `json:"due_date,omitempty"`
	ParentID    *uuid.UUID       `json:"parent_id,omitempty"`
}

// ParseAndCreateRequest represents a natural-language item request
type ParseAndCreateRequest struct {
	Text   string    `json:"text" validate:"required,min=1,max=1000"`
	ListID uuid.UUID `json:"list_id" validate:"required"`
}

// UpdateListRequest represents a partial list update
type UpdateListRequest struct {
	Keyword *string `json:"keyword,omitempty" validate:"omitempty,min=1,max=100"`
	Color   *string `json:"color,omitempty" validate:"omitempty,max=20"`
	Icon    *string `json:"icon,omitempty" validate:"omitempty,max=10"`
}

// UpdateItemRequest represents a partial item update. Date fields use
// explicit-null semantics: absent leaves the date alone, null clears it.
type UpdateItemRequest struct {
	Description  *string          `json:"description,omitempty" validate:"omitempty,min=1,max=500"`
	IsCompleted  *bool            `json:"is_completed,omitempty"`
	Order        *int             `json:"order,omitempty" validate:"omitempty,min=0"`
	Priority     *models.Priority `json:"priority,omitempty" validate:"omitempty,priority"`
	DueDate      *time.Time       `json:"due_date,omitempty"`
	ReminderDate *time.Time       `json:"reminder_date,omitempty"`
}

func (h *TodoHandler) user(w http.ResponseWriter, r *http.Request) *models.User {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
	}
	return user
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[name])
}

// respondServiceError maps domain errors to HTTP status codes.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondJSONError(w, http.StatusNotFound, "Not Found", "Resource not found")
	case errors.Is(err, todos.ErrEmptyText):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Text must not be empty")
	default:
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", fallback)
	}
}

// GenerateList creates a list seeded from an AI-generated outline
func (h *TodoHandler) GenerateList(w http.ResponseWriter, r *http.Request) {
	user := h.user(w, r)
	if user == nil {
		return
	}

	var req GenerateListRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Keyword = validation.SanitizeText(req.Keyword)
	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	list, err := h.todos.GenerateList(r.Context(), user.ID, req.Keyword, req.Color, req.Icon)
	if err != nil {
		respondServiceError(w, err, "Failed to generate list")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// GenerateSubtasks expands one item into AI-generated children
func (h *TodoHandler) GenerateSubtasks(w http.ResponseWriter, r *http.Request) {
	user := h.user(w, r)
	if user == nil {
		return
	}
	itemID, err := pathID(r, "item_id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid item ID")
		return
	}

	item, err := h.todos.ExpandSubtasks(r.Context(), user.ID, itemID)
	if err != nil {
		respondServiceError(w, err, "Failed to generate subtasks")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// ParseAndCreateItem turns a natural-language sentence into an item
func (h *TodoHandler) ParseAndCreateItem(w http.ResponseWriter, r *http.Request) {
	user := h.user(w, r)
	if user == nil {
		return
	}

	var req ParseAndCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Text = validation.SanitizeText(req.Text)
	if req.Text == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Text must not be empty")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.todos.ParseAndCreate(r.Context(), user.ID, req.ListID, req.Text)
	if err != nil {
		respondServiceError(w, err, "Failed to create item")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// QuickAddItem creates an item without AI involvement
func (h *TodoHandler) QuickAddItem(w http.ResponseWriter, r *http.Request) {
	user := h.user(w, r)
	if user == nil {
		return
	}

	var req QuickAddRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Description = validation.SanitizeText(req.Description)
	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	input := todos.QuickAddInput{
		ListID:      req.ListID,
		Description: req.Description,
		DueDate:     req.DueDate,
		ParentID:    req.ParentID,
	}
	if req.Priority != nil {
		input.Priority = *req.Priority
	}

	item, err := h.todos.QuickAdd(r.Context(), user.ID, input)
	if err != nil {
		respondServiceError(w, err, "Failed to create item")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// ListLists returns every list the user owns, trees included
func (h *TodoHandler) ListLists(w http.ResponseWriter, r *http.Request) {
	user := h.user(w, r)
	if user == nil {
		return
	}

	lists, err := h.todos.ListLists(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, err, "Failed to retrieve lists")
		return
	}
	respondJSON(w, http.StatusOK, lists)
}

// GetList returns one list with its item tree
func (h *TodoHandler) GetList(w http.ResponseWriter, r *http.Request) {
	user := h.user(w, r)
	if user == nil {
		return
	}
	listID, err := pathID(r, "list_id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid list ID")
		return
	}

	list, err := h.todos.GetList(r.Context(), user.ID, listID)
	if err != nil {
		respondServiceError(w, err, "Failed to retrieve list")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// UpdateList partially updates a list
func (h *TodoHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	user := h.user(w, r)
	if user == nil {
		return
	}
	listID, err := pathID(r, "list_id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid list ID")
		return
	}

	var req UpdateListRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	list, err := h.todos.UpdateList(r.Context(), user.ID, listID, todos.ListUpdate{
		Keyword: req.Keyword,
		Color:   req.Color,
		Icon:    req.Icon,
	})
	if err != nil {
		respondServiceError(w, err, "Failed to update list")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// DeleteList deletes a list and every item in it
func (h *TodoHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	user := h.user(w, r)
	if user == nil {
		return
	}
	listID, err := pathID(r, "list_id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid list ID")
		return
	}

	if err := h.todos.DeleteList(r.Context(), user.ID, listID); err != nil {
		respondServiceError(w, err, "Failed to delete list")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateItem partially updates an item
func (h *TodoHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user := h.user(w, r)
	if user == nil {
		return
	}
	itemID, err := pathID(r, "item_id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid item ID")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	var req UpdateItemRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	// A second pass over the raw body distinguishes a date sent as
	// null (clear it) from one not sent at all (leave it).
	var present map[string]json.RawMessage
	if err := json.Unmarshal(body, &present); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	update := todos.ItemUpdate{
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		Order:       req.Order,
		Priority:    req.Priority,
	}
	if _, ok := present["due_date"]; ok {
		due := req.DueDate
		update.DueDate = &due
	}
	if _, ok := present["reminder_date"]; ok {
		reminder := req.ReminderDate
		update.ReminderDate = &reminder
	}

	item, err := h.todos.UpdateItem(r.Context(), user.ID, itemID, update)
	if err != nil {
		respondServiceError(w, err, "Failed to update item")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// DeleteItem deletes an item and its whole subtree
func (h *TodoHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	user := h.user(w, r)
	if user == nil {
		return
	}
	itemID, err := pathID(r, "item_id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid item ID")
		return
	}

	if err := h.todos.DeleteItem(r.Context(), user.ID, itemID); err != nil {
		respondServiceError(w, err, "Failed to delete item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
