// Package todos implements the task-list domain: AI-seeded list
// generation, subtask expansion, natural-language item creation, and
// CRUD over the nested task tree. Every list-scoped operation resolves
// ownership first; a list or item the caller does not own is
// indistinguishable from one that does not exist.
package todos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nestodo/nestodo/internal/models"
	"github.com/nestodo/nestodo/internal/services/ai"
	"github.com/nestodo/nestodo/internal/storage"
	"github.com/nestodo/nestodo/internal/tree"
)

// maxTreeDepth bounds upward ancestor walks so a corrupted parent
// chain with a cycle terminates instead of spinning.
const maxTreeDepth = 100

// ErrEmptyText is returned when parse-and-create receives blank input.
var ErrEmptyText = errors.New("text must not be empty")

// Service coordinates storage, the tree builder, and the AI provider.
// The provider may be nil, in which case fixed fallback content is used
// for every generation request.
type Service struct {
	store  storage.Store
	ai     ai.Provider
	logger *zap.Logger
}

// New creates a todos service.
func New(store storage.Store, provider ai.Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, ai: provider, logger: logger}
}

// ListUpdate carries the optional fields of a partial list update.
type ListUpdate struct {
	Keyword *string
	Color   *string
	Icon    *string
}

// ItemUpdate carries the optional fields of a partial item update.
// DueDate and ReminderDate distinguish "not sent" (field nil) from
// "clear the date" (field set, inner pointer nil).
type ItemUpdate struct {
	Description  *string
	IsCompleted  *bool
	Order        *int
	Priority     *models.Priority
	DueDate      **time.Time
	ReminderDate **time.Time
}

// QuickAddInput is a manually created item.
type QuickAddInput struct {
	ListID      uuid.UUID
	Description string
	Priority    models.Priority
	DueDate     *time.Time
	ParentID    *uuid.UUID
}

// GenerateList creates a new list for the keyword and seeds it with an
// AI-generated outline. AI failure degrades to a fixed outline; the
// operation only fails on storage errors.
func (s *Service) GenerateList(ctx context.Context, userID uuid.UUID, keyword string, color, icon *string) (*models.TaskList, error) {
	list := &models.TaskList{
		ID:      uuid.New(),
		UserID:  userID,
		Keyword: keyword,
		Color:   models.DefaultListColor,
		Icon:    models.DefaultListIcon,
	}
	if color != nil && *color != "" {
		list.Color = *color
	}
	if icon != nil && *icon != "" {
		list.Icon = *icon
	}

	if err := s.store.CreateList(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}

	outline := s.generateOutline(ctx, keyword)
	if err := s.insertOutline(ctx, list.ID, nil, outline, 0); err != nil {
		return nil, err
	}

	s.logger.Info("list_generated",
		zap.String("list_id", list.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("keyword", keyword),
	)
	return s.loadListTree(ctx, list)
}

func (s *Service) generateOutline(ctx context.Context, keyword string) []ai.OutlineNode {
	if s.ai == nil {
		return ai.FallbackOutline(keyword)
	}
	outline, err := s.ai.GenerateOutline(ctx, keyword)
	if err != nil || len(outline) == 0 {
		s.logger.Warn("outline_generation_failed",
			zap.String("keyword", keyword),
			zap.Error(err),
		)
		return ai.FallbackOutline(keyword)
	}
	return outline
}

// insertOutline persists a nested outline under parentID in pre-order.
// startOrder offsets sibling indexes past the parent's existing
// children.
func (s *Service) insertOutline(ctx context.Context, listID uuid.UUID, parentID *uuid.UUID, nodes []ai.OutlineNode, startOrder int) error {
	for i, node := range nodes {
		item := &models.TaskItem{
			ID:          uuid.New(),
			ListID:      listID,
			ParentID:    parentID,
			Description: node.Description,
			Order:       startOrder + i,
			Priority:    models.PriorityNone,
		}
		if err := s.store.CreateItem(ctx, item); err != nil {
			return fmt.Errorf("failed to insert outline item: %w", err)
		}
		if len(node.Children) > 0 {
			id := item.ID
			if err := s.insertOutline(ctx, listID, &id, node.Children, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExpandSubtasks generates child tasks for an item. The AI receives the
// list keyword and the ancestor descriptions from root to the item; on
// AI failure fixed subtasks are inserted instead. Returns the item with
// its children populated.
func (s *Service) ExpandSubtasks(ctx context.Context, userID, itemID uuid.UUID) (*models.TaskItem, error) {
	item, list, err := s.guardItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	ancestors, err := s.ancestorPath(ctx, item)
	if err != nil {
		return nil, err
	}

	subtasks := s.generateSubtasks(ctx, item.Description, list.Keyword, ancestors)

	existing, err := s.store.CountChildren(ctx, item.ListID, &item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count children: %w", err)
	}

	nodes := make([]ai.OutlineNode, 0, len(subtasks))
	for _, sub := range subtasks {
		nodes = append(nodes, ai.OutlineNode{Description: sub})
	}
	if err := s.insertOutline(ctx, item.ListID, &item.ID, nodes, existing); err != nil {
		return nil, err
	}

	s.logger.Info("subtasks_generated",
		zap.String("item_id", item.ID.String()),
		zap.Int("count", len(subtasks)),
	)
	return s.itemWithChildren(ctx, item)
}

func (s *Service) generateSubtasks(ctx context.Context, task, keyword string, ancestors []string) []string {
	if s.ai == nil {
		return ai.FallbackSubtasks(task)
	}
	subtasks, err := s.ai.GenerateSubtasks(ctx, task, keyword, ancestors)
	if err != nil || len(subtasks) == 0 {
		s.logger.Warn("subtask_generation_failed",
			zap.String("task", task),
			zap.Error(err),
		)
		return ai.FallbackSubtasks(task)
	}
	return subtasks
}

// ancestorPath returns the chain of descriptions from the root ancestor
// down to the item itself. The walk keeps a visited set and a depth
// bound so a cyclic parent chain is reported instead of looping.
func (s *Service) ancestorPath(ctx context.Context, item *models.TaskItem) ([]string, error) {
	path := []string{item.Description}
	visited := map[uuid.UUID]bool{item.ID: true}

	current := item
	for depth := 0; current.ParentID != nil; depth++ {
		if depth >= maxTreeDepth {
			return nil, fmt.Errorf("ancestor chain deeper than %d levels at item %s", maxTreeDepth, item.ID)
		}
		if visited[*current.ParentID] {
			return nil, fmt.Errorf("cycle in parent chain at item %s", *current.ParentID)
		}
		parent, err := s.store.GetItem(ctx, *current.ParentID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Parent deleted mid-walk: treat the chain as ending here.
				break
			}
			return nil, fmt.Errorf("failed to load ancestor: %w", err)
		}
		visited[parent.ID] = true
		path = append([]string{parent.Description}, path...)
		current = parent
	}
	return path, nil
}

// ParseAndCreate turns a free-form sentence into a structured root item
// in the given list. If the AI cannot parse it, the raw sentence
// becomes a plain item with no date and no priority.
func (s *Service) ParseAndCreate(ctx context.Context, userID, listID uuid.UUID, text string) (*models.TaskItem, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if _, err := s.guardList(ctx, userID, listID); err != nil {
		return nil, err
	}

	parsed := s.parseTask(ctx, text)

	order, err := s.store.CountChildren(ctx, listID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count root items: %w", err)
	}

	item := &models.TaskItem{
		ID:          uuid.New(),
		ListID:      listID,
		Description: parsed.Description,
		Order:       order,
		Priority:    models.Priority(parsed.Priority),
		DueDate:     parsed.DueDate,
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	item.Children = []*models.TaskItem{}
	return item, nil
}

func (s *Service) parseTask(ctx context.Context, text string) *ai.ParsedTask {
	fallback := &ai.ParsedTask{
		Description: strings.TrimSpace(text),
		Priority:    string(models.PriorityNone),
	}
	if s.ai == nil {
		return fallback
	}
	parsed, err := s.ai.ParseTask(ctx, text)
	if err != nil || parsed == nil || parsed.Description == "" {
		s.logger.Warn("task_parse_failed", zap.Error(err))
		return fallback
	}
	return parsed
}

// QuickAdd creates an item without any AI involvement. A parent, when
// given, must exist and belong to the same list.
func (s *Service) QuickAdd(ctx context.Context, userID uuid.UUID, input QuickAddInput) (*models.TaskItem, error) {
	if _, err := s.guardList(ctx, userID, input.ListID); err != nil {
		return nil, err
	}
	if input.ParentID != nil {
		parent, err := s.store.GetItem(ctx, *input.ParentID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("parent item: %w", storage.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to load parent item: %w", err)
		}
		if parent.ListID != input.ListID {
			return nil, fmt.Errorf("parent item: %w", storage.ErrNotFound)
		}
	}

	order, err := s.store.CountChildren(ctx, input.ListID, input.ParentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count siblings: %w", err)
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityNone
	}
	item := &models.TaskItem{
		ID:          uuid.New(),
		ListID:      input.ListID,
		ParentID:    input.ParentID,
		Description: input.Description,
		Order:       order,
		Priority:    priority,
		DueDate:     input.DueDate,
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	item.Children = []*models.TaskItem{}
	return item, nil
}

// ListLists returns every list owned by the user, each with its full
// item tree.
func (s *Service) ListLists(ctx context.Context, userID uuid.UUID) ([]*models.TaskList, error) {
	lists, err := s.store.ListsByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lists: %w", err)
	}
	for _, list := range lists {
		if _, err := s.loadListTree(ctx, list); err != nil {
			return nil, err
		}
	}
	if lists == nil {
		lists = []*models.TaskList{}
	}
	return lists, nil
}

// GetList returns one owned list with its full item tree.
func (s *Service) GetList(ctx context.Context, userID, listID uuid.UUID) (*models.TaskList, error) {
	list, err := s.guardList(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	return s.loadListTree(ctx, list)
}

// UpdateList applies a partial update to an owned list.
func (s *Service) UpdateList(ctx context.Context, userID, listID uuid.UUID, update ListUpdate) (*models.TaskList, error) {
	list, err := s.guardList(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if update.Keyword != nil {
		list.Keyword = *update.Keyword
	}
	if update.Color != nil {
		list.Color = *update.Color
	}
	if update.Icon != nil {
		list.Icon = *update.Icon
	}
	if err := s.store.UpdateList(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to update list: %w", err)
	}
	return s.loadListTree(ctx, list)
}

// DeleteList removes an owned list and all its items.
func (s *Service) DeleteList(ctx context.Context, userID, listID uuid.UUID) error {
	if _, err := s.guardList(ctx, userID, listID); err != nil {
		return err
	}
	if err := s.store.DeleteList(ctx, listID); err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	s.logger.Info("list_deleted",
		zap.String("list_id", listID.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}

// GetItem returns one owned item with its children populated.
func (s *Service) GetItem(ctx context.Context, userID, itemID uuid.UUID) (*models.TaskItem, error) {
	item, _, err := s.guardItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	return s.itemWithChildren(ctx, item)
}

// UpdateItem applies a partial update to an owned item.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, update ItemUpdate) (*models.TaskItem, error) {
	item, _, err := s.guardItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if update.Description != nil {
		item.Description = *update.Description
	}
	if update.IsCompleted != nil {
		item.IsCompleted = *update.IsCompleted
	}
	if update.Order != nil {
		item.Order = *update.Order
	}
	if update.Priority != nil {
		item.Priority = *update.Priority
	}
	if update.DueDate != nil {
		item.DueDate = *update.DueDate
	}
	if update.ReminderDate != nil {
		item.ReminderDate = *update.ReminderDate
	}
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return s.itemWithChildren(ctx, item)
}

// DeleteItem removes an owned item and its whole subtree.
func (s *Service) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	item, _, err := s.guardItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteItem(ctx, item.ID); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	s.logger.Info("item_deleted",
		zap.String("item_id", itemID.String()),
		zap.String("list_id", item.ListID.String()),
	)
	return nil
}

// guardList resolves a list and verifies ownership. A list owned by
// someone else is reported as not found.
func (s *Service) guardList(ctx context.Context, userID, listID uuid.UUID) (*models.TaskList, error) {
	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("list %s: %w", listID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load list: %w", err)
	}
	if list.UserID != userID {
		return nil, fmt.Errorf("list %s: %w", listID, storage.ErrNotFound)
	}
	return list, nil
}

// guardItem resolves an item and verifies ownership through its list.
func (s *Service) guardItem(ctx context.Context, userID, itemID uuid.UUID) (*models.TaskItem, *models.TaskList, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("item %s: %w", itemID, storage.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("failed to load item: %w", err)
	}
	list, err := s.guardList(ctx, userID, item.ListID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("item %s: %w", itemID, storage.ErrNotFound)
		}
		return nil, nil, err
	}
	return item, list, nil
}

// loadListTree populates list.Items with the built tree.
func (s *Service) loadListTree(ctx context.Context, list *models.TaskList) (*models.TaskList, error) {
	items, err := s.store.ItemsByList(ctx, list.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	list.Items = tree.Build(items)
	return list, nil
}

// itemWithChildren rebuilds the item's list tree and returns the node
// for the item, children populated.
func (s *Service) itemWithChildren(ctx context.Context, item *models.TaskItem) (*models.TaskItem, error) {
	items, err := s.store.ItemsByList(ctx, item.ListID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	roots := tree.Build(items)
	if found := tree.Find(roots, item.ID); found != nil {
		return found, nil
	}
	// Deleted between the guard and the rebuild.
	return nil, fmt.Errorf("item %s: %w", item.ID, storage.ErrNotFound)
}
