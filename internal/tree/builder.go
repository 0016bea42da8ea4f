package tree

import (
	"sort"

	"github.com/google/uuid"
	"github.com/nestodo/nestodo/internal/models"
)

// Build reconstructs the parent/child hierarchy from a flat snapshot of
// items belonging to one list. It returns the root items (nil parent),
// each recursively populated with its Children slice, every sibling
// group sorted ascending by Order with ties broken by fetch order.
//
// Items whose parent id is set but absent from the snapshot (the parent
// was deleted by a concurrent request mid-fetch) are dropped from the
// output rather than promoted to roots; the next consistent fetch heals
// the view.
//
// Build is a pure transformation: it never touches storage, and building
// twice from the same snapshot yields structurally identical output.
func Build(items []*models.TaskItem) []*models.TaskItem {
	byID := make(map[uuid.UUID]*models.TaskItem, len(items))
	for _, item := range items {
		item.Children = []*models.TaskItem{}
		byID[item.ID] = item
	}

	roots := []*models.TaskItem{}
	for _, item := range items {
		if item.ParentID == nil {
			roots = append(roots, item)
			continue
		}
		if parent, ok := byID[*item.ParentID]; ok {
			parent.Children = append(parent.Children, item)
		}
		// Dangling parent reference: drop.
	}

	for _, item := range items {
		sortSiblings(item.Children)
	}
	sortSiblings(roots)

	return roots
}

// Find returns the node with the given id inside a built tree, or nil.
func Find(roots []*models.TaskItem, id uuid.UUID) *models.TaskItem {
	for _, item := range roots {
		if item.ID == id {
			return item
		}
		if found := Find(item.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// sortSiblings orders one sibling group by Order ascending. The sort is
// stable so equal orders keep their insertion sequence.
func sortSiblings(siblings []*models.TaskItem) {
	sort.SliceStable(siblings, func(i, j int) bool {
		return siblings[i].Order < siblings[j].Order
	})
}
