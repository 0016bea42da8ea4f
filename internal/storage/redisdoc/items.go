package redisdoc

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/nestodo/nestodo/internal/models"
	"github.com/nestodo/nestodo/internal/storage"
	"github.com/redis/go-redis/v9"
)

// maxCascadeDepth bounds the breadth-first descendant walk so a
// corrupted parent chain cannot loop the collector forever.
const maxCascadeDepth = 100

// CreateItem stores a new task item and registers it in the list and
// sibling membership sets.
func (s *Store) CreateItem(ctx context.Context, item *models.TaskItem) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if err := s.setDoc(ctx, pipe, itemKey(item.ID), "item", itemToDoc(item)); err != nil {
			return err
		}
		pipe.SAdd(ctx, listItemsKey(item.ListID), item.ID.String())
		pipe.SAdd(ctx, siblingSetKey(item.ListID, item.ParentID), item.ID.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// GetItem retrieves a task item by ID.
func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*models.TaskItem, error) {
	var doc itemDoc
	if err := s.getDoc(ctx, itemKey(id), "item", &doc); err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

// ItemsByList retrieves the flat snapshot of every item in a list,
// sorted by creation time so equal sibling orders break by insertion
// sequence, same as the relational backend.
func (s *Store) ItemsByList(ctx context.Context, listID uuid.UUID) ([]*models.TaskItem, error) {
	ids, err := s.client.SMembers(ctx, listItemsKey(listID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read item membership: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, "item:"+id)
	}
	raws, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item documents: %w", err)
	}

	var items []*models.TaskItem
	for _, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			// Deleted between SMEMBERS and MGET.
			continue
		}
		var doc itemDoc
		if err := decodeDoc(str, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode item document: %w", err)
		}
		items = append(items, doc.toModel())
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

// CountChildren reports the number of direct children under parentID
// within a list; parentID nil counts root items.
func (s *Store) CountChildren(ctx context.Context, listID uuid.UUID, parentID *uuid.UUID) (int, error) {
	n, err := s.client.SCard(ctx, siblingSetKey(listID, parentID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count children: %w", err)
	}
	return int(n), nil
}

// UpdateItem overwrites an existing task item document.
func (s *Store) UpdateItem(ctx context.Context, item *models.TaskItem) error {
	exists, err := s.client.Exists(ctx, itemKey(item.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check item existence: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("item: %w", storage.ErrNotFound)
	}
	item.UpdatedAt = time.Now().UTC()
	return s.setDoc(ctx, nil, itemKey(item.ID), "item", itemToDoc(item))
}

// DeleteItem removes a task item and all its descendants. Descendant
// ids are collected breadth-first from the children sets, then every
// key is removed in one transactional pipeline. A child created while
// the walk is in flight can escape deletion; that is the documented
// best-effort contract.
func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	root, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}

	doomed := []uuid.UUID{id}
	frontier := []uuid.UUID{id}
	seen := map[uuid.UUID]bool{id: true}

	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= maxCascadeDepth {
			return fmt.Errorf("cascade aborted: tree deeper than %d levels at item %s", maxCascadeDepth, id)
		}
		var next []uuid.UUID
		for _, cur := range frontier {
			childIDs, err := s.client.SMembers(ctx, itemChildrenKey(cur)).Result()
			if err != nil {
				return fmt.Errorf("failed to read children of %s: %w", cur, err)
			}
			for _, raw := range childIDs {
				childID, err := uuid.Parse(raw)
				if err != nil {
					return fmt.Errorf("corrupt child reference %q under %s: %w", raw, cur, err)
				}
				if seen[childID] {
					continue
				}
				seen[childID] = true
				doomed = append(doomed, childID)
				next = append(next, childID)
			}
		}
		frontier = next
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, itemID := range doomed {
			pipe.Del(ctx, itemKey(itemID), itemChildrenKey(itemID))
			pipe.SRem(ctx, listItemsKey(root.ListID), itemID.String())
		}
		pipe.SRem(ctx, siblingSetKey(root.ListID, root.ParentID), id.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete item subtree: %w", err)
	}
	return nil
}
