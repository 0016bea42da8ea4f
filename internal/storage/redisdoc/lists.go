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

// CreateList stores a new task list and registers it in the owner's
// membership set.
func (s *Store) CreateList(ctx context.Context, list *models.TaskList) error {
	now := time.Now().UTC()
	list.CreatedAt = now
	list.UpdatedAt = now

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if err := s.setDoc(ctx, pipe, listKey(list.ID), "list", listToDoc(list)); err != nil {
			return err
		}
		pipe.SAdd(ctx, userListsKey(list.UserID), list.ID.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create list: %w", err)
	}
	return nil
}

// GetList retrieves a task list by ID.
func (s *Store) GetList(ctx context.Context, id uuid.UUID) (*models.TaskList, error) {
	var doc listDoc
	if err := s.getDoc(ctx, listKey(id), "list", &doc); err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

// ListsByOwner retrieves all task lists owned by a user, newest first.
// Member ids whose documents vanished mid-read (concurrent delete) are
// skipped.
func (s *Store) ListsByOwner(ctx context.Context, userID uuid.UUID) ([]*models.TaskList, error) {
	ids, err := s.client.SMembers(ctx, userListsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read list membership: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, "list:"+id)
	}
	raws, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch list documents: %w", err)
	}

	var lists []*models.TaskList
	for _, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		var doc listDoc
		if err := decodeDoc(str, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode list document: %w", err)
		}
		lists = append(lists, doc.toModel())
	}
	sort.Slice(lists, func(i, j int) bool {
		return lists[i].CreatedAt.After(lists[j].CreatedAt)
	})
	return lists, nil
}

// UpdateList overwrites an existing task list document.
func (s *Store) UpdateList(ctx context.Context, list *models.TaskList) error {
	exists, err := s.client.Exists(ctx, listKey(list.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check list existence: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("list: %w", storage.ErrNotFound)
	}
	list.UpdatedAt = time.Now().UTC()
	return s.setDoc(ctx, nil, listKey(list.ID), "list", listToDoc(list))
}

// DeleteList removes a task list and every item in it. All deletes go
// through one transactional pipeline, so the multi-delete is atomic;
// the membership read beforehand is a snapshot, matching the
// best-effort contract for concurrent inserts.
func (s *Store) DeleteList(ctx context.Context, id uuid.UUID) error {
	var doc listDoc
	if err := s.getDoc(ctx, listKey(id), "list", &doc); err != nil {
		return err
	}

	itemIDs, err := s.client.SMembers(ctx, listItemsKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to read item membership: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, itemID := range itemIDs {
			pipe.Del(ctx, "item:"+itemID, "item:"+itemID+":children")
		}
		pipe.Del(ctx, listItemsKey(id), listRootsKey(id), listKey(id))
		pipe.SRem(ctx, userListsKey(doc.UserID), id.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	return nil
}
