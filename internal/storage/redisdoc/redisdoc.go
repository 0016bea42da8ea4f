// Package redisdoc implements storage.Store on Redis as a pair of
// document collections: one JSON document per record plus membership
// sets for list and parent/child relationships. Cascading deletes
// collect descendant ids breadth-first and remove everything in a
// single transactional pipeline.
package redisdoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nestodo/nestodo/internal/storage"
	"github.com/redis/go-redis/v9"
)

// Store is the Redis-backed document storage implementation.
type Store struct {
	client *redis.Client
}

var _ storage.Store = (*Store)(nil)

// New connects to Redis at redisURL and verifies the connection.
func New(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Store{client: client}, nil
}

// Ping verifies the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Key layout. Membership sets exist so cascade deletes and sibling
// counts never scan the keyspace.
func userKey(id uuid.UUID) string         { return "user:" + id.String() }
func usernameKey(username string) string  { return "username:" + username }
func userListsKey(id uuid.UUID) string    { return "user:" + id.String() + ":lists" }
func listKey(id uuid.UUID) string         { return "list:" + id.String() }
func listItemsKey(id uuid.UUID) string    { return "list:" + id.String() + ":items" }
func listRootsKey(id uuid.UUID) string    { return "list:" + id.String() + ":roots" }
func itemKey(id uuid.UUID) string         { return "item:" + id.String() }
func itemChildrenKey(id uuid.UUID) string { return "item:" + id.String() + ":children" }

// siblingSetKey is the set holding an item's sibling group: the list's
// roots set for parentless items, otherwise the parent's children set.
func siblingSetKey(listID uuid.UUID, parentID *uuid.UUID) string {
	if parentID == nil {
		return listRootsKey(listID)
	}
	return itemChildrenKey(*parentID)
}

func (s *Store) getDoc(ctx context.Context, key string, kind string, out any) error {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%s: %w", kind, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get %s document: %w", kind, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s document: %w", kind, err)
	}
	return nil
}

func decodeDoc(raw string, out any) error {
	return json.Unmarshal([]byte(raw), out)
}

func (s *Store) setDoc(ctx context.Context, pipe redis.Pipeliner, key string, kind string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s document: %w", kind, err)
	}
	if pipe != nil {
		pipe.Set(ctx, key, raw, 0)
		return nil
	}
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to store %s document: %w", kind, err)
	}
	return nil
}
