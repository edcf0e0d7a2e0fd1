// Package session records which issued token ids are still valid. A token
// that is absent from the store is treated as revoked regardless of its
// signature state.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenKind distinguishes the two token families kept in the store.
type TokenKind string

const (
	AccessToken  TokenKind = "access_token"
	RefreshToken TokenKind = "refresh_token"
)

// Store is the session contract: put with TTL, check, invalidate.
type Store interface {
	Put(ctx context.Context, kind TokenKind, userID uint, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, kind TokenKind, userID uint, tokenID string) (bool, error)
	Delete(ctx context.Context, kind TokenKind, userID uint, tokenID string) error
	// DeleteAll revokes every token of the given kind for a user.
	DeleteAll(ctx context.Context, kind TokenKind, userID uint) error
}

func key(kind TokenKind, userID uint, tokenID string) string {
	return fmt.Sprintf("%s:%d:%s", kind, userID, tokenID)
}

// ---------------------------------------------------------------------------
// Redis implementation
// ---------------------------------------------------------------------------

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Put(ctx context.Context, kind TokenKind, userID uint, tokenID string, ttl time.Duration) error {
	return s.client.Set(ctx, key(kind, userID, tokenID), "valid", ttl).Err()
}

func (s *redisStore) Exists(ctx context.Context, kind TokenKind, userID uint, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, key(kind, userID, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisStore) Delete(ctx context.Context, kind TokenKind, userID uint, tokenID string) error {
	return s.client.Del(ctx, key(kind, userID, tokenID)).Err()
}

func (s *redisStore) DeleteAll(ctx context.Context, kind TokenKind, userID uint) error {
	pattern := fmt.Sprintf("%s:%d:*", kind, userID)
	keys, err := s.client.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// ---------------------------------------------------------------------------
// In-memory implementation
// ---------------------------------------------------------------------------

type memoryEntry struct {
	expiresAt time.Time
}

// MemoryStore keeps sessions in a map. Used in tests and single-process
// deployments without Redis.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(ctx context.Context, kind TokenKind, userID uint, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key(kind, userID, tokenID)] = memoryEntry{expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, kind TokenKind, userID uint, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(kind, userID, tokenID)
	entry, ok := s.entries[k]
	if !ok {
		return false, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, k)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, kind TokenKind, userID uint, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key(kind, userID, tokenID))
	return nil
}

func (s *MemoryStore) DeleteAll(ctx context.Context, kind TokenKind, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := fmt.Sprintf("%s:%d:", kind, userID)
	for k := range s.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(s.entries, k)
		}
	}
	return nil
}
