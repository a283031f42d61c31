// Package drafts keeps in-progress editor state between requests.
package drafts

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pagecraft/core/internal/pkg/redis"
)

const keyPrefix = "pagecraft:draft:"

// Kind names what a draft belongs to.
type Kind string

const (
	KindMenu  Kind = "menu"
	KindBlock Kind = "block"
)

// Key returns the store key of the draft of target inside an organisation.
func Key(organizationID string, kind Kind, targetID string) string {
	return fmt.Sprintf("%s%s:%s:%s", keyPrefix, organizationID, kind, targetID)
}

// Store persists JSON-encodable drafts. Load reports false when no draft exists.
type Store interface {
	Load(ctx context.Context, key string, dest interface{}) (bool, error)
	Save(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
}

// RedisStore keeps drafts in Redis with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok, err := s.client.GetBytes(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode draft %s: %w", key, err)
	}
	return true, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", key, err)
	}
	return s.client.Set(ctx, key, raw, s.ttl)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key)
}

type memoryEntry struct {
	raw     []byte
	expires time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: map[string]memoryEntry{}}
}

func (s *MemoryStore) Load(_ context.Context, key string, dest interface{}) (bool, error) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if ok && s.ttl > 0 && s.now().After(e.expires) {
		delete(s.entries, key)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.raw, dest); err != nil {
		return false, fmt.Errorf("decode draft %s: %w", key, err)
	}
	return true, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", key, err)
	}
	s.mu.Lock()
	s.entries[key] = memoryEntry{raw: raw, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}
