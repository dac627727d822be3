// Package kvstore is a bounded key-value store whose entries expire after a
// fixed TTL measured against an injected clock.
package kvstore

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

type Store[V any] struct {
	cache *lru.Cache[string, entry[V]]
	ttl   time.Duration
	now   func() time.Time
}

func New[V any](size int, ttl time.Duration, now func() time.Time) (*Store[V], error) {
	if size <= 0 {
		return nil, fmt.Errorf("kvstore size must be positive")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("kvstore ttl must be positive")
	}
	if now == nil {
		now = time.Now
	}
	cache, err := lru.New[string, entry[V]](size)
	if err != nil {
		return nil, err
	}
	return &Store[V]{cache: cache, ttl: ttl, now: now}, nil
}

func (s *Store[V]) Set(key string, value V) {
	s.cache.Add(key, entry[V]{value: value, expiresAt: s.now().Add(s.ttl)})
}

func (s *Store[V]) Get(key string) (V, bool) {
	var zero V
	item, ok := s.cache.Get(key)
	if !ok {
		return zero, false
	}
	if !s.now().Before(item.expiresAt) {
		s.cache.Remove(key)
		return zero, false
	}
	return item.value, true
}

func (s *Store[V]) Delete(key string) {
	s.cache.Remove(key)
}

// Purge drops every expired entry and returns how many were removed.
func (s *Store[V]) Purge() int {
	now := s.now()
	removed := 0
	for _, key := range s.cache.Keys() {
		item, ok := s.cache.Peek(key)
		if ok && !now.Before(item.expiresAt) {
			s.cache.Remove(key)
			removed++
		}
	}
	return removed
}

func (s *Store[V]) Len() int {
	return s.cache.Len()
}
