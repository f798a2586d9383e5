package tickets

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/casauth/internal/common"
	"github.com/patrickmn/go-cache"
)

// MemoryStorage keeps tickets in process. Expired entries are dropped by the
// go-cache janitor and are never returned.
type MemoryStorage struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewMemoryStorage(cleanupInterval time.Duration) *MemoryStorage {
	return &MemoryStorage{cache: cache.New(cache.NoExpiration, cleanupInterval)}
}

func (s *MemoryStorage) Put(_ context.Context, id string, value []byte, ttl time.Duration) error {
	s.cache.Set(id, value, ttl)
	return nil
}

func (s *MemoryStorage) Get(_ context.Context, id string) ([]byte, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, common.ErrorNotFound
	}
	return v.([]byte), nil
}

func (s *MemoryStorage) Take(_ context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(id)
	if !ok {
		return nil, common.ErrorNotFound
	}
	s.cache.Delete(id)
	return v.([]byte), nil
}

func (s *MemoryStorage) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}
