package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryStore keeps sessions in an in-process TTL cache. Good for dev and
// single-instance deployments.
type memoryStore struct {
	cache *gocache.Cache
}

// NewMemory creates a memory-backed session store with the given TTL.
func NewMemory(ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &memoryStore{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

func (s *memoryStore) Create(ctx context.Context, p Principal) (*Session, error) {
	sess := newSession(p)
	s.cache.SetDefault(sess.ID, sess)
	return sess, nil
}

func (s *memoryStore) Get(ctx context.Context, id string) (*Session, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	sess, ok := v.(*Session)
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *memoryStore) Delete(ctx context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}
