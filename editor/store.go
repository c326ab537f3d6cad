package editor

import (
	"errors"

	"zhiyi-cms/metrics"

	lru "github.com/hashicorp/golang-lru/v2"
)

var ErrDraftNotFound = errors.New("draft not found")

// Store holds open drafts. The least recently used draft is evicted once
// capacity is reached.
type Store struct {
	cache *lru.Cache[string, *Draft]
}

func NewStore(capacity int) (*Store, error) {
	cache, err := lru.NewWithEvict(capacity, func(string, *Draft) {
		metrics.EditorSessions.Dec()
	})
	if err != nil {
		return nil, err
	}
	return &Store{cache: cache}, nil
}

func (s *Store) Put(d *Draft) {
	if !s.cache.Contains(d.ID()) {
		metrics.EditorSessions.Inc()
	}
	s.cache.Add(d.ID(), d)
}

func (s *Store) Get(id string) (*Draft, error) {
	d, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrDraftNotFound
	}
	return d, nil
}

// Delete reports whether the draft existed.
func (s *Store) Delete(id string) bool {
	return s.cache.Remove(id)
}

func (s *Store) Len() int {
	return s.cache.Len()
}
