package session

import (
	"sync"
	"time"
)

// InMemoryRequestStore tracks outbound request ids so that each response
// can be matched exactly once. Safe for concurrent use.
type InMemoryRequestStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	stop    chan struct{}
}

func NewInMemoryRequestStore() *InMemoryRequestStore {
	return &InMemoryRequestStore{
		entries: map[string]time.Time{},
	}
}

// NewInMemoryRequestStoreWithCleanup starts a background sweep that evicts
// expired ids every interval. Close stops the sweep.
func NewInMemoryRequestStoreWithCleanup(interval time.Duration) *InMemoryRequestStore {
	s := NewInMemoryRequestStore()
	s.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.evictExpired()
			case <-s.stop:
				return
			}
		}
	}()
	return s
}

func (s *InMemoryRequestStore) Store(requestID string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[requestID] = expiry
	return nil
}

// Valid consumes the request id. A second call with the same id returns
// false, which rejects replayed responses.
func (s *InMemoryRequestStore) Valid(requestID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.entries[requestID]
	if !ok {
		return false
	}
	delete(s.entries, requestID)
	return time.Now().Before(expiry)
}

func (s *InMemoryRequestStore) GetAll() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	out := make([]string, 0, len(s.entries))
	for id, expiry := range s.entries {
		if now.Before(expiry) {
			out = append(out, id)
		}
	}
	return out
}

func (s *InMemoryRequestStore) Close() {
	if s.stop != nil {
		close(s.stop)
	}
}

func (s *InMemoryRequestStore) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, expiry := range s.entries {
		if !now.Before(expiry) {
			delete(s.entries, id)
		}
	}
}
