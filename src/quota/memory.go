package quota

import "sync"

// MemStore keeps usage counts in process memory. It backs deployments
// without a database; counts reset when the process does.
type MemStore struct {
	mu    sync.RWMutex
	usage map[string]int
}

func NewMemStore() *MemStore {
	return &MemStore{usage: make(map[string]int)}
}

func (s *MemStore) Used(key, day string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usage[key+"|"+day], nil
}

func (s *MemStore) Increment(key, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage[key+"|"+day]++
	return nil
}
