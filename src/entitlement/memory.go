package entitlement

import (
	"strings"
	"sync"
)

// MemStore keeps entitlements in process memory for deployments without a
// database. Stripe remains the source of truth; losing this cache only
// costs a re-check on sign-in.
type MemStore struct {
	mu      sync.RWMutex
	byEmail map[string]*Entitlement
}

func NewMemStore() *MemStore {
	return &MemStore{byEmail: make(map[string]*Entitlement)}
}

func (s *MemStore) GetByEmail(email string) (*Entitlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	clone := *e
	return &clone, nil
}

func (s *MemStore) GetByStripeID(stripeID string) (*Entitlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.byEmail {
		if e.StripeID == stripeID {
			clone := *e
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *MemStore) Save(e *Entitlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *e
	s.byEmail[strings.ToLower(e.Email)] = &clone
	return nil
}

func (s *MemStore) Update(e *Entitlement) error {
	return s.Save(e)
}
