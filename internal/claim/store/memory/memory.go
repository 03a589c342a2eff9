// Package memory provides the in-memory ClaimStore. It keeps the single
// process deployment lightweight and doubles as the test fake, intentionally
// favoring clarity over performance.
package memory

import (
	"context"
	"sync"

	"claimd/internal/claim/models"
	"claimd/internal/claim/store"
	"claimd/pkg/domain"
)

type Store struct {
	mu     sync.RWMutex
	claims map[string]models.ClaimRecord
}

var _ store.ClaimStore = (*Store)(nil)

func New() *Store {
	return &Store{claims: make(map[string]models.ClaimRecord)}
}

func (s *Store) Get(_ context.Context, fp domain.Fingerprint) (models.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.claims[fp.Key()]; ok {
		return rec, nil
	}
	return models.ClaimRecord{}, store.ErrNotFound
}

func (s *Store) Contains(_ context.Context, fp domain.Fingerprint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.claims[fp.Key()]
	return ok, nil
}

func (s *Store) Insert(_ context.Context, fp domain.Fingerprint, rec models.ClaimRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims[fp.Key()] = rec
	return nil
}

func (s *Store) Remove(_ context.Context, fp domain.Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claims, fp.Key())
	return nil
}

// Len reports the number of stored records. Used by tests and the store size
// gauge.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.claims)
}
