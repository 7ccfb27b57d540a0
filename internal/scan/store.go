package scan

import (
	"sync"

	"github.com/wonny/momentum-scanner/internal/contracts"
)

// Store keeps the latest completed scan. Each scan replaces the previous
// one wholesale; readers never see a partially built result.
type Store struct {
	mu     sync.RWMutex
	latest *contracts.ScanResult
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// Put replaces the latest result
func (s *Store) Put(result *contracts.ScanResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = result
}

// Latest returns the latest result, or false before the first scan
func (s *Store) Latest() (*contracts.ScanResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest != nil
}
