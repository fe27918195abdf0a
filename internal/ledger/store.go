// Package ledger holds the in-memory transaction ledger behind an RWMutex.
// Readers get a snapshot copy, so analytics never observe a half-applied
// import. Every mutation bumps a version counter that view caches key on.
package ledger

import (
	"sync"

	"pesatrack/internal/core"
)

// Store is the process-wide ledger. The zero value is not usable; call New.
type Store struct {
	mu      sync.RWMutex
	records []core.TransactionRecord
	version uint64
}

func New() *Store {
	return &Store{records: []core.TransactionRecord{}}
}

// Load replaces the entire ledger with records and bumps the version. The
// input slice is copied, so the caller may keep mutating its own slice.
func (s *Store) Load(records []core.TransactionRecord) {
	snapshot := make([]core.TransactionRecord, len(records))
	copy(snapshot, records)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = snapshot
	s.version++
}

// Append adds records to the ledger and bumps the version.
func (s *Store) Append(records []core.TransactionRecord) {
	if len(records) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	s.version++
}

// All returns a snapshot copy of the ledger. Mutating the returned slice does
// not affect the store.
func (s *Store) All() []core.TransactionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make([]core.TransactionRecord, len(s.records))
	copy(snapshot, s.records)
	return snapshot
}

// Version returns the current mutation counter. Two equal versions guarantee
// an identical ledger, which makes the version a safe cache key component.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Len returns the number of records currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Codes returns the set of transaction codes currently in the ledger. Import
// deduplication checks membership against this set.
func (s *Store) Codes() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	codes := make(map[string]struct{}, len(s.records))
	for _, r := range s.records {
		codes[r.Code] = struct{}{}
	}
	return codes
}
