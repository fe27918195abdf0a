// Package memory is an in-process LedgerMirror used by tests and by
// deployments without a Google Sheets configuration.
package memory

import (
	"context"
	"sync"

	"pesatrack/internal/core"
)

type Mirror struct {
	mu       sync.Mutex
	rows     []core.TransactionRecord
	replaces int
}

func New() *Mirror {
	return &Mirror{}
}

// ReplaceRows swaps the mirrored batch.
func (m *Mirror) ReplaceRows(_ context.Context, records []core.TransactionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append([]core.TransactionRecord(nil), records...)
	m.replaces++
	return nil
}

// Rows returns a copy of the mirrored batch.
func (m *Mirror) Rows() []core.TransactionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.TransactionRecord(nil), m.rows...)
}

// Replaces returns how many times the mirror was rewritten.
func (m *Mirror) Replaces() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replaces
}
