// Package memory provides an in-memory orders.Store (for testing/dev).
package memory

import (
	"context"
	"sync"

	"github.com/ayg/confirmaciones/orders"
)

// Store holds both tables in process memory.
type Store struct {
	mu            sync.RWMutex
	pending       []orders.PendingOrder
	confirmations []orders.ConfirmationRecord
}

func New() *Store {
	return &Store{}
}

func (m *Store) LoadPending(_ context.Context) ([]orders.PendingOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]orders.PendingOrder, len(m.pending))
	copy(result, m.pending)
	return result, nil
}

func (m *Store) OverwritePending(_ context.Context, rows []orders.PendingOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending = make([]orders.PendingOrder, len(rows))
	copy(m.pending, rows)
	return nil
}

func (m *Store) LoadConfirmations(_ context.Context) ([]orders.ConfirmationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]orders.ConfirmationRecord, len(m.confirmations))
	copy(result, m.confirmations)
	return result, nil
}

func (m *Store) OverwriteConfirmations(_ context.Context, rows []orders.ConfirmationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.confirmations = make([]orders.ConfirmationRecord, len(rows))
	copy(m.confirmations, rows)
	return nil
}
