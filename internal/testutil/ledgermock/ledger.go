package ledgermock

import (
	"context"
	"sync"

	"oneshelf-backend/internal/domain/inventory"

	"gorm.io/gorm"
)

var _ inventory.Ledger = (*Ledger)(nil)

// Ledger is a function-backed inventory.Ledger. Calls are recorded so tests
// can assert the ledger was, or was not, touched.
type Ledger struct {
	DecrementFn func(ctx context.Context, k inventory.Key) error
	IncrementFn func(ctx context.Context, k inventory.Key) error
	GetFn       func(ctx context.Context, k inventory.Key) (*inventory.Holding, error)

	mu         sync.Mutex
	Decrements []inventory.Key
	Increments []inventory.Key
}

func (m *Ledger) Decrement(ctx context.Context, k inventory.Key) error {
	m.mu.Lock()
	m.Decrements = append(m.Decrements, k)
	m.mu.Unlock()
	if m.DecrementFn != nil {
		return m.DecrementFn(ctx, k)
	}
	return nil
}

func (m *Ledger) Increment(ctx context.Context, k inventory.Key) error {
	m.mu.Lock()
	m.Increments = append(m.Increments, k)
	m.mu.Unlock()
	if m.IncrementFn != nil {
		return m.IncrementFn(ctx, k)
	}
	return nil
}

func (m *Ledger) Get(ctx context.Context, k inventory.Key) (*inventory.Holding, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, k)
	}
	return nil, gorm.ErrRecordNotFound
}

// Touched reports whether Decrement or Increment was called.
func (m *Ledger) Touched() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Decrements)+len(m.Increments) > 0
}
