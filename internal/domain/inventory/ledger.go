package inventory

import "context"

// Ledger owns the copy counts. Decrement and Increment lock the holding row
// for the rest of the enclosing transaction and are only called from inside a
// unit of work.
type Ledger interface {
	// Decrement takes one copy off the shelf. Returns ErrNoCopiesAvailable when
	// the holding is absent or already at zero.
	Decrement(ctx context.Context, k Key) error

	// Increment puts one copy back. Returns ErrUnknownHolding when the library
	// has no row for the book.
	Increment(ctx context.Context, k Key) error

	// Get reads the holding without locking.
	Get(ctx context.Context, k Key) (*Holding, error)
}
