package uow

import (
	"context"

	"oneshelf-backend/internal/domain/catalog"
	"oneshelf-backend/internal/domain/inventory"
	"oneshelf-backend/internal/domain/loan"
)

// Repos are bound to one transaction.
type Repos struct {
	Loans   loan.Repository
	Ledger  inventory.Ledger
	Catalog catalog.Reader
}

type UnitOfWork interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan owned by userID first, then passes it in.
	WithinLoanTx(ctx context.Context, loanID, userID uint64, fn func(r Repos, l *loan.Loan) error) error
}
