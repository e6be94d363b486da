package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"oneshelf-backend/internal/domain/errs"
	"oneshelf-backend/internal/domain/inventory"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerRepository struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) *LedgerRepository { return &LedgerRepository{db: db} }

const holdingClause = "library_id = ? AND book_id = ? AND author_id = ?"

// lock reads the holding with FOR UPDATE; the lock is held until the
// surrounding transaction ends. SQLite has no row locks and the dialector
// drops the clause, which is fine there since SQLite serializes writers.
func (r *LedgerRepository) lock(ctx context.Context, k inventory.Key) (*inventory.Holding, error) {
	var h inventory.Holding
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(holdingClause, k.LibraryID, k.BookID, k.AuthorID).
		Take(&h)
	return &h, res.Error
}

func (r *LedgerRepository) Decrement(ctx context.Context, k inventory.Key) error {
	h, err := r.lock(ctx, k)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return inventory.ErrNoCopiesAvailable
	}
	if err != nil {
		return err
	}
	if h.NoOfCopies <= 0 {
		return inventory.ErrNoCopiesAvailable
	}

	res := r.db.WithContext(ctx).
		Model(&inventory.Holding{}).
		Where(holdingClause+" AND no_of_copies > 0", k.LibraryID, k.BookID, k.AuthorID).
		UpdateColumn("no_of_copies", gorm.Expr("no_of_copies - ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: could not take copy for %s", errs.ErrFatal, k)
	}
	return nil
}

func (r *LedgerRepository) Increment(ctx context.Context, k inventory.Key) error {
	if _, err := r.lock(ctx, k); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inventory.ErrUnknownHolding
		}
		return err
	}

	res := r.db.WithContext(ctx).
		Model(&inventory.Holding{}).
		Where(holdingClause, k.LibraryID, k.BookID, k.AuthorID).
		UpdateColumn("no_of_copies", gorm.Expr("no_of_copies + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: could not return copy for %s", errs.ErrFatal, k)
	}
	return nil
}

func (r *LedgerRepository) Get(ctx context.Context, k inventory.Key) (*inventory.Holding, error) {
	var h inventory.Holding
	res := r.db.WithContext(ctx).
		Where(holdingClause, k.LibraryID, k.BookID, k.AuthorID).
		Take(&h)
	return &h, res.Error
}
