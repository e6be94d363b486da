package gormrepo

import (
	"context"

	"oneshelf-backend/internal/domain/loan"
	"oneshelf-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:   &LoanRepository{db: tx},
		Ledger:  &LedgerRepository{db: tx},
		Catalog: &CatalogRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repos(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID, userID uint64, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repos(tx)
		// lock the loan row up-front so concurrent returns serialize
		l, err := r.Loans.GetForUpdate(ctx, loanID, userID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
