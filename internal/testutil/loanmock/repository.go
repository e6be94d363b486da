package loanmock

import (
	"context"
	"errors"

	domain "oneshelf-backend/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// ErrUnimplemented is returned by reads whose func field is unset.
var ErrUnimplemented = errors.New("loanmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset writes succeed and report one affected row; unset reads return
// ErrUnimplemented.
type Repo struct {
	CreateLoanFn             func(ctx context.Context, l *domain.Loan) error
	CreateRequestFn          func(ctx context.Context, k domain.Key) error
	SetApproverFn            func(ctx context.Context, loanID, userID, librarianID uint64) (int64, error)
	PromoteRequestToActiveFn func(ctx context.Context, k domain.Key) (int64, error)
	DeleteRequestFn          func(ctx context.Context, k domain.Key) (int64, error)
	DeleteActiveFn           func(ctx context.Context, k domain.Key) (int64, error)
	DeleteLoanIfOrphanedFn   func(ctx context.Context, loanID, userID uint64) (int64, error)
	GetByIDFn                func(ctx context.Context, loanID uint64) (*domain.Loan, error)
	GetForUpdateFn           func(ctx context.Context, loanID, userID uint64) (*domain.Loan, error)
	GetAssociationFn         func(ctx context.Context, loanID uint64) (*domain.Association, error)
	ListForUserFn            func(ctx context.Context, userID uint64, status domain.Status) ([]domain.WithBook, error)
	ListForBookFn            func(ctx context.Context, bookID, authorID uint64, status domain.Status) ([]domain.Association, error)
	ListPendingForLibraryFn  func(ctx context.Context, libraryID uint64) ([]domain.LibraryView, error)
	ListActiveForLibraryFn   func(ctx context.Context, libraryID uint64) ([]domain.LibraryView, error)
}

func (m *Repo) CreateLoan(ctx context.Context, l *domain.Loan) error {
	if m.CreateLoanFn != nil {
		return m.CreateLoanFn(ctx, l)
	}
	return nil
}

func (m *Repo) CreateRequest(ctx context.Context, k domain.Key) error {
	if m.CreateRequestFn != nil {
		return m.CreateRequestFn(ctx, k)
	}
	return nil
}

func (m *Repo) SetApprover(ctx context.Context, loanID, userID, librarianID uint64) (int64, error) {
	if m.SetApproverFn != nil {
		return m.SetApproverFn(ctx, loanID, userID, librarianID)
	}
	return 1, nil
}

func (m *Repo) PromoteRequestToActive(ctx context.Context, k domain.Key) (int64, error) {
	if m.PromoteRequestToActiveFn != nil {
		return m.PromoteRequestToActiveFn(ctx, k)
	}
	return 1, nil
}

func (m *Repo) DeleteRequest(ctx context.Context, k domain.Key) (int64, error) {
	if m.DeleteRequestFn != nil {
		return m.DeleteRequestFn(ctx, k)
	}
	return 1, nil
}

func (m *Repo) DeleteActive(ctx context.Context, k domain.Key) (int64, error) {
	if m.DeleteActiveFn != nil {
		return m.DeleteActiveFn(ctx, k)
	}
	return 1, nil
}

func (m *Repo) DeleteLoanIfOrphaned(ctx context.Context, loanID, userID uint64) (int64, error) {
	if m.DeleteLoanIfOrphanedFn != nil {
		return m.DeleteLoanIfOrphanedFn(ctx, loanID, userID)
	}
	return 1, nil
}

func (m *Repo) GetByID(ctx context.Context, loanID uint64) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, loanID)
	}
	return nil, ErrUnimplemented
}

func (m *Repo) GetForUpdate(ctx context.Context, loanID, userID uint64) (*domain.Loan, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, loanID, userID)
	}
	return nil, ErrUnimplemented
}

func (m *Repo) GetAssociation(ctx context.Context, loanID uint64) (*domain.Association, error) {
	if m.GetAssociationFn != nil {
		return m.GetAssociationFn(ctx, loanID)
	}
	return nil, ErrUnimplemented
}

func (m *Repo) ListForUser(ctx context.Context, userID uint64, status domain.Status) ([]domain.WithBook, error) {
	if m.ListForUserFn != nil {
		return m.ListForUserFn(ctx, userID, status)
	}
	return nil, ErrUnimplemented
}

func (m *Repo) ListForBook(ctx context.Context, bookID, authorID uint64, status domain.Status) ([]domain.Association, error) {
	if m.ListForBookFn != nil {
		return m.ListForBookFn(ctx, bookID, authorID, status)
	}
	return nil, ErrUnimplemented
}

func (m *Repo) ListPendingForLibrary(ctx context.Context, libraryID uint64) ([]domain.LibraryView, error) {
	if m.ListPendingForLibraryFn != nil {
		return m.ListPendingForLibraryFn(ctx, libraryID)
	}
	return nil, ErrUnimplemented
}

func (m *Repo) ListActiveForLibrary(ctx context.Context, libraryID uint64) ([]domain.LibraryView, error) {
	if m.ListActiveForLibraryFn != nil {
		return m.ListActiveForLibraryFn(ctx, libraryID)
	}
	return nil, ErrUnimplemented
}
