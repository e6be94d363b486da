package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"oneshelf-backend/internal/domain/auth"
	"oneshelf-backend/internal/domain/errs"
	"oneshelf-backend/internal/domain/inventory"
	"oneshelf-backend/internal/domain/loan"
	"oneshelf-backend/internal/domain/uow"
	"oneshelf-backend/internal/usecase/observe"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// Usecase drives the patron side of the lifecycle: request, cancel, return.
type Usecase struct {
	uow    uow.UnitOfWork
	loans  loan.Repository
	ledger inventory.Ledger
	log    *slog.Logger
}

// NewUsecase: loans and ledger serve reads outside a transaction; every
// write goes through tx.
func NewUsecase(tx uow.UnitOfWork, loans loan.Repository, ledger inventory.Ledger, log *slog.Logger) *Usecase {
	if log == nil {
		log = slog.Default()
	}
	return &Usecase{uow: tx, loans: loans, ledger: ledger, log: log}
}

var errNoUoW = fmt.Errorf("%w: no unit of work configured", errs.ErrFatal)

// Request opens a loan for the caller with one pending book request.
func (u *Usecase) Request(ctx context.Context, claim auth.Claim, in RequestInput) (_ *loan.Loan, err error) {
	ctx, end := observe.Transition(ctx, u.log, "loan.request",
		attribute.Int64("user.id", int64(claim.UserID)),
		attribute.Int64("book.id", int64(in.BookID)),
		attribute.Int64("author.id", int64(in.AuthorID)))
	defer end(&err)

	if err := claim.Require(auth.Patrons...); err != nil {
		return nil, err
	}
	if in.BookID == 0 || in.AuthorID == 0 {
		return nil, fmt.Errorf("%w: bookId and authorId are required", errs.ErrValidation)
	}
	if in.StartDate.IsZero() || in.ReturnDate.IsZero() {
		return nil, fmt.Errorf("%w: startDate and retDate are required", errs.ErrValidation)
	}
	if !in.ReturnDate.After(in.StartDate) {
		return nil, fmt.Errorf("%w: retDate must be after startDate", errs.ErrValidation)
	}
	if u.uow == nil {
		return nil, errNoUoW
	}

	var out *loan.Loan
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Catalog.GetBook(ctx, in.BookID, in.AuthorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: unknown book %d by author %d", errs.ErrValidation, in.BookID, in.AuthorID)
			}
			return err
		}

		l := &loan.Loan{
			UserID:     claim.UserID,
			StartDate:  in.StartDate.UTC(),
			ReturnDate: in.ReturnDate.UTC(),
		}
		if err := r.Loans.CreateLoan(ctx, l); err != nil {
			return err
		}
		if l.ID == 0 {
			return fmt.Errorf("%w: loan id not assigned", errs.ErrFatal)
		}
		if err := r.Loans.CreateRequest(ctx, loan.Key{
			LoanID: l.ID, UserID: claim.UserID, BookID: in.BookID, AuthorID: in.AuthorID,
		}); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Release dispatches to Return or Cancel.
func (u *Usecase) Release(ctx context.Context, claim auth.Claim, in ReleaseInput) error {
	if in.Approved {
		return u.Return(ctx, claim, in)
	}
	return u.Cancel(ctx, claim, in)
}

// Cancel withdraws a pending request and the loan it was filed under.
func (u *Usecase) Cancel(ctx context.Context, claim auth.Claim, in ReleaseInput) (err error) {
	ctx, end := observe.Transition(ctx, u.log, "loan.cancel", releaseAttrs(claim, in)...)
	defer end(&err)

	if err := u.checkRelease(claim, in); err != nil {
		return err
	}

	k := loan.Key{LoanID: in.LoanID, UserID: claim.UserID, BookID: in.BookID, AuthorID: in.AuthorID}
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		n, err := r.Loans.DeleteRequest(ctx, k)
		if err := errs.ExpectRows(n, err,
			fmt.Errorf("%w: no pending request on loan %d for this user", errs.ErrNotFound, in.LoanID)); err != nil {
			return err
		}

		n, err = r.Loans.DeleteLoanIfOrphaned(ctx, in.LoanID, claim.UserID)
		return errs.ExpectRows(n, err,
			fmt.Errorf("%w: loan %d still referenced after cancel", errs.ErrFatal, in.LoanID))
	})
}

// Return hands an active loan's copy back to the library whose librarian
// approved it.
func (u *Usecase) Return(ctx context.Context, claim auth.Claim, in ReleaseInput) (err error) {
	ctx, end := observe.Transition(ctx, u.log, "loan.return", releaseAttrs(claim, in)...)
	defer end(&err)

	if err := u.checkRelease(claim, in); err != nil {
		return err
	}

	k := loan.Key{LoanID: in.LoanID, UserID: claim.UserID, BookID: in.BookID, AuthorID: in.AuthorID}
	err = u.uow.WithinLoanTx(ctx, in.LoanID, claim.UserID, func(r uow.Repos, l *loan.Loan) error {
		if l.LibrarianID == nil {
			return fmt.Errorf("%w: loan %d was never approved", errs.ErrNotFound, in.LoanID)
		}
		lib, err := r.Catalog.LibraryOfLibrarian(ctx, *l.LibrarianID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("%w: approving librarian %d is gone", errs.ErrNotFound, *l.LibrarianID)
		case err != nil:
			return err
		case lib == nil:
			return fmt.Errorf("%w: approving librarian %d has no library", errs.ErrConflict, *l.LibrarianID)
		}

		n, err := r.Loans.DeleteActive(ctx, k)
		if err := errs.ExpectRows(n, err,
			fmt.Errorf("%w: no active loan %d of book %d for this user", errs.ErrNotFound, in.LoanID, in.BookID)); err != nil {
			return err
		}

		if err := r.Ledger.Increment(ctx, inventory.Key{
			LibraryID: *lib, BookID: in.BookID, AuthorID: in.AuthorID,
		}); err != nil {
			return err
		}

		n, err = r.Loans.DeleteLoanIfOrphaned(ctx, in.LoanID, claim.UserID)
		return errs.ExpectRows(n, err,
			fmt.Errorf("%w: loan %d still referenced after return", errs.ErrFatal, in.LoanID))
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: no loan %d for this user", errs.ErrNotFound, in.LoanID)
	}
	return err
}

func (u *Usecase) checkRelease(claim auth.Claim, in ReleaseInput) error {
	if err := claim.Require(auth.Patrons...); err != nil {
		return err
	}
	if in.LoanID == 0 || in.BookID == 0 || in.AuthorID == 0 {
		return fmt.Errorf("%w: loanId, bookId and authorId are required", errs.ErrValidation)
	}
	if u.uow == nil {
		return errNoUoW
	}
	return nil
}

func releaseAttrs(claim auth.Claim, in ReleaseInput) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("user.id", int64(claim.UserID)),
		attribute.Int64("loan.id", int64(in.LoanID)),
		attribute.Int64("book.id", int64(in.BookID)),
		attribute.Int64("author.id", int64(in.AuthorID)),
	}
}

// ListForUser returns the caller's loans with their book, active ones when
// approved is set and pending requests otherwise.
func (u *Usecase) ListForUser(ctx context.Context, claim auth.Claim, approved bool) ([]loan.WithBook, error) {
	if err := claim.Require(auth.Patrons...); err != nil {
		return nil, err
	}
	out, err := u.loans.ListForUser(ctx, claim.UserID, loan.StatusOf(approved))
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []loan.WithBook{}
	}
	return out, nil
}

// Availability reports the copies a library currently has on the shelf.
func (u *Usecase) Availability(ctx context.Context, k inventory.Key) (*AvailabilityDTO, error) {
	if k.LibraryID == 0 || k.BookID == 0 || k.AuthorID == 0 {
		return nil, fmt.Errorf("%w: libraryId, bookId and authorId are required", errs.ErrValidation)
	}
	h, err := u.ledger.Get(ctx, k)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no holding for %s", errs.ErrNotFound, k)
		}
		return nil, err
	}
	return &AvailabilityDTO{
		LibraryID:  h.LibraryID,
		BookID:     h.BookID,
		AuthorID:   h.AuthorID,
		NoOfCopies: h.NoOfCopies,
	}, nil
}
