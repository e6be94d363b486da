package approval

import (
	"context"
	"fmt"
	"log/slog"

	"oneshelf-backend/internal/domain/auth"
	"oneshelf-backend/internal/domain/errs"
	"oneshelf-backend/internal/domain/inventory"
	domainLoan "oneshelf-backend/internal/domain/loan"
	"oneshelf-backend/internal/domain/uow"
	"oneshelf-backend/internal/usecase/observe"

	"go.opentelemetry.io/otel/attribute"
)

// Usecase drives the librarian side of the lifecycle.
type Usecase struct {
	loanRepo domainLoan.Repository
	uow      uow.UnitOfWork
	log      *slog.Logger
}

// NewUsecase: loans serves the read views, tx the approval flow.
func NewUsecase(loans domainLoan.Repository, tx uow.UnitOfWork, log *slog.Logger) *Usecase {
	if log == nil {
		log = slog.Default()
	}
	return &Usecase{loanRepo: loans, uow: tx, log: log}
}

// Approve records the caller as approver, turns the pending request into an
// active loan and takes one copy off the caller's library shelf. Nothing
// sticks unless all three succeed.
func (u *Usecase) Approve(ctx context.Context, claim auth.Claim, in ApproveInput) (_ *ApprovalDTO, err error) {
	ctx, end := observe.Transition(ctx, u.log, "loan.approve",
		attribute.Int64("librarian.id", int64(claim.UserID)),
		attribute.Int64("loan.id", int64(in.LoanID)),
		attribute.Int64("user.id", int64(in.UserID)),
		attribute.Int64("book.id", int64(in.BookID)),
		attribute.Int64("author.id", int64(in.AuthorID)))
	defer end(&err)

	libraryID, err := claim.RequireStaff()
	if err != nil {
		return nil, err
	}
	if in.LoanID == 0 || in.UserID == 0 || in.BookID == 0 || in.AuthorID == 0 {
		return nil, fmt.Errorf("%w: loanId, userId, bookId and authorId are required", errs.ErrValidation)
	}
	if u.uow == nil {
		return nil, fmt.Errorf("%w: no unit of work configured", errs.ErrFatal)
	}

	k := domainLoan.Key{LoanID: in.LoanID, UserID: in.UserID, BookID: in.BookID, AuthorID: in.AuthorID}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		n, err := r.Loans.SetApprover(ctx, in.LoanID, in.UserID, claim.UserID)
		if err := errs.ExpectRows(n, err,
			fmt.Errorf("%w: no loan %d for user %d", errs.ErrNotFound, in.LoanID, in.UserID)); err != nil {
			return err
		}

		// Only a pending row matches, so a second approval stops here.
		n, err = r.Loans.PromoteRequestToActive(ctx, k)
		if err := errs.ExpectRows(n, err,
			fmt.Errorf("%w: no pending request on loan %d for book %d", errs.ErrNotFound, in.LoanID, in.BookID)); err != nil {
			return err
		}

		return r.Ledger.Decrement(ctx, inventory.Key{
			LibraryID: libraryID, BookID: in.BookID, AuthorID: in.AuthorID,
		})
	})
	if err != nil {
		return nil, err
	}

	return &ApprovalDTO{
		LoanID:      in.LoanID,
		UserID:      in.UserID,
		BookID:      in.BookID,
		AuthorID:    in.AuthorID,
		LibraryID:   libraryID,
		LibrarianID: claim.UserID,
		Status:      string(domainLoan.StatusActive),
	}, nil
}

// Pending lists requests the caller's library could fill right now.
func (u *Usecase) Pending(ctx context.Context, claim auth.Claim) ([]domainLoan.LibraryView, error) {
	libraryID, err := claim.RequireStaff()
	if err != nil {
		return nil, err
	}
	out, err := u.loanRepo.ListPendingForLibrary(ctx, libraryID)
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Active lists loans approved by any librarian of the caller's library.
func (u *Usecase) Active(ctx context.Context, claim auth.Claim) ([]domainLoan.LibraryView, error) {
	libraryID, err := claim.RequireStaff()
	if err != nil {
		return nil, err
	}
	out, err := u.loanRepo.ListActiveForLibrary(ctx, libraryID)
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// ForBook lists every loan association of one book in the given status.
func (u *Usecase) ForBook(ctx context.Context, claim auth.Claim, bookID, authorID uint64, approved bool) ([]domainLoan.Association, error) {
	if _, err := claim.RequireStaff(); err != nil {
		return nil, err
	}
	if bookID == 0 || authorID == 0 {
		return nil, fmt.Errorf("%w: bookId and authorId are required", errs.ErrValidation)
	}
	out, err := u.loanRepo.ListForBook(ctx, bookID, authorID, domainLoan.StatusOf(approved))
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domainLoan.Association{}
	}
	return out, nil
}

func nonNil(v []domainLoan.LibraryView) []domainLoan.LibraryView {
	if v == nil {
		return []domainLoan.LibraryView{}
	}
	return v
}
