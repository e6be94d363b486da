package loan

import "context"

// Repository is the loan record store. Updates and deletes return the number
// of rows they touched; zero rows is not an error at this level.
type Repository interface {
	CreateLoan(ctx context.Context, l *Loan) error
	// CreateRequest inserts the pending association for k.
	CreateRequest(ctx context.Context, k Key) error

	// SetApprover records librarianID on the loan matching loanID and userID.
	SetApprover(ctx context.Context, loanID, userID, librarianID uint64) (int64, error)
	// PromoteRequestToActive flips the pending association matching k to active.
	PromoteRequestToActive(ctx context.Context, k Key) (int64, error)
	DeleteRequest(ctx context.Context, k Key) (int64, error)
	DeleteActive(ctx context.Context, k Key) (int64, error)
	// DeleteLoanIfOrphaned removes the loan only when no association remains.
	DeleteLoanIfOrphaned(ctx context.Context, loanID, userID uint64) (int64, error)

	GetByID(ctx context.Context, loanID uint64) (*Loan, error)
	// GetForUpdate reads and row-locks the loan owned by userID.
	GetForUpdate(ctx context.Context, loanID, userID uint64) (*Loan, error)
	GetAssociation(ctx context.Context, loanID uint64) (*Association, error)

	ListForUser(ctx context.Context, userID uint64, status Status) ([]WithBook, error)
	ListForBook(ctx context.Context, bookID, authorID uint64, status Status) ([]Association, error)
	// ListPendingForLibrary returns requests the library could serve now.
	ListPendingForLibrary(ctx context.Context, libraryID uint64) ([]LibraryView, error)
	// ListActiveForLibrary returns loans approved by the library's librarians.
	ListActiveForLibrary(ctx context.Context, libraryID uint64) ([]LibraryView, error)
}
