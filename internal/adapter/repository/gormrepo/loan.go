package gormrepo

import (
	"context"
	"time"

	"oneshelf-backend/internal/domain/catalog"
	loanDomain "oneshelf-backend/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

const keyClause = "loan_id = ? AND user_id = ? AND book_id = ? AND author_id = ? AND status = ?"

func keyArgs(k loanDomain.Key, s loanDomain.Status) []any {
	return []any{k.LoanID, k.UserID, k.BookID, k.AuthorID, s}
}

func (r *LoanRepository) CreateLoan(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) CreateRequest(ctx context.Context, k loanDomain.Key) error {
	a := &loanDomain.Association{
		LoanID:   k.LoanID,
		UserID:   k.UserID,
		BookID:   k.BookID,
		AuthorID: k.AuthorID,
		Status:   loanDomain.StatusPending,
	}
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *LoanRepository) SetApprover(ctx context.Context, loanID, userID, librarianID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Where("loan_id = ? AND user_id = ?", loanID, userID).
		UpdateColumn("librarian_id", librarianID)
	return res.RowsAffected, res.Error
}

// PromoteRequestToActive is one constrained update, so there is no moment
// where the loan has zero or two associations.
func (r *LoanRepository) PromoteRequestToActive(ctx context.Context, k loanDomain.Key) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Association{}).
		Where(keyClause, keyArgs(k, loanDomain.StatusPending)...).
		UpdateColumn("status", loanDomain.StatusActive)
	return res.RowsAffected, res.Error
}

func (r *LoanRepository) DeleteRequest(ctx context.Context, k loanDomain.Key) (int64, error) {
	return r.deleteAssociation(ctx, k, loanDomain.StatusPending)
}

func (r *LoanRepository) DeleteActive(ctx context.Context, k loanDomain.Key) (int64, error) {
	return r.deleteAssociation(ctx, k, loanDomain.StatusActive)
}

func (r *LoanRepository) deleteAssociation(ctx context.Context, k loanDomain.Key, s loanDomain.Status) (int64, error) {
	res := r.db.WithContext(ctx).
		Where(keyClause, keyArgs(k, s)...).
		Delete(&loanDomain.Association{})
	return res.RowsAffected, res.Error
}

func (r *LoanRepository) DeleteLoanIfOrphaned(ctx context.Context, loanID, userID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND user_id = ?", loanID, userID).
		Where("NOT EXISTS (SELECT 1 FROM loan_association la WHERE la.loan_id = ?)", loanID).
		Delete(&loanDomain.Loan{})
	return res.RowsAffected, res.Error
}

func (r *LoanRepository) GetByID(ctx context.Context, loanID uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).Take(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetForUpdate(ctx context.Context, loanID, userID uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ? AND user_id = ?", loanID, userID).
		Take(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetAssociation(ctx context.Context, loanID uint64) (*loanDomain.Association, error) {
	var out loanDomain.Association
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).Take(&out)
	return &out, res.Error
}

// loanRow is the flat shape of the joined read queries.
type loanRow struct {
	LoanID      uint64
	UserID      uint64
	StartDate   time.Time
	RetDate     time.Time
	LibrarianID *uint64
	BookID      uint64
	AuthorID    uint64
	Title       string
	Synopsis    string
	Genre       string
	Status      loanDomain.Status
	NoOfCopies  int
}

func (row loanRow) loan() loanDomain.Loan {
	return loanDomain.Loan{
		ID:          row.LoanID,
		UserID:      row.UserID,
		StartDate:   row.StartDate,
		ReturnDate:  row.RetDate,
		LibrarianID: row.LibrarianID,
	}
}

func (row loanRow) book() catalog.Book {
	return catalog.Book{
		ID:       row.BookID,
		AuthorID: row.AuthorID,
		Title:    row.Title,
		Synopsis: row.Synopsis,
		Genre:    row.Genre,
	}
}

const loanRowColumns = "l.loan_id, l.user_id, l.start_date, l.ret_date, l.librarian_id, " +
	"la.book_id, la.author_id, la.status, b.title, b.synopsis, b.genre"

func (r *LoanRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("loan_association AS la").
		Joins("JOIN loan l ON l.loan_id = la.loan_id AND l.user_id = la.user_id").
		Joins("JOIN book b ON b.book_id = la.book_id AND b.author_id = la.author_id")
}

func (r *LoanRepository) ListForUser(ctx context.Context, userID uint64, status loanDomain.Status) ([]loanDomain.WithBook, error) {
	var rows []loanRow
	err := r.joined(ctx).
		Select(loanRowColumns).
		Where("l.user_id = ? AND la.status = ?", userID, status).
		Order("l.ret_date ASC, l.loan_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]loanDomain.WithBook, 0, len(rows))
	for _, row := range rows {
		out = append(out, loanDomain.WithBook{Loan: row.loan(), Book: row.book()})
	}
	return out, nil
}

func (r *LoanRepository) ListForBook(ctx context.Context, bookID, authorID uint64, status loanDomain.Status) ([]loanDomain.Association, error) {
	out := []loanDomain.Association{}
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND author_id = ? AND status = ?", bookID, authorID, status).
		Order("loan_id ASC").
		Find(&out).Error
	return out, err
}

func (r *LoanRepository) ListPendingForLibrary(ctx context.Context, libraryID uint64) ([]loanDomain.LibraryView, error) {
	var rows []loanRow
	err := r.joined(ctx).
		Select(loanRowColumns+", lc.no_of_copies").
		Joins("JOIN library_contains lc ON lc.book_id = la.book_id AND lc.author_id = la.author_id").
		Where("la.status = ? AND lc.library_id = ? AND lc.no_of_copies > 0", loanDomain.StatusPending, libraryID).
		Order("l.start_date ASC, l.loan_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return libraryViews(rows), nil
}

func (r *LoanRepository) ListActiveForLibrary(ctx context.Context, libraryID uint64) ([]loanDomain.LibraryView, error) {
	var rows []loanRow
	err := r.joined(ctx).
		Select(loanRowColumns+", COALESCE(lc.no_of_copies, 0) AS no_of_copies").
		Joins("JOIN librarian lb ON lb.librarian_id = l.librarian_id").
		Joins("LEFT JOIN library_contains lc ON lc.library_id = lb.library_id AND lc.book_id = la.book_id AND lc.author_id = la.author_id").
		Where("la.status = ? AND lb.library_id = ?", loanDomain.StatusActive, libraryID).
		Order("l.ret_date ASC, l.loan_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return libraryViews(rows), nil
}

func libraryViews(rows []loanRow) []loanDomain.LibraryView {
	out := make([]loanDomain.LibraryView, 0, len(rows))
	for _, row := range rows {
		out = append(out, loanDomain.LibraryView{
			Loan:            row.loan(),
			Book:            row.book(),
			Status:          row.Status,
			AvailableCopies: row.NoOfCopies,
		})
	}
	return out
}
