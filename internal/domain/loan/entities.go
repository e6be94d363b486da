package loan

import (
	"time"

	"oneshelf-backend/internal/domain/catalog"
)

// Loan is the top-level record of a patron borrowing a book, whatever its
// approval state. LibrarianID stays nil until a librarian approves it.
type Loan struct {
	ID          uint64    `gorm:"column:loan_id;primaryKey;autoIncrement" json:"id"`
	UserID      uint64    `gorm:"column:user_id;not null;index" json:"userId"`
	StartDate   time.Time `gorm:"column:start_date;not null" json:"startDate"`
	ReturnDate  time.Time `gorm:"column:ret_date;not null" json:"retDate"`
	LibrarianID *uint64   `gorm:"column:librarian_id;index" json:"librarianId,omitempty"`
}

func (Loan) TableName() string { return "loan" }

func (l *Loan) Approved() bool { return l.LibrarianID != nil }

type Status string

const (
	// StatusPending is a loan request waiting for a librarian.
	StatusPending Status = "pending"
	// StatusActive is an approved loan; the copy is off the shelf.
	StatusActive Status = "active"
)

func StatusOf(approved bool) Status {
	if approved {
		return StatusActive
	}
	return StatusPending
}

// Association ties a loan to the book it is for. A loan has exactly one:
// either Pending (a loan request) or Active (a loan book). LoanID is the
// primary key so a second one cannot be inserted, and approval flips Status
// in place instead of replacing the row.
type Association struct {
	LoanID   uint64 `gorm:"column:loan_id;primaryKey;autoIncrement:false" json:"id"`
	UserID   uint64 `gorm:"column:user_id;not null;index" json:"userId"`
	BookID   uint64 `gorm:"column:book_id;not null;index:idx_loan_association_book" json:"bookId"`
	AuthorID uint64 `gorm:"column:author_id;not null;index:idx_loan_association_book" json:"authorId"`
	Status   Status `gorm:"column:status;type:varchar(16);not null;index;check:chk_loan_association_status,status IN ('pending','active')" json:"status"`
}

func (Association) TableName() string { return "loan_association" }

// Key names an association by all of its columns. Writes match on the whole
// key so one patron cannot touch another patron's loan.
type Key struct {
	LoanID   uint64
	UserID   uint64
	BookID   uint64
	AuthorID uint64
}

// WithBook is a loan composed with the book it is for.
type WithBook struct {
	Loan Loan         `json:"loan"`
	Book catalog.Book `json:"book"`
}

// LibraryView is a loan as a librarian sees it from their library.
type LibraryView struct {
	Loan            Loan         `json:"loan"`
	Book            catalog.Book `json:"book"`
	Status          Status       `json:"status"`
	AvailableCopies int          `json:"availableCopies"`
}
