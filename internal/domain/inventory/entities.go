package inventory

import (
	"fmt"

	"oneshelf-backend/internal/domain/errs"
)

var (
	ErrNoCopiesAvailable = fmt.Errorf("%w: no copies for requested book available", errs.ErrConflict)
	ErrUnknownHolding    = fmt.Errorf("%w: library does not hold requested book", errs.ErrConflict)
)

// Key identifies one holding.
type Key struct {
	LibraryID uint64
	BookID    uint64
	AuthorID  uint64
}

func (k Key) String() string {
	return fmt.Sprintf("library=%d book=%d author=%d", k.LibraryID, k.BookID, k.AuthorID)
}

// Holding is the number of copies a library currently has on the shelf for one
// book. Table: library_contains.
type Holding struct {
	LibraryID  uint64 `gorm:"column:library_id;primaryKey;autoIncrement:false" json:"libraryId"`
	BookID     uint64 `gorm:"column:book_id;primaryKey;autoIncrement:false" json:"bookId"`
	AuthorID   uint64 `gorm:"column:author_id;primaryKey;autoIncrement:false" json:"authorId"`
	NoOfCopies int    `gorm:"column:no_of_copies;not null;default:0;check:chk_library_contains_copies,no_of_copies >= 0" json:"noOfCopies"`
}

func (Holding) TableName() string { return "library_contains" }
