package loan

import (
	"time"
)

type RequestInput struct {
	BookID     uint64    `json:"bookId"`
	AuthorID   uint64    `json:"authorId"`
	StartDate  time.Time `json:"startDate"`
	ReturnDate time.Time `json:"retDate"`
}

// ReleaseInput ends a loan's association with a book. Approved selects
// between returning an active loan and cancelling a pending request.
type ReleaseInput struct {
	LoanID   uint64 `json:"loanId"`
	BookID   uint64 `json:"bookId"`
	AuthorID uint64 `json:"authorId"`
	Approved bool   `json:"approved"`
}

type AvailabilityDTO struct {
	LibraryID  uint64 `json:"libraryId"`
	BookID     uint64 `json:"bookId"`
	AuthorID   uint64 `json:"authorId"`
	NoOfCopies int    `json:"noOfCopies"`
}
