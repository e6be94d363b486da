package approval

type ApproveInput struct {
	LoanID   uint64 `json:"-"`
	UserID   uint64 `json:"userId"`
	BookID   uint64 `json:"bookId"`
	AuthorID uint64 `json:"authorId"`
}

type ApprovalDTO struct {
	LoanID      uint64 `json:"loanId"`
	UserID      uint64 `json:"userId"`
	BookID      uint64 `json:"bookId"`
	AuthorID    uint64 `json:"authorId"`
	LibraryID   uint64 `json:"libraryId"`
	LibrarianID uint64 `json:"librarianId"`
	Status      string `json:"status"`
}
