package catalog

import "context"

// Book is keyed by (book_id, author_id); the same title id may exist for
// several authors.
type Book struct {
	ID       uint64 `gorm:"column:book_id;primaryKey;autoIncrement:false" json:"id"`
	AuthorID uint64 `gorm:"column:author_id;primaryKey;autoIncrement:false" json:"authorId"`
	Title    string `gorm:"column:title;size:255;not null" json:"title"`
	Synopsis string `gorm:"column:synopsis;type:text" json:"synopsis"`
	Genre    string `gorm:"column:genre;size:64" json:"genre"`
}

func (Book) TableName() string { return "book" }

// Librarian links a staff account to the library it was appointed to.
// LibraryID is nil once the librarian has been unappointed.
type Librarian struct {
	ID        uint64  `gorm:"column:librarian_id;primaryKey;autoIncrement:false" json:"id"`
	LibraryID *uint64 `gorm:"column:library_id;index" json:"libraryId"`
}

func (Librarian) TableName() string { return "librarian" }

// Reader is the read-only view of reference data the loan lifecycle needs.
type Reader interface {
	GetBook(ctx context.Context, bookID, authorID uint64) (*Book, error)
	// LibraryOfLibrarian returns gorm.ErrRecordNotFound for an unknown
	// librarian and a nil id for one without an appointment.
	LibraryOfLibrarian(ctx context.Context, librarianID uint64) (*uint64, error)
}
