package catalogmock

import (
	"context"

	"oneshelf-backend/internal/domain/catalog"

	"gorm.io/gorm"
)

var _ catalog.Reader = (*Reader)(nil)

// Reader is a function-backed catalog.Reader. Unset funcs behave like an
// empty catalog.
type Reader struct {
	GetBookFn            func(ctx context.Context, bookID, authorID uint64) (*catalog.Book, error)
	LibraryOfLibrarianFn func(ctx context.Context, librarianID uint64) (*uint64, error)
}

func (m *Reader) GetBook(ctx context.Context, bookID, authorID uint64) (*catalog.Book, error) {
	if m.GetBookFn != nil {
		return m.GetBookFn(ctx, bookID, authorID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Reader) LibraryOfLibrarian(ctx context.Context, librarianID uint64) (*uint64, error) {
	if m.LibraryOfLibrarianFn != nil {
		return m.LibraryOfLibrarianFn(ctx, librarianID)
	}
	return nil, gorm.ErrRecordNotFound
}

// Books is a Reader that knows exactly the given books.
func Books(books ...catalog.Book) *Reader {
	return &Reader{
		GetBookFn: func(_ context.Context, bookID, authorID uint64) (*catalog.Book, error) {
			for i := range books {
				if books[i].ID == bookID && books[i].AuthorID == authorID {
					b := books[i]
					return &b, nil
				}
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
}
