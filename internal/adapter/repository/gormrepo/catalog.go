package gormrepo

import (
	"context"

	"oneshelf-backend/internal/domain/catalog"

	"gorm.io/gorm"
)

type CatalogRepository struct{ db *gorm.DB }

func NewCatalogRepository(db *gorm.DB) *CatalogRepository { return &CatalogRepository{db: db} }

func (r *CatalogRepository) GetBook(ctx context.Context, bookID, authorID uint64) (*catalog.Book, error) {
	var out catalog.Book
	res := r.db.WithContext(ctx).
		Where("book_id = ? AND author_id = ?", bookID, authorID).
		Take(&out)
	return &out, res.Error
}

func (r *CatalogRepository) LibraryOfLibrarian(ctx context.Context, librarianID uint64) (*uint64, error) {
	var out catalog.Librarian
	res := r.db.WithContext(ctx).Where("librarian_id = ?", librarianID).Take(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return out.LibraryID, nil
}
