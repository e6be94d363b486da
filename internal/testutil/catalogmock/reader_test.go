package catalogmock

import (
	"context"
	"errors"
	"testing"

	"oneshelf-backend/internal/domain/catalog"

	"gorm.io/gorm"
)

func TestBooks(t *testing.T) {
	ctx := context.Background()
	r := Books(catalog.Book{ID: 1, AuthorID: 2, Title: "Dune"})

	b, err := r.GetBook(ctx, 1, 2)
	if err != nil || b.Title != "Dune" {
		t.Fatalf("GetBook known: got (%+v, %v)", b, err)
	}
	if _, err := r.GetBook(ctx, 1, 3); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetBook wrong author: want ErrRecordNotFound, got %v", err)
	}
}

func TestReader_Defaults(t *testing.T) {
	ctx := context.Background()
	r := &Reader{}
	if _, err := r.GetBook(ctx, 1, 1); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetBook default: %v", err)
	}
	if _, err := r.LibraryOfLibrarian(ctx, 1); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("LibraryOfLibrarian default: %v", err)
	}

	lib := uint64(4)
	r.LibraryOfLibrarianFn = func(context.Context, uint64) (*uint64, error) { return &lib, nil }
	got, err := r.LibraryOfLibrarian(ctx, 1)
	if err != nil || got == nil || *got != 4 {
		t.Fatalf("LibraryOfLibrarian fn: got (%v, %v)", got, err)
	}
}
