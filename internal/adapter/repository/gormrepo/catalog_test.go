package gormrepo

import (
	"context"
	"errors"
	"testing"

	"oneshelf-backend/internal/testutil/dbtest"

	"gorm.io/gorm"
)

func TestCatalogRepository_GetBook(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()
	dbtest.Book(t, db, 10, 20, "Dune")
	dbtest.Book(t, db, 10, 21, "Dune (annotated)")

	b, err := repo.GetBook(ctx, 10, 21)
	if err != nil || b.Title != "Dune (annotated)" {
		t.Fatalf("GetBook: (%+v, %v)", b, err)
	}
	if _, err := repo.GetBook(ctx, 10, 22); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}
}

func TestCatalogRepository_LibraryOfLibrarian(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()
	dbtest.Librarian(t, db, 3, 1)
	dbtest.Librarian(t, db, 4, 0)

	lib, err := repo.LibraryOfLibrarian(ctx, 3)
	if err != nil || lib == nil || *lib != 1 {
		t.Fatalf("appointed: (%v, %v)", lib, err)
	}
	lib, err = repo.LibraryOfLibrarian(ctx, 4)
	if err != nil || lib != nil {
		t.Fatalf("unappointed: want (nil, nil), got (%v, %v)", lib, err)
	}
	if _, err := repo.LibraryOfLibrarian(ctx, 5); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("unknown: want ErrRecordNotFound, got %v", err)
	}
}
