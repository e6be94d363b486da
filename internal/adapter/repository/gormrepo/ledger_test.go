package gormrepo

import (
	"context"
	"errors"
	"testing"

	"oneshelf-backend/internal/domain/errs"
	"oneshelf-backend/internal/domain/inventory"
	"oneshelf-backend/internal/testutil/dbtest"

	"gorm.io/gorm"
)

func TestLedgerRepository_Decrement(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()
	k := inventory.Key{LibraryID: 1, BookID: 10, AuthorID: 20}
	dbtest.Holding(t, db, k, 2)

	for want := 1; want >= 0; want-- {
		if err := repo.Decrement(ctx, k); err != nil {
			t.Fatalf("Decrement: %v", err)
		}
		if got := dbtest.Copies(t, db, k); got != want {
			t.Fatalf("copies: want %d, got %d", want, got)
		}
	}

	err := repo.Decrement(ctx, k)
	if !errors.Is(err, inventory.ErrNoCopiesAvailable) || !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("empty shelf: want ErrNoCopiesAvailable, got %v", err)
	}
	if got := dbtest.Copies(t, db, k); got != 0 {
		t.Fatalf("count went negative: %d", got)
	}
}

func TestLedgerRepository_Decrement_UnknownHolding(t *testing.T) {
	db := dbtest.Open(t)
	err := NewLedgerRepository(db).Decrement(context.Background(), inventory.Key{LibraryID: 9, BookID: 9, AuthorID: 9})
	if !errors.Is(err, inventory.ErrNoCopiesAvailable) {
		t.Fatalf("want ErrNoCopiesAvailable, got %v", err)
	}
}

func TestLedgerRepository_Increment(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()
	k := inventory.Key{LibraryID: 1, BookID: 10, AuthorID: 20}
	dbtest.Holding(t, db, k, 0)

	if err := repo.Increment(ctx, k); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if got := dbtest.Copies(t, db, k); got != 1 {
		t.Fatalf("copies: want 1, got %d", got)
	}

	other := inventory.Key{LibraryID: 2, BookID: 10, AuthorID: 20}
	if err := repo.Increment(ctx, other); !errors.Is(err, inventory.ErrUnknownHolding) {
		t.Fatalf("unknown holding: want ErrUnknownHolding, got %v", err)
	}
}

func TestLedgerRepository_Get(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()
	k := inventory.Key{LibraryID: 1, BookID: 10, AuthorID: 20}
	dbtest.Holding(t, db, k, 5)

	h, err := repo.Get(ctx, k)
	if err != nil || h.NoOfCopies != 5 || h.LibraryID != k.LibraryID || h.BookID != k.BookID || h.AuthorID != k.AuthorID {
		t.Fatalf("Get: (%+v, %v)", h, err)
	}
	if _, err := repo.Get(ctx, inventory.Key{LibraryID: 1, BookID: 10, AuthorID: 21}); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}
}

func TestLedgerRepository_RollbackRestoresCount(t *testing.T) {
	db := dbtest.Open(t)
	k := inventory.Key{LibraryID: 1, BookID: 10, AuthorID: 20}
	dbtest.Holding(t, db, k, 1)
	sentinel := errors.New("abort")

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := NewLedgerRepository(tx).Decrement(context.Background(), k); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("want sentinel, got %v", err)
	}
	if got := dbtest.Copies(t, db, k); got != 1 {
		t.Fatalf("rollback must restore the copy, got %d", got)
	}
}
