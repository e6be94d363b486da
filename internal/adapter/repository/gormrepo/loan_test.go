package gormrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"oneshelf-backend/internal/domain/inventory"
	domain "oneshelf-backend/internal/domain/loan"
	"oneshelf-backend/internal/testutil/dbtest"

	"gorm.io/gorm"
)

var day = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func makeLoan(userID uint64, ret time.Time) *domain.Loan {
	return &domain.Loan{UserID: userID, StartDate: day, ReturnDate: ret}
}

// requestLoan inserts a loan plus its pending association and returns the key.
func requestLoan(t *testing.T, repo *LoanRepository, userID, bookID, authorID uint64, ret time.Time) domain.Key {
	t.Helper()
	ctx := context.Background()
	l := makeLoan(userID, ret)
	if err := repo.CreateLoan(ctx, l); err != nil {
		t.Fatalf("CreateLoan: %v", err)
	}
	if l.ID == 0 {
		t.Fatalf("loan auto ID not set")
	}
	k := domain.Key{LoanID: l.ID, UserID: userID, BookID: bookID, AuthorID: authorID}
	if err := repo.CreateRequest(ctx, k); err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	return k
}

func TestLoanRepository_CreateAndGet(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	k := requestLoan(t, repo, 42, 10, 20, day.AddDate(0, 0, 14))

	got, err := repo.GetByID(ctx, k.LoanID)
	if err != nil {
		t.Fatalf("GetByID err: %v", err)
	}
	if got.UserID != 42 || got.Approved() {
		t.Fatalf("loan mismatch: %+v", got)
	}

	a, err := repo.GetAssociation(ctx, k.LoanID)
	if err != nil {
		t.Fatalf("GetAssociation err: %v", err)
	}
	if a.Status != domain.StatusPending || a.UserID != k.UserID || a.BookID != k.BookID || a.AuthorID != k.AuthorID {
		t.Fatalf("association mismatch: %+v", a)
	}

	if _, err := repo.GetByID(ctx, 9999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestLoanRepository_SecondAssociationRejected(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewLoanRepository(db)

	k := requestLoan(t, repo, 42, 10, 20, day.AddDate(0, 0, 14))
	k.BookID = 11
	if err := repo.CreateRequest(context.Background(), k); err == nil {
		t.Fatalf("a loan must not carry two associations")
	}
}

func TestLoanRepository_StatusCheck(t *testing.T) {
	db := dbtest.Open(t)
	err := db.Create(&domain.Association{LoanID: 1, UserID: 1, BookID: 1, AuthorID: 1, Status: "lost"}).Error
	if err == nil {
		t.Fatalf("unknown status must be rejected by the check constraint")
	}
}

func TestLoanRepository_SetApprover(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()
	k := requestLoan(t, repo, 42, 10, 20, day.AddDate(0, 0, 14))

	// wrong owner matches nothing
	if n, err := repo.SetApprover(ctx, k.LoanID, 43, 3); err != nil || n != 0 {
		t.Fatalf("SetApprover wrong user: (%d, %v)", n, err)
	}
	if n, err := repo.SetApprover(ctx, k.LoanID, 42, 3); err != nil || n != 1 {
		t.Fatalf("SetApprover: (%d, %v)", n, err)
	}
	got, _ := repo.GetByID(ctx, k.LoanID)
	if got.LibrarianID == nil || *got.LibrarianID != 3 {
		t.Fatalf("librarian not recorded: %+v", got)
	}
}

func TestLoanRepository_PromoteRequestToActive(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()
	k := requestLoan(t, repo, 42, 10, 20, day.AddDate(0, 0, 14))

	wrong := k
	wrong.AuthorID = 21
	if n, err := repo.PromoteRequestToActive(ctx, wrong); err != nil || n != 0 {
		t.Fatalf("promote wrong author: (%d, %v)", n, err)
	}
	if n, err := repo.PromoteRequestToActive(ctx, k); err != nil || n != 1 {
		t.Fatalf("promote: (%d, %v)", n, err)
	}
	// already active: nothing pending to flip
	if n, err := repo.PromoteRequestToActive(ctx, k); err != nil || n != 0 {
		t.Fatalf("second promote: (%d, %v)", n, err)
	}
	a, _ := repo.GetAssociation(ctx, k.LoanID)
	if a.Status != domain.StatusActive {
		t.Fatalf("status=%s", a.Status)
	}
}

func TestLoanRepository_DeletesMatchStatus(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()
	k := requestLoan(t, repo, 42, 10, 20, day.AddDate(0, 0, 14))

	if n, err := repo.DeleteActive(ctx, k); err != nil || n != 0 {
		t.Fatalf("DeleteActive on pending: (%d, %v)", n, err)
	}
	// loan still referenced
	if n, err := repo.DeleteLoanIfOrphaned(ctx, k.LoanID, k.UserID); err != nil || n != 0 {
		t.Fatalf("DeleteLoanIfOrphaned while referenced: (%d, %v)", n, err)
	}
	if n, err := repo.DeleteRequest(ctx, k); err != nil || n != 1 {
		t.Fatalf("DeleteRequest: (%d, %v)", n, err)
	}
	if n, err := repo.DeleteRequest(ctx, k); err != nil || n != 0 {
		t.Fatalf("second DeleteRequest: (%d, %v)", n, err)
	}
	if n, err := repo.DeleteLoanIfOrphaned(ctx, k.LoanID, 43); err != nil || n != 0 {
		t.Fatalf("DeleteLoanIfOrphaned wrong user: (%d, %v)", n, err)
	}
	if n, err := repo.DeleteLoanIfOrphaned(ctx, k.LoanID, k.UserID); err != nil || n != 1 {
		t.Fatalf("DeleteLoanIfOrphaned: (%d, %v)", n, err)
	}
	if loans, assocs := dbtest.Rows(t, db); loans != 0 || assocs != 0 {
		t.Fatalf("rows left: loans=%d associations=%d", loans, assocs)
	}
}

func TestLoanRepository_GetForUpdate(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()
	k := requestLoan(t, repo, 42, 10, 20, day.AddDate(0, 0, 14))

	err := db.Transaction(func(tx *gorm.DB) error {
		l, err := NewLoanRepository(tx).GetForUpdate(ctx, k.LoanID, 42)
		if err != nil {
			return err
		}
		if l.ID != k.LoanID {
			t.Fatalf("locked wrong loan: %+v", l)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("GetForUpdate: %v", err)
	}
	if _, err := repo.GetForUpdate(ctx, k.LoanID, 43); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("other user's loan must not be found, got %v", err)
	}
}

func TestLoanRepository_ListForUser(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()
	dbtest.Book(t, db, 10, 20, "Dune")
	dbtest.Book(t, db, 11, 20, "Children of Dune")

	late := requestLoan(t, repo, 42, 10, 20, day.AddDate(0, 0, 30))
	early := requestLoan(t, repo, 42, 11, 20, day.AddDate(0, 0, 7))
	requestLoan(t, repo, 43, 10, 20, day.AddDate(0, 0, 7))
	active := requestLoan(t, repo, 42, 10, 20, day.AddDate(0, 0, 10))
	if _, err := repo.PromoteRequestToActive(ctx, active); err != nil {
		t.Fatalf("promote: %v", err)
	}

	pending, err := repo.ListForUser(ctx, 42, domain.StatusPending)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("want 2 pending, got %d", len(pending))
	}
	if pending[0].Loan.ID != early.LoanID || pending[1].Loan.ID != late.LoanID {
		t.Fatalf("want ordering by return date, got %d then %d", pending[0].Loan.ID, pending[1].Loan.ID)
	}
	if pending[0].Book.Title != "Children of Dune" || !pending[0].Loan.ReturnDate.Equal(day.AddDate(0, 0, 7)) {
		t.Fatalf("joined row mismatch: %+v", pending[0])
	}

	act, err := repo.ListForUser(ctx, 42, domain.StatusActive)
	if err != nil || len(act) != 1 || act[0].Loan.ID != active.LoanID {
		t.Fatalf("active: (%+v, %v)", act, err)
	}

	none, err := repo.ListForUser(ctx, 99, domain.StatusActive)
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("unknown user: (%#v, %v)", none, err)
	}
}

func TestLoanRepository_ListForBook(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	a := requestLoan(t, repo, 42, 10, 20, day.AddDate(0, 0, 7))
	requestLoan(t, repo, 43, 10, 21, day.AddDate(0, 0, 7))
	b := requestLoan(t, repo, 44, 10, 20, day.AddDate(0, 0, 7))

	got, err := repo.ListForBook(ctx, 10, 20, domain.StatusPending)
	if err != nil {
		t.Fatalf("ListForBook: %v", err)
	}
	if len(got) != 2 || got[0].LoanID != a.LoanID || got[1].LoanID != b.LoanID {
		t.Fatalf("unexpected associations: %+v", got)
	}
	if act, err := repo.ListForBook(ctx, 10, 20, domain.StatusActive); err != nil || len(act) != 0 {
		t.Fatalf("active: (%+v, %v)", act, err)
	}
}

func TestLoanRepository_LibraryViews(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	dbtest.Book(t, db, 10, 20, "Dune")
	dbtest.Book(t, db, 11, 20, "Emma")
	dbtest.Holding(t, db, inventory.Key{LibraryID: 1, BookID: 10, AuthorID: 20}, 2)
	dbtest.Holding(t, db, inventory.Key{LibraryID: 1, BookID: 11, AuthorID: 20}, 0)
	dbtest.Holding(t, db, inventory.Key{LibraryID: 2, BookID: 11, AuthorID: 20}, 1)
	dbtest.Librarian(t, db, 3, 1)
	dbtest.Librarian(t, db, 4, 2)

	servable := requestLoan(t, repo, 42, 10, 20, day.AddDate(0, 0, 7))
	requestLoan(t, repo, 43, 11, 20, day.AddDate(0, 0, 7)) // only library 2 has a copy

	pending1, err := repo.ListPendingForLibrary(ctx, 1)
	if err != nil {
		t.Fatalf("ListPendingForLibrary: %v", err)
	}
	if len(pending1) != 1 || pending1[0].Loan.ID != servable.LoanID || pending1[0].AvailableCopies != 2 {
		t.Fatalf("library 1 pending: %+v", pending1)
	}
	if pending2, _ := repo.ListPendingForLibrary(ctx, 2); len(pending2) != 1 || pending2[0].Book.Title != "Emma" {
		t.Fatalf("library 2 pending: %+v", pending2)
	}

	// approved by a library 1 librarian
	if _, err := repo.SetApprover(ctx, servable.LoanID, 42, 3); err != nil {
		t.Fatalf("SetApprover: %v", err)
	}
	if _, err := repo.PromoteRequestToActive(ctx, servable); err != nil {
		t.Fatalf("promote: %v", err)
	}

	active1, err := repo.ListActiveForLibrary(ctx, 1)
	if err != nil {
		t.Fatalf("ListActiveForLibrary: %v", err)
	}
	if len(active1) != 1 || active1[0].Status != domain.StatusActive || *active1[0].Loan.LibrarianID != 3 {
		t.Fatalf("library 1 active: %+v", active1)
	}
	if active2, err := repo.ListActiveForLibrary(ctx, 2); err != nil || len(active2) != 0 {
		t.Fatalf("library 2 active: (%+v, %v)", active2, err)
	}
}
