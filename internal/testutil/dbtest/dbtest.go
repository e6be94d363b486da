// Package dbtest opens a migrated in-memory SQLite database and seeds the
// reference rows loan tests need.
package dbtest

import (
	"testing"

	"oneshelf-backend/internal/domain/catalog"
	"oneshelf-backend/internal/domain/inventory"
	"oneshelf-backend/internal/domain/loan"
	"oneshelf-backend/internal/infrastructure/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a fresh schema. The pool is pinned to one connection that
// never expires, since every new connection to :memory: is a new database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenGormWithDialector(sqlite.Open(":memory:"), logger.Silent)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func Book(t testing.TB, gdb *gorm.DB, bookID, authorID uint64, title string) catalog.Book {
	t.Helper()
	b := catalog.Book{ID: bookID, AuthorID: authorID, Title: title, Genre: "fiction"}
	if err := gdb.Create(&b).Error; err != nil {
		t.Fatalf("seed book: %v", err)
	}
	return b
}

// Librarian seeds a staff row; a zero libraryID leaves it unappointed.
func Librarian(t testing.TB, gdb *gorm.DB, librarianID, libraryID uint64) {
	t.Helper()
	l := catalog.Librarian{ID: librarianID}
	if libraryID != 0 {
		l.LibraryID = &libraryID
	}
	if err := gdb.Create(&l).Error; err != nil {
		t.Fatalf("seed librarian: %v", err)
	}
}

func Holding(t testing.TB, gdb *gorm.DB, k inventory.Key, copies int) {
	t.Helper()
	h := inventory.Holding{LibraryID: k.LibraryID, BookID: k.BookID, AuthorID: k.AuthorID, NoOfCopies: copies}
	if err := gdb.Create(&h).Error; err != nil {
		t.Fatalf("seed holding: %v", err)
	}
}

// Copies reads the shelf count for k, failing the test if the row is gone.
func Copies(t testing.TB, gdb *gorm.DB, k inventory.Key) int {
	t.Helper()
	var h inventory.Holding
	err := gdb.Where("library_id = ? AND book_id = ? AND author_id = ?", k.LibraryID, k.BookID, k.AuthorID).
		Take(&h).Error
	if err != nil {
		t.Fatalf("read holding %s: %v", k, err)
	}
	return h.NoOfCopies
}

// Rows counts loans and associations.
func Rows(t testing.TB, gdb *gorm.DB) (loans, associations int64) {
	t.Helper()
	if err := gdb.Model(&loan.Loan{}).Count(&loans).Error; err != nil {
		t.Fatalf("count loans: %v", err)
	}
	if err := gdb.Model(&loan.Association{}).Count(&associations).Error; err != nil {
		t.Fatalf("count associations: %v", err)
	}
	return loans, associations
}
