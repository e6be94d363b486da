package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	mw "oneshelf-backend/internal/adapter/middleware"
	"oneshelf-backend/internal/domain/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestToken_RoundTrips(t *testing.T) {
	raw, err := execute(t, "token", "--secret", "s3cret", "--id", "3", "--username", "lib",
		"--role", "librarian", "--library", "1")
	require.NoError(t, err)

	claim, err := mw.ParseToken([]byte("s3cret"), raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), claim.UserID)
	assert.Equal(t, auth.RoleLibrarian, claim.Role)
	require.NotNil(t, claim.LibraryID)
	assert.Equal(t, uint64(1), *claim.LibraryID)
}

func TestToken_SecretFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	raw, err := execute(t, "token", "--id", "42")
	require.NoError(t, err)

	claim, err := mw.ParseToken([]byte("from-env"), raw)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, claim.Role)
	assert.Nil(t, claim.LibraryID)
}

func TestToken_Rejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing id", args: []string{"token", "--secret", "x"}, want: "id"},
		{name: "unknown role", args: []string{"token", "--secret", "x", "--id", "1", "--role", "janitor"}, want: "unknown role"},
		{name: "staff without library", args: []string{"token", "--secret", "x", "--id", "1", "--role", "librarian"}, want: "--library"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMigrate_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oneshelf.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", path)

	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "migrated sqlite schema", out)

	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, table := range []string{"loan", "loan_association", "library_contains", "book", "librarian"} {
		assert.True(t, gdb.Migrator().HasTable(table), "table %s", table)
	}
}
