package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/labdesk/internal/db"
	"github.com/alexanderramin/labdesk/internal/repository"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestUoW creates a UnitOfWork backed by the given test database.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

var (
	testHashKey  = []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	testBlockKey = []byte("0123456789abcdef0123456789abcdef")
)

// NewTestCodec returns a cookie codec with fixed keys.
func NewTestCodec(t *testing.T) *repository.CookieCodec {
	t.Helper()
	codec, err := repository.NewCookieCodec(testHashKey, testBlockKey)
	if err != nil {
		t.Fatalf("failed to create cookie codec: %v", err)
	}
	return codec
}
