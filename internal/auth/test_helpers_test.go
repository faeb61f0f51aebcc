package auth

import (
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/avollmer/sentra/internal/infrastructure/config"
	"github.com/avollmer/sentra/internal/infrastructure/logging"
)

// testBcryptCost is the minimum bcrypt cost; tests hash many passwords and
// do not need the production work factor.
const testBcryptCost = 4

// testDB creates a temporary SQLite database with the auth schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "auth-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE accounts (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			failed_attempts INTEGER NOT NULL DEFAULT 0,
			locked INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;

		CREATE TABLE devices (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (owner_id) REFERENCES accounts(id) ON DELETE CASCADE
		) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	return db
}

// testService builds a Service over a temp database with fast hashing and a
// 1-hour token lifetime.
func testService(t *testing.T) (*Service, *SQLiteAccountRepository) {
	t.Helper()

	db := testDB(t)
	repo := NewAccountRepository(db)
	tokens := NewTokenService("test-secret-0123456789abcdef-0123456789", time.Hour)
	logger := logging.New(config.Logging{Level: "error", Format: "text"}, "test")

	return NewService(repo, NewHasher(testBcryptCost), tokens, logger), repo
}
