package testutil

import (
	"os"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/elimu/storage/database"
)

// DatabaseURLEnv names the variable holding the DSN of a disposable postgres database.
const DatabaseURLEnv = "ELIMU_TEST_DATABASE_URL"

// PrepareDB opens & migrates the test database, and empties it. The test is skipped
// when no database is configured.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv(DatabaseURLEnv)
	if dsn == "" {
		t.Skipf("%s not set", DatabaseURLEnv)
	}
	db, err := database.OpenURL(dsn)
	if err != nil {
		t.Fatalf("OpenURL() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	ResetDB(t, db)
	return db
}

func ResetDB(t *testing.T, db *sqlx.DB) {
	t.Helper()
	if _, err := db.Exec(`TRUNCATE reviews, enrollments, lessons, courses`); err != nil {
		t.Fatalf("ResetDB() failed: %v", err)
	}
}
