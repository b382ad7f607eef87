package testdb

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/scry-study/internal/platform/postgres"
)

// TestTimeout bounds connection setup and migrations.
const TestTimeout = 10 * time.Second

// urlEnvVars are consulted in order.
var urlEnvVars = []string{"SCRY_TEST_DB_URL", "DATABASE_URL"}

// DatabaseURL returns the first configured test database URL, or "".
func DatabaseURL() string {
	for _, name := range urlEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// ShouldSkipDatabaseTest reports whether no test database is configured.
func ShouldSkipDatabaseTest() bool {
	return DatabaseURL() == ""
}

// MaskURL hides the password of a database URL for logging.
func MaskURL(dbURL string) string {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	return parsed.Redacted()
}

// Postgres opens the test database, applies migrations and closes the
// connection when the test ends. It skips the test when no URL is set.
func Postgres(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := DatabaseURL()
	if dbURL == "" {
		t.Skip("SCRY_TEST_DB_URL not set - skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, dbURL, nil)
	if err != nil {
		t.Fatalf("failed to connect to %s: %v", MaskURL(dbURL), err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("warning: failed to close database connection: %v", err)
		}
	})

	if err := postgres.Migrate(ctx, db, nil); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
	return db
}

// Reset deletes every deck and card.
func Reset(t *testing.T, db *sql.DB) {
	t.Helper()

	if _, err := db.ExecContext(context.Background(), "TRUNCATE cards, decks"); err != nil {
		t.Fatalf("failed to reset test database: %v", err)
	}
}
