//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/scry-adaptive/internal/ciutil"
	"github.com/phrazzld/scry-adaptive/internal/platform/postgres"
)

// TestTimeout bounds connection checks made by the helpers.
const TestTimeout = 5 * time.Second

// urlEnvVars are consulted in order.
var urlEnvVars = []string{"SCRY_TEST_DATABASE_URL", "SCRY_TEST_DB_URL", "DATABASE_URL", "SCRY_DATABASE_URL"}

var migrateOnce sync.Once
var migrateErr error

// GetTestDatabaseURL returns the first database URL found in the environment,
// or "" when none is set.
func GetTestDatabaseURL() string {
	v, _ := ciutil.GetEnvWithFallbacks(urlEnvVars, nil)
	return v
}

// ShouldSkipDatabaseTest reports whether no database is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}

// GetTestDBWithT opens a connection to the test database and applies the
// schema migrations once per test binary. The test is skipped when no URL
// is configured, except under CI where a missing database is a failure. The
// connection is closed on cleanup.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		if ciutil.IsCI() {
			t.Fatal("no test database configured in CI; set SCRY_TEST_DATABASE_URL")
		}
		t.Skip("SCRY_TEST_DATABASE_URL or DATABASE_URL not set - skipping integration test")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		t.Fatalf("Failed to open database connection to %s: %v", maskDatabaseURL(dbURL), err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		t.Fatalf("Database ping failed for %s: %v", maskDatabaseURL(dbURL), err)
	}

	migrateOnce.Do(func() {
		migrateErr = postgres.Migrate(context.Background(), db, postgres.MigrateUp, slog.Default())
	})
	if migrateErr != nil {
		_ = db.Close()
		t.Fatalf("Failed to apply migrations: %v", migrateErr)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close database connection: %v", err)
		}
	})
	return db
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// maskDatabaseURL hides the password in a database URL for logging.
func maskDatabaseURL(dbURL string) string {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	if parsed.User != nil {
		parsed.User = url.UserPassword(parsed.User.Username(), "****")
		return parsed.String()
	}
	return dbURL
}
