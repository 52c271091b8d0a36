// Package testutil opens throwaway sqlite databases for package tests.
package testutil

import (
	"database/sql"
	"testing"

	"github.com/jbweber/homelab/hil/internal/migrations"
	_ "modernc.org/sqlite"
)

// SetupTestDB opens an empty in-memory database named after the test. The
// pool is pinned to a single connection so the shared in-memory database
// never sees competing transactions; code under test must not use the
// *sql.DB while it holds a transaction.
func SetupTestDB(t *testing.T, testName string) (*sql.DB, func()) {
	t.Helper()

	db, err := sql.Open("sqlite", NewTestDSN(testName))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	// The database lives as long as its last connection
	return db, func() { db.Close() }
}

// SetupTestDBWithMigrations creates a test database with the full schema applied
func SetupTestDBWithMigrations(t *testing.T, testName string) (*sql.DB, func()) {
	t.Helper()
	db, cleanup := SetupTestDB(t, testName)

	if err := migrations.Run(db); err != nil {
		cleanup()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db, cleanup
}
