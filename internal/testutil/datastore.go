package testutil

import (
	"fmt"
	"testing"

	"github.com/jbweber/homelab/hil/internal/datastore"
)

// NewTestDSN generates a DSN for an in-memory SQLite database for testing purposes.
func NewTestDSN(testName string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", testName)
}

// SetupTestDatastore returns a migrated datastore that is closed when the test ends.
func SetupTestDatastore(t *testing.T, testName string) *datastore.Datastore {
	t.Helper()
	db, cleanup := SetupTestDBWithMigrations(t, testName)
	t.Cleanup(cleanup)
	return datastore.FromDB(db)
}
