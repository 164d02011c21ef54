package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pkordes/fleetops/testutil"
)

// TestMain brings the test database schema up to date once for the whole
// package. Without TEST_DATABASE_URL it is a no-op and every test skips.
func TestMain(m *testing.M) {
	if err := testutil.MigrateUp(context.Background()); err != nil {
		log.Fatalf("TestMain: %v", err)
	}
	os.Exit(m.Run())
}
