package service_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pkordes/fleetops/testutil"
)

// TestMain migrates the test database for the Postgres-backed lifecycle
// tests. Without TEST_DATABASE_URL it does nothing and those tests skip.
func TestMain(m *testing.M) {
	if err := testutil.MigrateUp(context.Background()); err != nil {
		log.Fatalf("TestMain: %v", err)
	}
	os.Exit(m.Run())
}
