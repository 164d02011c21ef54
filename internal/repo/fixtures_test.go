package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleetops/internal/domain"
	"github.com/pkordes/fleetops/internal/repo"
	"github.com/pkordes/fleetops/testutil"
)

// newTestStore returns a Store bound to a transaction that is rolled back
// when the test finishes, giving free per-test isolation.
func newTestStore(t *testing.T) repo.Store {
	t.Helper()
	return repo.NewStore(testutil.NewTx(t))
}

// unique returns a short random suffix so natural keys never collide with
// rows committed by other test runs.
func unique(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

func createVehicle(t *testing.T, s repo.Repos, status domain.VehicleStatus) domain.Vehicle {
	t.Helper()
	v, err := s.Vehicles().Create(context.Background(), domain.Vehicle{
		LicensePlate: unique("PLATE"),
		Model:        "Volvo FH",
		MaxCapacity:  20,
		Status:       status,
	})
	require.NoError(t, err)
	return v
}

func createDriver(t *testing.T, s repo.Repos) domain.Driver {
	t.Helper()
	d, err := s.Drivers().Create(context.Background(), domain.Driver{
		Name:          "Ana Silva",
		LicenseNumber: unique("DL"),
		LicenseExpiry: time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC),
		SafetyScore:   92.5,
		Status:        domain.DriverOnDuty,
	})
	require.NoError(t, err)
	return d
}

func createTrip(t *testing.T, s repo.Repos, v domain.Vehicle, d domain.Driver, status domain.TripStatus) domain.Trip {
	t.Helper()
	trip, err := s.Trips().Create(context.Background(), domain.Trip{
		VehicleID:   v.ID,
		DriverID:    d.ID,
		CargoWeight: 12.5,
		Status:      status,
	})
	require.NoError(t, err)
	return trip
}
