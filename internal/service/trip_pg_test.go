package service_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/fleetops/internal/domain"
	"github.com/pkordes/fleetops/internal/repo"
	"github.com/pkordes/fleetops/internal/service"
	"github.com/pkordes/fleetops/testutil"
)

// pgFleet seeds committed rows on the test database and removes them, with
// every trip that references them, when the test finishes.
type pgFleet struct {
	pool     *pgxpool.Pool
	store    repo.Store
	vehicles []uuid.UUID
	drivers  []uuid.UUID
}

func newPGFleet(t *testing.T) *pgFleet {
	t.Helper()
	pool := testutil.NewPool(t)
	f := &pgFleet{pool: pool, store: repo.NewStore(pool)}
	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = pool.Exec(ctx, `DELETE FROM trips WHERE vehicle_id = ANY($1) OR driver_id = ANY($2)`, f.vehicles, f.drivers)
		_, _ = pool.Exec(ctx, `DELETE FROM drivers WHERE id = ANY($1)`, f.drivers)
		_, _ = pool.Exec(ctx, `DELETE FROM vehicles WHERE id = ANY($1)`, f.vehicles)
	})
	return f
}

func (f *pgFleet) addVehicle(t *testing.T) domain.Vehicle {
	t.Helper()
	v, err := f.store.Vehicles().Create(context.Background(), domain.Vehicle{
		LicensePlate: "RACE-" + uuid.NewString()[:8],
		MaxCapacity:  20,
		Status:       domain.VehicleAvailable,
	})
	require.NoError(t, err)
	f.vehicles = append(f.vehicles, v.ID)
	return v
}

func (f *pgFleet) addDriver(t *testing.T) domain.Driver {
	t.Helper()
	d, err := f.store.Drivers().Create(context.Background(), domain.Driver{
		Name:          "Race Driver",
		LicenseNumber: "RACE-" + uuid.NewString()[:8],
		LicenseExpiry: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		SafetyScore:   90,
		Status:        domain.DriverOnDuty,
	})
	require.NoError(t, err)
	f.drivers = append(f.drivers, d.ID)
	return d
}

// race runs every request concurrently and counts winners. Any failure other
// than a rejection for want fails the test.
func race(t *testing.T, svc *service.TripService, reqs []service.DispatchRequest, want domain.RejectionReason) (wins, losses int32) {
	t.Helper()
	var w, l atomic.Int32
	var g errgroup.Group
	for _, req := range reqs {
		g.Go(func() error {
			_, err := svc.Dispatch(context.Background(), req)
			switch reason, _ := domain.RejectionOf(err); {
			case err == nil:
				w.Add(1)
			case reason == want:
				l.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	return w.Load(), l.Load()
}

func TestTripService_Postgres_ConcurrentDispatchOfOneVehicle(t *testing.T) {
	f := newPGFleet(t)
	v := f.addVehicle(t)

	const n = 12
	reqs := make([]service.DispatchRequest, n)
	for i := range reqs {
		reqs[i] = service.DispatchRequest{VehicleID: v.ID, DriverID: f.addDriver(t).ID, CargoWeight: 10}
	}
	svc := service.NewTripService(f.store)

	wins, losses := race(t, svc, reqs, domain.ReasonVehicleUnavailable)

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(n-1), losses)

	got, err := f.store.Vehicles().GetByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleOnTrip, got.Status)

	var dispatched int
	require.NoError(t, f.pool.QueryRow(context.Background(),
		`SELECT count(*) FROM trips WHERE vehicle_id = $1 AND status = 'DISPATCHED'`, v.ID).Scan(&dispatched))
	assert.Equal(t, 1, dispatched)
}

// With one trip per driver enabled, racing one driver across several
// vehicles also yields a single winner; the driver row lock serializes them.
func TestTripService_Postgres_ConcurrentDispatchOfOneDriver(t *testing.T) {
	f := newPGFleet(t)
	d := f.addDriver(t)

	const n = 8
	reqs := make([]service.DispatchRequest, n)
	for i := range reqs {
		reqs[i] = service.DispatchRequest{VehicleID: f.addVehicle(t).ID, DriverID: d.ID, CargoWeight: 10}
	}
	svc := service.NewTripService(f.store, service.WithOneTripPerDriver(true))

	wins, losses := race(t, svc, reqs, domain.ReasonDriverBusy)

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(n-1), losses)

	var onTrip int
	require.NoError(t, f.pool.QueryRow(context.Background(),
		`SELECT count(*) FROM vehicles WHERE id = ANY($1) AND status = 'ON_TRIP'`, f.vehicles).Scan(&onTrip))
	assert.Equal(t, 1, onTrip, "losing dispatches must release their vehicles")
}
