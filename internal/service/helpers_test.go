package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleetops/internal/domain"
	"github.com/pkordes/fleetops/internal/repo"
	"github.com/pkordes/fleetops/internal/repo/memrepo"
	"github.com/pkordes/fleetops/internal/service"
)

// today is the fixed "now" of every lifecycle test.
var today = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return today }

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.TripEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.TripEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []domain.TripEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.TripEvent(nil), p.events...)
}

// fixture is a TripService over a fresh in-memory store seeded with one
// AVAILABLE vehicle (capacity 20) and one ON_DUTY driver.
type fixture struct {
	store   *memrepo.Store
	svc     *service.TripService
	pub     *recordingPublisher
	vehicle domain.Vehicle
	driver  domain.Driver
}

func newFixture(t *testing.T, opts ...service.TripOption) *fixture {
	t.Helper()
	f := &fixture{store: memrepo.New(), pub: &recordingPublisher{}}
	f.vehicle = f.addVehicle(t, "V-1", 20, domain.VehicleAvailable)
	f.driver = f.addDriver(t, "LIC-1", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), domain.DriverOnDuty)

	opts = append([]service.TripOption{
		service.WithClock(fixedClock),
		service.WithPublisher(f.pub),
	}, opts...)
	f.svc = service.NewTripService(f.store, opts...)
	return f
}

func (f *fixture) addVehicle(t *testing.T, plate string, capacity float64, status domain.VehicleStatus) domain.Vehicle {
	t.Helper()
	v, err := f.store.Vehicles().Create(context.Background(), domain.Vehicle{
		LicensePlate: plate,
		MaxCapacity:  capacity,
		Status:       status,
	})
	require.NoError(t, err)
	return v
}

func (f *fixture) addDriver(t *testing.T, license string, expiry time.Time, status domain.DriverStatus) domain.Driver {
	t.Helper()
	d, err := f.store.Drivers().Create(context.Background(), domain.Driver{
		Name:          "Driver " + license,
		LicenseNumber: license,
		LicenseExpiry: expiry,
		SafetyScore:   90,
		Status:        status,
	})
	require.NoError(t, err)
	return d
}

func (f *fixture) vehicleStatus(t *testing.T, v domain.Vehicle) domain.VehicleStatus {
	t.Helper()
	got, err := f.store.Vehicles().GetByID(context.Background(), v.ID)
	require.NoError(t, err)
	return got.Status
}

func (f *fixture) tripCount(t *testing.T) int64 {
	t.Helper()
	_, total, err := f.store.Trips().ListPaged(context.Background(), domain.TripFilter{}, domain.PaginationParams{Page: 1, Limit: 100})
	require.NoError(t, err)
	return total
}

func (f *fixture) request(cargo float64) service.DispatchRequest {
	return service.DispatchRequest{VehicleID: f.vehicle.ID, DriverID: f.driver.ID, CargoWeight: cargo}
}

// deletingStore removes a driver at the start of every transaction, standing
// in for a concurrent delete that commits between validation and insert.
type deletingStore struct {
	repo.Store
	driverID uuid.UUID
}

func (s *deletingStore) RunInTx(ctx context.Context, fn func(tx repo.Repos) error) error {
	return s.Store.RunInTx(ctx, func(tx repo.Repos) error {
		if err := tx.Drivers().Delete(ctx, s.driverID); err != nil {
			return err
		}
		return fn(tx)
	})
}

// faultyStore wraps a real store and swaps in a failing TripEventRepo inside
// transactions, so the last write of every lifecycle transaction fails.
type faultyStore struct {
	repo.Store
	err error
}

func (s *faultyStore) RunInTx(ctx context.Context, fn func(tx repo.Repos) error) error {
	return s.Store.RunInTx(ctx, func(tx repo.Repos) error {
		return fn(faultyRepos{Repos: tx, err: s.err})
	})
}

type faultyRepos struct {
	repo.Repos
	err error
}

func (r faultyRepos) TripEvents() repo.TripEventRepo { return failingEvents{err: r.err} }

type failingEvents struct{ err error }

func (e failingEvents) Append(context.Context, domain.TripEvent) (domain.TripEvent, error) {
	return domain.TripEvent{}, e.err
}

func (e failingEvents) ListByTrip(context.Context, uuid.UUID) ([]domain.TripEvent, error) {
	return nil, e.err
}
