package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleetops/internal/domain"
	"github.com/pkordes/fleetops/internal/repo"
)

func TestTripRepo_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	v := createVehicle(t, s, domain.VehicleOnTrip)
	d := createDriver(t, s)

	trip := createTrip(t, s, v, d, domain.TripDispatched)
	got, err := s.Trips().GetByIDForUpdate(ctx, trip.ID)

	require.NoError(t, err)
	assert.Equal(t, v.ID, got.VehicleID)
	assert.Equal(t, d.ID, got.DriverID)
	assert.Equal(t, 12.5, got.CargoWeight)
	assert.Equal(t, domain.TripDispatched, got.Status)
	assert.Nil(t, got.ClosedAt)
}

// A trip insert whose references are gone is a server fault, not a client
// conflict: the rows were checked before the insert and deleted in between.
func TestTripRepo_Create_MissingReference(t *testing.T) {
	s := newTestStore(t)
	v := createVehicle(t, s, domain.VehicleAvailable)
	d := createDriver(t, s)

	tests := map[string]domain.Trip{
		"vehicle": {VehicleID: uuid.New(), DriverID: d.ID, CargoWeight: 1, Status: domain.TripDraft},
		"driver":  {VehicleID: v.ID, DriverID: uuid.New(), CargoWeight: 1, Status: domain.TripDraft},
	}
	for name, trip := range tests {
		t.Run(name, func(t *testing.T) {
			err := s.RunInTx(context.Background(), func(tx repo.Repos) error {
				_, err := tx.Trips().Create(context.Background(), trip)
				return err
			})

			assert.ErrorIs(t, err, domain.ErrInconsistent)
			assert.NotErrorIs(t, err, domain.ErrConflict)
			assert.NotContains(t, err.Error(), "referenced by trips")
		})
	}
}

func TestTripRepo_OneDispatchedTripPerVehicle(t *testing.T) {
	s := newTestStore(t)
	v := createVehicle(t, s, domain.VehicleOnTrip)
	d := createDriver(t, s)
	createTrip(t, s, v, d, domain.TripDispatched)

	err := s.RunInTx(context.Background(), func(tx repo.Repos) error {
		_, err := tx.Trips().Create(context.Background(), domain.Trip{
			VehicleID: v.ID, DriverID: d.ID, CargoWeight: 1, Status: domain.TripDispatched,
		})
		return err
	})

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "vehicle already has a dispatched trip")
}

func TestTripRepo_UpdateStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	v := createVehicle(t, s, domain.VehicleOnTrip)
	d := createDriver(t, s)
	trip := createTrip(t, s, v, d, domain.TripDispatched)

	_, err := s.Trips().UpdateStatus(ctx, trip.ID, domain.TripDraft, domain.TripCancelled)
	assert.ErrorIs(t, err, domain.ErrConflict, "trip is not DRAFT")

	done, err := s.Trips().UpdateStatus(ctx, trip.ID, domain.TripDispatched, domain.TripCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.TripCompleted, done.Status)
	assert.NotNil(t, done.ClosedAt)

	_, err = s.Trips().UpdateStatus(ctx, uuid.New(), domain.TripDispatched, domain.TripCompleted)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTripRepo_CountActiveByDriver(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d := createDriver(t, s)
	createTrip(t, s, createVehicle(t, s, domain.VehicleOnTrip), d, domain.TripDispatched)
	createTrip(t, s, createVehicle(t, s, domain.VehicleOnTrip), d, domain.TripDispatched)
	createTrip(t, s, createVehicle(t, s, domain.VehicleAvailable), d, domain.TripDraft)

	n, err := s.Trips().CountActiveByDriver(ctx, d.ID)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestTripRepo_ListPaged(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	v := createVehicle(t, s, domain.VehicleAvailable)
	d := createDriver(t, s)
	for range 3 {
		createTrip(t, s, v, d, domain.TripDraft)
	}

	page, total, err := s.Trips().ListPaged(ctx, domain.TripFilter{Status: domain.TripDraft}, domain.PaginationParams{Page: 1, Limit: 2})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(3))
	assert.Len(t, page, 2)
}

func TestTripEventRepo_AppendAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	v := createVehicle(t, s, domain.VehicleAvailable)
	d := createDriver(t, s)
	trip := createTrip(t, s, v, d, domain.TripDraft)

	first, err := s.TripEvents().Append(ctx, domain.TripEvent{TripID: trip.ID, VehicleID: v.ID, DriverID: d.ID, To: domain.TripDraft})
	require.NoError(t, err)
	_, err = s.TripEvents().Append(ctx, domain.TripEvent{TripID: trip.ID, VehicleID: v.ID, DriverID: d.ID, From: domain.TripDraft, To: domain.TripCancelled})
	require.NoError(t, err)

	evs, err := s.TripEvents().ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, first.ID, evs[0].ID)
	assert.Equal(t, domain.TripStatus(""), evs[0].From)
	assert.Equal(t, domain.TripDraft, evs[1].From)
	assert.Equal(t, domain.TripCancelled, evs[1].To)
}

func TestStore_RunInTx_RollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	v := createVehicle(t, s, domain.VehicleAvailable)
	d := createDriver(t, s)
	boom := errors.New("boom")

	err := s.RunInTx(ctx, func(tx repo.Repos) error {
		ok, err := tx.Vehicles().SetStatus(ctx, v.ID, domain.VehicleAvailable, domain.VehicleOnTrip)
		require.NoError(t, err)
		require.True(t, ok)
		createTrip(t, tx, v, d, domain.TripDispatched)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Vehicles().GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleAvailable, got.Status)
	n, err := s.Trips().CountActiveByDriver(ctx, d.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
