package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleetops/internal/domain"
)

func TestVehicleRepo_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v := createVehicle(t, s, domain.VehicleAvailable)
	assert.NotEqual(t, uuid.Nil, v.ID, "ID should be DB-generated UUID")
	assert.False(t, v.CreatedAt.IsZero())

	got, err := s.Vehicles().GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.LicensePlate, got.LicensePlate)
	assert.Equal(t, 20.0, got.MaxCapacity)
	assert.Equal(t, domain.VehicleAvailable, got.Status)
}

func TestVehicleRepo_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Vehicles().GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVehicleRepo_DuplicatePlate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	v := createVehicle(t, s, domain.VehicleAvailable)

	_, err := s.Vehicles().Create(ctx, domain.Vehicle{LicensePlate: v.LicensePlate, MaxCapacity: 1, Status: domain.VehicleAvailable})

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "license plate is already registered")
}

func TestVehicleRepo_SetStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	v := createVehicle(t, s, domain.VehicleAvailable)

	ok, err := s.Vehicles().SetStatus(ctx, v.ID, domain.VehicleAvailable, domain.VehicleOnTrip)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second claim loses: the row is no longer AVAILABLE.
	ok, err = s.Vehicles().SetStatus(ctx, v.ID, domain.VehicleAvailable, domain.VehicleOnTrip)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVehicleRepo_UpdateKeepsOnTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	v := createVehicle(t, s, domain.VehicleOnTrip)

	v.Status = domain.VehicleInShop
	v.MaxCapacity = 30
	got, err := s.Vehicles().Update(ctx, v)

	require.NoError(t, err)
	assert.Equal(t, domain.VehicleOnTrip, got.Status)
	assert.Equal(t, 30.0, got.MaxCapacity)
}

func TestVehicleRepo_ListPaged_FilterByStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createVehicle(t, s, domain.VehicleAvailable)
	shop := createVehicle(t, s, domain.VehicleInShop)

	vs, total, err := s.Vehicles().ListPaged(ctx, domain.VehicleInShop, domain.PaginationParams{Page: 1, Limit: 100})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(1))
	ids := make([]uuid.UUID, 0, len(vs))
	for _, v := range vs {
		assert.Equal(t, domain.VehicleInShop, v.Status)
		ids = append(ids, v.ID)
	}
	assert.Contains(t, ids, shop.ID)
}

func TestVehicleRepo_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	v := createVehicle(t, s, domain.VehicleAvailable)

	require.NoError(t, s.Vehicles().Delete(ctx, v.ID))
	assert.ErrorIs(t, s.Vehicles().Delete(ctx, v.ID), domain.ErrNotFound)
}
