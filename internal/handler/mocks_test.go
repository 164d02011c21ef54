package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleetops/internal/domain"
	"github.com/pkordes/fleetops/internal/handler"
	"github.com/pkordes/fleetops/internal/service"
)

// The mocks below are test doubles for the handler's servicer interfaces.
// Set only the method fields your test needs; calling an unset one panics,
// which fails the test loudly.

type mockTripServicer struct {
	dispatch     func(ctx context.Context, req service.DispatchRequest) (domain.Trip, error)
	plan         func(ctx context.Context, req service.DispatchRequest) (domain.Trip, error)
	updateStatus func(ctx context.Context, id uuid.UUID, status domain.TripStatus) (domain.Trip, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listPaged    func(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error)
	events       func(ctx context.Context, id uuid.UUID) ([]domain.TripEvent, error)
}

func (m *mockTripServicer) Dispatch(ctx context.Context, req service.DispatchRequest) (domain.Trip, error) {
	return m.dispatch(ctx, req)
}
func (m *mockTripServicer) Plan(ctx context.Context, req service.DispatchRequest) (domain.Trip, error) {
	return m.plan(ctx, req)
}
func (m *mockTripServicer) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus) (domain.Trip, error) {
	return m.updateStatus(ctx, id, status)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) ListPaged(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockTripServicer) Events(ctx context.Context, id uuid.UUID) ([]domain.TripEvent, error) {
	return m.events(ctx, id)
}

type mockVehicleServicer struct {
	create    func(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)
	listPaged func(ctx context.Context, status domain.VehicleStatus, p domain.PaginationParams) ([]domain.Vehicle, int64, error)
	update    func(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	delete    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockVehicleServicer) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	return m.create(ctx, v)
}
func (m *mockVehicleServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	return m.getByID(ctx, id)
}
func (m *mockVehicleServicer) ListPaged(ctx context.Context, status domain.VehicleStatus, p domain.PaginationParams) ([]domain.Vehicle, int64, error) {
	return m.listPaged(ctx, status, p)
}
func (m *mockVehicleServicer) Update(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	return m.update(ctx, v)
}
func (m *mockVehicleServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

type mockDriverServicer struct {
	create    func(ctx context.Context, d domain.Driver) (domain.Driver, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Driver, error)
	listPaged func(ctx context.Context, status domain.DriverStatus, p domain.PaginationParams) ([]domain.Driver, int64, error)
	update    func(ctx context.Context, d domain.Driver) (domain.Driver, error)
	delete    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockDriverServicer) Create(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	return m.create(ctx, d)
}
func (m *mockDriverServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	return m.getByID(ctx, id)
}
func (m *mockDriverServicer) ListPaged(ctx context.Context, status domain.DriverStatus, p domain.PaginationParams) ([]domain.Driver, int64, error) {
	return m.listPaged(ctx, status, p)
}
func (m *mockDriverServicer) Update(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	return m.update(ctx, d)
}
func (m *mockDriverServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.TripServicer    = (*mockTripServicer)(nil)
	_ handler.VehicleServicer = (*mockVehicleServicer)(nil)
	_ handler.DriverServicer  = (*mockDriverServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

// serve wires the mocks into the router exactly as main.go does and runs
// a single request through it.
func serve(t *testing.T, s *handler.Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	if body != nil {
		buf = jsonBody(t, body)
	}
	var req *http.Request
	if buf != nil {
		req = httptest.NewRequest(method, target, buf)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	handler.Handler(s).ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	if s, ok := v.(string); ok {
		return bytes.NewBufferString(s)
	}
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func ptr[T any](v T) *T { return &v }
