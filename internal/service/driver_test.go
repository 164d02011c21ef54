package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleetops/internal/domain"
	"github.com/pkordes/fleetops/internal/repo"
	"github.com/pkordes/fleetops/internal/service"
)

// mockDriverRepo is a hand-written test double for repo.DriverRepo.
type mockDriverRepo struct {
	create           func(ctx context.Context, d domain.Driver) (domain.Driver, error)
	getByID          func(ctx context.Context, id uuid.UUID) (domain.Driver, error)
	getByIDForUpdate func(ctx context.Context, id uuid.UUID) (domain.Driver, error)
	listPaged        func(ctx context.Context, status domain.DriverStatus, p domain.PaginationParams) ([]domain.Driver, int64, error)
	update           func(ctx context.Context, d domain.Driver) (domain.Driver, error)
	delete           func(ctx context.Context, id uuid.UUID) error
}

func (m *mockDriverRepo) Create(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	return m.create(ctx, d)
}
func (m *mockDriverRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	return m.getByID(ctx, id)
}
func (m *mockDriverRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	return m.getByIDForUpdate(ctx, id)
}
func (m *mockDriverRepo) ListPaged(ctx context.Context, status domain.DriverStatus, p domain.PaginationParams) ([]domain.Driver, int64, error) {
	return m.listPaged(ctx, status, p)
}
func (m *mockDriverRepo) Update(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	return m.update(ctx, d)
}
func (m *mockDriverRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time check: mockDriverRepo must satisfy repo.DriverRepo.
var _ repo.DriverRepo = (*mockDriverRepo)(nil)

func driverEchoRepo() *mockDriverRepo {
	return &mockDriverRepo{
		create: func(_ context.Context, d domain.Driver) (domain.Driver, error) { return d, nil },
		update: func(_ context.Context, d domain.Driver) (domain.Driver, error) { return d, nil },
	}
}

func validDriver() domain.Driver {
	return domain.Driver{
		Name:          "Ana Silva",
		LicenseNumber: "DL-123",
		LicenseExpiry: time.Date(2027, 5, 1, 17, 45, 0, 0, time.UTC),
		SafetyScore:   88,
	}
}

func TestDriverService_Create_Defaults(t *testing.T) {
	svc := service.NewDriverService(driverEchoRepo())

	got, err := svc.Create(context.Background(), validDriver())

	require.NoError(t, err)
	assert.Equal(t, domain.DriverOnDuty, got.Status)
	assert.Equal(t, time.Date(2027, 5, 1, 0, 0, 0, 0, time.UTC), got.LicenseExpiry, "expiry is a calendar date")
}

func TestDriverService_Create_Invalid(t *testing.T) {
	svc := service.NewDriverService(driverEchoRepo())

	cases := map[string]func(d *domain.Driver){
		"blank name":      func(d *domain.Driver) { d.Name = "  " },
		"missing license": func(d *domain.Driver) { d.LicenseNumber = "" },
		"missing expiry":  func(d *domain.Driver) { d.LicenseExpiry = time.Time{} },
		"score too high":  func(d *domain.Driver) { d.SafetyScore = 101 },
		"negative score":  func(d *domain.Driver) { d.SafetyScore = -1 },
		"unknown status":  func(d *domain.Driver) { d.Status = "ASLEEP" },
	}
	for name, mutate := range cases {
		d := validDriver()
		mutate(&d)
		_, err := svc.Create(context.Background(), d)
		assert.ErrorIs(t, err, domain.ErrValidation, name)
	}
}

func TestDriverService_Update_PropagatesConflict(t *testing.T) {
	r := driverEchoRepo()
	r.update = func(_ context.Context, _ domain.Driver) (domain.Driver, error) {
		return domain.Driver{}, domain.ErrConflict
	}
	svc := service.NewDriverService(r)

	d := validDriver()
	d.ID = uuid.New()
	_, err := svc.Update(context.Background(), d)

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDriverService_GetByID_RepoError(t *testing.T) {
	repoErr := errors.New("db exploded")
	svc := service.NewDriverService(&mockDriverRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Driver, error) {
			return domain.Driver{}, repoErr
		},
	})

	_, err := svc.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repoErr)
}

func TestDriverService_Delete_WithHistory(t *testing.T) {
	svc := service.NewDriverService(&mockDriverRepo{
		delete: func(_ context.Context, _ uuid.UUID) error { return domain.ErrConflict },
	})

	err := svc.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDriverService_ListPaged_BadStatus(t *testing.T) {
	svc := service.NewDriverService(&mockDriverRepo{})

	_, _, err := svc.ListPaged(context.Background(), "ASLEEP", domain.PaginationParams{Page: 1, Limit: 20})

	assert.ErrorIs(t, err, domain.ErrValidation)
}
