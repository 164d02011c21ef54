package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/fleetops/internal/domain"
	"github.com/pkordes/fleetops/internal/repo"
)

// DriverService implements fleet-admin operations on drivers.
type DriverService struct {
	repo repo.DriverRepo
}

// NewDriverService constructs a DriverService backed by the provided DriverRepo.
func NewDriverService(r repo.DriverRepo) *DriverService {
	return &DriverService{repo: r}
}

// Create validates and persists a new driver. Status defaults to ON_DUTY.
func (s *DriverService) Create(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	d = normalizeDriver(d)
	if err := validateDriver(d); err != nil {
		return domain.Driver{}, err
	}
	result, err := s.repo.Create(ctx, d)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("service.DriverService.Create: %w", err)
	}
	return result, nil
}

func (s *DriverService) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("service.DriverService.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of drivers ordered by name and the total count.
func (s *DriverService) ListPaged(ctx context.Context, status domain.DriverStatus, p domain.PaginationParams) ([]domain.Driver, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("service.DriverService.ListPaged: %w: unknown driver status %q", domain.ErrValidation, status)
	}
	drivers, total, err := s.repo.ListPaged(ctx, status, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.DriverService.ListPaged: %w", err)
	}
	if drivers == nil {
		drivers = []domain.Driver{}
	}
	return drivers, total, nil
}

// Update validates and persists changes to a driver.
func (s *DriverService) Update(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	d = normalizeDriver(d)
	if err := validateDriver(d); err != nil {
		return domain.Driver{}, err
	}
	result, err := s.repo.Update(ctx, d)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("service.DriverService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a driver. Drivers with trip history cannot be deleted.
func (s *DriverService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.DriverService.Delete: %w", err)
	}
	return nil
}

func normalizeDriver(d domain.Driver) domain.Driver {
	d.Name = strings.TrimSpace(d.Name)
	d.LicenseNumber = strings.TrimSpace(d.LicenseNumber)
	if d.Status == "" {
		d.Status = domain.DriverOnDuty
	}
	if !d.LicenseExpiry.IsZero() {
		d.LicenseExpiry = domain.DateOf(d.LicenseExpiry)
	}
	return d
}

func validateDriver(d domain.Driver) error {
	switch {
	case d.Name == "":
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	case d.LicenseNumber == "":
		return fmt.Errorf("%w: license_number is required", domain.ErrValidation)
	case d.LicenseExpiry.IsZero():
		return fmt.Errorf("%w: license_expiry is required", domain.ErrValidation)
	case d.SafetyScore < 0 || d.SafetyScore > 100:
		return fmt.Errorf("%w: safety_score must be between 0 and 100", domain.ErrValidation)
	case !d.Status.Valid():
		return fmt.Errorf("%w: unknown driver status %q", domain.ErrValidation, d.Status)
	}
	return nil
}
