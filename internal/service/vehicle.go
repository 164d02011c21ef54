package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/fleetops/internal/domain"
	"github.com/pkordes/fleetops/internal/repo"
)

// VehicleService implements fleet-admin operations on vehicles.
// It never moves a vehicle into or out of ON_TRIP; that belongs to TripService.
type VehicleService struct {
	repo repo.VehicleRepo
}

// NewVehicleService constructs a VehicleService backed by the provided VehicleRepo.
func NewVehicleService(r repo.VehicleRepo) *VehicleService {
	return &VehicleService{repo: r}
}

// Create validates and persists a new vehicle. Status defaults to AVAILABLE.
// Returns domain.ErrValidation for invalid input and domain.ErrConflict for a
// duplicate license plate.
func (s *VehicleService) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	v.LicensePlate = strings.TrimSpace(v.LicensePlate)
	v.Model = strings.TrimSpace(v.Model)
	if v.Status == "" {
		v.Status = domain.VehicleAvailable
	}
	if err := validateVehicle(v); err != nil {
		return domain.Vehicle{}, err
	}
	result, err := s.repo.Create(ctx, v)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single vehicle. Returns domain.ErrNotFound if absent.
func (s *VehicleService) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of vehicles ordered by license plate, optionally
// filtered by status, and the total count.
func (s *VehicleService) ListPaged(ctx context.Context, status domain.VehicleStatus, p domain.PaginationParams) ([]domain.Vehicle, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("service.VehicleService.ListPaged: %w: unknown vehicle status %q", domain.ErrValidation, status)
	}
	vehicles, total, err := s.repo.ListPaged(ctx, status, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.VehicleService.ListPaged: %w", err)
	}
	if vehicles == nil {
		vehicles = []domain.Vehicle{}
	}
	return vehicles, total, nil
}

// Update validates and persists changes to a vehicle. An empty status keeps
// the current one. The status of a vehicle that is ON_TRIP cannot be changed
// here (domain.ErrConflict).
func (s *VehicleService) Update(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	cur, err := s.repo.GetByID(ctx, v.ID)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Update: %w", err)
	}

	v.LicensePlate = strings.TrimSpace(v.LicensePlate)
	v.Model = strings.TrimSpace(v.Model)
	switch {
	case cur.Status == domain.VehicleOnTrip && v.Status != "" && v.Status != cur.Status:
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Update: %w: vehicle is on a trip", domain.ErrConflict)
	case cur.Status == domain.VehicleOnTrip:
		v.Status = cur.Status
		err = validateVehicleFields(v)
	default:
		if v.Status == "" {
			v.Status = cur.Status
		}
		err = validateVehicle(v)
	}
	if err != nil {
		return domain.Vehicle{}, err
	}

	result, err := s.repo.Update(ctx, v)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a vehicle. Vehicles that are ON_TRIP or have trip history
// cannot be deleted (domain.ErrConflict).
func (s *VehicleService) Delete(ctx context.Context, id uuid.UUID) error {
	cur, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.VehicleService.Delete: %w", err)
	}
	if cur.Status == domain.VehicleOnTrip {
		return fmt.Errorf("service.VehicleService.Delete: %w: vehicle is on a trip", domain.ErrConflict)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.VehicleService.Delete: %w", err)
	}
	return nil
}

// validateVehicle checks the fields plus a status an admin may set.
func validateVehicle(v domain.Vehicle) error {
	if err := validateVehicleFields(v); err != nil {
		return err
	}
	switch {
	case !v.Status.Valid():
		return fmt.Errorf("%w: unknown vehicle status %q", domain.ErrValidation, v.Status)
	case v.Status == domain.VehicleOnTrip:
		return fmt.Errorf("%w: ON_TRIP is set by dispatching a trip", domain.ErrValidation)
	}
	return nil
}

func validateVehicleFields(v domain.Vehicle) error {
	switch {
	case v.LicensePlate == "":
		return fmt.Errorf("%w: license_plate is required", domain.ErrValidation)
	case !positiveFinite(v.MaxCapacity):
		return fmt.Errorf("%w: max_capacity must be a finite number greater than zero", domain.ErrValidation)
	}
	return nil
}
