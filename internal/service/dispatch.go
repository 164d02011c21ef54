package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/fleetops/internal/domain"
	"github.com/pkordes/fleetops/internal/repo"
)

// DispatchRequest asks for a vehicle and driver to be assigned to a load.
type DispatchRequest struct {
	VehicleID   uuid.UUID
	DriverID    uuid.UUID
	CargoWeight float64
}

// Authorization is the result of a successful validation: snapshots of the
// vehicle and driver as they were read.
type Authorization struct {
	Vehicle domain.Vehicle
	Driver  domain.Driver
}

// DispatchFacts is everything CheckDispatch needs to decide. A nil Vehicle
// or Driver means the record does not exist.
type DispatchFacts struct {
	Vehicle           *domain.Vehicle
	Driver            *domain.Driver
	DriverActiveTrips int
	CheckDriverBusy   bool
	CargoWeight       float64
	Today             time.Time
}

// CheckDispatch applies the dispatch rules in order and returns the first
// failure as a *domain.RejectionError:
//
//  1. vehicle missing or not AVAILABLE
//  2. driver missing or not ON_DUTY
//  3. license expired before today
//  4. driver already on a dispatched trip (only when CheckDriverBusy)
//  5. cargo heavier than the vehicle's capacity
func CheckDispatch(f DispatchFacts) (Authorization, error) {
	switch {
	case f.Vehicle == nil || !f.Vehicle.Status.Dispatchable():
		return Authorization{}, domain.Reject(domain.ReasonVehicleUnavailable)
	case f.Driver == nil || f.Driver.Status != domain.DriverOnDuty:
		return Authorization{}, domain.Reject(domain.ReasonDriverUnavailable)
	case f.Driver.LicenseExpiredOn(f.Today):
		return Authorization{}, domain.Reject(domain.ReasonLicenseExpired)
	case f.CheckDriverBusy && f.DriverActiveTrips > 0:
		return Authorization{}, domain.Reject(domain.ReasonDriverBusy)
	case !(f.CargoWeight <= f.Vehicle.MaxCapacity):
		return Authorization{}, domain.Reject(domain.ReasonCapacityExceeded)
	}
	return Authorization{Vehicle: *f.Vehicle, Driver: *f.Driver}, nil
}

// DispatchValidator reads the vehicle and driver named by a request and runs
// CheckDispatch over them. It never writes.
type DispatchValidator struct {
	repos            repo.Repos
	now              func() time.Time
	oneTripPerDriver bool
}

// NewDispatchValidator constructs a DispatchValidator reading from r.
func NewDispatchValidator(r repo.Repos, now func() time.Time, oneTripPerDriver bool) *DispatchValidator {
	if now == nil {
		now = time.Now
	}
	return &DispatchValidator{repos: r, now: now, oneTripPerDriver: oneTripPerDriver}
}

// Validate returns an Authorization, a *domain.RejectionError, or a wrapped
// store error. Missing records are rejections, not errors.
func (v *DispatchValidator) Validate(ctx context.Context, req DispatchRequest) (Authorization, error) {
	facts, err := v.gather(ctx, v.repos, req.VehicleID, req.DriverID, false)
	if err != nil {
		return Authorization{}, fmt.Errorf("service.DispatchValidator.Validate: %w", err)
	}
	facts.CargoWeight = req.CargoWeight
	return CheckDispatch(facts)
}

// gather loads the facts for one vehicle/driver pair from r. With lockDriver
// the driver row is locked until r's transaction ends, which serializes the
// driver-busy check between concurrent dispatches of the same driver.
func (v *DispatchValidator) gather(ctx context.Context, r repo.Repos, vehicleID, driverID uuid.UUID, lockDriver bool) (DispatchFacts, error) {
	facts := DispatchFacts{CheckDriverBusy: v.oneTripPerDriver, Today: v.now()}

	vehicle, err := r.Vehicles().GetByID(ctx, vehicleID)
	switch {
	case err == nil:
		facts.Vehicle = &vehicle
	case !errors.Is(err, domain.ErrNotFound):
		return DispatchFacts{}, err
	}

	getDriver := r.Drivers().GetByID
	if lockDriver {
		getDriver = r.Drivers().GetByIDForUpdate
	}
	driver, err := getDriver(ctx, driverID)
	switch {
	case err == nil:
		facts.Driver = &driver
	case !errors.Is(err, domain.ErrNotFound):
		return DispatchFacts{}, err
	}

	if v.oneTripPerDriver && facts.Driver != nil {
		n, err := r.Trips().CountActiveByDriver(ctx, driverID)
		if err != nil {
			return DispatchFacts{}, err
		}
		facts.DriverActiveTrips = n
	}
	return facts, nil
}
