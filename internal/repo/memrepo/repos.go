package memrepo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/fleetops/internal/domain"
)

// ---- vehicles --------------------------------------------------------------

type vehicleRepo struct{ v view }

func (r vehicleRepo) Create(_ context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	if r.plateTaken(v.LicensePlate, uuid.Nil) {
		return domain.Vehicle{}, fmt.Errorf("memrepo.VehicleRepo.Create: %w", conflict("license plate is already registered"))
	}
	now := r.v.stamp()
	v.ID = uuid.New()
	v.CreatedAt, v.UpdatedAt = now, now
	r.v.st.vehicles[v.ID] = v
	return v, nil
}

func (r vehicleRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Vehicle, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	v, ok := r.v.st.vehicles[id]
	if !ok {
		return domain.Vehicle{}, fmt.Errorf("memrepo.VehicleRepo.GetByID: %w", domain.ErrNotFound)
	}
	return v, nil
}

func (r vehicleRepo) ListPaged(_ context.Context, status domain.VehicleStatus, p domain.PaginationParams) ([]domain.Vehicle, int64, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	var all []domain.Vehicle
	for _, v := range r.v.st.vehicles {
		if status == "" || v.Status == status {
			all = append(all, v)
		}
	}
	out, total := page(all, func(a, b domain.Vehicle) bool { return a.LicensePlate < b.LicensePlate }, p)
	return out, total, nil
}

func (r vehicleRepo) Update(_ context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	cur, ok := r.v.st.vehicles[v.ID]
	if !ok {
		return domain.Vehicle{}, fmt.Errorf("memrepo.VehicleRepo.Update: %w", domain.ErrNotFound)
	}
	if r.plateTaken(v.LicensePlate, v.ID) {
		return domain.Vehicle{}, fmt.Errorf("memrepo.VehicleRepo.Update: %w", conflict("license plate is already registered"))
	}
	cur.LicensePlate = v.LicensePlate
	cur.Model = v.Model
	cur.MaxCapacity = v.MaxCapacity
	if cur.Status != domain.VehicleOnTrip {
		cur.Status = v.Status
	}
	cur.UpdatedAt = r.v.stamp()
	r.v.st.vehicles[v.ID] = cur
	return cur, nil
}

func (r vehicleRepo) SetStatus(_ context.Context, id uuid.UUID, from, to domain.VehicleStatus) (bool, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	cur, ok := r.v.st.vehicles[id]
	if !ok || cur.Status != from {
		return false, nil
	}
	cur.Status = to
	cur.UpdatedAt = r.v.stamp()
	r.v.st.vehicles[id] = cur
	return true, nil
}

func (r vehicleRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	if _, ok := r.v.st.vehicles[id]; !ok {
		return fmt.Errorf("memrepo.VehicleRepo.Delete: %w", domain.ErrNotFound)
	}
	for _, t := range r.v.st.trips {
		if t.VehicleID == id {
			return fmt.Errorf("memrepo.VehicleRepo.Delete: %w", conflict("vehicle is referenced by trips"))
		}
	}
	delete(r.v.st.vehicles, id)
	return nil
}

func (r vehicleRepo) plateTaken(plate string, except uuid.UUID) bool {
	for id, v := range r.v.st.vehicles {
		if id != except && v.LicensePlate == plate {
			return true
		}
	}
	return false
}

// ---- drivers ---------------------------------------------------------------

type driverRepo struct{ v view }

func (r driverRepo) Create(_ context.Context, d domain.Driver) (domain.Driver, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	if r.licenseTaken(d.LicenseNumber, uuid.Nil) {
		return domain.Driver{}, fmt.Errorf("memrepo.DriverRepo.Create: %w", conflict("license number is already registered"))
	}
	now := r.v.stamp()
	d.ID = uuid.New()
	d.LicenseExpiry = domain.DateOf(d.LicenseExpiry)
	d.CreatedAt, d.UpdatedAt = now, now
	r.v.st.drivers[d.ID] = d
	return d, nil
}

func (r driverRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Driver, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	d, ok := r.v.st.drivers[id]
	if !ok {
		return domain.Driver{}, fmt.Errorf("memrepo.DriverRepo.GetByID: %w", domain.ErrNotFound)
	}
	return d, nil
}

// GetByIDForUpdate needs no extra locking: transactions are already serialized.
func (r driverRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	return r.GetByID(ctx, id)
}

func (r driverRepo) ListPaged(_ context.Context, status domain.DriverStatus, p domain.PaginationParams) ([]domain.Driver, int64, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	var all []domain.Driver
	for _, d := range r.v.st.drivers {
		if status == "" || d.Status == status {
			all = append(all, d)
		}
	}
	out, total := page(all, func(a, b domain.Driver) bool {
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID.String() < b.ID.String()
	}, p)
	return out, total, nil
}

func (r driverRepo) Update(_ context.Context, d domain.Driver) (domain.Driver, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	cur, ok := r.v.st.drivers[d.ID]
	if !ok {
		return domain.Driver{}, fmt.Errorf("memrepo.DriverRepo.Update: %w", domain.ErrNotFound)
	}
	if r.licenseTaken(d.LicenseNumber, d.ID) {
		return domain.Driver{}, fmt.Errorf("memrepo.DriverRepo.Update: %w", conflict("license number is already registered"))
	}
	d.LicenseExpiry = domain.DateOf(d.LicenseExpiry)
	d.CreatedAt = cur.CreatedAt
	d.UpdatedAt = r.v.stamp()
	r.v.st.drivers[d.ID] = d
	return d, nil
}

func (r driverRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	if _, ok := r.v.st.drivers[id]; !ok {
		return fmt.Errorf("memrepo.DriverRepo.Delete: %w", domain.ErrNotFound)
	}
	for _, t := range r.v.st.trips {
		if t.DriverID == id {
			return fmt.Errorf("memrepo.DriverRepo.Delete: %w", conflict("driver is referenced by trips"))
		}
	}
	delete(r.v.st.drivers, id)
	return nil
}

func (r driverRepo) licenseTaken(number string, except uuid.UUID) bool {
	for id, d := range r.v.st.drivers {
		if id != except && d.LicenseNumber == number {
			return true
		}
	}
	return false
}

// ---- trips -----------------------------------------------------------------

type tripRepo struct{ v view }

func (r tripRepo) Create(_ context.Context, t domain.Trip) (domain.Trip, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	if _, ok := r.v.st.vehicles[t.VehicleID]; !ok {
		return domain.Trip{}, fmt.Errorf("memrepo.TripRepo.Create: %w", vanished("vehicle"))
	}
	if _, ok := r.v.st.drivers[t.DriverID]; !ok {
		return domain.Trip{}, fmt.Errorf("memrepo.TripRepo.Create: %w", vanished("driver"))
	}
	if t.Status == domain.TripDispatched && r.vehicleHeld(t.VehicleID, uuid.Nil) {
		return domain.Trip{}, fmt.Errorf("memrepo.TripRepo.Create: %w", conflict("vehicle already has a dispatched trip"))
	}
	now := r.v.stamp()
	t.ID = uuid.New()
	t.CreatedAt, t.UpdatedAt = now, now
	t.ClosedAt = nil
	r.v.st.trips[t.ID] = t
	return t, nil
}

func (r tripRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	t, ok := r.v.st.trips[id]
	if !ok {
		return domain.Trip{}, fmt.Errorf("memrepo.TripRepo.GetByID: %w", domain.ErrNotFound)
	}
	return t, nil
}

func (r tripRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return r.GetByID(ctx, id)
}

func (r tripRepo) ListPaged(_ context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	var all []domain.Trip
	for _, t := range r.v.st.trips {
		if f.Status == "" || t.Status == f.Status {
			all = append(all, t)
		}
	}
	out, total := page(all, func(a, b domain.Trip) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	}, p)
	return out, total, nil
}

func (r tripRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.TripStatus) (domain.Trip, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	t, ok := r.v.st.trips[id]
	if !ok || t.Status != from {
		return domain.Trip{}, fmt.Errorf("memrepo.TripRepo.UpdateStatus: %w", conflict(fmt.Sprintf("trip is no longer %s", from)))
	}
	if to == domain.TripDispatched && r.vehicleHeld(t.VehicleID, id) {
		return domain.Trip{}, fmt.Errorf("memrepo.TripRepo.UpdateStatus: %w", conflict("vehicle already has a dispatched trip"))
	}
	now := r.v.stamp()
	t.Status = to
	t.UpdatedAt = now
	t.ClosedAt = nil
	if to.Terminal() {
		t.ClosedAt = &now
	}
	r.v.st.trips[id] = t
	return t, nil
}

func (r tripRepo) CountActiveByDriver(_ context.Context, driverID uuid.UUID) (int, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	n := 0
	for _, t := range r.v.st.trips {
		if t.DriverID == driverID && t.Status == domain.TripDispatched {
			n++
		}
	}
	return n, nil
}

// vehicleHeld mirrors the trips_one_dispatched_per_vehicle partial index.
func (r tripRepo) vehicleHeld(vehicleID, except uuid.UUID) bool {
	for id, t := range r.v.st.trips {
		if id != except && t.VehicleID == vehicleID && t.Status == domain.TripDispatched {
			return true
		}
	}
	return false
}

// ---- trip events -----------------------------------------------------------

type eventRepo struct{ v view }

func (r eventRepo) Append(_ context.Context, e domain.TripEvent) (domain.TripEvent, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	if _, ok := r.v.st.trips[e.TripID]; !ok {
		return domain.TripEvent{}, fmt.Errorf("memrepo.TripEventRepo.Append: %w", conflict("referenced trip does not exist"))
	}
	r.v.st.nextEventID++
	e.ID = r.v.st.nextEventID
	e.CreatedAt = r.v.stamp()
	r.v.st.events = append(r.v.st.events, e)
	return e, nil
}

func (r eventRepo) ListByTrip(_ context.Context, tripID uuid.UUID) ([]domain.TripEvent, error) {
	r.v.lock.Lock()
	defer r.v.lock.Unlock()

	out := []domain.TripEvent{}
	for _, e := range r.v.st.events {
		if e.TripID == tripID {
			out = append(out, e)
		}
	}
	return out, nil
}
