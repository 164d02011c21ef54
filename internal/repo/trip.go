package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/fleetops/internal/domain"
)

// TripRepo defines the persistence operations for Trips.
// Trips are never deleted; they end in COMPLETED or CANCELLED.
type TripRepo interface {
	// Create inserts a new trip in the status carried by trip and returns the
	// persisted record (with DB-generated id and timestamps populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// GetByIDForUpdate is GetByID plus a row lock held until the surrounding
	// transaction ends, so concurrent status changes of one trip serialize.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListPaged returns one page of trips, newest first, plus the total count.
	ListPaged(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// UpdateStatus moves the trip from one status to another and stamps
	// closed_at when entering a terminal status. Returns domain.ErrConflict if
	// the trip is not currently in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.TripStatus) (domain.Trip, error)

	// CountActiveByDriver returns how many DISPATCHED trips reference driverID.
	CountActiveByDriver(ctx context.Context, driverID uuid.UUID) (int, error)
}

type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, vehicle_id, driver_id, cargo_weight, status, created_at, updated_at, closed_at`

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (vehicle_id, driver_id, cargo_weight, status)
		VALUES (@vehicle_id, @driver_id, @cargo_weight, @status)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"vehicle_id":   trip.VehicleID,
		"driver_id":    trip.DriverID,
		"cargo_weight": trip.CargoWeight,
		"status":       string(trip.Status),
	}
	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id FOR UPDATE`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByIDForUpdate: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) ListPaged(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	const countQ = `SELECT count(*) FROM trips WHERE (@status = '' OR status = @status)`
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE (@status = '' OR status = @status)
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"status": string(f.Status)}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"status": string(f.Status),
		"limit":  p.Limit,
		"offset": p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: rows: %w", err)
	}
	return trips, total, nil
}

func (r *pgTripRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.TripStatus) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET status     = @to,
		    updated_at = now(),
		    closed_at  = CASE WHEN @to IN ('COMPLETED', 'CANCELLED') THEN now() ELSE NULL END
		WHERE id = @id AND status = @from
		RETURNING ` + tripColumns

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "from": string(from), "to": string(to)}))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = fmt.Errorf("%w: trip is no longer %s", domain.ErrConflict, from)
		}
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateStatus: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) CountActiveByDriver(ctx context.Context, driverID uuid.UUID) (int, error) {
	const q = `SELECT count(*) FROM trips WHERE driver_id = @driver_id AND status = 'DISPATCHED'`

	var n int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"driver_id": driverID}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.TripRepo.CountActiveByDriver: %w", err)
	}
	return n, nil
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID conversions and the nullable closed_at column.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t                     domain.Trip
		id, vehicleID, driver pgtype.UUID
		status                string
		closedAt              pgtype.Timestamptz
	)
	err := s.Scan(&id, &vehicleID, &driver, &t.CargoWeight, &status, &t.CreatedAt, &t.UpdatedAt, &closedAt)
	if err != nil {
		return domain.Trip{}, mapErr(err)
	}
	t.ID = uuid.UUID(id.Bytes)
	t.VehicleID = uuid.UUID(vehicleID.Bytes)
	t.DriverID = uuid.UUID(driver.Bytes)
	t.Status = domain.TripStatus(status)
	if closedAt.Valid {
		ca := closedAt.Time
		t.ClosedAt = &ca
	}
	return t, nil
}
