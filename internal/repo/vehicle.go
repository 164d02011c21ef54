package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/fleetops/internal/domain"
)

// VehicleRepo defines the persistence operations for Vehicles.
type VehicleRepo interface {
	// Create inserts a new vehicle and returns the persisted record.
	// Returns domain.ErrConflict if the license plate is already registered.
	Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)

	// GetByID retrieves a single vehicle. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)

	// ListPaged returns one page of vehicles ordered by license plate, plus the
	// total number of matching rows. An empty status matches every vehicle.
	ListPaged(ctx context.Context, status domain.VehicleStatus, p domain.PaginationParams) ([]domain.Vehicle, int64, error)

	// Update overwrites plate, model, capacity and status. The status of an
	// ON_TRIP vehicle is left untouched; only the trip lifecycle moves it.
	Update(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)

	// SetStatus moves the vehicle from one status to another only if it is
	// currently in from. It reports false when the row was not in from (or
	// does not exist), which is how concurrent dispatches of the same vehicle
	// are told apart: the second writer sees false.
	SetStatus(ctx context.Context, id uuid.UUID, from, to domain.VehicleStatus) (bool, error)

	// Delete removes a vehicle. Returns domain.ErrConflict if trips reference it.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgVehicleRepo struct {
	db db
}

// NewVehicleRepo constructs a VehicleRepo backed by the provided db connection.
func NewVehicleRepo(db db) VehicleRepo {
	return &pgVehicleRepo{db: db}
}

const vehicleColumns = `id, license_plate, model, max_capacity, status, created_at, updated_at`

func (r *pgVehicleRepo) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	const q = `
		INSERT INTO vehicles (license_plate, model, max_capacity, status)
		VALUES (@license_plate, @model, @max_capacity, @status)
		RETURNING ` + vehicleColumns

	args := pgx.NamedArgs{
		"license_plate": v.LicensePlate,
		"model":         v.Model,
		"max_capacity":  v.MaxCapacity,
		"status":        string(v.Status),
	}
	result, err := scanVehicle(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgVehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	const q = `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = @id`

	result, err := scanVehicle(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgVehicleRepo) ListPaged(ctx context.Context, status domain.VehicleStatus, p domain.PaginationParams) ([]domain.Vehicle, int64, error) {
	const countQ = `SELECT count(*) FROM vehicles WHERE (@status = '' OR status = @status)`
	const q = `
		SELECT ` + vehicleColumns + `
		FROM vehicles
		WHERE (@status = '' OR status = @status)
		ORDER BY license_plate
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"status": string(status)}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.VehicleRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"status": string(status),
		"limit":  p.Limit,
		"offset": p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.VehicleRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	vehicles := []domain.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.VehicleRepo.ListPaged: scan: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.VehicleRepo.ListPaged: rows: %w", err)
	}
	return vehicles, total, nil
}

func (r *pgVehicleRepo) Update(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	const q = `
		UPDATE vehicles
		SET license_plate = @license_plate,
		    model         = @model,
		    max_capacity  = @max_capacity,
		    status        = CASE WHEN status = 'ON_TRIP' THEN status ELSE @status END,
		    updated_at    = now()
		WHERE id = @id
		RETURNING ` + vehicleColumns

	args := pgx.NamedArgs{
		"id":            v.ID,
		"license_plate": v.LicensePlate,
		"model":         v.Model,
		"max_capacity":  v.MaxCapacity,
		"status":        string(v.Status),
	}
	result, err := scanVehicle(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgVehicleRepo) SetStatus(ctx context.Context, id uuid.UUID, from, to domain.VehicleStatus) (bool, error) {
	const q = `
		UPDATE vehicles
		SET status = @to, updated_at = now()
		WHERE id = @id AND status = @from`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "from": string(from), "to": string(to)})
	if err != nil {
		return false, fmt.Errorf("repo.VehicleRepo.SetStatus: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgVehicleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM vehicles WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.VehicleRepo.Delete: %w", mapDeleteErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.VehicleRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanVehicle maps a single database row into a domain.Vehicle.
func scanVehicle(s scanner) (domain.Vehicle, error) {
	var (
		v      domain.Vehicle
		id     pgtype.UUID
		status string
	)
	err := s.Scan(&id, &v.LicensePlate, &v.Model, &v.MaxCapacity, &status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return domain.Vehicle{}, mapErr(err)
	}
	v.ID = uuid.UUID(id.Bytes)
	v.Status = domain.VehicleStatus(status)
	return v, nil
}
