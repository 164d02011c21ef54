package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/fleetops/internal/domain"
)

// DriverRepo defines the persistence operations for Drivers.
type DriverRepo interface {
	// Create inserts a new driver and returns the persisted record.
	// Returns domain.ErrConflict if the license number is already registered.
	Create(ctx context.Context, d domain.Driver) (domain.Driver, error)

	// GetByID retrieves a single driver. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error)

	// GetByIDForUpdate is GetByID plus a row lock held until the surrounding
	// transaction ends. Outside a transaction it behaves like GetByID.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Driver, error)

	// ListPaged returns one page of drivers ordered by name, plus the total
	// number of matching rows. An empty status matches every driver.
	ListPaged(ctx context.Context, status domain.DriverStatus, p domain.PaginationParams) ([]domain.Driver, int64, error)

	// Update overwrites the mutable fields of a driver.
	Update(ctx context.Context, d domain.Driver) (domain.Driver, error)

	// Delete removes a driver. Returns domain.ErrConflict if trips reference it.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgDriverRepo struct {
	db db
}

// NewDriverRepo constructs a DriverRepo backed by the provided db connection.
func NewDriverRepo(db db) DriverRepo {
	return &pgDriverRepo{db: db}
}

const driverColumns = `id, name, license_number, license_expiry, safety_score, status, created_at, updated_at`

func (r *pgDriverRepo) Create(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	const q = `
		INSERT INTO drivers (name, license_number, license_expiry, safety_score, status)
		VALUES (@name, @license_number, @license_expiry, @safety_score, @status)
		RETURNING ` + driverColumns

	result, err := scanDriver(r.db.QueryRow(ctx, q, driverArgs(d)))
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgDriverRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	const q = `SELECT ` + driverColumns + ` FROM drivers WHERE id = @id`

	result, err := scanDriver(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgDriverRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	const q = `SELECT ` + driverColumns + ` FROM drivers WHERE id = @id FOR UPDATE`

	result, err := scanDriver(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.GetByIDForUpdate: %w", err)
	}
	return result, nil
}

func (r *pgDriverRepo) ListPaged(ctx context.Context, status domain.DriverStatus, p domain.PaginationParams) ([]domain.Driver, int64, error) {
	const countQ = `SELECT count(*) FROM drivers WHERE (@status = '' OR status = @status)`
	const q = `
		SELECT ` + driverColumns + `
		FROM drivers
		WHERE (@status = '' OR status = @status)
		ORDER BY name, id
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"status": string(status)}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.DriverRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"status": string(status),
		"limit":  p.Limit,
		"offset": p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.DriverRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	drivers := []domain.Driver{}
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.DriverRepo.ListPaged: scan: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.DriverRepo.ListPaged: rows: %w", err)
	}
	return drivers, total, nil
}

func (r *pgDriverRepo) Update(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	const q = `
		UPDATE drivers
		SET name           = @name,
		    license_number = @license_number,
		    license_expiry = @license_expiry,
		    safety_score   = @safety_score,
		    status         = @status,
		    updated_at     = now()
		WHERE id = @id
		RETURNING ` + driverColumns

	args := driverArgs(d)
	args["id"] = d.ID
	result, err := scanDriver(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgDriverRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM drivers WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.DriverRepo.Delete: %w", mapDeleteErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.DriverRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func driverArgs(d domain.Driver) pgx.NamedArgs {
	return pgx.NamedArgs{
		"name":           d.Name,
		"license_number": d.LicenseNumber,
		"license_expiry": pgtype.Date{Time: domain.DateOf(d.LicenseExpiry), Valid: true},
		"safety_score":   d.SafetyScore,
		"status":         string(d.Status),
	}
}

// scanDriver maps a single database row into a domain.Driver.
func scanDriver(s scanner) (domain.Driver, error) {
	var (
		d      domain.Driver
		id     pgtype.UUID
		expiry pgtype.Date
		status string
	)
	err := s.Scan(&id, &d.Name, &d.LicenseNumber, &expiry, &d.SafetyScore, &status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return domain.Driver{}, mapErr(err)
	}
	d.ID = uuid.UUID(id.Bytes)
	d.LicenseExpiry = expiry.Time
	d.Status = domain.DriverStatus(status)
	return d, nil
}
