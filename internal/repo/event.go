package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/fleetops/internal/domain"
)

// TripEventRepo persists the trip audit log.
type TripEventRepo interface {
	// Append inserts an event and returns it with id and created_at set.
	Append(ctx context.Context, e domain.TripEvent) (domain.TripEvent, error)

	// ListByTrip returns a trip's events in the order they were written.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TripEvent, error)
}

type pgTripEventRepo struct {
	db db
}

// NewTripEventRepo constructs a TripEventRepo backed by the provided db connection.
func NewTripEventRepo(db db) TripEventRepo {
	return &pgTripEventRepo{db: db}
}

func (r *pgTripEventRepo) Append(ctx context.Context, e domain.TripEvent) (domain.TripEvent, error) {
	const q = `
		INSERT INTO trip_events (trip_id, vehicle_id, driver_id, from_status, to_status)
		VALUES (@trip_id, @vehicle_id, @driver_id, NULLIF(@from_status, ''), @to_status)
		RETURNING id, trip_id, vehicle_id, driver_id, from_status, to_status, created_at`

	args := pgx.NamedArgs{
		"trip_id":     e.TripID,
		"vehicle_id":  e.VehicleID,
		"driver_id":   e.DriverID,
		"from_status": string(e.From),
		"to_status":   string(e.To),
	}
	result, err := scanTripEvent(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TripEvent{}, fmt.Errorf("repo.TripEventRepo.Append: %w", err)
	}
	return result, nil
}

func (r *pgTripEventRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TripEvent, error) {
	const q = `
		SELECT id, trip_id, vehicle_id, driver_id, from_status, to_status, created_at
		FROM trip_events
		WHERE trip_id = @trip_id
		ORDER BY id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripEventRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	events := []domain.TripEvent{}
	for rows.Next() {
		e, err := scanTripEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripEventRepo.ListByTrip: scan: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripEventRepo.ListByTrip: rows: %w", err)
	}
	return events, nil
}

func scanTripEvent(s scanner) (domain.TripEvent, error) {
	var (
		e                         domain.TripEvent
		tripID, vehicleID, driver pgtype.UUID
		from                      pgtype.Text
		to                        string
	)
	err := s.Scan(&e.ID, &tripID, &vehicleID, &driver, &from, &to, &e.CreatedAt)
	if err != nil {
		return domain.TripEvent{}, mapErr(err)
	}
	e.TripID = uuid.UUID(tripID.Bytes)
	e.VehicleID = uuid.UUID(vehicleID.Bytes)
	e.DriverID = uuid.UUID(driver.Bytes)
	e.From = domain.TripStatus(from.String)
	e.To = domain.TripStatus(to)
	return e, nil
}
