// Package repo contains all database access logic for the fleet dispatch API.
// Each entity has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL, type mapping and the scoped
// transaction that lets the trip lifecycle engine write several rows atomically.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/fleetops/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// conn is a db that can also open a transaction. *pgxpool.Pool opens a real
// transaction; pgx.Tx opens a savepoint, which is what integration tests use.
type conn interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repos groups the per-entity repositories bound to one connection or one
// transaction. Inside Store.RunInTx every call shares the same transaction.
type Repos interface {
	Vehicles() VehicleRepo
	Drivers() DriverRepo
	Trips() TripRepo
	TripEvents() TripEventRepo
}

// Store is the entity store consumed by the service layer.
// Calls made directly on the Store autocommit; RunInTx scopes several calls
// into one transaction.
type Store interface {
	Repos

	// RunInTx runs fn inside a single transaction. The transaction commits
	// only when fn returns nil; any error or panic rolls it back, so no
	// partial state is ever visible to other callers. The error returned by
	// fn is passed through unchanged.
	RunInTx(ctx context.Context, fn func(tx Repos) error) error
}

// pgRepos binds the Postgres repositories to a db.
type pgRepos struct {
	db db
}

func (r pgRepos) Vehicles() VehicleRepo     { return NewVehicleRepo(r.db) }
func (r pgRepos) Drivers() DriverRepo       { return NewDriverRepo(r.db) }
func (r pgRepos) Trips() TripRepo           { return NewTripRepo(r.db) }
func (r pgRepos) TripEvents() TripEventRepo { return NewTripEventRepo(r.db) }

// pgStore is the Postgres implementation of Store.
type pgStore struct {
	pgRepos
	conn conn
}

// NewStore constructs a Store backed by c.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewStore(c conn) Store {
	return &pgStore{pgRepos: pgRepos{db: c}, conn: c}
}

// RunInTx delegates to pgx.BeginFunc, which defers a Rollback that is a no-op
// after Commit and still runs while a panic unwinds.
func (s *pgStore) RunInTx(ctx context.Context, fn func(tx Repos) error) error {
	return pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
		return fn(pgRepos{db: tx})
	})
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// constraintMessages turns known constraint names into client-safe messages.
var constraintMessages = map[string]string{
	"vehicles_license_plate_key":       "license plate is already registered",
	"drivers_license_number_key":       "license number is already registered",
	"trips_vehicle_id_fkey":            "vehicle is referenced by trips",
	"trips_driver_id_fkey":             "driver is referenced by trips",
	"trips_one_dispatched_per_vehicle": "vehicle already has a dispatched trip",
}

// mapErr converts driver errors into domain sentinels:
// no rows -> ErrNotFound, unique violation -> ErrConflict.
// A foreign-key violation on insert means a referenced row was deleted after
// it was validated; that is ErrInconsistent, a server fault safe to retry.
// Anything else is returned as-is and treated as a server fault upstream.
func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return conflictErr(pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: referenced row vanished (%s)", domain.ErrInconsistent, pgErr.ConstraintName)
		}
	}
	return err
}

// mapDeleteErr is mapErr for DELETE statements, where a foreign-key violation
// means the row is still referenced by trips.
func mapDeleteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return conflictErr(pgErr.ConstraintName)
	}
	return mapErr(err)
}

func conflictErr(constraint string) error {
	msg, ok := constraintMessages[constraint]
	if !ok {
		msg = "conflicts with existing data"
	}
	return fmt.Errorf("%w: %s", domain.ErrConflict, msg)
}
