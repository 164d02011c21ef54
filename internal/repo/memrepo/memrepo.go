// Package memrepo is an in-memory implementation of repo.Store.
//
// It mirrors the Postgres semantics the service layer relies on: conditional
// status updates, uniqueness of plates and license numbers, foreign-key style
// delete protection, and at most one DISPATCHED trip per vehicle.
// Transactions are serialized behind a single mutex and work on a copy of the
// data that replaces the live copy only on success, so a failed or panicking
// transaction leaves nothing behind.
package memrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/fleetops/internal/domain"
	"github.com/pkordes/fleetops/internal/repo"
)

// compile-time check: Store must satisfy repo.Store.
var _ repo.Store = (*Store)(nil)

type state struct {
	vehicles    map[uuid.UUID]domain.Vehicle
	drivers     map[uuid.UUID]domain.Driver
	trips       map[uuid.UUID]domain.Trip
	events      []domain.TripEvent
	nextEventID int64
}

func newState() *state {
	return &state{
		vehicles: map[uuid.UUID]domain.Vehicle{},
		drivers:  map[uuid.UUID]domain.Driver{},
		trips:    map[uuid.UUID]domain.Trip{},
	}
}

func (s *state) clone() *state {
	c := &state{
		vehicles:    make(map[uuid.UUID]domain.Vehicle, len(s.vehicles)),
		drivers:     make(map[uuid.UUID]domain.Driver, len(s.drivers)),
		trips:       make(map[uuid.UUID]domain.Trip, len(s.trips)),
		events:      append([]domain.TripEvent(nil), s.events...),
		nextEventID: s.nextEventID,
	}
	for k, v := range s.vehicles {
		c.vehicles[k] = v
	}
	for k, v := range s.drivers {
		c.drivers[k] = v
	}
	for k, v := range s.trips {
		c.trips[k] = v
	}
	return c
}

// Store is a goroutine-safe in-memory repo.Store.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for created_at/updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{st: newState(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) live() view {
	return view{st: s.st, lock: &s.mu, now: s.now}
}

func (s *Store) Vehicles() repo.VehicleRepo     { return vehicleRepo{s.live()} }
func (s *Store) Drivers() repo.DriverRepo       { return driverRepo{s.live()} }
func (s *Store) Trips() repo.TripRepo           { return tripRepo{s.live()} }
func (s *Store) TripEvents() repo.TripEventRepo { return eventRepo{s.live()} }

// RunInTx runs fn against a private copy of the data while holding the store
// lock, then publishes the copy if fn succeeded. fn must not call RunInTx.
func (s *Store) RunInTx(ctx context.Context, fn func(tx repo.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(txRepos{view{st: work, lock: nopLocker{}, now: s.now}}); err != nil {
		return err
	}
	*s.st = *work
	return nil
}

type txRepos struct {
	v view
}

func (t txRepos) Vehicles() repo.VehicleRepo     { return vehicleRepo{t.v} }
func (t txRepos) Drivers() repo.DriverRepo       { return driverRepo{t.v} }
func (t txRepos) Trips() repo.TripRepo           { return tripRepo{t.v} }
func (t txRepos) TripEvents() repo.TripEventRepo { return eventRepo{t.v} }

// view is the data a repository operates on. Outside a transaction lock is
// the store mutex; inside one the mutex is already held and lock is a no-op.
type view struct {
	st   *state
	lock sync.Locker
	now  func() time.Time
}

func (v view) stamp() time.Time {
	return v.now().UTC()
}

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

func conflict(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrConflict, msg)
}

// vanished reports a trip reference that does not exist at insert time.
func vanished(kind string) error {
	return fmt.Errorf("%w: referenced %s does not exist", domain.ErrInconsistent, kind)
}

// page sorts items with less and returns the window selected by p.
func page[T any](items []T, less func(a, b T) bool, p domain.PaginationParams) ([]T, int64) {
	sort.Slice(items, func(i, j int) bool { return less(items[i], items[j]) })
	lo, hi := p.Window(len(items))
	out := make([]T, 0, hi-lo)
	out = append(out, items[lo:hi]...)
	return out, int64(len(items))
}
