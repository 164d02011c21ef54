// Package service contains the business logic for the fleet dispatch API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/fleetops/internal/domain"
	"github.com/pkordes/fleetops/internal/events"
	"github.com/pkordes/fleetops/internal/metrics"
	"github.com/pkordes/fleetops/internal/repo"
)

// TripService is the trip lifecycle engine. It is the only writer of trip
// status, and the only writer of vehicle status while a vehicle moves between
// AVAILABLE and ON_TRIP. Every change runs in one store transaction together
// with its audit event; publishing and metrics happen after commit.
type TripService struct {
	store     repo.Store
	validator *DispatchValidator

	now              func() time.Time
	log              *slog.Logger
	pub              events.Publisher
	metrics          *metrics.Metrics
	policy           TransitionPolicy
	oneTripPerDriver bool
}

// TripOption configures a TripService.
type TripOption func(*TripService)

// WithClock sets the clock used for license-expiry checks.
func WithClock(now func() time.Time) TripOption {
	return func(s *TripService) { s.now = now }
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(l *slog.Logger) TripOption {
	return func(s *TripService) { s.log = l }
}

// WithPublisher sets where committed trip events are sent.
func WithPublisher(p events.Publisher) TripOption {
	return func(s *TripService) { s.pub = p }
}

// WithMetrics records dispatch outcomes, transitions and transaction timings.
func WithMetrics(m *metrics.Metrics) TripOption {
	return func(s *TripService) { s.metrics = m }
}

// WithTransitionPolicy selects strict (default) or legacy status changes.
func WithTransitionPolicy(p TransitionPolicy) TripOption {
	return func(s *TripService) { s.policy = p }
}

// WithOneTripPerDriver rejects dispatching a driver who already has a
// DISPATCHED trip.
func WithOneTripPerDriver(on bool) TripOption {
	return func(s *TripService) { s.oneTripPerDriver = on }
}

// NewTripService constructs a TripService backed by store.
func NewTripService(store repo.Store, opts ...TripOption) *TripService {
	s := &TripService{
		store:  store,
		now:    time.Now,
		log:    slog.Default(),
		pub:    events.Nop{},
		policy: PolicyStrict,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validator = NewDispatchValidator(store, s.now, s.oneTripPerDriver)
	return s
}

// Dispatch validates the request and, if every check passes, atomically
// marks the vehicle ON_TRIP and creates a DISPATCHED trip.
// Returns domain.ErrValidation for malformed input, a *domain.RejectionError
// when a dispatch rule fails, and any other error as a server fault.
func (s *TripService) Dispatch(ctx context.Context, req DispatchRequest) (domain.Trip, error) {
	const op = "service.TripService.Dispatch"

	if err := validateDispatchRequest(req); err != nil {
		return domain.Trip{}, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.validator.Validate(ctx, req); err != nil {
		s.recordDispatch(err)
		return domain.Trip{}, fmt.Errorf("%s: %w", op, err)
	}

	var (
		trip  domain.Trip
		event domain.TripEvent
	)
	err := s.runInTx(ctx, "dispatch", func(tx repo.Repos) error {
		// The validator read outside the transaction; the conditional update
		// is what actually decides a race for the vehicle.
		ok, err := tx.Vehicles().SetStatus(ctx, req.VehicleID, domain.VehicleAvailable, domain.VehicleOnTrip)
		if err != nil {
			return err
		}
		if !ok {
			return domain.Reject(domain.ReasonVehicleUnavailable)
		}
		if s.oneTripPerDriver {
			if err := s.checkDriverIdle(ctx, tx, req.DriverID); err != nil {
				return err
			}
		}

		trip, err = tx.Trips().Create(ctx, domain.Trip{
			VehicleID:   req.VehicleID,
			DriverID:    req.DriverID,
			CargoWeight: req.CargoWeight,
			Status:      domain.TripDispatched,
		})
		if err != nil {
			return err
		}
		event, err = tx.TripEvents().Append(ctx, eventFor(trip, ""))
		return err
	})
	if err != nil {
		s.recordDispatch(err)
		return domain.Trip{}, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.Dispatch(metrics.OutcomeDispatched, "")
	s.afterCommit(ctx, event)
	return trip, nil
}

// Plan creates a DRAFT trip. The vehicle is untouched until the trip is
// moved to DISPATCHED through UpdateStatus, which runs the dispatch rules.
// Returns domain.ErrValidation if the input is malformed or the vehicle or
// driver does not exist.
func (s *TripService) Plan(ctx context.Context, req DispatchRequest) (domain.Trip, error) {
	const op = "service.TripService.Plan"

	if err := validateDispatchRequest(req); err != nil {
		return domain.Trip{}, fmt.Errorf("%s: %w", op, err)
	}

	var (
		trip  domain.Trip
		event domain.TripEvent
	)
	err := s.runInTx(ctx, "plan", func(tx repo.Repos) error {
		if _, err := tx.Vehicles().GetByID(ctx, req.VehicleID); err != nil {
			return unknownReference("vehicle", err)
		}
		if _, err := tx.Drivers().GetByID(ctx, req.DriverID); err != nil {
			return unknownReference("driver", err)
		}
		var err error
		trip, err = tx.Trips().Create(ctx, domain.Trip{
			VehicleID:   req.VehicleID,
			DriverID:    req.DriverID,
			CargoWeight: req.CargoWeight,
			Status:      domain.TripDraft,
		})
		if err != nil {
			return err
		}
		event, err = tx.TripEvents().Append(ctx, eventFor(trip, ""))
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.Dispatch(metrics.OutcomePlanned, "")
	s.afterCommit(ctx, event)
	return trip, nil
}

// UpdateStatus moves a trip to status and applies the vehicle side effect in
// the same transaction. Requesting the status the trip already has returns
// the trip unchanged.
//
// Errors: domain.ErrValidation for an unsupported target status,
// domain.ErrNotFound for an unknown trip, domain.ErrInvalidTransition when the
// policy forbids the change, *domain.RejectionError when entering DISPATCHED
// fails a dispatch rule, and domain.ErrInconsistent when a dispatched trip's
// vehicle is not ON_TRIP.
func (s *TripService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus) (domain.Trip, error) {
	const op = "service.TripService.UpdateStatus"

	if _, ok := eventByTarget[status]; !ok {
		return domain.Trip{}, fmt.Errorf("%s: %w: status must be DISPATCHED, COMPLETED or CANCELLED", op, domain.ErrValidation)
	}
	if _, err := s.store.Trips().GetByID(ctx, id); err != nil {
		return domain.Trip{}, fmt.Errorf("%s: %w", op, err)
	}

	var (
		trip  domain.Trip
		event *domain.TripEvent
	)
	err := s.runInTx(ctx, "update_status", func(tx repo.Repos) error {
		cur, err := tx.Trips().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		t, err := PlanTransition(ctx, s.policy, cur.Status, status)
		if err != nil {
			return err
		}
		if t.NoOp {
			trip = cur
			return nil
		}

		switch t.Effect {
		case EffectAcquire:
			err = s.acquireVehicle(ctx, tx, cur)
		case EffectRelease:
			err = s.releaseVehicle(ctx, tx, cur)
		}
		if err != nil {
			return err
		}

		trip, err = tx.Trips().UpdateStatus(ctx, id, t.From, t.To)
		if err != nil {
			return err
		}
		e, err := tx.TripEvents().Append(ctx, eventFor(trip, t.From))
		if err != nil {
			return err
		}
		event = &e
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("%s: %w", op, err)
	}

	if event != nil {
		s.afterCommit(ctx, *event)
	}
	return trip, nil
}

// GetByID returns a single trip. Returns domain.ErrNotFound if absent.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.store.Trips().GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// ListPaged returns one page of trips, newest first, and the total count.
// Always returns a non-nil slice.
func (s *TripService) ListPaged(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w: unknown trip status %q", domain.ErrValidation, f.Status)
	}
	trips, total, err := s.store.Trips().ListPaged(ctx, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Events returns the audit log of a trip, oldest first.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *TripService) Events(ctx context.Context, id uuid.UUID) ([]domain.TripEvent, error) {
	if _, err := s.store.Trips().GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("service.TripService.Events: %w", err)
	}
	evs, err := s.store.TripEvents().ListByTrip(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.Events: %w", err)
	}
	if evs == nil {
		evs = []domain.TripEvent{}
	}
	return evs, nil
}

// acquireVehicle re-runs the dispatch rules against rows read inside tx and
// then claims the vehicle.
func (s *TripService) acquireVehicle(ctx context.Context, tx repo.Repos, trip domain.Trip) error {
	facts, err := s.validator.gather(ctx, tx, trip.VehicleID, trip.DriverID, true)
	if err != nil {
		return err
	}
	facts.CargoWeight = trip.CargoWeight
	if _, err := CheckDispatch(facts); err != nil {
		return err
	}
	ok, err := tx.Vehicles().SetStatus(ctx, trip.VehicleID, domain.VehicleAvailable, domain.VehicleOnTrip)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Reject(domain.ReasonVehicleUnavailable)
	}
	return nil
}

// releaseVehicle hands the vehicle back. Under the strict policy a vehicle
// that is not ON_TRIP means the stored state is broken and the transaction
// is abandoned; the legacy policy tolerates it.
func (s *TripService) releaseVehicle(ctx context.Context, tx repo.Repos, trip domain.Trip) error {
	ok, err := tx.Vehicles().SetStatus(ctx, trip.VehicleID, domain.VehicleOnTrip, domain.VehicleAvailable)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if s.policy == PolicyLegacy {
		s.log.WarnContext(ctx, "released vehicle was not on a trip",
			"trip_id", trip.ID, "vehicle_id", trip.VehicleID)
		return nil
	}
	return fmt.Errorf("%w: vehicle %s of dispatched trip %s is not ON_TRIP", domain.ErrInconsistent, trip.VehicleID, trip.ID)
}

// checkDriverIdle locks the driver row and rejects the dispatch if the
// driver already has a DISPATCHED trip.
func (s *TripService) checkDriverIdle(ctx context.Context, tx repo.Repos, driverID uuid.UUID) error {
	if _, err := tx.Drivers().GetByIDForUpdate(ctx, driverID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Reject(domain.ReasonDriverUnavailable)
		}
		return err
	}
	n, err := tx.Trips().CountActiveByDriver(ctx, driverID)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.Reject(domain.ReasonDriverBusy)
	}
	return nil
}

func (s *TripService) runInTx(ctx context.Context, op string, fn func(tx repo.Repos) error) error {
	start := time.Now()
	err := s.store.RunInTx(ctx, fn)
	s.metrics.Tx(op, err == nil, time.Since(start))
	return err
}

// afterCommit publishes and logs a committed event. Publish failures are
// logged and swallowed: the status change has already happened.
func (s *TripService) afterCommit(ctx context.Context, e domain.TripEvent) {
	s.metrics.Transition(string(e.From), string(e.To))
	s.log.InfoContext(ctx, "trip status changed",
		"trip_id", e.TripID,
		"vehicle_id", e.VehicleID,
		"from", e.From,
		"to", e.To,
	)
	if err := s.pub.Publish(ctx, e); err != nil {
		s.log.WarnContext(ctx, "publish trip event failed", "trip_id", e.TripID, "error", err)
	}
}

func (s *TripService) recordDispatch(err error) {
	if reason, ok := domain.RejectionOf(err); ok {
		s.metrics.Dispatch(metrics.OutcomeRejected, string(reason))
		return
	}
	s.metrics.Dispatch(metrics.OutcomeError, "")
}

func eventFor(t domain.Trip, from domain.TripStatus) domain.TripEvent {
	return domain.TripEvent{
		TripID:    t.ID,
		VehicleID: t.VehicleID,
		DriverID:  t.DriverID,
		From:      from,
		To:        t.Status,
	}
}

func validateDispatchRequest(req DispatchRequest) error {
	switch {
	case req.VehicleID == uuid.Nil:
		return fmt.Errorf("%w: vehicle_id is required", domain.ErrValidation)
	case req.DriverID == uuid.Nil:
		return fmt.Errorf("%w: driver_id is required", domain.ErrValidation)
	case !positiveFinite(req.CargoWeight):
		return fmt.Errorf("%w: cargo_weight must be a finite number greater than zero", domain.ErrValidation)
	}
	return nil
}

// positiveFinite rejects NaN and ±Inf along with zero and negatives.
func positiveFinite(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}

func unknownReference(kind string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %s does not exist", domain.ErrValidation, kind)
	}
	return err
}
