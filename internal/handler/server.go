// Package handler implements the HTTP handlers for the fleet dispatch API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, etc.) but all share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/fleetops/internal/domain"
	"github.com/pkordes/fleetops/internal/service"
)

// TripServicer defines the trip lifecycle operations the handler depends on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the store or service layer.
type TripServicer interface {
	Dispatch(ctx context.Context, req service.DispatchRequest) (domain.Trip, error)
	Plan(ctx context.Context, req service.DispatchRequest) (domain.Trip, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListPaged(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Events(ctx context.Context, id uuid.UUID) ([]domain.TripEvent, error)
}

// VehicleServicer defines the vehicle operations the handler depends on.
type VehicleServicer interface {
	Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)
	ListPaged(ctx context.Context, status domain.VehicleStatus, p domain.PaginationParams) ([]domain.Vehicle, int64, error)
	Update(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DriverServicer defines the driver operations the handler depends on.
type DriverServicer interface {
	Create(ctx context.Context, d domain.Driver) (domain.Driver, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error)
	ListPaged(ctx context.Context, status domain.DriverStatus, p domain.PaginationParams) ([]domain.Driver, int64, error)
	Update(ctx context.Context, d domain.Driver) (domain.Driver, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Server holds the dependencies of every endpoint.
// Wire it in main.go via Handler(server).
type Server struct {
	trips    TripServicer
	vehicles VehicleServicer
	drivers  DriverServicer
	log      *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(trips TripServicer, vehicles VehicleServicer, drivers DriverServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{trips: trips, vehicles: vehicles, drivers: drivers, log: log}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// Handler returns a chi router serving every API endpoint of s.
func Handler(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/vehicles", func(r chi.Router) {
		r.Get("/", s.ListVehicles)
		r.Post("/", s.CreateVehicle)
		r.Get("/{id}", s.GetVehicle)
		r.Put("/{id}", s.UpdateVehicle)
		r.Delete("/{id}", s.DeleteVehicle)
	})

	r.Route("/drivers", func(r chi.Router) {
		r.Get("/", s.ListDrivers)
		r.Post("/", s.CreateDriver)
		r.Get("/{id}", s.GetDriver)
		r.Put("/{id}", s.UpdateDriver)
		r.Delete("/{id}", s.DeleteDriver)
	})

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Post("/", s.DispatchTrip)
		r.Get("/{id}", s.GetTrip)
		r.Put("/{id}/status", s.UpdateTripStatus)
		r.Get("/{id}/events", s.ListTripEvents)
	})

	return r
}
