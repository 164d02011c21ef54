// Package app wires configuration into the running pieces of the fleet
// binaries: logger, entity store, event publisher, services and router.
// cmd/api and cmd/fleetctl share it so both talk to the store the same way.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/fleetops/internal/config"
	"github.com/pkordes/fleetops/internal/events"
	"github.com/pkordes/fleetops/internal/metrics"
	"github.com/pkordes/fleetops/internal/repo"
	"github.com/pkordes/fleetops/internal/repo/memrepo"
	"github.com/pkordes/fleetops/internal/service"
	"github.com/pkordes/fleetops/migrations"
)

// NewLogger returns a JSON slog.Logger writing to w at the given level.
// Unknown levels fall back to info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// Store is an opened entity store. Pool is nil for the in-memory backend.
type Store struct {
	repo.Store
	Pool *pgxpool.Pool
}

// Close releases the connection pool, if any.
func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// OpenStore opens the backend selected by cfg.StoreBackend. The Postgres
// pool is pinged so a bad DATABASE_URL fails at startup, not on the first
// request.
func OpenStore(ctx context.Context, cfg config.Config) (*Store, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		return &Store{Store: memrepo.New()}, nil
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("app.OpenStore: create pool: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("app.OpenStore: ping: %w", err)
		}
		return &Store{Store: repo.NewStore(pool), Pool: pool}, nil
	default:
		return nil, fmt.Errorf("app.OpenStore: unknown store backend %q", cfg.StoreBackend)
	}
}

// Migrator returns a goose provider over the embedded migrations, running on
// a database/sql handle borrowed from pool. The returned close func releases
// that handle and leaves the pool open.
func Migrator(pool *pgxpool.Pool) (*goose.Provider, func() error, error) {
	db := stdlib.OpenDBFromPool(pool)
	p, err := migrations.NewProvider(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("app.Migrator: %w", err)
	}
	return p, db.Close, nil
}

// MigrateUp applies every pending migration and logs what ran.
func MigrateUp(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	p, closeDB, err := Migrator(pool)
	if err != nil {
		return err
	}
	defer closeDB()

	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("app.MigrateUp: %w", err)
	}
	for _, r := range results {
		log.InfoContext(ctx, "migration applied",
			"version", r.Source.Version,
			"duration_ms", r.Duration.Milliseconds(),
		)
	}
	return nil
}

// NewPublisher builds the trip event publisher selected by
// cfg.EventsBackend. The caller owns Close.
func NewPublisher(ctx context.Context, cfg config.Config, log *slog.Logger) (events.Publisher, error) {
	switch cfg.EventsBackend {
	case config.EventsNone, "":
		return events.Nop{}, nil
	case config.EventsLog:
		return events.NewLogPublisher(log), nil
	case config.EventsRedis:
		p, err := events.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			return nil, fmt.Errorf("app.NewPublisher: %w", err)
		}
		return p, nil
	case config.EventsAMQP:
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, fmt.Errorf("app.NewPublisher: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("app.NewPublisher: unknown events backend %q", cfg.EventsBackend)
	}
}

// Services is the service layer built over one store.
type Services struct {
	Trips    *service.TripService
	Vehicles *service.VehicleService
	Drivers  *service.DriverService
}

// NewServices builds the services from cfg. m and pub may be nil.
func NewServices(store repo.Store, cfg config.Config, log *slog.Logger, pub events.Publisher, m *metrics.Metrics) (*Services, error) {
	policy, err := service.ParseTransitionPolicy(cfg.TransitionPolicy)
	if err != nil {
		return nil, fmt.Errorf("app.NewServices: %w", err)
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &Services{
		Trips: service.NewTripService(store,
			service.WithLogger(log),
			service.WithPublisher(pub),
			service.WithMetrics(m),
			service.WithTransitionPolicy(policy),
			service.WithOneTripPerDriver(cfg.OneTripPerDriver),
		),
		Vehicles: service.NewVehicleService(store.Vehicles()),
		Drivers:  service.NewDriverService(store.Drivers()),
	}, nil
}
