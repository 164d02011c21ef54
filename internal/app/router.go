package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pkordes/fleetops/internal/config"
	"github.com/pkordes/fleetops/internal/handler"
	"github.com/pkordes/fleetops/internal/metrics"
	"github.com/pkordes/fleetops/internal/middleware"
	"github.com/pkordes/fleetops/openapi"
)

// NewRouter assembles the API's HTTP handler.
//
// Middleware order: RequestID, RealIP, request metrics, SlogLogger,
// Recoverer, CORS, max body size. Recoverer sits inside the logger so a
// recovered panic is logged with its 500 status.
func NewRouter(cfg config.Config, svc *Services, log *slog.Logger, m *metrics.Metrics, g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewRequestMetrics(m))
	r.Use(middleware.NewSlogLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	if g != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(g))
	}
	r.Method(http.MethodGet, "/openapi.yaml", openapi.Handler())

	srv := handler.NewServer(svc.Trips, svc.Vehicles, svc.Drivers, log)
	r.Mount("/", handler.Handler(srv))
	return r
}
