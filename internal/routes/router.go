package routes

import (
	"net/http"
	"time"

	"infinite-experiment/flightboard/internal/api"
	"infinite-experiment/flightboard/internal/auth"
	"infinite-experiment/flightboard/internal/config"
	"infinite-experiment/flightboard/internal/logging"
	"infinite-experiment/flightboard/internal/metrics"
	"infinite-experiment/flightboard/internal/middleware"
	"infinite-experiment/flightboard/internal/models/dtos/requests"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Engine is what the router needs from the flight engine.
type Engine interface {
	api.FlightBoard
	api.SessionHub
	api.SweepReporter
}

type Dependencies struct {
	Config  *config.Config
	Engine  Engine
	Checks  map[string]api.Pinger
	Metrics *metrics.MetricsRegistry
	UpSince time.Time
}

func RegisterRoutes(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	r.Get("/healthCheck", api.HealthCheckHandler(deps.Checks, deps.Engine, deps.UpSince))
	r.Get("/ws/flights", api.BoardSocketHandler(deps.Engine, api.NewUpgrader(deps.Config.CORSOrigins)))

	RegisterAPIRoutes(r, deps.Engine,
		requests.NewValidator(),
		auth.NewOperatorTokens(deps.Config.JWTSecret),
		middleware.NewRateLimiter(deps.Config.RateLimitRPS, deps.Config.RateLimitBurst),
	)

	return r
}
