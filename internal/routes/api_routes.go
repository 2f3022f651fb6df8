package routes

import (
	"infinite-experiment/flightboard/internal/api"
	"infinite-experiment/flightboard/internal/auth"
	"infinite-experiment/flightboard/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// RegisterAPIRoutes registers the /api/v1 flight routes. Reads are public,
// writes are rate limited and require an operator token when one is configured.
func RegisterAPIRoutes(r chi.Router, board api.FlightBoard, validate *validator.Validate, tokens *auth.OperatorTokens, limiter *middleware.RateLimiter) {
	r.Route("/api/v1/flights", func(flights chi.Router) {
		flights.Get("/", api.ListFlightsHandler(board))
		flights.Get("/search", api.SearchFlightsHandler(board))
		flights.Get("/{id}", api.GetFlightHandler(board))

		flights.Group(func(w chi.Router) {
			w.Use(limiter.Middleware)
			w.Use(middleware.RequireOperator(tokens))

			w.Post("/", api.CreateFlightHandler(board, validate))
			w.Put("/{id}", api.UpdateFlightHandler(board, validate))
			w.Delete("/{id}", api.DeleteFlightHandler(board))
		})
	})
}
