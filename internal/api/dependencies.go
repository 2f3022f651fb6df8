package api

import (
	"context"

	"infinite-experiment/flightboard/internal/db/repositories"
	"infinite-experiment/flightboard/internal/models/entities"
	"infinite-experiment/flightboard/internal/realtime"
	"infinite-experiment/flightboard/internal/services"
)

// FlightBoard is the engine surface used by the REST handlers.
type FlightBoard interface {
	Create(ctx context.Context, in services.CreateFlightInput) (*entities.FlightRecord, error)
	Update(ctx context.Context, id string, in services.UpdateFlightInput) (*entities.FlightRecord, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*entities.FlightRecord, error)
	List(ctx context.Context) ([]entities.FlightRecord, error)
	Search(ctx context.Context, filter repositories.SearchFilter) ([]entities.FlightRecord, error)
}

// SessionHub is the engine surface used by the websocket endpoint.
type SessionHub interface {
	OnSessionJoin(s realtime.Session) bool
	OnSessionLeave(sessionID string) bool
}

// Pinger is anything the health check can ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SweepReporter exposes the reconciliation loop state to the health check.
type SweepReporter interface {
	SweeperStatus() entities.SweeperStatus
}
