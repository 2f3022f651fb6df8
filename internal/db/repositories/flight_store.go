package repositories

import (
	"context"
	"errors"
	"time"

	"infinite-experiment/flightboard/internal/models/entities"
)

var (
	ErrNotFound         = errors.New("flight not found")
	ErrDuplicateKey     = errors.New("flight number already exists")
	ErrStoreUnavailable = errors.New("flight store unavailable")
)

// RecordStore is the keyed flight store consumed by the engine.
// Every method may fail with an error wrapping ErrStoreUnavailable.
type RecordStore interface {
	GetAll(ctx context.Context) ([]entities.FlightRecord, error)
	// GetByID returns ErrNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (*entities.FlightRecord, error)
	ExistsByFlightNumber(ctx context.Context, flightNumber string) (bool, error)
	// Insert assigns the id. A flight number collision yields ErrDuplicateKey.
	Insert(ctx context.Context, rec *entities.FlightRecord) (*entities.FlightRecord, error)
	// Update writes every mutable field. Unknown ids yield ErrNotFound.
	Update(ctx context.Context, rec *entities.FlightRecord) (*entities.FlightRecord, error)
	// UpdateStatus writes next only while the row is still the version read as
	// current (same status, departure time and updatedAt). It reports whether
	// the write was applied.
	UpdateStatus(ctx context.Context, current *entities.FlightRecord, next entities.FlightStatus, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}
