package services

import (
	"context"
	"strings"
	"time"

	"infinite-experiment/flightboard/internal/common"
	"infinite-experiment/flightboard/internal/db/repositories"
	"infinite-experiment/flightboard/internal/logging"
	"infinite-experiment/flightboard/internal/models/entities"
	"infinite-experiment/flightboard/internal/realtime"

	"go.uber.org/zap"
)

// CreateFlightInput carries already validated fields for a new flight.
type CreateFlightInput struct {
	FlightNumber  string
	Destination   string
	DepartureTime time.Time
	Gate          string
}

// UpdateFlightInput changes only the non-nil fields. Blank strings are ignored.
type UpdateFlightInput struct {
	Destination   *string
	DepartureTime *time.Time
	Gate          *string
}

// MutationResult is the record after a write plus the events it must produce.
type MutationResult struct {
	Flight *entities.FlightRecord
	Events []realtime.Event
}

// MutationGateway is the only client-facing writer. Every successful write
// recomputes status against the current time before it is persisted.
type MutationGateway struct {
	store            repositories.RecordStore
	clock            common.Clock
	broadcastUpdates bool
	log              *zap.SugaredLogger
}

type GatewayOptions struct {
	// BroadcastUpdates also emits an "updated" event on field-level changes.
	BroadcastUpdates bool
	Logger           *zap.SugaredLogger
}

func NewMutationGateway(store repositories.RecordStore, clock common.Clock, opts GatewayOptions) *MutationGateway {
	if clock == nil {
		clock = common.SystemClock{}
	}
	return &MutationGateway{
		store:            store,
		clock:            clock,
		broadcastUpdates: opts.BroadcastUpdates,
		log:              logging.OrNamed(opts.Logger, "mutation_gateway"),
	}
}

// CreateRecord inserts a flight with its status computed at insert time.
func (g *MutationGateway) CreateRecord(ctx context.Context, in CreateFlightInput) (*MutationResult, error) {
	now := g.clock.Now().UTC()
	departure := in.DepartureTime.UTC()

	if !departure.After(now) {
		return nil, invalidSchedule()
	}

	exists, err := g.store.ExistsByFlightNumber(ctx, in.FlightNumber)
	if err != nil {
		return nil, FromStoreError(err, "", in.FlightNumber)
	}
	if exists {
		return nil, duplicateKey(in.FlightNumber, nil)
	}

	rec := &entities.FlightRecord{
		FlightNumber:  in.FlightNumber,
		Destination:   in.Destination,
		DepartureTime: departure,
		Gate:          in.Gate,
		Status:        ComputeStatus(now, departure),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	saved, err := g.store.Insert(ctx, rec)
	if err != nil {
		// the unique index still catches a concurrent insert that passed the check above
		return nil, FromStoreError(err, "", in.FlightNumber)
	}

	g.log.Infow("Flight created", "id", saved.ID, "flight_number", saved.FlightNumber, "status", saved.Status)

	return &MutationResult{
		Flight: saved,
		Events: []realtime.Event{realtime.Created{Flight: *saved}},
	}, nil
}

// UpdateRecord applies the supplied fields and recomputes status. A write that
// changes nothing returns the current record and no events.
func (g *MutationGateway) UpdateRecord(ctx context.Context, id string, in UpdateFlightInput) (*MutationResult, error) {
	current, err := g.store.GetByID(ctx, id)
	if err != nil {
		return nil, FromStoreError(err, id, "")
	}

	now := g.clock.Now().UTC()
	next := *current
	fieldsChanged := false

	if in.Destination != nil {
		if d := strings.TrimSpace(*in.Destination); d != "" && d != next.Destination {
			next.Destination = d
			fieldsChanged = true
		}
	}

	if in.DepartureTime != nil {
		departure := in.DepartureTime.UTC()
		if !departure.After(now) {
			return nil, invalidSchedule()
		}
		if !departure.Equal(next.DepartureTime) {
			next.DepartureTime = departure
			fieldsChanged = true
		}
	}

	if in.Gate != nil {
		if gate := strings.TrimSpace(*in.Gate); gate != "" && gate != next.Gate {
			next.Gate = gate
			fieldsChanged = true
		}
	}

	next.Status = ComputeStatus(now, next.DepartureTime)
	statusChanged := next.Status != current.Status

	if !fieldsChanged && !statusChanged {
		return &MutationResult{Flight: current}, nil
	}

	next.UpdatedAt = now
	saved, err := g.store.Update(ctx, &next)
	if err != nil {
		return nil, FromStoreError(err, id, "")
	}

	var events []realtime.Event
	if fieldsChanged && g.broadcastUpdates {
		events = append(events, realtime.Updated{Flight: *saved})
	}
	if statusChanged {
		events = append(events, realtime.StatusBatchChanged{Changes: []realtime.StatusChange{{
			ID:           saved.ID,
			FlightNumber: saved.FlightNumber,
			Status:       saved.Status,
			UpdatedAt:    saved.UpdatedAt,
		}}})
	}

	g.log.Infow("Flight updated",
		"id", saved.ID,
		"fields_changed", fieldsChanged,
		"status_from", current.Status,
		"status_to", saved.Status,
	)

	return &MutationResult{Flight: saved, Events: events}, nil
}

// DeleteRecord removes a flight and yields the "deleted" event.
func (g *MutationGateway) DeleteRecord(ctx context.Context, id string) (*MutationResult, error) {
	ok, err := g.store.Delete(ctx, id)
	if err != nil {
		return nil, FromStoreError(err, id, "")
	}
	if !ok {
		return nil, notFound(id, nil)
	}

	g.log.Infow("Flight deleted", "id", id)

	return &MutationResult{Events: []realtime.Event{realtime.Deleted{ID: id}}}, nil
}
