// Package realtime delivers flight board events to connected viewers.
package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"infinite-experiment/flightboard/internal/models/entities"
)

// EventType is the stable "type" key on the wire.
type EventType string

const (
	EventCreated     EventType = "created"
	EventUpdated     EventType = "updated"
	EventDeleted     EventType = "deleted"
	EventStatusBatch EventType = "statusBatch"
)

// Event is the closed set of notifications the board emits.
type Event interface {
	Type() EventType
	isEvent()
}

// Created announces a new flight.
type Created struct {
	Flight entities.FlightRecord
}

// Updated carries the full flight after a field-level change.
type Updated struct {
	Flight entities.FlightRecord
}

// Deleted announces a removed flight.
type Deleted struct {
	ID string
}

// StatusChange is one entry of a status batch.
type StatusChange struct {
	ID           string                `json:"id"`
	FlightNumber string                `json:"flightNumber,omitempty"`
	Status       entities.FlightStatus `json:"status"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// StatusBatchChanged bundles the status transitions persisted by one write pass.
type StatusBatchChanged struct {
	Changes []StatusChange
}

func (Created) Type() EventType            { return EventCreated }
func (Updated) Type() EventType            { return EventUpdated }
func (Deleted) Type() EventType            { return EventDeleted }
func (StatusBatchChanged) Type() EventType { return EventStatusBatch }

func (Created) isEvent()            {}
func (Updated) isEvent()            {}
func (Deleted) isEvent()            {}
func (StatusBatchChanged) isEvent() {}

// envelope is the wire schema shared by every event type.
type envelope struct {
	Type    EventType              `json:"type"`
	Flight  *entities.FlightRecord `json:"flight,omitempty"`
	ID      string                 `json:"id,omitempty"`
	Changes []StatusChange         `json:"changes,omitempty"`
}

// Encode serialises an event to its wire form.
func Encode(e Event) ([]byte, error) {
	env := envelope{Type: e.Type()}

	switch ev := e.(type) {
	case Created:
		env.Flight = &ev.Flight
	case Updated:
		env.Flight = &ev.Flight
	case Deleted:
		env.ID = ev.ID
	case StatusBatchChanged:
		env.Changes = ev.Changes
	default:
		return nil, fmt.Errorf("unknown event %T", e)
	}

	return json.Marshal(env)
}

// Decode parses a wire event. Viewers and tests use it; the server never does.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}

	switch env.Type {
	case EventCreated, EventUpdated:
		if env.Flight == nil {
			return nil, fmt.Errorf("%s event without flight", env.Type)
		}
		if env.Type == EventCreated {
			return Created{Flight: *env.Flight}, nil
		}
		return Updated{Flight: *env.Flight}, nil
	case EventDeleted:
		return Deleted{ID: env.ID}, nil
	case EventStatusBatch:
		return StatusBatchChanged{Changes: env.Changes}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}
