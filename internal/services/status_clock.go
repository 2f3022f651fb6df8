package services

import (
	"time"

	"infinite-experiment/flightboard/internal/models/entities"
)

const (
	// BoardingWindow is how long before departure boarding opens.
	BoardingWindow = 30 * time.Minute
	// DepartedWindow is how long after departure a flight shows as departed.
	DepartedWindow = 60 * time.Minute
)

// ComputeStatus maps the time remaining until departure onto a lifecycle stage.
//
//	remaining >  30m        Scheduled
//	0 <= remaining <= 30m   Boarding
//	-60m <= remaining < 0   Departed
//	remaining < -60m        Landed
//
// Both instants are compared in UTC.
func ComputeStatus(now, departure time.Time) entities.FlightStatus {
	remaining := departure.UTC().Sub(now.UTC())

	switch {
	case remaining > BoardingWindow:
		return entities.StatusScheduled
	case remaining >= 0:
		return entities.StatusBoarding
	case remaining >= -DepartedWindow:
		return entities.StatusDeparted
	default:
		return entities.StatusLanded
	}
}
