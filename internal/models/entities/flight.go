package entities

import (
	"strings"
	"time"
)

// FlightStatus is the lifecycle stage of a flight, derived from its departure time.
type FlightStatus string

const (
	StatusScheduled FlightStatus = "Scheduled"
	StatusBoarding  FlightStatus = "Boarding"
	StatusDeparted  FlightStatus = "Departed"
	StatusLanded    FlightStatus = "Landed"
)

// AllStatuses lists the statuses in lifecycle order.
var AllStatuses = []FlightStatus{StatusScheduled, StatusBoarding, StatusDeparted, StatusLanded}

func (s FlightStatus) String() string { return string(s) }

// ParseFlightStatus matches a status name case-insensitively.
func ParseFlightStatus(raw string) (FlightStatus, bool) {
	raw = strings.TrimSpace(raw)
	for _, known := range AllStatuses {
		if strings.EqualFold(raw, string(known)) {
			return known, true
		}
	}
	return "", false
}

// FlightRecord is a single row on the departures board.
// All timestamps are kept in UTC.
type FlightRecord struct {
	ID            string       `json:"id"`
	FlightNumber  string       `json:"flightNumber"`
	Destination   string       `json:"destination"`
	DepartureTime time.Time    `json:"departureTime"`
	Gate          string       `json:"gate"`
	Status        FlightStatus `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}
