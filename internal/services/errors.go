package services

import (
	"errors"
	"fmt"

	"infinite-experiment/flightboard/internal/constants"
	"infinite-experiment/flightboard/internal/db/repositories"
)

type ErrorKind string

const (
	KindInvalidSchedule  ErrorKind = "INVALID_SCHEDULE"
	KindDuplicateKey     ErrorKind = "DUPLICATE_KEY"
	KindNotFound         ErrorKind = "NOT_FOUND"
	KindStoreUnavailable ErrorKind = "STORE_UNAVAILABLE"
)

// FlightError is the typed failure returned by the mutation path.
// Field names the offending request field when there is one.
type FlightError struct {
	Kind    ErrorKind
	Field   string
	Message string
	Err     error
}

func (e *FlightError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *FlightError) Unwrap() error { return e.Err }

// Is matches any FlightError of the same kind, so the sentinels below work with errors.Is.
func (e *FlightError) Is(target error) bool {
	t, ok := target.(*FlightError)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidSchedule  = &FlightError{Kind: KindInvalidSchedule}
	ErrDuplicateKey     = &FlightError{Kind: KindDuplicateKey}
	ErrNotFound         = &FlightError{Kind: KindNotFound}
	ErrStoreUnavailable = &FlightError{Kind: KindStoreUnavailable}
)

func invalidSchedule() *FlightError {
	return &FlightError{Kind: KindInvalidSchedule, Field: "departureTime", Message: constants.MsgDepartureNotFuture}
}

func duplicateKey(flightNumber string, cause error) *FlightError {
	return &FlightError{
		Kind:    KindDuplicateKey,
		Field:   "flightNumber",
		Message: fmt.Sprintf(constants.MsgFlightNumberTaken, flightNumber),
		Err:     cause,
	}
}

func notFound(id string, cause error) *FlightError {
	return &FlightError{Kind: KindNotFound, Field: "id", Message: fmt.Sprintf(constants.MsgFlightNotFound, id), Err: cause}
}

// FromStoreError translates a RecordStore error into the typed taxonomy.
func FromStoreError(err error, id, flightNumber string) error {
	if err == nil {
		return nil
	}
	var fe *FlightError
	if errors.As(err, &fe) {
		return fe
	}
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return notFound(id, err)
	case errors.Is(err, repositories.ErrDuplicateKey):
		return duplicateKey(flightNumber, err)
	default:
		return &FlightError{Kind: KindStoreUnavailable, Message: constants.MsgStoreUnavailable, Err: err}
	}
}
