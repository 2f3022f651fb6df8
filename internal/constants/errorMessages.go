package constants

const (
	MsgDepartureNotFuture = "Departure time must be in the future."
	MsgFlightNumberTaken  = "Flight number %s already exists."
	MsgFlightNotFound     = "Flight with ID %s not found."
	MsgStoreUnavailable   = "Flight store is temporarily unavailable."
	MsgInvalidBody        = "Invalid request body"
	MsgInvalidStatus      = "Unknown flight status"
	MsgUnauthorized       = "Unauthorized. Missing or invalid operator token"
	MsgTooManyRequests    = "Too many requests"
)
