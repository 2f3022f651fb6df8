package constants

const (
	SelectFlightColumns = `SELECT id, flight_number, destination, departure_time, gate, status, created_at, updated_at FROM flights`

	OrderByDeparture = ` ORDER BY departure_time ASC, flight_number ASC`
)
