package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"infinite-experiment/flightboard/internal/constants"
	"infinite-experiment/flightboard/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// SearchFilter narrows the board. Zero values match everything.
type SearchFilter struct {
	Status       entities.FlightStatus
	Destination  string
	FlightNumber string
}

// FlightSearchRepository serves the read-only search path over sqlx.
type FlightSearchRepository struct {
	db *sqlx.DB
}

func NewFlightSearchRepository(db *sqlx.DB) *FlightSearchRepository {
	return &FlightSearchRepository{db: db}
}

type flightRow struct {
	ID            string    `db:"id"`
	FlightNumber  string    `db:"flight_number"`
	Destination   string    `db:"destination"`
	DepartureTime time.Time `db:"departure_time"`
	Gate          string    `db:"gate"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Search matches status exactly and destination / flight number as case-insensitive substrings.
func (r *FlightSearchRepository) Search(ctx context.Context, filter SearchFilter) ([]entities.FlightRecord, error) {
	var (
		clauses []string
		args    []interface{}
	)

	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	if d := strings.TrimSpace(filter.Destination); d != "" {
		clauses = append(clauses, "LOWER(destination) LIKE ?")
		args = append(args, "%"+strings.ToLower(d)+"%")
	}
	if fn := strings.TrimSpace(filter.FlightNumber); fn != "" {
		clauses = append(clauses, "UPPER(flight_number) LIKE ?")
		args = append(args, "%"+strings.ToUpper(fn)+"%")
	}

	query := constants.SelectFlightColumns
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += constants.OrderByDeparture

	var rows []flightRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("%w: failed to search flights: %w", ErrStoreUnavailable, err)
	}

	records := make([]entities.FlightRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, entities.FlightRecord{
			ID:            row.ID,
			FlightNumber:  row.FlightNumber,
			Destination:   row.Destination,
			DepartureTime: row.DepartureTime.UTC(),
			Gate:          row.Gate,
			Status:        entities.FlightStatus(row.Status),
			CreatedAt:     row.CreatedAt.UTC(),
			UpdatedAt:     row.UpdatedAt.UTC(),
		})
	}
	return records, nil
}

// Ping checks the search connection.
func (r *FlightSearchRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
