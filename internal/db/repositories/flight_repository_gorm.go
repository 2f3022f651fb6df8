package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"infinite-experiment/flightboard/internal/models/entities"
	gormModels "infinite-experiment/flightboard/internal/models/gorm"

	"gorm.io/gorm"
)

// FlightRepository is the GORM-backed RecordStore.
type FlightRepository struct {
	db *gorm.DB
}

var _ RecordStore = (*FlightRepository)(nil)

// NewFlightRepository creates a new GORM-based flight repository
func NewFlightRepository(db *gorm.DB) *FlightRepository {
	return &FlightRepository{db: db}
}

// GetAll fetches every flight ordered by departure time
func (r *FlightRepository) GetAll(ctx context.Context) ([]entities.FlightRecord, error) {
	var rows []gormModels.Flight

	err := r.db.WithContext(ctx).
		Order("departure_time ASC").
		Order("flight_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch flights: %w", ErrStoreUnavailable, err)
	}

	records := make([]entities.FlightRecord, 0, len(rows))
	for i := range rows {
		records = append(records, toEntity(&rows[i]))
	}
	return records, nil
}

func (r *FlightRepository) GetByID(ctx context.Context, id string) (*entities.FlightRecord, error) {
	var row gormModels.Flight

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to fetch flight %s: %w", ErrStoreUnavailable, id, err)
	}

	rec := toEntity(&row)
	return &rec, nil
}

func (r *FlightRepository) ExistsByFlightNumber(ctx context.Context, flightNumber string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&gormModels.Flight{}).
		Where("flight_number = ?", flightNumber).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: failed to check flight number: %w", ErrStoreUnavailable, err)
	}
	return count > 0, nil
}

func (r *FlightRepository) Insert(ctx context.Context, rec *entities.FlightRecord) (*entities.FlightRecord, error) {
	row := fromEntity(rec)
	row.ID = ""

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, rec.FlightNumber)
		}
		return nil, fmt.Errorf("%w: failed to insert flight: %w", ErrStoreUnavailable, err)
	}

	saved := toEntity(&row)
	return &saved, nil
}

func (r *FlightRepository) Update(ctx context.Context, rec *entities.FlightRecord) (*entities.FlightRecord, error) {
	result := r.db.WithContext(ctx).
		Model(&gormModels.Flight{}).
		Where("id = ?", rec.ID).
		Updates(map[string]interface{}{
			"destination":    rec.Destination,
			"departure_time": rec.DepartureTime.UTC(),
			"gate":           rec.Gate,
			"status":         string(rec.Status),
			"updated_at":     rec.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("%w: failed to update flight %s: %w", ErrStoreUnavailable, rec.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rec.ID)
	}

	return r.GetByID(ctx, rec.ID)
}

func (r *FlightRepository) UpdateStatus(ctx context.Context, current *entities.FlightRecord, next entities.FlightStatus, at time.Time) (bool, error) {
	id := current.ID
	result := r.db.WithContext(ctx).
		Model(&gormModels.Flight{}).
		Where("id = ? AND status = ? AND departure_time = ? AND updated_at = ?",
			id, string(current.Status), current.DepartureTime.UTC(), current.UpdatedAt.UTC()).
		Updates(map[string]interface{}{
			"status":     string(next),
			"updated_at": at.UTC(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("%w: failed to update status of %s: %w", ErrStoreUnavailable, id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *FlightRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&gormModels.Flight{})
	if result.Error != nil {
		return false, fmt.Errorf("%w: failed to delete flight %s: %w", ErrStoreUnavailable, id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DeleteAll wipes the board. Used by the seeder only.
func (r *FlightRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&gormModels.Flight{})
	if result.Error != nil {
		return 0, fmt.Errorf("%w: failed to clear flights: %w", ErrStoreUnavailable, result.Error)
	}
	return result.RowsAffected, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func toEntity(row *gormModels.Flight) entities.FlightRecord {
	return entities.FlightRecord{
		ID:            row.ID,
		FlightNumber:  row.FlightNumber,
		Destination:   row.Destination,
		DepartureTime: row.DepartureTime.UTC(),
		Gate:          row.Gate,
		Status:        entities.FlightStatus(row.Status),
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

func fromEntity(rec *entities.FlightRecord) gormModels.Flight {
	return gormModels.Flight{
		ID:            rec.ID,
		FlightNumber:  rec.FlightNumber,
		Destination:   rec.Destination,
		DepartureTime: rec.DepartureTime.UTC(),
		Gate:          rec.Gate,
		Status:        string(rec.Status),
		CreatedAt:     rec.CreatedAt.UTC(),
		UpdatedAt:     rec.UpdatedAt.UTC(),
	}
}
