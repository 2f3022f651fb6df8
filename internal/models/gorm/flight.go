package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Flight is the persisted row behind entities.FlightRecord.
// Timestamps are owned by the engine, so GORM's automatic tracking is disabled.
type Flight struct {
	ID            string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	FlightNumber  string    `gorm:"column:flight_number;uniqueIndex;type:varchar(10);not null"`
	Destination   string    `gorm:"column:destination;type:varchar(100);not null"`
	DepartureTime time.Time `gorm:"column:departure_time;index;not null"`
	Gate          string    `gorm:"column:gate;type:varchar(10);not null"`
	Status        string    `gorm:"column:status;type:varchar(16);index;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;autoCreateTime:false"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null;autoUpdateTime:false"`
}

// TableName specifies the table name for GORM
func (Flight) TableName() string {
	return "flights"
}

// BeforeCreate assigns the store-side identifier.
func (f *Flight) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
