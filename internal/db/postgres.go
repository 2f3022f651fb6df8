package db

import (
	"fmt"
	"time"

	"infinite-experiment/flightboard/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ConnectPostgres opens a sqlx pool over lib/pq, retrying while the server comes up.
func ConnectPostgres(dsn string) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return db, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, err
}

// OpenSearchDB returns the sqlx handle used by the search path. sqlite shares
// the GORM pool because an in-memory database lives on a single connection.
func OpenSearchDB(cfg *config.Config, orm *gorm.DB) (*sqlx.DB, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return ConnectPostgres(cfg.PostgresDSN())
	case config.DriverSQLite:
		sqlDB, err := orm.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
		}
		return sqlx.NewDb(sqlDB, "sqlite3"), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
}
