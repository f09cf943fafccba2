package database

import (
	"strings"

	"foundersbook-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite://"

// Open opens a GORM DB. A "sqlite://<path>" URL opens a local SQLite file
// (":memory:" works too); anything else is treated as a Postgres DSN.
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") behind PgBouncer-style poolers.
func Open(url string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	if path, ok := strings.CutPrefix(url, sqlitePrefix); ok {
		db, err := gorm.Open(sqlite.Open(path), cfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// one writer; also keeps ":memory:" on a single connection
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  url,
		PreferSimpleProtocol: true,
	}), cfg)
}

// Models lists every persisted type, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.EquitySplit{},
		&domain.EquityShare{},
		&domain.Category{},
		&domain.Expense{},
		&domain.MonthlyParity{},
		&domain.Projection{},
		&domain.ProjectedExpense{},
		&domain.TaskCategory{},
		&domain.Task{},
		&domain.TaskNote{},
		&domain.Notification{},
	}
}

// AutoMigrate creates or updates all tables from the model definitions.
// Postgres deployments use the SQL migrations in Migrate instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
