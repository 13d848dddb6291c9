package database

import (
	"fmt"

	"freightdesk/internal/config"
	"freightdesk/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects with the named driver. TranslateError is always on so repositories
// see gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated instead of driver codes.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
}

// NewConnection initializes a new connection pool using GORM
func NewConnection(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return Open(cfg.Driver, cfg.DSN())
}

// Migrate creates or updates the schema of every persisted model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Supplier{},
		&model.Forwarder{},
		&model.Order{},
		&model.OrderItem{},
		&model.Invoice{},
		&model.InvoiceDocument{},
		&model.AuditLog{},
	)
}

// Ping runs SELECT 1 against the pool.
func Ping(db *gorm.DB) error {
	var one int
	return db.Raw("SELECT 1").Scan(&one).Error
}
