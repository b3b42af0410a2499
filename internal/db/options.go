package db

import (
	"time"

	"github.com/inkpress/inkwell/pkg/logger"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// WithLogger routes gorm's query log through the application logger.
func WithLogger(log *logger.Logger) DBOptions {
	return func(db *gorm.DB) error {
		db.Config.Logger = gormLogger.New(
			log.Log,
			gormLogger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		)
		return nil
	}
}

// WithPool tunes the underlying sql.DB connection pool. Connections are
// acquired per request and released on completion.
func WithPool(maxOpen, maxIdle int, maxLifetime time.Duration) DBOptions {
	return func(db *gorm.DB) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		sqlDB.SetMaxOpenConns(maxOpen)
		sqlDB.SetMaxIdleConns(maxIdle)
		sqlDB.SetConnMaxLifetime(maxLifetime)
		return nil
	}
}
