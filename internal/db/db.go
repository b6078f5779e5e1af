package db

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"maturity-assessment-backend/internal/config"
	"maturity-assessment-backend/internal/model"
)

var (
	database *gorm.DB
	mu       sync.RWMutex
)

// Open connects to Postgres and applies the pool settings.
func Open(dsn string, pool config.DBPoolConfig) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.NewSlogLogger(slog.Default(), logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetime) * time.Second)
	}
	return gdb, nil
}

// InitDBFromConfig opens the process-wide connection.
func InitDBFromConfig(cfg *config.APIConfig) error {
	gdb, err := Open(cfg.DB.DSN(), cfg.DB.Pool)
	if err != nil {
		return err
	}
	mu.Lock()
	database = gdb
	mu.Unlock()
	return nil
}

// GetDB returns the connection opened by InitDBFromConfig.
func GetDB() *gorm.DB {
	mu.RLock()
	defer mu.RUnlock()
	return database
}

// Migrate creates or updates the schema.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&model.Organization{}, &model.Assessment{}, &model.Question{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}
