package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/pkg/utils"
)

// Options tune the connection.
type Options struct {
	LogLevel     string
	MaxOpenConns int
	Attempts     int
}

// NewPostgres connects to PostgreSQL, retrying with exponential backoff while the database comes up.
func NewPostgres(dsn string, opts Options) (*gorm.DB, error) {
	if opts.Attempts <= 0 {
		opts.Attempts = 15
	}

	var db *gorm.DB
	var err error

	utils.Log.Info("Attempting to connect to database...")

	for i := 1; i <= opts.Attempts; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(parseLogLevel(opts.LogLevel)),
		})
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr == nil {
				if err = sqlDB.Ping(); err == nil {
					if opts.MaxOpenConns > 0 {
						sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
						sqlDB.SetMaxIdleConns(opts.MaxOpenConns / 2)
					}
					sqlDB.SetConnMaxLifetime(30 * time.Minute)
					utils.Log.Infof("Database connected (attempt %d)", i)
					return db, nil
				}
			} else {
				err = dbErr
			}
		}

		utils.Log.Warnf("Attempt %d failed: %v", i, err)
		if i == opts.Attempts {
			break
		}

		// 1, 2, 4, 8 seconds... capped at 10
		waitTime := time.Duration(1<<uint(i-1)) * time.Second
		if waitTime > 10*time.Second {
			waitTime = 10 * time.Second
		}
		time.Sleep(waitTime)
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", opts.Attempts, err)
}

// AutoMigrateTables creates or updates tables for the given models.
func AutoMigrateTables(db *gorm.DB, tables ...interface{}) error {
	utils.Log.Info("Running database migrations...")

	for _, model := range tables {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	utils.Log.Info("Database migrations completed")
	return nil
}

// Migrate applies the full schema in dependency order.
func Migrate(db *gorm.DB) error {
	return AutoMigrateTables(db, models.All()...)
}

// Ping checks the connection, used by the health endpoint.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func parseLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
