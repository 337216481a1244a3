package database

import (
	"fmt"
	"time"

	"github.com/sangkips/agrishop-billing/internal/config"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
	"github.com/sangkips/agrishop-billing/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection.
// SQL is logged at Info level in debug mode and only slow queries and errors otherwise.
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool, log *logger.Logger) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Infow("connected to PostgreSQL", "host", cfg.Host, "database", cfg.Name)
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *logger.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		// Catalogue
		&entity.Product{},
		&entity.Employee{},
		&entity.Dealer{},

		// Billing
		&entity.Bill{},
		&entity.BillCustomer{},
		&entity.BillItem{},

		// System entities
		&entity.Sequence{},
		&entity.IdempotencyKey{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// SeedSequences starts the bill number counter after the bills already stored,
// so that a database created before the counter existed keeps numbering from
// where it left off. An existing counter is never touched.
func SeedSequences(db *gorm.DB, prefix string, log *logger.Logger) error {
	result := db.Exec(`
		INSERT INTO sys_sequences (key, current_val, updated_at)
		SELECT ?, COUNT(*), NOW() FROM bills
		ON CONFLICT (key) DO NOTHING`, prefix)
	if result.Error != nil {
		return fmt.Errorf("failed to seed bill sequence: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Infow("bill sequence seeded", "prefix", prefix)
	}
	return nil
}
