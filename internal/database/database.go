// Package database opens the postgres connection and migrates the schema.
package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	applog "ideomatch/backend/internal/logger"
	"ideomatch/backend/internal/models"
)

// gormWriter routes gorm's log lines into zerolog.
type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warn().Msgf(format, args...)
}

// Connect opens the database. Driver errors are translated into gorm's
// portable errors such as gorm.ErrDuplicatedKey.
func Connect(dsn string) (*gorm.DB, error) {
	log := applog.WithComponent("database")

	// Configure GORM logger
	customLogger := gormlogger.New(
		gormWriter{log: log},
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         customLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info().Msg("Database connection established")
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Settings{},
		&models.Interests{},
		&models.Message{},
		&models.Contact{},
		&models.Match{},
		&models.Block{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log := applog.WithComponent("database")
	log.Info().Msg("Database migrated successfully")
	return nil
}
