package database

import (
	"fmt"

	"github.com/arnavshah/carehome-shifts-api/pkg/config"
	"github.com/arnavshah/carehome-shifts-api/pkg/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens postgres when DATABASE_URL is set, sqlite otherwise, and migrates the schema
func InitDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.UsePostgres() {
		log.Info("db: connecting to postgres")
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.DatabaseURL,
			PreferSimpleProtocol: true,
		})
	} else {
		log.Info("db: opening sqlite", zap.String("path", cfg.DataPath))
		dialector = sqlite.Open(cfg.DataPath)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt: false,
		Logger:      logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the API uses
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Link{},
		&models.ShiftTypeEntry{},
		&models.Shift{},
		&models.Timesheet{},
		&models.Invitation{},
		&models.HomeStaffInvitation{},
		&models.CarerKey{},
		&models.CheckinChallenge{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
