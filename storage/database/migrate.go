package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"habitlog/internal/model"
	"habitlog/pkg/logger"
)

// Migrate runs schema migration for all models.
func Migrate() error {
	db := DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	logger.Logger.Info("Starting database migration...")

	err := db.AutoMigrate(
		&model.DailyLog{},
	)

	if err != nil {
		logger.Logger.Error("Database migration failed", zap.Error(err))
		return err
	}

	logger.Logger.Info("Database migration completed successfully")
	return nil
}
