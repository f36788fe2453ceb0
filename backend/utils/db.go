package utils

import (
	"fmt"

	"coursehub/backend/config"
	"coursehub/backend/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// InitDB opens the configured database and migrates the schema.
func InitDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	log.Info("connecting to database", zap.String("driver", cfg.DBDriver))
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}

	if cfg.DBDriver == "sqlite" {
		// sqlite serializes writers; a single connection avoids "database is locked".
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("database schema migrated")

	return db, nil
}
