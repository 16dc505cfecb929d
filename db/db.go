package db

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sidhant-sriv/gallery-api/config"
	"github.com/sidhant-sriv/gallery-api/models"
)

// Open connects to the database selected by cfg.StoreBackend.
func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		dialector = postgres.Open(cfg.DatabaseURL)
	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating sqlite directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("backend %q does not use a database", cfg.StoreBackend)
	}

	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if cfg.GinMode != "release" {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	conn, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	log.Info("connected to the database", zap.String("backend", cfg.StoreBackend))
	return conn, nil
}

// MakeMigration creates or updates the gallery tables.
func MakeMigration(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&models.ItemRecord{}); err != nil {
		return fmt.Errorf("migrating gallery_items: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
