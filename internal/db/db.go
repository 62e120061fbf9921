// Package db opens the primary and legacy databases.
package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/biblia-online/biblia/internal/config"
	"github.com/biblia-online/biblia/internal/db/dsn"
	"github.com/biblia-online/biblia/internal/db/models"
)

const memoryPath = ":memory:"

// Open connects to the primary database with the driver selected by DB.GormEngine.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		dialector = postgres.Open(dsn.Create(cfg))
	case config.EngineSQLite:
		path := cfg.DB.Path
		if path == "" {
			path = memoryPath
		}

		dialector = sqlite.Open(path)
	case config.EngineMySQL, "":
		dialector = gormmysql.Open(dsn.Create(cfg))
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnsupportedGormEngine, cfg.DB.GormEngine)
	}

	db, err := gorm.Open(dialector, gormConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DB.GormEngine, err)
	}

	if cfg.DB.GormEngine == config.EngineSQLite && (cfg.DB.Path == "" || cfg.DB.Path == memoryPath) {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		// every pooled connection would get its own in-memory database
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// OpenLegacy connects to the read-only secondary MySQL database.
// It returns nil without error when the legacy database is disabled.
func OpenLegacy(cfg *config.Config) (*gorm.DB, error) {
	if !cfg.Legacy.Enabled {
		return nil, nil //nolint:nilnil
	}

	db, err := gorm.Open(gormmysql.Open(dsn.Legacy(cfg)), gormConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("open legacy database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates every table of the primary database.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	return nil
}

func gormConfig(cfg *config.Config) *gorm.Config {
	level := gormlogger.Silent
	if cfg.DevMode {
		level = gormlogger.Warn
	}

	return &gorm.Config{Logger: gormlogger.Default.LogMode(level)}
}
