// Package database manages the Postgres connection pool, mirroring
// internal/pkg/redis's InitXxx/Close/global-handle pattern.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dared22/mealplanner/internal/config"
)

var db *gorm.DB

// InitDatabase opens the Postgres connection pool described by
// config.GlobalConfig.Database.Postgres.
func InitDatabase() error {
	pg := config.GlobalConfig.Database.Postgres

	conn, err := gorm.Open(postgres.Open(config.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(pg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(pg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(pg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	db = conn
	return nil
}

// GetDB returns the shared *gorm.DB handle.
func GetDB() *gorm.DB {
	return db
}

// Close releases the underlying connection pool.
func Close() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
