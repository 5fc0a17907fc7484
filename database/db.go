// database/db.go - Database connection (PostgreSQL, or embedded SQLite)
package database

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskhub/config"
)

var db *gorm.DB

// Open connects using cfg and configures the connection pool. It does not migrate.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = postgres.Open(cfg.PostgresDSN())
	}

	level := logger.Info
	if cfg.IsProduction() {
		level = logger.Warn
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s database: %w", cfg.DBDriver, err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting database instance: %w", err)
	}

	if cfg.DBDriver == "sqlite" {
		// A single writer avoids SQLITE_BUSY between pooled connections.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return conn, nil
}

// InitDB opens the shared connection and runs migrations.
func InitDB(cfg *config.Config) error {
	conn, err := Open(cfg)
	if err != nil {
		return err
	}
	db = conn
	log.WithField("driver", cfg.DBDriver).Info("database connected")

	return RunMigrations(db)
}

// GetDB returns the shared connection.
func GetDB() *gorm.DB {
	if db == nil {
		log.Fatal("Database not initialized. Call InitDB() first.")
	}
	return db
}

// CloseDB closes the shared connection.
func CloseDB() error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	log.Info("database connection closed")
	return nil
}
