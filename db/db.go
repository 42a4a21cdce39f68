package db

import (
	"fmt"
	"os"
	"path/filepath"

	"game_collection/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens the SQLite database at path, creating its directory if needed,
// and migrates the game table.
func Open(path string, level logger.LogLevel) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database %s: %w", path, err)
	}

	if err := models.Migrate(conn); err != nil {
		Close(conn)
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return conn, nil
}

func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
