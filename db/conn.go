// Package db opens the metadata database
package db

import (
	"bitwise74/file-vault/internal/model"
	"fmt"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New connects to the configured database and runs migrations.
// SQLite is meant for local setups, production should point
// db.driver at postgres instead
func New() (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
		dsn = viper.GetString("db.dsn")
	)

	switch viper.GetString("db.driver") {
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	default:
		db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	err = db.AutoMigrate(model.File{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
