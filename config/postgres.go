package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var PostgresDB *gorm.DB

// Pool defaults sized for the chat path: every inbound message touches
// Postgres at least three times (persist inbound, read history, persist
// reply), so open connections run well above the API request rate.
const (
	defaultMaxOpenConns = 100
	defaultMaxIdleConns = 10
)

func InitPostgres() error {
	uri := os.Getenv("POSTGRES_URI")
	if uri == "" {
		return errors.New("POSTGRES_URI environment variable is not set")
	}
	db, err := gorm.Open(postgres.Open(uri), &gorm.Config{})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(envInt("POSTGRES_MAX_OPEN_CONNS", defaultMaxOpenConns))
	sqlDB.SetMaxIdleConns(envInt("POSTGRES_MAX_IDLE_CONNS", defaultMaxIdleConns))
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	PostgresDB = db
	return nil
}

// envInt reads an integer from the environment, falling back to def when
// the variable is unset or not a positive number.
func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
