package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// DB wraps a database connection pool
type DB struct {
	*sql.DB
}

// Config holds database configuration for one store
type Config struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoadConfigFromEnv loads database configuration from environment variables.
// The prefix selects the store, e.g. "LOGIN_DB" or "GAME_DB".
func LoadConfigFromEnv(prefix string) *Config {
	return &Config{
		Host:            getEnv(prefix+"_HOST", "localhost"),
		Port:            getEnv(prefix+"_PORT", "3306"),
		User:            getEnv(prefix+"_USER", "root"),
		Password:        getEnv(prefix+"_PASSWORD", ""),
		DBName:          getEnv(prefix+"_NAME", ""),
		MaxOpenConns:    getEnvAsInt(prefix+"_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt(prefix+"_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration(prefix+"_CONN_MAX_LIFETIME", 5*time.Minute),
		ConnMaxIdleTime: getEnvAsDuration(prefix+"_CONN_MAX_IDLE_TIME", 10*time.Minute),
	}
}

// NewConnection creates a new database connection with the provided configuration
func NewConnection(config *Config) (*DB, error) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true",
		config.User, config.Password, config.Host, config.Port, config.DBName,
	)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("[Database] Connected to %s:%s/%s", config.Host, config.Port, config.DBName)
	log.Printf("[Database] Pool config: MaxOpen=%d, MaxIdle=%d", config.MaxOpenConns, config.MaxIdleConns)

	return &DB{db}, nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("[Database] Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("[Database] Invalid duration value for %s: %s, using default: %s", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
