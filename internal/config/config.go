// Package config loads the sync server settings from the environment and the
// CLI client settings from TOML files.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage drivers for uploaded snapshots.
const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config holds sync server configuration
type Config struct {
	// Server
	Env          string
	Port         string
	MaxBodyBytes int64
	LogFile      string

	// Storage
	StorageDriver string
	DataDir       string
	SQLitePath    string

	// Database (postgres driver)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Operator endpoints; an empty key disables them.
	OperatorAPIKey string

	// Register rate limit per client address.
	RegisterRateLimit float64
	RegisterBurst     int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:          getEnv("ENV", "development"),
		Port:         getEnv("PORT", "3001"),
		MaxBodyBytes: 10 << 20,
		LogFile:      getEnv("LOG_FILE", ""),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageFile)),
		DataDir:       getEnv("DATA_DIR", "./user-data"),
		SQLitePath:    getEnv("SQLITE_PATH", "./wealthtrack.db"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "wealthtrack"),
		DBPassword: getEnv("DB_PASSWORD", "wealthtrack"),
		DBName:     getEnv("DB_NAME", "wealthtrack"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		OperatorAPIKey: getEnv("OPERATOR_API_KEY", ""),

		RegisterRateLimit: 1,
		RegisterBurst:     5,
	}

	switch config.StorageDriver {
	case StorageFile, StorageSQLite, StoragePostgres:
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q (use file, sqlite or postgres)", config.StorageDriver)
	}

	if v := getEnv("MAX_BODY_BYTES", ""); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			log.Printf("Warning: invalid MAX_BODY_BYTES value '%s', falling back to %d\n", v, config.MaxBodyBytes)
		} else {
			config.MaxBodyBytes = n
		}
	}
	if v := getEnv("REGISTER_RATE_LIMIT", ""); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r <= 0 {
			log.Printf("Warning: invalid REGISTER_RATE_LIMIT value '%s', falling back to %v\n", v, config.RegisterRateLimit)
		} else {
			config.RegisterRateLimit = r
		}
	}
	if v := getEnv("REGISTER_RATE_BURST", ""); v != "" {
		b, err := strconv.Atoi(v)
		if err != nil || b <= 0 {
			log.Printf("Warning: invalid REGISTER_RATE_BURST value '%s', falling back to %d\n", v, config.RegisterBurst)
		} else {
			config.RegisterBurst = b
		}
	}

	return config, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
