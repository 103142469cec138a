package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv  string
	Port     string
	Database DatabaseConfig
	Storage  StorageConfig
	Tour     TourConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Alter    bool

	// Embedded-mode settings, used when Host is localhost with no password.
	EmbeddedDataPath string
	EmbeddedPort     int
}

// StorageConfig holds the texture store configuration
type StorageConfig struct {
	// Dir is the on-disk root texture uploads land under.
	Dir string
	// BaseURL is the public prefix relative texture paths resolve against.
	BaseURL string
}

// TourConfig holds viewer and navigation tuning
type TourConfig struct {
	// ViewerBaseURL is the public tour-viewer address QR codes point at.
	ViewerBaseURL string
	// Transition is the minimum cross-fade duration on room changes.
	Transition time.Duration
	// BackendURL is an optional upstream plan-item API; empty means this
	// instance persists plan items itself.
	BackendURL string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		NodeEnv: getEnv("NODE_ENV", "development"),
		Port:    getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "tour3d"),
			Alter:    getEnv("DB_ALTER", "false") == "true",

			EmbeddedDataPath: getEnv("PG_EMBEDDED_DATA", "./db_data"),
			EmbeddedPort:     getInt("PG_EMBEDDED_PORT", 5433),
		},
		Storage: StorageConfig{
			Dir:     getEnv("STORAGE_DIR", "./storage"),
			BaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:8080/storage/"),
		},
		Tour: TourConfig{
			ViewerBaseURL: getEnv("VIEWER_BASE_URL", "http://localhost:8080/tour"),
			Transition:    getDurationMs("TOUR_TRANSITION_MS", 250*time.Millisecond),
			BackendURL:    os.Getenv("TOUR_BACKEND_URL"),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getDurationMs(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms < 0 {
		return defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}
