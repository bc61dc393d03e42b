package config

import (
	"fmt"
	"os"
	"strconv"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all migrator configuration
type Config struct {
	Source   SourceConfig
	Database DatabaseConfig
	Export   ExportConfig
}

// SourceConfig locates and bounds the spreadsheet source tree
type SourceConfig struct {
	DataDir     string
	DefaultYear int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ExportConfig controls export mode output
type ExportConfig struct {
	OutputFile string
	Format     string // "json" or "csv"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Source: SourceConfig{
			DataDir:     getEnv("MIGRATION_DATA_DIR", "datos_migracion"),
			DefaultYear: getEnvAsInt("MIGRATION_DEFAULT_YEAR", 2024),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "estratosfera"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Export: ExportConfig{
			OutputFile: getEnv("EXPORT_OUTPUT_FILE", "transactions_dump.json"),
			Format:     getEnv("EXPORT_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
