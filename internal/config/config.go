package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/strappedupmami/journeyatlas/internal/models"
)

// Config holds all application configuration
type Config struct {
	Port        string
	SnapshotDB  string // SQLite snapshot file path ("" disables persistence)
	MongoURI    string // Optional Mongo snapshot store (overrides SQLite)
	RedisURL    string // Optional distributed feed cache ("" disables)

	CompanyStatusFile string // YAML file with the company status block

	// Cron expression for the background memory maintenance sweep
	MaintenanceCron string

	// Minutes of survey process time required before the feed unlocks
	FeedGateMinutes int
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "3001"),
		SnapshotDB:        getEnv("SNAPSHOT_DB", "journeyatlas.db"),
		MongoURI:          getEnv("MONGODB_URI", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		CompanyStatusFile: getEnv("COMPANY_STATUS_FILE", ""),
		MaintenanceCron:   getEnv("MEMORY_MAINTENANCE_CRON", "*/15 * * * *"),
		FeedGateMinutes:   getIntEnv("FEED_GATE_MINUTES", 20),
	}
}

// Validate checks values that would otherwise fail deep inside startup.
func (c *Config) Validate() error {
	if _, err := cron.ParseStandard(c.MaintenanceCron); err != nil {
		return fmt.Errorf("invalid MEMORY_MAINTENANCE_CRON %q: %w", c.MaintenanceCron, err)
	}
	if c.FeedGateMinutes < 0 {
		return fmt.Errorf("FEED_GATE_MINUTES must be non-negative, got %d", c.FeedGateMinutes)
	}
	return nil
}

// LoadCompanyStatus reads the company status block from a YAML file.
func LoadCompanyStatus(filePath string) (models.CompanyStatus, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return models.CompanyStatus{}, fmt.Errorf("failed to read company status file: %w", err)
	}

	var status models.CompanyStatus
	if err := yaml.Unmarshal(data, &status); err != nil {
		return models.CompanyStatus{}, fmt.Errorf("failed to parse company status YAML: %w", err)
	}

	return status, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
