package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"budget/internal/log"
)

const (
	BackendMemory = "memory"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

type Config struct {
	// Storage
	DataBackend  string
	SQLiteDBPath string
	ItemsFile    string
	SeedFile     string
	DefaultTable string
	CacheSize    int
	CacheTTL     time.Duration

	// AMQP item events (disabled when AMQPURL is empty)
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// CLI
	LogLevel          string
	HistoryFile       string
	PromptMaxAttempts int
}

func Load() *Config {
	return &Config{
		DataBackend:  getEnv("DATA_BACKEND", BackendJSON),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/budget.db"),
		ItemsFile:    getEnv("ITEMS_FILE", "./data/items.json"),
		SeedFile:     getEnv("SEED_FILE", "./data/seed_items.txt"),
		DefaultTable: getEnv("BUDGET_TABLE", ""),
		CacheSize:    getEnvInt("CACHE_SIZE", 16),
		CacheTTL:     getEnvDuration("CACHE_TTL", 5*time.Minute),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "budget"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "items"),

		LogLevel:          getEnv("LOG_LEVEL", "warn"),
		HistoryFile:       getEnv("HISTORY_FILE", defaultHistoryFile()),
		PromptMaxAttempts: getEnvInt("PROMPT_MAX_ATTEMPTS", 0),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{BackendMemory, BackendJSON, BackendSQLite}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == BackendSQLite && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}
	if c.DataBackend == BackendJSON {
		if c.ItemsFile == "" {
			errors = append(errors, "items file cannot be empty when using json backend")
		} else if info, err := os.Stat(c.ItemsFile); err == nil && info.IsDir() {
			errors = append(errors, fmt.Sprintf("items file '%s' is a directory", c.ItemsFile))
		}
	}

	if c.CacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must not be negative", c.CacheSize))
	}
	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if c.PromptMaxAttempts < 0 {
		errors = append(errors, fmt.Sprintf("invalid prompt max attempts %d: must be 0 (unbounded) or more", c.PromptMaxAttempts))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".budget_history")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
