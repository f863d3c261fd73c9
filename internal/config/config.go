package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"txdash/internal/log"
)

// Dataset source kinds.
const (
	SourceRemote = "remote"
	SourceMemory = "memory"
	SourceSheets = "sheets"
	SourceSQLite = "sqlite"
)

// DefaultDatasetURL is the public transaction dataset.
const DefaultDatasetURL = "https://s3.amazonaws.com/roxiler.com/product_transaction.json"

type Config struct {
	// HTTP Server
	Port               string
	CORSAllowedOrigins []string
	RateLimitPerMinute int

	// Dataset
	DatasetSource  string
	DatasetURL     string
	DatasetFile    string
	DatasetTimeout time.Duration

	// Database snapshot
	SQLiteDBPath string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetRange         string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "5000"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		DatasetSource:  getEnv("DATASET_SOURCE", SourceRemote),
		DatasetURL:     getEnv("DATASET_URL", DefaultDatasetURL),
		DatasetFile:    getEnv("DATASET_FILE", "data/transactions.json"),
		DatasetTimeout: getEnvDuration("DATASET_TIMEOUT", 10*time.Second),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/txdash.db"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetRange:         getEnv("GOOGLE_SHEET_RANGE", "Transactions!A:H"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validSources := []string{SourceRemote, SourceMemory, SourceSheets, SourceSQLite}
	if !slices.Contains(validSources, c.DatasetSource) {
		errors = append(errors, fmt.Sprintf("invalid dataset source '%s': must be one of %v", c.DatasetSource, validSources))
	}

	switch c.DatasetSource {
	case SourceRemote:
		if u, err := url.Parse(c.DatasetURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid dataset URL '%s': %v", c.DatasetURL, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid dataset URL scheme '%s': must be 'http' or 'https'", u.Scheme))
		}
	case SourceMemory:
		if c.DatasetFile == "" {
			errors = append(errors, "dataset file cannot be empty when using memory source")
		} else if _, err := os.Stat(c.DatasetFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("dataset file does not exist: %s", c.DatasetFile))
		}
	case SourceSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite source")
		}
	case SourceSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets source")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets source")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.DatasetTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid dataset timeout %v: must be at least 100ms", c.DatasetTimeout))
	} else if c.DatasetTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid dataset timeout %v: must be at most 5 minutes", c.DatasetTimeout))
	}

	if c.RateLimitPerMinute < 0 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be zero (disabled) or positive", c.RateLimitPerMinute))
	}

	if len(c.CORSAllowedOrigins) == 0 {
		errors = append(errors, "CORS allowed origins cannot be empty")
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
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

// getEnvList splits a comma-separated value, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
