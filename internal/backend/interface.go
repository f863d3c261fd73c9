package backend

import (
	"context"
	"time"

	"txdash/internal/dataset"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the dataset source and optional cleanup function
type BackendResult struct {
	Source  dataset.Source
	Type    BackendType
	Cleanup CleanupFunc
}

// Close runs Cleanup when set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates dataset sources based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Remote specific
	DatasetURL     string
	DatasetTimeout time.Duration

	// Memory specific
	DatasetFile string

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetRange         string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of dataset source
type BackendType string

const (
	RemoteBackend BackendType = "remote"
	MemoryBackend BackendType = "memory"
	SheetsBackend BackendType = "sheets"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case RemoteBackend, MemoryBackend, SheetsBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
