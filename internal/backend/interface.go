package backend

import (
	"context"
	"time"

	"finboard/internal/provider"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and its optional hooks.
type BackendResult struct {
	Backend provider.Reader
	// Writer is nil when the backend is read-only.
	Writer provider.PeriodWriter
	// Ping checks the backend for readiness probes.
	Ping    func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Close runs Cleanup when set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Memory: directory holding periods.json; embedded fixtures when empty.
	FixturesDir string

	// SQLite
	SQLiteDBPath string

	// Postgres
	DatabaseURL      string
	DBConnectRetries int
	DBRetryDelay     time.Duration

	// SQL backends are seeded from the fixtures when their table is empty.
	SeedIfEmpty bool

	// Google Sheets
	GoogleSpreadsheetID string
	GoogleSheetName     string
	SheetsReload        time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	SheetsBackend   BackendType = "sheets"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
