package backend

import (
	"context"
	"time"

	"budget/internal/services"
	"budget/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the store, the service built over it and the
// cleanup that releases both.
type BackendResult struct {
	Store   store.Store
	Service *services.ItemService
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// JSON document file specific
	ItemsFile string

	// Memory backend specific
	SeedFile string

	// Read cache, disabled when CacheSize is 0
	CacheSize int
	CacheTTL  time.Duration

	// Item events, disabled when AMQPURL is empty
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	JSONBackend   BackendType = "json"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, JSONBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
