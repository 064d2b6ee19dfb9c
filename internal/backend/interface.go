package backend

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// CleanupFunc releases the resources of a backend.
type CleanupFunc func() error

// BackendResult contains the store, the optional event client and the
// cleanup function that closes both.
type BackendResult struct {
	Store   storage.Store
	Events  *amqp.Client // nil when AMQP is disabled or unreachable
	Cleanup CleanupFunc
}

// Publisher returns the event client as a services.Publisher, or a nil
// interface when events are disabled.
func (r *BackendResult) Publisher() services.Publisher {
	if r.Events == nil {
		return nil
	}
	return r.Events
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	DatabaseURL  string

	// SkipMigrations opens SQL stores without touching the schema.
	SkipMigrations bool

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	// InstanceID suffixes the queue name so every process gets its own
	// copy of the event stream.
	InstanceID string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	MemoryBackend   BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, PostgresBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
