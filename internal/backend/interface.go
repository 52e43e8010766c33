package backend

import (
	"context"

	"finbot/internal/ledger"
)

// Store is a ledger store with a lifecycle.
type Store interface {
	ledger.Store
	Ping(ctx context.Context) error
	Close() error
}

type CleanupFunc func() error

// Result is what the bot needs from the storage side.
type Result struct {
	Store Store
	// Events is nil when no broker is configured or reachable.
	Events  ledger.EventPublisher
	Cleanup CleanupFunc
}

type Config struct {
	Type BackendType

	SQLiteDBPath string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
