package ports

import (
	"context"
	"errors"
	"time"

	"forever-us/domain/core/entities"
)

// ErrKeyNotFound is returned by a KeyValueStore when no record exists for a key
var ErrKeyNotFound = errors.New("key not found")

// ErrValueTooLarge is returned by a KeyValueStore that cannot hold a value of the given size
var ErrValueTooLarge = errors.New("value too large")

// KeyValueStore is the durable store the persistence adapter writes through.
// Implementations must be safe for concurrent use.
type KeyValueStore interface {
	// Get returns the value stored under key, or ErrKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value. Stores with a
	// size limit reject larger values with ErrValueTooLarge and keep the old one.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases the underlying resources
	Close() error
}

// Snapshot is a portable export of the whole document
type Snapshot struct {
	Filename string
	Data     []byte
}

// DocumentRepository loads and saves the single AppDocument record
// This is a port in hexagonal architecture - the services don't know which backend holds the record
type DocumentRepository interface {
	// LoadOrDefault returns the stored document, or the default document when
	// nothing is stored. On a corrupt record or unreachable backend the
	// default document is returned alongside the error.
	LoadOrDefault(ctx context.Context) (entities.AppDocument, error)

	// Save writes the document, replacing the stored record
	Save(ctx context.Context, doc entities.AppDocument) error

	// ExportSnapshot serializes the document into a downloadable backup
	ExportSnapshot(doc entities.AppDocument, now time.Time) (Snapshot, error)

	// ImportSnapshot parses a backup produced by ExportSnapshot or an older client
	ImportSnapshot(data []byte) (entities.AppDocument, error)
}
