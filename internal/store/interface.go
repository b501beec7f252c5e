package store

import (
	"context"

	"github.com/telano/nrbload/internal/domain"
)

// DocumentStore is the persistence boundary for parsed NRB documents.
type DocumentStore interface {
	// Upsert inserts or overwrites the document under its key. It must be
	// idempotent: repeated calls with the same key and body are
	// indistinguishable from a single call.
	Upsert(ctx context.Context, doc *domain.Document) error

	// Close releases the underlying connection, if any.
	Close() error
}
