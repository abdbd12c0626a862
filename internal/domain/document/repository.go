package document

import (
	"context"
	"time"
)

// Repository persists document rows. Ownership-sensitive operations take both
// the public ID and the owner so the store evaluates the owner predicate in a
// single statement.
type Repository interface {
	Create(ctx context.Context, doc *Document) error

	// FindOwned fetches a document filtered by both id and owner. An absent
	// row and a row owned by someone else both yield a NOT_FOUND error.
	FindOwned(ctx context.Context, publicID, userID string) (*Document, error)

	// ListByOwner returns the owner's documents ordered by created_at
	// descending.
	ListByOwner(ctx context.Context, userID string) ([]*Document, error)

	// DeleteOwned removes the document with an owner-guarded conditional
	// delete. Zero affected rows yields NOT_FOUND.
	DeleteOwned(ctx context.Context, publicID, userID string) error

	// MarkCompleted stores the simplified text and flips status to completed.
	MarkCompleted(ctx context.Context, publicID, simplifiedText string, at time.Time) error

	// MarkFailed records the failure reason and flips status to failed.
	MarkFailed(ctx context.Context, publicID, reason string, at time.Time) error

	// Requeue resets a completed or failed document so the pipeline runs
	// again.
	Requeue(ctx context.Context, publicID, userID string, at time.Time) error
}

// Storage abstracts the object store holding the raw uploaded files.
type Storage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Health(ctx context.Context) error
}
