package queue

import (
	"context"
	"time"

	"lexaid-server/internal/domain/document"
)

// Task is a document claimed for simplification.
type Task struct {
	Document *document.Document
	QueuedAt time.Time
}

// TaskQueue hands queued documents to workers.
type TaskQueue interface {
	// Dequeue fetches the next queued document using FOR UPDATE SKIP LOCKED.
	// Returns nil when the queue is empty.
	Dequeue(ctx context.Context) (*Task, error)

	// MarkProcessing flips the claimed document to processing. Zero affected
	// rows means another worker won the claim.
	MarkProcessing(ctx context.Context, publicID string) (bool, error)

	// GetQueueDepth returns the number of queued documents.
	GetQueueDepth(ctx context.Context) (int64, error)
}
