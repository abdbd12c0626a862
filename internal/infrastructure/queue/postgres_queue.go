package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"lexaid-server/internal/infrastructure/database/entities"
)

// PostgresQueue implements TaskQueue on top of the documents table. There is
// no separate jobs table: a document row with status 'queued' is the job.
type PostgresQueue struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewPostgresQueue creates a new PostgreSQL-backed task queue.
func NewPostgresQueue(db *gorm.DB, log zerolog.Logger) *PostgresQueue {
	return &PostgresQueue{
		db:  db,
		log: log.With().Str("component", "postgres-queue").Logger(),
	}
}

// Dequeue fetches the oldest queued document using FOR UPDATE SKIP LOCKED.
func (q *PostgresQueue) Dequeue(ctx context.Context) (*Task, error) {
	var entity entities.Document

	err := q.db.WithContext(ctx).
		Raw("SELECT * FROM documents WHERE status = ? ORDER BY updated_at ASC LIMIT 1 FOR UPDATE SKIP LOCKED", "queued").
		Scan(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue document: %w", err)
	}

	if entity.ID == 0 {
		return nil, nil
	}

	return &Task{
		Document: entity.EtoD(),
		QueuedAt: entity.UpdatedAt,
	}, nil
}

// MarkProcessing claims the document. The status predicate makes the claim
// atomic: a row already taken by another worker affects zero rows.
func (q *PostgresQueue) MarkProcessing(ctx context.Context, publicID string) (bool, error) {
	result := q.db.WithContext(ctx).
		Model(&entities.Document{}).
		Where("public_id = ? AND status = ?", publicID, "queued").
		Updates(map[string]any{
			"status":     "processing",
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("mark processing: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetQueueDepth returns the number of queued documents.
func (q *PostgresQueue) GetQueueDepth(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Model(&entities.Document{}).
		Where("status = ?", "queued").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("get queue depth: %w", err)
	}
	return count, nil
}

var _ TaskQueue = (*PostgresQueue)(nil)
