package document

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "lexaid-server/internal/domain/document"
	"lexaid-server/internal/infrastructure/database/entities"
	"lexaid-server/internal/utils/platformerrors"
)

const notFoundMessage = "document not found or access denied"

// Repository persists document rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a document repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the document record.
func (r *Repository) Create(ctx context.Context, doc *domain.Document) error {
	entity := entities.NewSchemaDocument(doc)

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create document",
			err,
			"document-create-error",
		)
	}

	doc.ID = entity.ID
	doc.CreatedAt = entity.CreatedAt
	doc.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindOwned fetches a document by public ID and owner.
func (r *Repository) FindOwned(ctx context.Context, publicID, userID string) (*domain.Document, error) {
	var entity entities.Document
	if err := r.db.WithContext(ctx).
		Where("public_id = ? AND user_id = ?", publicID, userID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				notFoundMessage,
				nil,
				"document-not-found",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch document",
			err,
			"document-fetch-error",
		)
	}

	return entity.EtoD(), nil
}

// ListByOwner returns the owner's documents ordered by created_at descending.
func (r *Repository) ListByOwner(ctx context.Context, userID string) ([]*domain.Document, error) {
	var rows []entities.Document
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list documents",
			err,
			"document-list-error",
		)
	}

	result := make([]*domain.Document, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, nil
}

// DeleteOwned removes the document in a single owner-guarded DELETE.
func (r *Repository) DeleteOwned(ctx context.Context, publicID, userID string) error {
	result := r.db.WithContext(ctx).
		Where("public_id = ? AND user_id = ?", publicID, userID).
		Delete(&entities.Document{})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete document",
			result.Error,
			"document-delete-error",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			notFoundMessage,
			nil,
			"document-delete-not-found",
		)
	}
	return nil
}

// MarkCompleted stores the simplified text and completes the row.
func (r *Repository) MarkCompleted(ctx context.Context, publicID, simplifiedText string, at time.Time) error {
	return r.updateStatus(ctx, publicID, map[string]any{
		"status":          string(domain.StatusCompleted),
		"simplified_text": simplifiedText,
		"failure_reason":  "",
		"updated_at":      at,
	})
}

// MarkFailed records the failure reason and fails the row.
func (r *Repository) MarkFailed(ctx context.Context, publicID, reason string, at time.Time) error {
	return r.updateStatus(ctx, publicID, map[string]any{
		"status":         string(domain.StatusFailed),
		"failure_reason": reason,
		"updated_at":     at,
	})
}

// Requeue resets a finished document so the pipeline picks it up again. The
// status predicate keeps in-flight rows out of reach.
func (r *Repository) Requeue(ctx context.Context, publicID, userID string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&entities.Document{}).
		Where("public_id = ? AND user_id = ? AND status IN ?", publicID, userID,
			[]string{string(domain.StatusCompleted), string(domain.StatusFailed)}).
		Updates(map[string]any{
			"status":          string(domain.StatusQueued),
			"simplified_text": "",
			"failure_reason":  "",
			"updated_at":      at,
		})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to requeue document",
			result.Error,
			"document-requeue-error",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			notFoundMessage,
			nil,
			"document-requeue-not-found",
		)
	}
	return nil
}

func (r *Repository) updateStatus(ctx context.Context, publicID string, updates map[string]any) error {
	if err := r.db.WithContext(ctx).Model(&entities.Document{}).
		Where("public_id = ?", publicID).
		Updates(updates).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update document status",
			err,
			"document-status-error",
		)
	}
	return nil
}

var _ domain.Repository = (*Repository)(nil)
