package chat

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "lexaid-server/internal/domain/chat"
	"lexaid-server/internal/infrastructure/database/entities"
	"lexaid-server/internal/utils/platformerrors"
)

// Ownership is checked server-side: every owner-sensitive query carries both
// public_id and user_id, so a missing row and a foreign row are reported the
// same way.
const notFoundMessage = "conversation not found or access denied"

// ConversationRepository persists conversation metadata.
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository builds a conversation repository.
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create inserts the conversation record.
func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	entity := entities.NewSchemaConversation(conv)

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create conversation",
			err,
			"conversation-create-error",
		)
	}

	conv.ID = entity.ID
	conv.CreatedAt = entity.CreatedAt
	conv.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindOwned fetches a conversation by public ID and owner.
func (r *ConversationRepository) FindOwned(ctx context.Context, publicID, userID string) (*domain.Conversation, error) {
	var entity entities.Conversation
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
				"conversation-not-found",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch conversation",
			err,
			"conversation-fetch-error",
		)
	}

	return entity.EtoD(), nil
}

// ListByOwner returns the owner's conversations ordered by updated_at
// descending.
func (r *ConversationRepository) ListByOwner(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	var rows []entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list conversations",
			err,
			"conversation-list-error",
		)
	}

	result := make([]*domain.Conversation, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, nil
}

// Touch refreshes updated_at in a single owner-guarded UPDATE.
func (r *ConversationRepository) Touch(ctx context.Context, publicID, userID string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&entities.Conversation{}).
		Where("public_id = ? AND user_id = ?", publicID, userID).
		Update("updated_at", at)
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to refresh conversation",
			result.Error,
			"conversation-touch-error",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			notFoundMessage,
			nil,
			"conversation-touch-not-found",
		)
	}
	return nil
}

// DeleteOwned removes the conversation in a single owner-guarded DELETE. The
// messages table's FK cascade removes the conversation's messages with it.
func (r *ConversationRepository) DeleteOwned(ctx context.Context, publicID, userID string) error {
	result := r.db.WithContext(ctx).
		Where("public_id = ? AND user_id = ?", publicID, userID).
		Delete(&entities.Conversation{})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete conversation",
			result.Error,
			"conversation-delete-error",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			notFoundMessage,
			nil,
			"conversation-delete-not-found",
		)
	}
	return nil
}

var _ domain.Repository = (*ConversationRepository)(nil)
