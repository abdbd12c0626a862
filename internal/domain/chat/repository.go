package chat

import (
	"context"
	"time"
)

// Repository persists conversation metadata. Ownership-sensitive operations
// take both the public ID and the owner so the store evaluates the owner
// predicate server-side in a single statement.
type Repository interface {
	Create(ctx context.Context, conv *Conversation) error

	// FindOwned fetches a conversation filtered by both id and owner. An
	// absent row and a row owned by someone else are indistinguishable: both
	// yield a NOT_FOUND error.
	FindOwned(ctx context.Context, publicID, userID string) (*Conversation, error)

	// ListByOwner returns the owner's conversations ordered by updated_at
	// descending.
	ListByOwner(ctx context.Context, userID string) ([]*Conversation, error)

	// Touch refreshes updated_at with an owner-guarded conditional update.
	Touch(ctx context.Context, publicID, userID string, at time.Time) error

	// DeleteOwned removes the conversation with an owner-guarded conditional
	// delete. Zero affected rows yields NOT_FOUND.
	DeleteOwned(ctx context.Context, publicID, userID string) error
}

// MessageRepository persists individual conversation messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error

	// ListByConversationID returns all messages for the conversation ordered
	// by created_at ascending.
	ListByConversationID(ctx context.Context, conversationID uint) ([]Message, error)
}
