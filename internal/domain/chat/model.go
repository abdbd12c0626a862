package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role indicates who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one a caller may submit.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Greeting is the seed assistant message inserted into every new conversation.
const Greeting = "Hello! I'm your AI legal assistant. How can I help you with your legal questions today?"

// Conversation is a chat thread owned by a single user. The owner is fixed at
// creation; UpdatedAt moves forward on every message append.
type Conversation struct {
	ID        uint      `json:"-"`
	PublicID  string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a single turn in a conversation. Messages are immutable and are
// removed only when their conversation is deleted.
type Message struct {
	ID             uint      `json:"-"`
	PublicID       string    `json:"id"`
	ConversationID uint      `json:"-"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewConversation creates a conversation owned by userID. The title is stored
// exactly as supplied.
func NewConversation(userID, title string) *Conversation {
	now := time.Now()
	return &Conversation{
		PublicID:  newPublicID("conv"),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewMessage creates a message under the given conversation.
func NewMessage(conversationID uint, role Role, content string) *Message {
	return &Message{
		PublicID:       newPublicID("msg"),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
	}
}

func newPublicID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
