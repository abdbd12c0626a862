package chat

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lexaid-server/internal/domain/llm"
	"lexaid-server/internal/domain/retry"
	"lexaid-server/internal/utils/platformerrors"
)

// FallbackReply is inserted when the completion provider fails after retry,
// so the user's message is never lost behind a provider outage.
const FallbackReply = "I'm sorry, I couldn't generate a response right now. Please try sending your message again."

// Service exposes the conversation store operations.
type Service interface {
	// StartConversation creates a conversation owned by userID and seeds it
	// with the assistant greeting.
	StartConversation(ctx context.Context, userID, title string) (*Conversation, error)

	// ListConversations returns the caller's conversations, most recently
	// active first. Unauthenticated callers and store failures both yield an
	// empty slice, never an error.
	ListConversations(ctx context.Context, userID string) []*Conversation

	// ListMessages returns the conversation's messages in created_at order.
	// Unauthenticated callers, conversations the caller does not own, and
	// store failures all yield an empty slice.
	ListMessages(ctx context.Context, userID, conversationID string) []Message

	// AppendMessage inserts a message under the conversation. When role is
	// user, the full history plus the new message is submitted to the
	// completion provider and the reply is appended as an assistant message.
	// The returned message is always the caller's, never the reply.
	AppendMessage(ctx context.Context, userID, conversationID, content string, role Role, model string) (*Message, error)

	// DeleteConversation removes the conversation and, via the schema's
	// cascade, all of its messages.
	DeleteConversation(ctx context.Context, userID, conversationID string) error
}

// ServiceImpl provides the domain implementation.
type ServiceImpl struct {
	conversations Repository
	messages      MessageRepository
	provider      llm.Provider
	defaultModel  string
	retryPolicy   retry.Policy
	log           zerolog.Logger
}

// NewService wires dependencies.
func NewService(
	conversations Repository,
	messages MessageRepository,
	provider llm.Provider,
	defaultModel string,
	log zerolog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		conversations: conversations,
		messages:      messages,
		provider:      provider,
		defaultModel:  defaultModel,
		retryPolicy:   retry.SingleRetryPolicy(),
		log:           log.With().Str("component", "chat-service").Logger(),
	}
}

// StartConversation creates the conversation row, then the greeting message.
// A greeting insert failure is tolerated: the conversation stays usable with
// zero messages and the failure is logged.
func (s *ServiceImpl) StartConversation(ctx context.Context, userID, title string) (*Conversation, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}

	conv := NewConversation(userID, title)
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}

	seed := NewMessage(conv.ID, RoleAssistant, Greeting)
	if err := s.messages.Create(ctx, seed); err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conv.PublicID).Msg("seed greeting insert failed")
	}

	return conv, nil
}

// ListConversations never surfaces an error: the caller always receives a
// renderable, possibly empty, list.
func (s *ServiceImpl) ListConversations(ctx context.Context, userID string) []*Conversation {
	if userID == "" {
		return []*Conversation{}
	}

	conversations, err := s.conversations.ListByOwner(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("list conversations failed")
		return []*Conversation{}
	}
	return conversations
}

// ListMessages verifies ownership by reading the conversation filtered by
// both id and owner before touching messages.
func (s *ServiceImpl) ListMessages(ctx context.Context, userID, conversationID string) []Message {
	if userID == "" {
		return []Message{}
	}

	conv, err := s.conversations.FindOwned(ctx, conversationID, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("fetch conversation failed")
		return []Message{}
	}

	messages, err := s.messages.ListByConversationID(ctx, conv.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("list messages failed")
		return []Message{}
	}
	return messages
}

// AppendMessage runs the insert, the optional completion round-trip, and the
// updated_at bump strictly in that order.
func (s *ServiceImpl) AppendMessage(ctx context.Context, userID, conversationID, content string, role Role, model string) (*Message, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}

	conv, err := s.conversations.FindOwned(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	msg := NewMessage(conv.ID, role, content)
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	if role == RoleUser {
		s.generateReply(ctx, conv, msg, model)
	}

	if err := s.conversations.Touch(ctx, conversationID, userID, time.Now()); err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("refresh updated_at failed")
	}

	return msg, nil
}

// DeleteConversation issues a single owner-guarded DELETE; messages go with
// the conversation through the schema's cascade.
func (s *ServiceImpl) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	if err := requireUser(ctx, userID); err != nil {
		return err
	}
	return s.conversations.DeleteOwned(ctx, conversationID, userID)
}

// generateReply calls the completion provider with the full ordered history
// and appends the first reply as an assistant message. Provider failures are
// contained: the user's message stays committed and a fallback reply is
// inserted instead.
func (s *ServiceImpl) generateReply(ctx context.Context, conv *Conversation, latest *Message, model string) {
	turns := s.loadTurns(ctx, conv, latest)

	if strings.TrimSpace(model) == "" {
		model = s.defaultModel
	}

	completion, err := retry.ExecuteWithResult(ctx, s.retryPolicy, func(ctx context.Context, attempt int) (*llm.ChatCompletionResponse, error) {
		if attempt > 0 {
			s.log.Warn().Int("attempt", attempt).Str("conversation_id", conv.PublicID).Msg("retrying chat completion")
		}
		return s.provider.CreateChatCompletion(ctx, llm.ChatCompletionRequest{
			Model:    model,
			Messages: turns,
		})
	})

	replyContent := FallbackReply
	if err != nil {
		s.log.Error().Err(err).Str("conversation_id", conv.PublicID).Str("model", model).Msg("chat completion failed, inserting fallback reply")
	} else if content, ok := completion.FirstReply(); ok {
		replyContent = content
	} else {
		s.log.Error().Str("conversation_id", conv.PublicID).Msg("chat completion returned no choices, inserting fallback reply")
	}

	reply := NewMessage(conv.ID, RoleAssistant, replyContent)
	if err := s.messages.Create(ctx, reply); err != nil {
		s.log.Error().Err(err).Str("conversation_id", conv.PublicID).Msg("assistant reply insert failed")
	}
}

// loadTurns projects the ordered history to {role, content} pairs. If the
// history read fails, the completion degrades to just the latest message.
func (s *ServiceImpl) loadTurns(ctx context.Context, conv *Conversation, latest *Message) []llm.ChatMessage {
	history, err := s.messages.ListByConversationID(ctx, conv.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conv.PublicID).Msg("history fetch failed, completing with latest message only")
		return []llm.ChatMessage{{Role: string(latest.Role), Content: latest.Content}}
	}

	turns := make([]llm.ChatMessage, 0, len(history))
	for _, m := range history {
		turns = append(turns, llm.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	return turns
}

func requireUser(ctx context.Context, userID string) error {
	if userID == "" {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeUnauthorized,
			"not authenticated",
			nil,
			"chat-not-authenticated",
		)
	}
	return nil
}

var _ Service = (*ServiceImpl)(nil)
