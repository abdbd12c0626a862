package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"lexaid-server/internal/domain/chat"
	"lexaid-server/internal/infrastructure/auth"
	"lexaid-server/internal/infrastructure/observability"
	"lexaid-server/internal/interfaces/httpserver/requests"
	"lexaid-server/internal/interfaces/httpserver/responses"
	"lexaid-server/internal/utils/platformerrors"
)

// ChatHandler exposes HTTP entrypoints for the conversation API.
type ChatHandler struct {
	service chat.Service
	log     zerolog.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(service chat.Service, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		log:     log.With().Str("handler", "chat").Logger(),
	}
}

// Create handles POST /v1/conversations
// @Summary Start a conversation
// @Description Creates a conversation seeded with the assistant greeting
// @Tags Conversations
// @Accept json
// @Produce json
// @Param request body requests.CreateConversationRequest false "Conversation title"
// @Success 201 {object} responses.ConversationPayload
// @Failure 400 {object} responses.ErrorResponse
// @Failure 401 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/conversations [post]
func (h *ChatHandler) Create(c *gin.Context) {
	var req requests.CreateConversationRequest
	// An absent body is allowed; the title defaults to empty.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "request body must be valid JSON", "create-conversation-invalid-body")
		return
	}

	conv, err := h.service.StartConversation(c.Request.Context(), auth.Subject(c), req.Title)
	if err != nil {
		responses.HandleError(c, err, "failed to start conversation")
		return
	}

	c.JSON(http.StatusCreated, responses.FromConversation(conv))
}

// List handles GET /v1/conversations
// @Summary List conversations
// @Description Lists the caller's conversations, most recently active first
// @Tags Conversations
// @Produce json
// @Success 200 {object} responses.ConversationListResponse
// @Router /v1/conversations [get]
func (h *ChatHandler) List(c *gin.Context) {
	conversations := h.service.ListConversations(c.Request.Context(), auth.Subject(c))
	c.JSON(http.StatusOK, responses.FromConversations(conversations))
}

// ListMessages handles GET /v1/conversations/:conversation_id/messages
// @Summary List messages
// @Description Lists a conversation's messages in chronological order
// @Tags Conversations
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Success 200 {object} responses.MessageListResponse
// @Router /v1/conversations/{conversation_id}/messages [get]
func (h *ChatHandler) ListMessages(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	messages := h.service.ListMessages(c.Request.Context(), auth.Subject(c), conversationID)
	c.JSON(http.StatusOK, responses.FromMessages(messages))
}

// AppendMessage handles POST /v1/conversations/:conversation_id/messages
// @Summary Append a message
// @Description Appends a message; user messages trigger an assistant reply
// @Tags Conversations
// @Accept json
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Param request body requests.AppendMessageRequest true "Message"
// @Success 201 {object} responses.MessagePayload
// @Failure 400 {object} responses.ErrorResponse
// @Failure 401 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/conversations/{conversation_id}/messages [post]
func (h *ChatHandler) AppendMessage(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	var req requests.AppendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "role and content are required", "append-message-invalid-body")
		return
	}

	role := chat.Role(req.Role)
	if !role.Valid() {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "role must be user or assistant", "append-message-invalid-role")
		return
	}

	ctx, span := observability.StartConversationSpan(c.Request.Context(), "append_message", conversationID)
	defer span.End()

	msg, err := h.service.AppendMessage(ctx, auth.Subject(c), conversationID, req.Content, role, req.Model)
	if err != nil {
		observability.RecordError(span, err)
		responses.HandleError(c, err, "failed to append message")
		return
	}

	c.JSON(http.StatusCreated, responses.FromMessage(msg))
}

// Delete handles DELETE /v1/conversations/:conversation_id
// @Summary Delete a conversation
// @Description Deletes a conversation and all of its messages
// @Tags Conversations
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Success 200 {object} map[string]any
// @Failure 401 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/conversations/{conversation_id} [delete]
func (h *ChatHandler) Delete(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	if err := h.service.DeleteConversation(c.Request.Context(), auth.Subject(c), conversationID); err != nil {
		responses.HandleError(c, err, "failed to delete conversation")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      conversationID,
		"object":  "conversation.deleted",
		"deleted": true,
	})
}
