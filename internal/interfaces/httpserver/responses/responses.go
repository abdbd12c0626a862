package responses

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lexaid-server/internal/domain/chat"
	"lexaid-server/internal/domain/document"
	"lexaid-server/internal/utils/platformerrors"
)

// ErrorResponse represents an error response with platform error details.
type ErrorResponse struct {
	Code          string `json:"code,omitempty"`
	Error         string `json:"error"`
	Message       string `json:"message,omitempty"`
	ErrorInstance error  `json:"-"`
	RequestID     string `json:"request_id,omitempty"`
}

// HandleError handles domain errors and returns appropriate HTTP responses.
func HandleError(reqCtx *gin.Context, err error, message string) {
	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		statusCode := platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType())

		errResp := ErrorResponse{
			Code:          domainErr.GetCode(),
			Error:         domainErr.Message,
			Message:       message,
			ErrorInstance: domainErr,
			RequestID:     domainErr.GetRequestID(),
		}

		reqCtx.AbortWithStatusJSON(statusCode, errResp)
		return
	}
	// Non-platform errors
	errResp := ErrorResponse{
		Error:         message,
		Message:       message,
		ErrorInstance: err,
	}
	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, errResp)
}

// HandleNewError creates a new typed error at the route layer and handles it.
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, code string) {
	ctx := reqCtx.Request.Context()
	err := platformerrors.NewError(ctx, platformerrors.LayerRoute, errorType, message, nil, code)

	statusCode := platformerrors.ErrorTypeToHTTPStatus(err.GetErrorType())

	errResp := ErrorResponse{
		Code:          err.GetCode(),
		Error:         message,
		Message:       message,
		ErrorInstance: err,
		RequestID:     err.GetRequestID(),
	}

	reqCtx.AbortWithStatusJSON(statusCode, errResp)
}

// ConversationPayload is returned to clients.
type ConversationPayload struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// MessagePayload is returned to clients.
type MessagePayload struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

// ConversationListResponse wraps conversations for consistent responses.
type ConversationListResponse struct {
	Object string                `json:"object"`
	Data   []ConversationPayload `json:"data"`
}

// MessageListResponse wraps messages for consistent responses.
type MessageListResponse struct {
	Object string           `json:"object"`
	Data   []MessagePayload `json:"data"`
}

// FromConversation maps the domain conversation to DTO.
func FromConversation(c *chat.Conversation) ConversationPayload {
	return ConversationPayload{
		ID:        c.PublicID,
		Object:    "conversation",
		Title:     c.Title,
		CreatedAt: c.CreatedAt.Unix(),
		UpdatedAt: c.UpdatedAt.Unix(),
	}
}

// FromConversations maps a conversation list to DTOs.
func FromConversations(conversations []*chat.Conversation) ConversationListResponse {
	data := make([]ConversationPayload, len(conversations))
	for i, c := range conversations {
		data[i] = FromConversation(c)
	}
	return ConversationListResponse{Object: "list", Data: data}
}

// FromMessage maps the domain message to DTO.
func FromMessage(m *chat.Message) MessagePayload {
	return MessagePayload{
		ID:        m.PublicID,
		Object:    "message",
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt.Unix(),
	}
}

// FromMessages maps a message list to DTOs.
func FromMessages(messages []chat.Message) MessageListResponse {
	data := make([]MessagePayload, len(messages))
	for i := range messages {
		data[i] = FromMessage(&messages[i])
	}
	return MessageListResponse{Object: "list", Data: data}
}

// DocumentPayload is returned to clients.
type DocumentPayload struct {
	ID             string          `json:"id"`
	Object         string          `json:"object"`
	FileName       string          `json:"file_name"`
	ContentType    string          `json:"content_type"`
	SizeBytes      int64           `json:"size_bytes"`
	Status         string          `json:"status"`
	SimplifiedText string          `json:"simplified_text,omitempty"`
	FailureReason  string          `json:"failure_reason,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	CreatedAt      int64           `json:"created_at"`
	UpdatedAt      int64           `json:"updated_at"`
}

// DocumentListResponse wraps documents for consistent responses.
type DocumentListResponse struct {
	Object string            `json:"object"`
	Data   []DocumentPayload `json:"data"`
}

// FromDocument maps the domain document to DTO.
func FromDocument(d *document.Document) DocumentPayload {
	return DocumentPayload{
		ID:             d.PublicID,
		Object:         "document",
		FileName:       d.FileName,
		ContentType:    d.ContentType,
		SizeBytes:      d.SizeBytes,
		Status:         string(d.Status),
		SimplifiedText: d.SimplifiedText,
		FailureReason:  d.FailureReason,
		Metadata:       d.Metadata,
		CreatedAt:      d.CreatedAt.Unix(),
		UpdatedAt:      d.UpdatedAt.Unix(),
	}
}

// FromDocuments maps a document list to DTOs.
func FromDocuments(documents []*document.Document) DocumentListResponse {
	data := make([]DocumentPayload, len(documents))
	for i, d := range documents {
		data[i] = FromDocument(d)
	}
	return DocumentListResponse{Object: "list", Data: data}
}
