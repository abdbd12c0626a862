package requests

// CreateConversationRequest starts a new conversation.
type CreateConversationRequest struct {
	Title string `json:"title"`
}

// AppendMessageRequest appends a message to a conversation. Model is
// optional; the configured default applies when it is empty.
type AppendMessageRequest struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
	Model   string `json:"model"`
}
