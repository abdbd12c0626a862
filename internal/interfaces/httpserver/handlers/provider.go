package handlers

import (
	"github.com/rs/zerolog"

	"lexaid-server/internal/domain/chat"
	"lexaid-server/internal/domain/document"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Chat     *ChatHandler
	Document *DocumentHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(chatService chat.Service, documentService document.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Chat:     NewChatHandler(chatService, log),
		Document: NewDocumentHandler(documentService, log),
	}
}
