package webhook

import (
	"context"
	"time"
)

// Service handles webhook notifications for document pipeline events.
type Service interface {
	// NotifySimplified sends a notification when a document finishes
	// simplification.
	NotifySimplified(ctx context.Context, url, documentID, simplifiedText string, completedAt time.Time) error

	// NotifyFailed sends a notification when simplification fails.
	NotifyFailed(ctx context.Context, url, documentID, reason string) error
}

// ErrorDetails contains machine readable error info.
type ErrorDetails struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Payload is the structure sent to webhook URLs.
type Payload struct {
	ID             string        `json:"id"`
	Event          string        `json:"event"` // "document.simplified" or "document.failed"
	Status         string        `json:"status"`
	SimplifiedText string        `json:"simplified_text,omitempty"`
	Error          *ErrorDetails `json:"error,omitempty"`
	CompletedAt    *string       `json:"completed_at,omitempty"`
}
