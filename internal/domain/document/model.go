package document

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status tracks a document through the simplification pipeline.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Document is an uploaded legal document owned by a single user. The raw file
// lives in object storage under StorageKey; the row tracks pipeline state and
// the simplified output.
type Document struct {
	ID             uint            `json:"-"`
	PublicID       string          `json:"id"`
	UserID         string          `json:"-"`
	FileName       string          `json:"file_name"`
	ContentType    string          `json:"content_type"`
	StorageKey     string          `json:"-"`
	SizeBytes      int64           `json:"size_bytes"`
	Status         Status          `json:"status"`
	SimplifiedText string          `json:"simplified_text,omitempty"`
	FailureReason  string          `json:"failure_reason,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewDocument creates a document in the queued state.
func NewDocument(userID, fileName, contentType string, sizeBytes int64, metadata json.RawMessage) *Document {
	now := time.Now()
	publicID := newPublicID("doc")
	return &Document{
		PublicID:    publicID,
		UserID:      userID,
		FileName:    fileName,
		ContentType: contentType,
		StorageKey:  fmt.Sprintf("documents/%s/%s", userID, publicID),
		SizeBytes:   sizeBytes,
		Status:      StatusQueued,
		Metadata:    metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// WebhookURL extracts the optional webhook_url field from metadata.
func (d *Document) WebhookURL() string {
	if len(d.Metadata) == 0 {
		return ""
	}
	var meta struct {
		WebhookURL string `json:"webhook_url"`
	}
	if err := json.Unmarshal(d.Metadata, &meta); err != nil {
		return ""
	}
	return meta.WebhookURL
}

func newPublicID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
