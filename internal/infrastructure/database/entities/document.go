package entities

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"lexaid-server/internal/domain/document"
)

// Document represents the database schema for uploaded documents. The status
// column doubles as the simplification queue: workers claim rows where it is
// 'queued'.
type Document struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_document_user_created,sort:desc"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID       string         `gorm:"type:varchar(50);uniqueIndex;not null"`
	UserID         string         `gorm:"type:varchar(64);index:idx_document_user_created;not null"`
	FileName       string         `gorm:"type:varchar(256);not null"`
	ContentType    string         `gorm:"type:varchar(128);not null"`
	StorageKey     string         `gorm:"type:varchar(256);not null"`
	SizeBytes      int64          `gorm:"not null"`
	Status         string         `gorm:"type:varchar(20);index;not null;default:'queued'"`
	SimplifiedText string         `gorm:"type:text"`
	FailureReason  string         `gorm:"type:text"`
	Metadata       datatypes.JSON `gorm:"type:jsonb"`
}

// TableName specifies the table name for Document.
func (Document) TableName() string {
	return "documents"
}

// EtoD converts the database entity to the domain model.
func (d *Document) EtoD() *document.Document {
	var metadata json.RawMessage
	if len(d.Metadata) > 0 {
		metadata = json.RawMessage(d.Metadata)
	}
	return &document.Document{
		ID:             d.ID,
		PublicID:       d.PublicID,
		UserID:         d.UserID,
		FileName:       d.FileName,
		ContentType:    d.ContentType,
		StorageKey:     d.StorageKey,
		SizeBytes:      d.SizeBytes,
		Status:         document.Status(d.Status),
		SimplifiedText: d.SimplifiedText,
		FailureReason:  d.FailureReason,
		Metadata:       metadata,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// NewSchemaDocument creates a database entity from the domain model.
func NewSchemaDocument(d *document.Document) *Document {
	var metadata datatypes.JSON
	if len(d.Metadata) > 0 {
		metadata = datatypes.JSON(d.Metadata)
	}
	return &Document{
		ID:             d.ID,
		PublicID:       d.PublicID,
		UserID:         d.UserID,
		FileName:       d.FileName,
		ContentType:    d.ContentType,
		StorageKey:     d.StorageKey,
		SizeBytes:      d.SizeBytes,
		Status:         string(d.Status),
		SimplifiedText: d.SimplifiedText,
		FailureReason:  d.FailureReason,
		Metadata:       metadata,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
