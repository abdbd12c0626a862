package document

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"lexaid-server/internal/domain/llm"
	"lexaid-server/internal/domain/retry"
	"lexaid-server/internal/utils/platformerrors"
)

// SimplifyPrompt instructs the model to rewrite legal text in plain language.
const SimplifyPrompt = "You are a legal assistant. Rewrite the following legal document in plain, accessible language. Preserve all obligations, deadlines and parties. Respond with the simplified text only."

// Service exposes the document operations.
type Service interface {
	// Upload stores the raw file and creates a queued document row.
	Upload(ctx context.Context, userID, fileName, contentType string, data []byte, metadata json.RawMessage) (*Document, error)

	// List returns the caller's documents, newest first. Unauthenticated
	// callers and store failures both yield an empty slice.
	List(ctx context.Context, userID string) []*Document

	// Get fetches a single owned document.
	Get(ctx context.Context, userID, documentID string) (*Document, error)

	// Requeue puts a completed or failed document back through the pipeline.
	Requeue(ctx context.Context, userID, documentID string) (*Document, error)

	// Delete removes the row, then best-effort deletes the stored file.
	Delete(ctx context.Context, userID, documentID string) error

	// Simplify runs the pipeline for a claimed document and records the
	// outcome on the row. Called by the worker pool, not by handlers.
	Simplify(ctx context.Context, doc *Document) error
}

// ServiceImpl provides the domain implementation.
type ServiceImpl struct {
	documents   Repository
	storage     Storage
	provider    llm.Provider
	model       string
	maxBytes    int64
	retryPolicy retry.Policy
	log         zerolog.Logger
}

// NewService wires dependencies.
func NewService(
	documents Repository,
	storage Storage,
	provider llm.Provider,
	model string,
	maxBytes int64,
	log zerolog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		documents:   documents,
		storage:     storage,
		provider:    provider,
		model:       model,
		maxBytes:    maxBytes,
		retryPolicy: retry.DefaultPolicy(),
		log:         log.With().Str("component", "document-service").Logger(),
	}
}

func (s *ServiceImpl) Upload(ctx context.Context, userID, fileName, contentType string, data []byte, metadata json.RawMessage) (*Document, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"document is empty", nil, "document-empty")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("document exceeds the %d byte limit", s.maxBytes), nil, "document-too-large")
	}

	if strings.TrimSpace(contentType) == "" {
		contentType = mimetype.Detect(data).String()
	}

	doc := NewDocument(userID, fileName, contentType, int64(len(data)), metadata)

	if err := s.storage.Upload(ctx, doc.StorageKey, data, contentType); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"failed to store document", err, "document-upload-failed")
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		if delErr := s.storage.Delete(ctx, doc.StorageKey); delErr != nil {
			s.log.Warn().Err(delErr).Str("key", doc.StorageKey).Msg("orphaned upload cleanup failed")
		}
		return nil, err
	}

	return doc, nil
}

func (s *ServiceImpl) List(ctx context.Context, userID string) []*Document {
	if userID == "" {
		return []*Document{}
	}
	docs, err := s.documents.ListByOwner(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("list documents failed")
		return []*Document{}
	}
	return docs
}

func (s *ServiceImpl) Get(ctx context.Context, userID, documentID string) (*Document, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.documents.FindOwned(ctx, documentID, userID)
}

func (s *ServiceImpl) Requeue(ctx context.Context, userID, documentID string) (*Document, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}

	doc, err := s.documents.FindOwned(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	if doc.Status == StatusQueued || doc.Status == StatusProcessing {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
			"document is already being processed", nil, "document-already-queued")
	}

	if err := s.documents.Requeue(ctx, documentID, userID, time.Now()); err != nil {
		return nil, err
	}
	doc.Status = StatusQueued
	doc.SimplifiedText = ""
	doc.FailureReason = ""
	return doc, nil
}

// Delete removes the row first so concurrent readers never see a document
// whose file is already gone. Storage cleanup failures are logged only.
func (s *ServiceImpl) Delete(ctx context.Context, userID, documentID string) error {
	if err := requireUser(ctx, userID); err != nil {
		return err
	}

	doc, err := s.documents.FindOwned(ctx, documentID, userID)
	if err != nil {
		return err
	}

	if err := s.documents.DeleteOwned(ctx, documentID, userID); err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, doc.StorageKey); err != nil {
		s.log.Warn().Err(err).Str("key", doc.StorageKey).Msg("stored file delete failed")
	}
	return nil
}

// Simplify downloads the raw file, asks the model for a plain-language
// rewrite and records the outcome. The returned error tells the caller
// whether the row was marked failed.
func (s *ServiceImpl) Simplify(ctx context.Context, doc *Document) error {
	data, err := s.storage.Download(ctx, doc.StorageKey)
	if err != nil {
		return s.fail(ctx, doc, fmt.Errorf("download document: %w", err))
	}

	if !textPayload(data) {
		return s.fail(ctx, doc, fmt.Errorf("document %q is not text; only text documents can be simplified", doc.FileName))
	}

	completion, err := retry.ExecuteWithResult(ctx, s.retryPolicy, func(ctx context.Context, attempt int) (*llm.ChatCompletionResponse, error) {
		if attempt > 0 {
			s.log.Warn().Int("attempt", attempt).Str("document_id", doc.PublicID).Msg("retrying simplification")
		}
		return s.provider.CreateChatCompletion(ctx, llm.ChatCompletionRequest{
			Model: s.model,
			Messages: []llm.ChatMessage{
				{Role: "system", Content: SimplifyPrompt},
				{Role: "user", Content: string(data)},
			},
		})
	})
	if err != nil {
		return s.fail(ctx, doc, fmt.Errorf("chat completion: %w", err))
	}

	simplified, ok := completion.FirstReply()
	if !ok {
		return s.fail(ctx, doc, fmt.Errorf("chat completion returned no choices"))
	}

	if err := s.documents.MarkCompleted(ctx, doc.PublicID, simplified, time.Now()); err != nil {
		s.log.Error().Err(err).Str("document_id", doc.PublicID).Msg("mark completed failed")
		return err
	}

	doc.Status = StatusCompleted
	doc.SimplifiedText = simplified
	return nil
}

func (s *ServiceImpl) fail(ctx context.Context, doc *Document, cause error) error {
	s.log.Error().Err(cause).Str("document_id", doc.PublicID).Msg("simplification failed")
	if err := s.documents.MarkFailed(ctx, doc.PublicID, cause.Error(), time.Now()); err != nil {
		s.log.Error().Err(err).Str("document_id", doc.PublicID).Msg("mark failed failed")
	}
	doc.Status = StatusFailed
	doc.FailureReason = cause.Error()
	return cause
}

// textPayload reports whether the raw bytes are a text document. The walk up
// the detected mimetype hierarchy lets structured text (json, csv, html) pass
// while binaries (pdf, archives, images) are refused even when their bytes
// happen to be valid UTF-8.
func textPayload(data []byte) bool {
	if !utf8.Valid(data) {
		return false
	}
	for mt := mimetype.Detect(data); mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return true
		}
	}
	return false
}

func requireUser(ctx context.Context, userID string) error {
	if userID == "" {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeUnauthorized,
			"not authenticated",
			nil,
			"document-not-authenticated",
		)
	}
	return nil
}

var _ Service = (*ServiceImpl)(nil)
