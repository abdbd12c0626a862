package document

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"lexaid-server/internal/domain/llm"
	"lexaid-server/internal/domain/retry"
	"lexaid-server/internal/utils/platformerrors"
)

type mockRepo struct {
	createFn        func(ctx context.Context, doc *Document) error
	findOwnedFn     func(ctx context.Context, publicID, userID string) (*Document, error)
	listByOwnerFn   func(ctx context.Context, userID string) ([]*Document, error)
	deleteOwnedFn   func(ctx context.Context, publicID, userID string) error
	markCompletedFn func(ctx context.Context, publicID, simplifiedText string, at time.Time) error
	markFailedFn    func(ctx context.Context, publicID, reason string, at time.Time) error
	requeueFn       func(ctx context.Context, publicID, userID string, at time.Time) error
}

func (m *mockRepo) Create(ctx context.Context, doc *Document) error {
	if m.createFn != nil {
		return m.createFn(ctx, doc)
	}
	return nil
}

func (m *mockRepo) FindOwned(ctx context.Context, publicID, userID string) (*Document, error) {
	if m.findOwnedFn != nil {
		return m.findOwnedFn(ctx, publicID, userID)
	}
	return &Document{PublicID: publicID, UserID: userID, Status: StatusCompleted}, nil
}

func (m *mockRepo) ListByOwner(ctx context.Context, userID string) ([]*Document, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockRepo) DeleteOwned(ctx context.Context, publicID, userID string) error {
	if m.deleteOwnedFn != nil {
		return m.deleteOwnedFn(ctx, publicID, userID)
	}
	return nil
}

func (m *mockRepo) MarkCompleted(ctx context.Context, publicID, simplifiedText string, at time.Time) error {
	if m.markCompletedFn != nil {
		return m.markCompletedFn(ctx, publicID, simplifiedText, at)
	}
	return nil
}

func (m *mockRepo) MarkFailed(ctx context.Context, publicID, reason string, at time.Time) error {
	if m.markFailedFn != nil {
		return m.markFailedFn(ctx, publicID, reason, at)
	}
	return nil
}

func (m *mockRepo) Requeue(ctx context.Context, publicID, userID string, at time.Time) error {
	if m.requeueFn != nil {
		return m.requeueFn(ctx, publicID, userID, at)
	}
	return nil
}

type mockStorage struct {
	uploadFn   func(ctx context.Context, key string, data []byte, contentType string) error
	downloadFn func(ctx context.Context, key string) ([]byte, error)
	deleteFn   func(ctx context.Context, key string) error
}

func (m *mockStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, key, data, contentType)
	}
	return nil
}

func (m *mockStorage) Download(ctx context.Context, key string) ([]byte, error) {
	if m.downloadFn != nil {
		return m.downloadFn(ctx, key)
	}
	return []byte("the lessee shall remit payment"), nil
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func (m *mockStorage) Health(ctx context.Context) error { return nil }

type mockProvider struct {
	createFn func(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error)
}

func (m *mockProvider) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return &llm.ChatCompletionResponse{
		Choices: []llm.ChatCompletionChoice{{Message: llm.ChatMessage{Role: "assistant", Content: "You must pay rent."}}},
	}, nil
}

func newTestService(repo *mockRepo, storage *mockStorage, provider llm.Provider) *ServiceImpl {
	svc := NewService(repo, storage, provider, "simplify-model", 1024, zerolog.Nop())
	svc.retryPolicy = retry.NoRetryPolicy()
	return svc
}

func TestUploadCreatesQueuedDocument(t *testing.T) {
	var stored *Document
	var uploadedKey string
	repo := &mockRepo{
		createFn: func(ctx context.Context, doc *Document) error {
			stored = doc
			return nil
		},
	}
	storage := &mockStorage{
		uploadFn: func(ctx context.Context, key string, data []byte, contentType string) error {
			uploadedKey = key
			return nil
		},
	}
	svc := newTestService(repo, storage, &mockProvider{})

	doc, err := svc.Upload(context.Background(), "user-1", "lease.txt", "text/plain", []byte("content"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored == nil {
		t.Fatal("expected a row to be created")
	}
	if doc.Status != StatusQueued {
		t.Errorf("expected queued status, got %q", doc.Status)
	}
	if doc.SizeBytes != 7 {
		t.Errorf("expected size 7, got %d", doc.SizeBytes)
	}
	if uploadedKey != doc.StorageKey {
		t.Errorf("expected upload under %q, got %q", doc.StorageKey, uploadedKey)
	}
}

func TestUploadDetectsContentType(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockStorage{}, &mockProvider{})

	doc, err := svc.Upload(context.Background(), "user-1", "notes", "", []byte("plain words"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ContentType == "" {
		t.Error("expected a detected content type")
	}
}

func TestUploadRejectsOversized(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockStorage{}, &mockProvider{})

	_, err := svc.Upload(context.Background(), "user-1", "big.txt", "text/plain", make([]byte, 2048), nil)
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUploadRejectsEmpty(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockStorage{}, &mockProvider{})

	_, err := svc.Upload(context.Background(), "user-1", "empty.txt", "text/plain", nil, nil)
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUploadCleansUpOnCreateFailure(t *testing.T) {
	deleted := false
	repo := &mockRepo{
		createFn: func(ctx context.Context, doc *Document) error {
			return errors.New("insert failed")
		},
	}
	storage := &mockStorage{
		deleteFn: func(ctx context.Context, key string) error {
			deleted = true
			return nil
		},
	}
	svc := newTestService(repo, storage, &mockProvider{})

	if _, err := svc.Upload(context.Background(), "user-1", "a.txt", "text/plain", []byte("x"), nil); err == nil {
		t.Fatal("expected error when the row insert fails")
	}
	if !deleted {
		t.Error("expected the orphaned upload to be removed")
	}
}

func TestListFailSoft(t *testing.T) {
	repo := &mockRepo{
		listByOwnerFn: func(ctx context.Context, userID string) ([]*Document, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := newTestService(repo, &mockStorage{}, &mockProvider{})

	got := svc.List(context.Background(), "user-1")
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice on store failure, got %v", got)
	}

	got = svc.List(context.Background(), "")
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice for unauthenticated caller, got %v", got)
	}
}

func TestDeleteToleratesStorageFailure(t *testing.T) {
	rowDeleted := false
	repo := &mockRepo{
		deleteOwnedFn: func(ctx context.Context, publicID, userID string) error {
			rowDeleted = true
			return nil
		},
	}
	storage := &mockStorage{
		deleteFn: func(ctx context.Context, key string) error {
			return errors.New("object store unavailable")
		},
	}
	svc := newTestService(repo, storage, &mockProvider{})

	if err := svc.Delete(context.Background(), "user-1", "doc_x"); err != nil {
		t.Fatalf("storage failure must not fail the delete: %v", err)
	}
	if !rowDeleted {
		t.Error("expected the row to be deleted")
	}
}

func TestDeleteNotOwned(t *testing.T) {
	repo := &mockRepo{
		findOwnedFn: func(ctx context.Context, publicID, userID string) (*Document, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound, "document not found or access denied", nil, "document-not-found")
		},
	}
	svc := newTestService(repo, &mockStorage{}, &mockProvider{})

	err := svc.Delete(context.Background(), "intruder", "doc_x")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestRequeueRejectsActiveDocument(t *testing.T) {
	repo := &mockRepo{
		findOwnedFn: func(ctx context.Context, publicID, userID string) (*Document, error) {
			return &Document{PublicID: publicID, UserID: userID, Status: StatusProcessing}, nil
		},
	}
	svc := newTestService(repo, &mockStorage{}, &mockProvider{})

	_, err := svc.Requeue(context.Background(), "user-1", "doc_x")
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestSimplifyMarksCompleted(t *testing.T) {
	var completedText string
	var capturedReq llm.ChatCompletionRequest
	repo := &mockRepo{
		markCompletedFn: func(ctx context.Context, publicID, simplifiedText string, at time.Time) error {
			completedText = simplifiedText
			return nil
		},
	}
	provider := &mockProvider{
		createFn: func(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
			capturedReq = req
			return &llm.ChatCompletionResponse{
				Choices: []llm.ChatCompletionChoice{{Message: llm.ChatMessage{Role: "assistant", Content: "You must pay rent."}}},
			}, nil
		},
	}
	svc := newTestService(repo, &mockStorage{}, provider)

	doc := &Document{PublicID: "doc_x", StorageKey: "documents/user-1/doc_x", Status: StatusProcessing}
	if err := svc.Simplify(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completedText != "You must pay rent." {
		t.Errorf("expected simplified text to be stored, got %q", completedText)
	}
	if doc.Status != StatusCompleted {
		t.Errorf("expected completed status, got %q", doc.Status)
	}
	if capturedReq.Model != "simplify-model" {
		t.Errorf("expected configured model, got %q", capturedReq.Model)
	}
	if len(capturedReq.Messages) != 2 || capturedReq.Messages[0].Role != "system" {
		t.Errorf("expected system prompt plus document content, got %v", capturedReq.Messages)
	}
}

func TestSimplifyMarksFailedOnProviderError(t *testing.T) {
	var failedReason string
	repo := &mockRepo{
		markFailedFn: func(ctx context.Context, publicID, reason string, at time.Time) error {
			failedReason = reason
			return nil
		},
	}
	provider := &mockProvider{
		createFn: func(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
			return nil, errors.New("upstream unavailable")
		},
	}
	svc := newTestService(repo, &mockStorage{}, provider)

	doc := &Document{PublicID: "doc_x", StorageKey: "documents/user-1/doc_x", Status: StatusProcessing}
	if err := svc.Simplify(context.Background(), doc); err == nil {
		t.Fatal("expected error when the provider fails")
	}
	if failedReason == "" {
		t.Error("expected a failure reason to be recorded")
	}
	if doc.Status != StatusFailed {
		t.Errorf("expected failed status, got %q", doc.Status)
	}
}

func TestSimplifyRefusesNonTextPayload(t *testing.T) {
	payloads := map[string][]byte{
		"invalid utf8": []byte("%PDF\xff\xfe\x00\x01"),
		"ascii pdf":    []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n"),
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			var failedReason string
			repo := &mockRepo{
				markFailedFn: func(ctx context.Context, publicID, reason string, at time.Time) error {
					failedReason = reason
					return nil
				},
			}
			storage := &mockStorage{
				downloadFn: func(ctx context.Context, key string) ([]byte, error) {
					return payload, nil
				},
			}
			providerCalled := false
			provider := &mockProvider{
				createFn: func(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
					providerCalled = true
					return nil, errors.New("should not be called")
				},
			}
			svc := newTestService(repo, storage, provider)

			doc := &Document{PublicID: "doc_x", FileName: "scan.pdf", StorageKey: "documents/user-1/doc_x", Status: StatusProcessing}
			if err := svc.Simplify(context.Background(), doc); err == nil {
				t.Fatal("expected error for a non-text payload")
			}
			if providerCalled {
				t.Error("expected the provider to be skipped for a non-text payload")
			}
			if doc.Status != StatusFailed {
				t.Errorf("expected failed status, got %q", doc.Status)
			}
			if failedReason == "" {
				t.Error("expected a failure reason to be recorded")
			}
		})
	}
}

func TestSimplifyAcceptsPlainText(t *testing.T) {
	completed := false
	repo := &mockRepo{
		markCompletedFn: func(ctx context.Context, publicID, simplifiedText string, at time.Time) error {
			completed = true
			return nil
		},
	}
	storage := &mockStorage{
		downloadFn: func(ctx context.Context, key string) ([]byte, error) {
			return []byte("The lessee shall remit payment on the first of each month."), nil
		},
	}
	svc := newTestService(repo, storage, &mockProvider{})

	doc := &Document{PublicID: "doc_x", FileName: "lease.txt", StorageKey: "documents/user-1/doc_x", Status: StatusProcessing}
	if err := svc.Simplify(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !completed {
		t.Error("expected the row to be marked completed")
	}
}

func TestSimplifyMarksFailedOnDownloadError(t *testing.T) {
	marked := false
	repo := &mockRepo{
		markFailedFn: func(ctx context.Context, publicID, reason string, at time.Time) error {
			marked = true
			return nil
		},
	}
	storage := &mockStorage{
		downloadFn: func(ctx context.Context, key string) ([]byte, error) {
			return nil, errors.New("object missing")
		},
	}
	svc := newTestService(repo, storage, &mockProvider{})

	doc := &Document{PublicID: "doc_x", StorageKey: "documents/user-1/doc_x"}
	if err := svc.Simplify(context.Background(), doc); err == nil {
		t.Fatal("expected error when the download fails")
	}
	if !marked {
		t.Error("expected the row to be marked failed")
	}
}

func TestWebhookURLFromMetadata(t *testing.T) {
	doc := &Document{Metadata: []byte(`{"webhook_url":"https://example.com/hook"}`)}
	if got := doc.WebhookURL(); got != "https://example.com/hook" {
		t.Errorf("expected webhook url, got %q", got)
	}

	doc = &Document{}
	if got := doc.WebhookURL(); got != "" {
		t.Errorf("expected empty webhook url, got %q", got)
	}
}
