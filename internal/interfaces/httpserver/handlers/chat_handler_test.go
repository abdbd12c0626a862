package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"lexaid-server/internal/config"
	"lexaid-server/internal/domain/chat"
	"lexaid-server/internal/infrastructure/auth"
	"lexaid-server/internal/interfaces/httpserver/handlers"
	"lexaid-server/internal/utils/platformerrors"
)

// MockChatService is a mock implementation of chat.Service for testing.
type MockChatService struct {
	StartConversationFunc  func(ctx context.Context, userID, title string) (*chat.Conversation, error)
	ListConversationsFunc  func(ctx context.Context, userID string) []*chat.Conversation
	ListMessagesFunc       func(ctx context.Context, userID, conversationID string) []chat.Message
	AppendMessageFunc      func(ctx context.Context, userID, conversationID, content string, role chat.Role, model string) (*chat.Message, error)
	DeleteConversationFunc func(ctx context.Context, userID, conversationID string) error
}

func (m *MockChatService) StartConversation(ctx context.Context, userID, title string) (*chat.Conversation, error) {
	if m.StartConversationFunc != nil {
		return m.StartConversationFunc(ctx, userID, title)
	}
	return nil, nil
}

func (m *MockChatService) ListConversations(ctx context.Context, userID string) []*chat.Conversation {
	if m.ListConversationsFunc != nil {
		return m.ListConversationsFunc(ctx, userID)
	}
	return []*chat.Conversation{}
}

func (m *MockChatService) ListMessages(ctx context.Context, userID, conversationID string) []chat.Message {
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(ctx, userID, conversationID)
	}
	return []chat.Message{}
}

func (m *MockChatService) AppendMessage(ctx context.Context, userID, conversationID, content string, role chat.Role, model string) (*chat.Message, error) {
	if m.AppendMessageFunc != nil {
		return m.AppendMessageFunc(ctx, userID, conversationID, content, role, model)
	}
	return nil, nil
}

func (m *MockChatService) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	if m.DeleteConversationFunc != nil {
		return m.DeleteConversationFunc(ctx, userID, conversationID)
	}
	return nil
}

func setupChatTestRouter(t *testing.T, handler *handlers.ChatHandler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	validator, err := auth.NewValidator(context.Background(), &config.Config{AuthEnabled: false}, zerolog.Nop())
	if err != nil {
		t.Fatalf("build validator: %v", err)
	}

	r := gin.New()
	r.Use(validator.Middleware())
	v1 := r.Group("/v1")
	{
		v1.POST("/conversations", handler.Create)
		v1.GET("/conversations", handler.List)
		v1.GET("/conversations/:conversation_id/messages", handler.ListMessages)
		v1.POST("/conversations/:conversation_id/messages", handler.AppendMessage)
		v1.DELETE("/conversations/:conversation_id", handler.Delete)
	}
	return r
}

func notFoundErr() error {
	return platformerrors.NewError(context.Background(), platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound, "conversation not found or access denied", nil, "conversation-not-found")
}

func TestChatHandler_Create(t *testing.T) {
	mockService := &MockChatService{
		StartConversationFunc: func(ctx context.Context, userID, title string) (*chat.Conversation, error) {
			if userID != "user-1" {
				t.Errorf("Expected user-1, got %q", userID)
			}
			return &chat.Conversation{
				PublicID:  "conv-123",
				UserID:    userID,
				Title:     title,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		},
	}

	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(t, handler)

	body := bytes.NewBufferString(`{"title":"Lease question"}`)
	req, _ := http.NewRequest("POST", "/v1/conversations", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["id"] != "conv-123" {
		t.Errorf("Expected conversation id 'conv-123', got %v", response["id"])
	}
	if response["title"] != "Lease question" {
		t.Errorf("Expected title 'Lease question', got %v", response["title"])
	}
}

func TestChatHandler_CreateEmptyBody(t *testing.T) {
	mockService := &MockChatService{
		StartConversationFunc: func(ctx context.Context, userID, title string) (*chat.Conversation, error) {
			if title != "" {
				t.Errorf("Expected empty title, got %q", title)
			}
			return &chat.Conversation{PublicID: "conv-123", UserID: userID}, nil
		},
	}

	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(t, handler)

	req, _ := http.NewRequest("POST", "/v1/conversations", bytes.NewBufferString(""))
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}
}

func TestChatHandler_CreateInvalidJSON(t *testing.T) {
	mockService := &MockChatService{
		StartConversationFunc: func(ctx context.Context, userID, title string) (*chat.Conversation, error) {
			t.Error("Expected the service not to be called for a malformed body")
			return nil, nil
		},
	}

	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(t, handler)

	body := bytes.NewBufferString(`{"title":"Lease question"`)
	req, _ := http.NewRequest("POST", "/v1/conversations", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestChatHandler_CreateUnauthenticated(t *testing.T) {
	mockService := &MockChatService{
		StartConversationFunc: func(ctx context.Context, userID, title string) (*chat.Conversation, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeUnauthorized, "not authenticated", nil, "chat-not-authenticated")
		},
	}

	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(t, handler)

	req, _ := http.NewRequest("POST", "/v1/conversations", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestChatHandler_List(t *testing.T) {
	mockService := &MockChatService{
		ListConversationsFunc: func(ctx context.Context, userID string) []*chat.Conversation {
			return []*chat.Conversation{
				{PublicID: "conv-2", Title: "Newer"},
				{PublicID: "conv-1", Title: "Older"},
			}
		},
	}

	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(t, handler)

	req, _ := http.NewRequest("GET", "/v1/conversations", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Object string                   `json:"object"`
		Data   []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(response.Data) != 2 || response.Data[0]["id"] != "conv-2" {
		t.Errorf("Expected ordered conversation list, got %v", response.Data)
	}
}

func TestChatHandler_ListUnauthenticatedReturnsEmpty(t *testing.T) {
	mockService := &MockChatService{
		ListConversationsFunc: func(ctx context.Context, userID string) []*chat.Conversation {
			if userID != "" {
				t.Errorf("Expected empty user id, got %q", userID)
			}
			return []*chat.Conversation{}
		},
	}

	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(t, handler)

	req, _ := http.NewRequest("GET", "/v1/conversations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Data []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Data == nil || len(response.Data) != 0 {
		t.Errorf("Expected empty data array, got %v", response.Data)
	}
}

func TestChatHandler_ListMessages(t *testing.T) {
	mockService := &MockChatService{
		ListMessagesFunc: func(ctx context.Context, userID, conversationID string) []chat.Message {
			if conversationID != "conv-123" {
				t.Errorf("Expected conv-123, got %q", conversationID)
			}
			return []chat.Message{
				{PublicID: "msg-1", Role: chat.RoleAssistant, Content: chat.Greeting},
				{PublicID: "msg-2", Role: chat.RoleUser, Content: "Hi"},
			}
		},
	}

	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(t, handler)

	req, _ := http.NewRequest("GET", "/v1/conversations/conv-123/messages", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Data []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(response.Data) != 2 || response.Data[0]["role"] != "assistant" {
		t.Errorf("Expected greeting first, got %v", response.Data)
	}
}

func TestChatHandler_AppendMessage(t *testing.T) {
	mockService := &MockChatService{
		AppendMessageFunc: func(ctx context.Context, userID, conversationID, content string, role chat.Role, model string) (*chat.Message, error) {
			if model != "m1" {
				t.Errorf("Expected model m1, got %q", model)
			}
			return &chat.Message{
				PublicID:  "msg-9",
				Role:      role,
				Content:   content,
				CreatedAt: time.Now(),
			}, nil
		},
	}

	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(t, handler)

	body := bytes.NewBufferString(`{"role":"user","content":"What is a lease?","model":"m1"}`)
	req, _ := http.NewRequest("POST", "/v1/conversations/conv-123/messages", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["role"] != "user" || response["content"] != "What is a lease?" {
		t.Errorf("Expected the caller's message back, got %v", response)
	}
}

func TestChatHandler_AppendMessageInvalidRole(t *testing.T) {
	handler := handlers.NewChatHandler(&MockChatService{}, zerolog.Nop())
	router := setupChatTestRouter(t, handler)

	body := bytes.NewBufferString(`{"role":"system","content":"x"}`)
	req, _ := http.NewRequest("POST", "/v1/conversations/conv-123/messages", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestChatHandler_AppendMessageNotFound(t *testing.T) {
	mockService := &MockChatService{
		AppendMessageFunc: func(ctx context.Context, userID, conversationID, content string, role chat.Role, model string) (*chat.Message, error) {
			return nil, notFoundErr()
		},
	}

	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(t, handler)

	body := bytes.NewBufferString(`{"role":"user","content":"Hi"}`)
	req, _ := http.NewRequest("POST", "/v1/conversations/conv-999/messages", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "intruder")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestChatHandler_Delete(t *testing.T) {
	deleted := false
	mockService := &MockChatService{
		DeleteConversationFunc: func(ctx context.Context, userID, conversationID string) error {
			deleted = true
			return nil
		},
	}

	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(t, handler)

	req, _ := http.NewRequest("DELETE", "/v1/conversations/conv-123", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if !deleted {
		t.Error("Expected the service delete to be called")
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["deleted"] != true {
		t.Errorf("Expected deleted true, got %v", response["deleted"])
	}
}

func TestChatHandler_DeleteNotFound(t *testing.T) {
	mockService := &MockChatService{
		DeleteConversationFunc: func(ctx context.Context, userID, conversationID string) error {
			return notFoundErr()
		},
	}

	handler := handlers.NewChatHandler(mockService, zerolog.Nop())
	router := setupChatTestRouter(t, handler)

	req, _ := http.NewRequest("DELETE", "/v1/conversations/conv-999", nil)
	req.Header.Set("X-User-ID", "intruder")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}
