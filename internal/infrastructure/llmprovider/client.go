package llmprovider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"lexaid-server/internal/domain/llm"
	"lexaid-server/internal/infrastructure/metrics"
	"lexaid-server/internal/infrastructure/observability"
)

// Client implements the llm.Provider interface against an OpenAI-compatible
// chat completion API.
type Client struct {
	httpClient *resty.Client
}

// NewClient creates a Resty-backed client. apiKey may be empty when the
// upstream does not require authentication.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 75 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		httpClient.SetHeader("Authorization", "Bearer "+apiKey)
	}

	return &Client{httpClient: httpClient}
}

// CreateChatCompletion calls /v1/chat/completions.
func (c *Client) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	ctx, span := observability.StartCompletionSpan(ctx, req.Model, len(req.Messages))
	defer span.End()

	start := time.Now()

	var completion llm.ChatCompletionResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&completion).
		Post("/v1/chat/completions")
	if err != nil {
		observability.RecordError(span, err)
		metrics.RecordCompletion(req.Model, "error", time.Since(start).Seconds())
		return nil, err
	}

	if resp.IsError() {
		err := fmt.Errorf("chat completion api error: %d %s", resp.StatusCode(), resp.String())
		observability.RecordError(span, err)
		metrics.RecordCompletion(req.Model, "error", time.Since(start).Seconds())
		return nil, err
	}

	metrics.RecordCompletion(req.Model, "success", time.Since(start).Seconds())
	return &completion, nil
}

var _ llm.Provider = (*Client)(nil)
