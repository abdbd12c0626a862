package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPService implements webhook notifications via HTTP POST.
type HTTPService struct {
	httpClient *http.Client
	log        zerolog.Logger
	maxRetries int
	retryDelay time.Duration
}

// NewHTTPService creates a new HTTP-based webhook service.
func NewHTTPService(log zerolog.Logger) *HTTPService {
	return &HTTPService{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log:        log.With().Str("component", "webhook").Logger(),
		maxRetries: 3,
		retryDelay: 2 * time.Second,
	}
}

// NotifySimplified sends a notification when a document finishes
// simplification.
func (s *HTTPService) NotifySimplified(ctx context.Context, url, documentID, simplifiedText string, completedAt time.Time) error {
	if url == "" {
		s.log.Debug().Str("document_id", documentID).Msg("no webhook URL configured, skipping notification")
		return nil
	}

	formatted := completedAt.Format(time.RFC3339)
	payload := Payload{
		ID:             documentID,
		Event:          "document.simplified",
		Status:         "completed",
		SimplifiedText: simplifiedText,
		CompletedAt:    &formatted,
	}

	return s.send(ctx, url, payload, documentID)
}

// NotifyFailed sends a notification when simplification fails.
func (s *HTTPService) NotifyFailed(ctx context.Context, url, documentID, reason string) error {
	if url == "" {
		s.log.Debug().Str("document_id", documentID).Msg("no webhook URL configured, skipping notification")
		return nil
	}

	payload := Payload{
		ID:     documentID,
		Event:  "document.failed",
		Status: "failed",
		Error:  &ErrorDetails{Code: "simplification_failed", Message: reason},
	}

	return s.send(ctx, url, payload, documentID)
}

func (s *HTTPService) send(ctx context.Context, url string, payload Payload, documentID string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create webhook request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "lexaid-server/1.0")
		req.Header.Set("X-Lexaid-Event", payload.Event)
		req.Header.Set("X-Lexaid-Document-ID", documentID)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("send webhook (attempt %d/%d): %w", attempt, s.maxRetries, err)
			s.log.Warn().Err(err).Str("url", url).Int("attempt", attempt).Msg("webhook delivery failed")

			if attempt < s.maxRetries {
				time.Sleep(s.retryDelay)
				continue
			}
			break
		}

		status := resp.StatusCode
		resp.Body.Close()

		if status >= 200 && status < 300 {
			s.log.Info().Str("url", url).Int("status", status).Str("document_id", documentID).Msg("webhook delivered")
			return nil
		}

		lastErr = fmt.Errorf("webhook returned status %d (attempt %d/%d)", status, attempt, s.maxRetries)
		s.log.Warn().Int("status", status).Str("url", url).Int("attempt", attempt).Msg("webhook delivery failed")

		if attempt < s.maxRetries {
			time.Sleep(s.retryDelay)
		}
	}

	return lastErr
}

var _ Service = (*HTTPService)(nil)
