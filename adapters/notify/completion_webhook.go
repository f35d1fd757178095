// Package notify holds outbound HTTP integrations: the completion
// webhook and the transactional mailer.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/roomnet/roomnet-api/internal/application/service"
	"github.com/roomnet/roomnet-api/internal/config"
	"github.com/roomnet/roomnet-api/pkg/apperror"
)

// completionWebhook POSTs the user id to the completion handler with a
// fixed service credential. The handler is idempotent; callers retry
// freely.
type completionWebhook struct {
	url    string
	token  string
	client *http.Client
}

func NewCompletionWebhook(cfg config.Config) (service.CompletionNotifier, error) {
	if cfg.Completion.WebhookURL == "" {
		return nil, fmt.Errorf("completion webhook_url has not config")
	}
	return &completionWebhook{
		url:   cfg.Completion.WebhookURL,
		token: cfg.Completion.ServiceToken,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (w *completionWebhook) NotifyCompleted(ctx context.Context, userID string) error {
	body, err := json.Marshal(map[string]string{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to marshal completion payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.token)

	resp, err := w.client.Do(req)
	if err != nil {
		return apperror.NewDeliveryFailed("completion request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperror.NewDeliveryFailed(
			fmt.Sprintf("completion handler returned %d: %s", resp.StatusCode, string(snippet)), nil)
	}
	return nil
}
