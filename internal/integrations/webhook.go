// FilePath: internal/integrations/webhook.go
package integrations

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
)

// WebhookPayload is the body pushed to an inference webhook after a
// capture has been stored.
type WebhookPayload struct {
	ImageURL        string `json:"image_url"`
	CapturedImageID string `json:"captured_image_id"`
	UserID          string `json:"user_id"`
}

// WebhookNotifier pushes new captures to an external inference
// endpoint (e.g. a Colab notebook behind a tunnel).
type WebhookNotifier interface {
	Notify(ctx context.Context, url string, payload WebhookPayload) error
}

type webhookNotifier struct {
	http *resty.Client
}

func NewWebhookNotifier(timeout time.Duration) WebhookNotifier {
	return &webhookNotifier{http: newHTTPClient(timeout)}
}

func NewWebhookNotifierWithClient(http *resty.Client) WebhookNotifier {
	return &webhookNotifier{http: http}
}

func (n *webhookNotifier) Notify(ctx context.Context, url string, payload WebhookPayload) error {
	resp, err := n.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(url)
	if err != nil {
		return errors.NewUpstreamError("webhook dispatch failed", err)
	}
	if resp.IsError() {
		return errors.NewUpstreamError(
			fmt.Sprintf("webhook returned %d", resp.StatusCode()), nil)
	}
	return nil
}
