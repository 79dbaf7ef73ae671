package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	webhookTimeout             = 10 * time.Second
	defaultHTTPStatusThreshold = 300
)

// WebhookService delivers session security events (e.g. refresh from a new
// IP) to an external receiver. Delivery is best effort and asynchronous.
type WebhookService struct {
	client     *http.Client
	log        *zap.SugaredLogger
	webhookURL string
}

func NewWebhookService(log *zap.SugaredLogger, webhookURL string) *WebhookService {
	return &WebhookService{
		client:     &http.Client{Timeout: webhookTimeout},
		log:        log,
		webhookURL: webhookURL,
	}
}

func (s *WebhookService) NotifySessionEvent(ctx context.Context, event string, data map[string]interface{}) {
	if s.webhookURL == "" {
		return
	}

	// delivery must outlive the originating request
	ctx = context.WithoutCancel(ctx)

	go func() {
		payload := map[string]interface{}{"event": event}
		for k, v := range data {
			payload[k] = v
		}

		body, err := json.Marshal(payload)
		if err != nil {
			s.log.Errorw("failed to marshal webhook payload", "error", err)
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewBuffer(body))
		if err != nil {
			s.log.Errorw("failed to create webhook request", "error", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			s.log.Errorw("failed to send webhook", "error", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= defaultHTTPStatusThreshold {
			s.log.Warnw("webhook returned non-2xx status", "status", resp.StatusCode, "event", event)
		}
	}()
}
