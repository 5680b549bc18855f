// Package notify posts business events to an external webhook
// (messaging provider gateway). Sends are fire-and-forget: failures are
// logged and never retried, and callers are never blocked on delivery.
package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"buildcrm/pkg/config"
	"buildcrm/pkg/logger"

	"go.uber.org/zap"
)

var (
	webhookURL string
	httpClient *http.Client
)

// Initialize configures the notification client. With no webhook URL
// configured, Send becomes a no-op.
func Initialize(cfg *config.NotifyConfig) {
	webhookURL = cfg.WebhookURL
	httpClient = &http.Client{Timeout: cfg.Timeout}
}

type event struct {
	Event     string    `json:"event"`
	TenantID  uint      `json:"tenant_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// Send dispatches the event asynchronously
func Send(name string, tenantID uint, payload any) {
	if webhookURL == "" {
		return
	}

	go func() {
		log := logger.GetLogger()

		body, err := json.Marshal(event{
			Event:     name,
			TenantID:  tenantID,
			Timestamp: time.Now().UTC(),
			Payload:   payload,
		})
		if err != nil {
			log.Error("Failed to encode notification", zap.String("event", name), zap.Error(err))
			return
		}

		resp, err := httpClient.Post(webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Warn("Notification send failed",
				zap.String("event", name),
				zap.Uint("tenant_id", tenantID),
				zap.Error(err))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			log.Warn("Notification rejected by provider",
				zap.String("event", name),
				zap.Int("status", resp.StatusCode))
		}
	}()
}
