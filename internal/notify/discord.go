package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tradingdesk/internal/config"
)

// Discord message content is capped at 2000 characters; leave headroom.
const maxContentLen = 1900

// DiscordNotifier posts alerts to a Discord webhook. An unconfigured
// notifier silently drops messages so callers never need to branch.
type DiscordNotifier struct {
	webhookURL string
	enabled    bool
	client     *http.Client
}

func NewDiscordNotifier(cfg config.NotifyConfig) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: cfg.DiscordWebhookURL,
		enabled:    cfg.Enabled && cfg.DiscordWebhookURL != "",
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts a plain text message, truncated to Discord's content limit.
func (d *DiscordNotifier) Send(ctx context.Context, message string) error {
	if !d.enabled {
		return nil
	}
	if len(message) > maxContentLen {
		message = message[:maxContentLen]
	}
	return d.post(ctx, map[string]any{"content": message})
}

// SendTradeAlert posts a formatted fill notification.
func (d *DiscordNotifier) SendTradeAlert(ctx context.Context, symbol, side, qty, price string) error {
	if !d.enabled {
		return nil
	}
	payload := map[string]any{
		"embeds": []map[string]any{
			{
				"title":       fmt.Sprintf("%s %s", side, symbol),
				"description": fmt.Sprintf("%s shares @ %s", qty, price),
				"timestamp":   time.Now().Format(time.RFC3339),
			},
		},
	}
	return d.post(ctx, payload)
}

func (d *DiscordNotifier) post(ctx context.Context, payload map[string]any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("discord returned status %d", resp.StatusCode)
	}
	return nil
}
