package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aria-khodro/cargo-relay/internal/config"
)

// Client posts routed events and bulk coordinate batches to the configured
// webhook endpoints.
type Client struct {
	eventURL  string
	coordsURL string
	http      *http.Client
}

func NewClient(cfg config.WebhookConfig) *Client {
	coordsURL := cfg.CoordsURL
	if coordsURL == "" {
		coordsURL = cfg.URL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		eventURL:  cfg.URL,
		coordsURL: coordsURL,
		http:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) SendEvent(ctx context.Context, channel, event string, data json.RawMessage) error {
	payload := map[string]any{
		"channel": channel,
		"event":   event,
		"data":    data,
	}
	return c.post(ctx, c.eventURL, payload)
}

func (c *Client) SendCoords(ctx context.Context, coords []json.RawMessage) error {
	return c.post(ctx, c.coordsURL, map[string]any{"coords": coords})
}

func (c *Client) post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: %s returned %d", url, resp.StatusCode)
	}
	return nil
}
