// Package slack posts messages to a Slack incoming webhook.
package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-notification-hub/internal/infrastructure/httpclient"
)

var ErrNotConfigured = errors.New("slack webhook url not configured")

type Client struct {
	webhookURL string
	http       *httpclient.Client
}

func NewClient(webhookURL string, http *httpclient.Client) *Client {
	return &Client{webhookURL: webhookURL, http: http}
}

// Configured reports whether a webhook URL is set.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.webhookURL) != ""
}

type message struct {
	Text    string `json:"text"`
	Channel string `json:"channel,omitempty"`
}

// Post sends text to the webhook, optionally overriding the target channel.
// Slack answers a plain "ok" body on success.
func (c *Client) Post(ctx context.Context, channel, text string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	payload, err := json.Marshal(message{Text: text, Channel: channel})
	if err != nil {
		return fmt.Errorf("encode slack message: %w", err)
	}
	resp, err := c.http.Post(ctx, c.webhookURL, payload, nil)
	if err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	if !resp.OK() {
		return fmt.Errorf("slack webhook returned %d: %s", resp.StatusCode, httpclient.Truncate(resp.Body, 200))
	}
	if body := strings.TrimSpace(resp.Body); body != "" && body != "ok" {
		return fmt.Errorf("slack webhook rejected message: %s", httpclient.Truncate(body, 200))
	}
	return nil
}
