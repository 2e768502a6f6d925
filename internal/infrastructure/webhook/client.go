// Package webhook delivers notifications to HTTP callback URLs.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/go-notification-hub/internal/infrastructure/httpclient"
)

// SignatureHeader carries "sha256=<hex hmac of body>" when a secret is set.
const SignatureHeader = "X-Hub-Signature-256"

type Client struct {
	secret []byte
	http   *httpclient.Client
}

func NewClient(secret string, http *httpclient.Client) *Client {
	return &Client{secret: []byte(secret), http: http}
}

// Deliver POSTs payload as JSON to target. Any non-2xx answer is an error.
func (c *Client) Deliver(ctx context.Context, target string, payload any) error {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid webhook url %q", target)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	var headers map[string]string
	if len(c.secret) > 0 {
		headers = map[string]string{SignatureHeader: Sign(c.secret, body)}
	}

	resp, err := c.http.Post(ctx, target, body, headers)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, httpclient.Truncate(resp.Body, 200))
	}
	return nil
}

// Sign returns the signature header value for body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
