package channel

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-notification-hub/internal/domain"
	"github.com/go-notification-hub/internal/infrastructure/sns"
)

type mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Email delivers through an SMTP relay.
type Email struct {
	Mailer mailer
}

func (e Email) Attempt(ctx context.Context, n domain.Notification) domain.AttemptResult {
	addr, err := mail.ParseAddress(n.Recipient)
	if err != nil {
		return domain.Failed(fmt.Sprintf("invalid email recipient %q: %v", n.Recipient, err))
	}
	return result(e.Mailer.SendEmail(ctx, addr.Address, n.Subject, n.Body))
}

type slackPoster interface {
	Post(ctx context.Context, channel, text string) error
}

// Slack posts to an incoming webhook; the recipient overrides the Slack channel.
type Slack struct {
	Client slackPoster
}

func (s Slack) Attempt(ctx context.Context, n domain.Notification) domain.AttemptResult {
	text := n.Body
	if n.Subject != "" {
		text = "*" + n.Subject + "*\n" + n.Body
	}
	return result(s.Client.Post(ctx, n.Recipient, text))
}

type webhookDeliverer interface {
	Deliver(ctx context.Context, target string, payload any) error
}

// Webhook POSTs a JSON envelope to the recipient URL.
type Webhook struct {
	Client webhookDeliverer
}

// Envelope is the JSON body a webhook receiver gets.
type Envelope struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Recipient string            `json:"recipient"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Channel   domain.Channel    `json:"channel"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created"`
}

func (w Webhook) Attempt(ctx context.Context, n domain.Notification) domain.AttemptResult {
	return result(w.Client.Deliver(ctx, n.Recipient, Envelope{
		ID:        n.NotificationID,
		Type:      n.Type,
		Recipient: n.Recipient,
		Subject:   n.Subject,
		Body:      n.Body,
		Channel:   n.Channel,
		Metadata:  n.Metadata,
		CreatedAt: n.CreatedAt,
	}))
}

type pushPublisher interface {
	Publish(ctx context.Context, target, subject, message string) error
}

// Push publishes through SNS to an endpoint/topic ARN or a phone number.
type Push struct {
	Publisher pushPublisher
}

func (p Push) Attempt(ctx context.Context, n domain.Notification) domain.AttemptResult {
	if !sns.ValidTarget(n.Recipient) {
		return domain.Failed(fmt.Sprintf("%q: %v", n.Recipient, sns.ErrInvalidTarget))
	}
	return result(p.Publisher.Publish(ctx, n.Recipient, n.Subject, n.Body))
}
