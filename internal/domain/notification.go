package domain

import (
	"fmt"
	"strings"
	"time"
)

// Channel is the delivery medium a notification is sent through.
type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelSlack   Channel = "slack"
	ChannelWebhook Channel = "webhook"
	ChannelPush    Channel = "push"
)

// Channels lists every supported channel in display order.
var Channels = []Channel{ChannelEmail, ChannelSlack, ChannelWebhook, ChannelPush}

// Valid reports whether c is one of the supported channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelSlack, ChannelWebhook, ChannelPush:
		return true
	}
	return false
}

// ParseChannel normalises s and returns the matching Channel.
func ParseChannel(s string) (Channel, error) {
	c := Channel(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("channel %q: %w", s, ErrUnsupportedChannel)
	}
	return c, nil
}

// Status is the lifecycle state of a notification.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusRead    Status = "read"
)

// TemplateRef asks the dispatcher to render subject and body from a stored template.
type TemplateRef struct {
	Name      string         `json:"name" dynamodbav:"name"`
	Variables map[string]any `json:"variables,omitempty" dynamodbav:"variables,omitempty"`
}

type Notification struct {
	NotificationID string            `json:"id" dynamodbav:"notification_id"`
	Type           string            `json:"type" dynamodbav:"type"`
	Recipient      string            `json:"recipient" dynamodbav:"recipient"`
	Subject        string            `json:"subject" dynamodbav:"subject"`
	Body           string            `json:"body" dynamodbav:"body"`
	Channel        Channel           `json:"channel" dynamodbav:"channel"`
	Status         Status            `json:"status" dynamodbav:"status"`
	Read           bool              `json:"read" dynamodbav:"read"`
	ReadAt         *time.Time        `json:"read_at,omitempty" dynamodbav:"read_at,omitempty"`
	SentAt         *time.Time        `json:"sent_at,omitempty" dynamodbav:"sent_at,omitempty"`
	Template       *TemplateRef      `json:"template,omitempty" dynamodbav:"template,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty" dynamodbav:"metadata,omitempty"`
	RetryCount     int               `json:"retry_count" dynamodbav:"retry_count"`
	CreatedAt      time.Time         `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time         `json:"updated" dynamodbav:"updated_at"`
}

// CreateNotificationRequest is the caller-facing input for a new notification.
type CreateNotificationRequest struct {
	Type      string            `json:"type"`
	Recipient string            `json:"recipient" validate:"required"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Channel   string            `json:"channel" validate:"required"`
	Template  *TemplateRef      `json:"template,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// DefaultType is used when a notification is created without a type.
const DefaultType = "general"

// NewNotification builds a PENDING notification from a request. The channel
// is normalised but not validated: an unknown channel is a delivery failure,
// not a construction error.
func NewNotification(notificationID string, req CreateNotificationRequest, now time.Time) *Notification {
	typ := strings.TrimSpace(req.Type)
	if typ == "" {
		typ = DefaultType
	}
	n := &Notification{
		NotificationID: notificationID,
		Type:           typ,
		Recipient:      strings.TrimSpace(req.Recipient),
		Subject:        req.Subject,
		Body:           req.Body,
		Channel:        Channel(strings.ToLower(strings.TrimSpace(req.Channel))),
		Status:         StatusPending,
		Metadata:       req.Metadata,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Template != nil {
		n.Template = &TemplateRef{Name: req.Template.Name, Variables: cloneVars(req.Template.Variables)}
	}
	return n
}

// Clone returns a deep copy so callers never alias a stored notification.
func (n Notification) Clone() Notification {
	out := n
	if n.ReadAt != nil {
		t := *n.ReadAt
		out.ReadAt = &t
	}
	if n.SentAt != nil {
		t := *n.SentAt
		out.SentAt = &t
	}
	if n.Template != nil {
		ref := TemplateRef{Name: n.Template.Name, Variables: cloneVars(n.Template.Variables)}
		out.Template = &ref
	}
	if n.Metadata != nil {
		out.Metadata = make(map[string]string, len(n.Metadata))
		for k, v := range n.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Unread reports whether the notification was delivered and not yet read.
func (n Notification) Unread() bool {
	return n.Status == StatusSent && !n.Read
}

func cloneVars(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		if nested, ok := v.(map[string]any); ok {
			out[k] = cloneVars(nested)
			continue
		}
		out[k] = v
	}
	return out
}
