// Package store declares the persistence contract the notification core
// depends on. Backends live under internal/infrastructure.
package store

import (
	"context"
	"errors"

	"github.com/go-notification-hub/internal/domain"
)

// NotificationStore persists notifications keyed by id.
// Get returns an error wrapping domain.ErrNotificationNotFound when the id is absent.
type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	Update(ctx context.Context, n *domain.Notification) error
	ListByRecipient(ctx context.Context, recipient string) ([]domain.Notification, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Notification, error)
	Scan(ctx context.Context) ([]domain.Notification, error)
}

// TemplateStore persists templates keyed by name. Put is an upsert.
// Get returns an error wrapping domain.ErrTemplateNotFound when the name is absent.
type TemplateStore interface {
	Put(ctx context.Context, t *domain.Template) error
	Get(ctx context.Context, name string) (*domain.Template, error)
	Scan(ctx context.Context) ([]domain.Template, error)
}

// DeliveryStore is the append-only delivery log.
type DeliveryStore interface {
	Append(ctx context.Context, e domain.DeliveryEntry) error
	ListByNotification(ctx context.Context, notificationID string) ([]domain.DeliveryEntry, error)
	Scan(ctx context.Context) ([]domain.DeliveryEntry, error)
}

// Stores bundles one backend's implementations.
type Stores struct {
	Notifications NotificationStore
	Templates     TemplateStore
	Deliveries    DeliveryStore
	Close         func() error
}

// ErrOpen is returned when a backend cannot be constructed.
var ErrOpen = errors.New("store open failed")
