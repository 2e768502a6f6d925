// Package memory is an in-process store backend used by tests and the
// "memory" STORE_DRIVER.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/go-notification-hub/internal/domain"
)

// NotificationRepo keeps notifications in a map guarded by a RWMutex.
type NotificationRepo struct {
	mu    sync.RWMutex
	items map[string]domain.Notification
}

func NewNotificationRepo() *NotificationRepo {
	return &NotificationRepo{items: make(map[string]domain.Notification)}
}

func (r *NotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[n.NotificationID]; ok {
		return fmt.Errorf("notification %s: %w", n.NotificationID, domain.ErrConflict)
	}
	r.items[n.NotificationID] = n.Clone()
	return nil
}

func (r *NotificationRepo) Get(_ context.Context, notificationID string) (*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.items[notificationID]
	if !ok {
		return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotificationNotFound)
	}
	out := n.Clone()
	return &out, nil
}

func (r *NotificationRepo) Update(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[n.NotificationID]; !ok {
		return fmt.Errorf("notification %s: %w", n.NotificationID, domain.ErrNotificationNotFound)
	}
	r.items[n.NotificationID] = n.Clone()
	return nil
}

func (r *NotificationRepo) ListByRecipient(_ context.Context, recipient string) ([]domain.Notification, error) {
	return r.filter(func(n domain.Notification) bool { return n.Recipient == recipient }), nil
}

func (r *NotificationRepo) ListByStatus(_ context.Context, status domain.Status) ([]domain.Notification, error) {
	return r.filter(func(n domain.Notification) bool { return n.Status == status }), nil
}

func (r *NotificationRepo) Scan(_ context.Context) ([]domain.Notification, error) {
	return r.filter(func(domain.Notification) bool { return true }), nil
}

// filter returns matching copies ordered by creation time, then id.
func (r *NotificationRepo) filter(keep func(domain.Notification) bool) []domain.Notification {
	r.mu.RLock()
	var out []domain.Notification
	for _, n := range r.items {
		if keep(n) {
			out = append(out, n.Clone())
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].NotificationID < out[j].NotificationID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// TemplateRepo keeps templates keyed by name.
type TemplateRepo struct {
	mu    sync.RWMutex
	items map[string]domain.Template
}

func NewTemplateRepo() *TemplateRepo {
	return &TemplateRepo{items: make(map[string]domain.Template)}
}

func (r *TemplateRepo) Put(_ context.Context, t *domain.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[t.Name] = *t
	return nil
}

func (r *TemplateRepo) Get(_ context.Context, name string) (*domain.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[name]
	if !ok {
		return nil, fmt.Errorf("template %q: %w", name, domain.ErrTemplateNotFound)
	}
	return &t, nil
}

func (r *TemplateRepo) Scan(_ context.Context) ([]domain.Template, error) {
	r.mu.RLock()
	out := make([]domain.Template, 0, len(r.items))
	for _, t := range r.items {
		out = append(out, t)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeliveryRepo is an append-only slice plus an index by notification id.
type DeliveryRepo struct {
	mu      sync.RWMutex
	entries []domain.DeliveryEntry
	byID    map[string][]int
}

func NewDeliveryRepo() *DeliveryRepo {
	return &DeliveryRepo{byID: make(map[string][]int)}
}

func (r *DeliveryRepo) Append(_ context.Context, e domain.DeliveryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[e.NotificationID] = append(r.byID[e.NotificationID], len(r.entries))
	r.entries = append(r.entries, e)
	return nil
}

func (r *DeliveryRepo) ListByNotification(_ context.Context, notificationID string) ([]domain.DeliveryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.byID[notificationID]
	out := make([]domain.DeliveryEntry, len(idx))
	for i, pos := range idx {
		out[i] = r.entries[pos]
	}
	return out, nil
}

func (r *DeliveryRepo) Scan(_ context.Context) ([]domain.DeliveryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.DeliveryEntry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}
