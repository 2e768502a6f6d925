// Package stats aggregates the delivery log joined with the notification set.
package stats

import (
	"context"

	"github.com/go-notification-hub/internal/domain"
)

type Service interface {
	Stats(ctx context.Context, filter *domain.Channel) (domain.Stats, error)
}

type notificationScanner interface {
	Scan(ctx context.Context) ([]domain.Notification, error)
}

type deliveryScanner interface {
	Scan(ctx context.Context) ([]domain.DeliveryEntry, error)
}

type service struct {
	notifications notificationScanner
	deliveries    deliveryScanner
}

func NewService(notifications notificationScanner, deliveries deliveryScanner) Service {
	return &service{notifications: notifications, deliveries: deliveries}
}

// Stats reads both sets and folds them with Compute.
func (s *service) Stats(ctx context.Context, filter *domain.Channel) (domain.Stats, error) {
	ns, err := s.notifications.Scan(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	entries, err := s.deliveries.Scan(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	return Compute(ns, entries, filter), nil
}

// Compute joins entries to notifications by id. An entry is attributed to
// its notification's channel, or to its own channel when the notification
// is gone. With a filter, both sets are restricted to that channel.
func Compute(ns []domain.Notification, entries []domain.DeliveryEntry, filter *domain.Channel) domain.Stats {
	out := domain.Stats{
		Filter:          filter,
		CountsByChannel: make(map[domain.Channel]int),
		CountsByStatus:  make(map[domain.Status]int),
		CountsByOutcome: make(map[domain.Outcome]int),
	}

	owner := make(map[string]domain.Channel, len(ns))
	for _, n := range ns {
		owner[n.NotificationID] = n.Channel
		if filter != nil && n.Channel != *filter {
			continue
		}
		out.TotalNotifications++
		out.CountsByStatus[n.Status]++
	}

	for _, e := range entries {
		c, ok := owner[e.NotificationID]
		if !ok {
			c = e.Channel
		}
		if filter != nil && c != *filter {
			continue
		}
		out.TotalAttempts++
		out.CountsByChannel[c]++
		out.CountsByOutcome[e.Outcome]++
		if e.Outcome == domain.OutcomeSuccess {
			out.Successful++
		}
	}

	if out.TotalAttempts > 0 {
		out.SuccessRate = float64(out.Successful) / float64(out.TotalAttempts)
	}
	return out
}
