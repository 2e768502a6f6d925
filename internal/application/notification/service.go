package notification

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-notification-hub/internal/domain"
)

type Service interface {
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListUnread(ctx context.Context, recipient string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID string) (*domain.Notification, error)
	Deliveries(ctx context.Context, notificationID string) ([]domain.DeliveryEntry, error)
}

type notificationStore interface {
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	Update(ctx context.Context, n *domain.Notification) error
	ListByRecipient(ctx context.Context, recipient string) ([]domain.Notification, error)
}

type deliveryLog interface {
	EntriesFor(ctx context.Context, notificationID string) ([]domain.DeliveryEntry, error)
}

// locker serialises status writes per notification id with the dispatcher.
type locker interface {
	Lock(key string) func()
}

type service struct {
	repo  notificationStore
	log   deliveryLog
	locks locker
	now   func() time.Time
}

type ServiceDeps struct {
	Repo  notificationStore
	Log   deliveryLog
	Locks locker
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:  deps.Repo,
		log:   deps.Log,
		locks: deps.Locks,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	return s.repo.Get(ctx, notificationID)
}

// ListUnread returns the recipient's SENT, unread notifications, oldest first.
func (s *service) ListUnread(ctx context.Context, recipient string) ([]domain.Notification, error) {
	all, err := s.repo.ListByRecipient(ctx, recipient)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Notification, 0, len(all))
	for _, n := range all {
		if n.Unread() {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// MarkRead moves a SENT notification to READ. Any other state is rejected.
func (s *service) MarkRead(ctx context.Context, notificationID string) (*domain.Notification, error) {
	unlock := s.locks.Lock(notificationID)
	defer unlock()

	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.Status != domain.StatusSent {
		return nil, fmt.Errorf("notification %s is %s: %w", notificationID, n.Status, domain.ErrInvalidStateTransition)
	}
	now := s.now()
	n.Status = domain.StatusRead
	n.Read = true
	n.ReadAt = &now
	n.UpdatedAt = now
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) Deliveries(ctx context.Context, notificationID string) ([]domain.DeliveryEntry, error) {
	if _, err := s.repo.Get(ctx, notificationID); err != nil {
		return nil, err
	}
	return s.log.EntriesFor(ctx, notificationID)
}
