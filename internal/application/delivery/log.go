// Package delivery is the append-only record of delivery attempts.
package delivery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-notification-hub/internal/domain"
	"github.com/go-notification-hub/internal/pkg/id"
)

type Log interface {
	Record(ctx context.Context, e domain.DeliveryEntry) (domain.DeliveryEntry, error)
	EntriesFor(ctx context.Context, notificationID string) ([]domain.DeliveryEntry, error)
	All(ctx context.Context) ([]domain.DeliveryEntry, error)
}

type deliveryStore interface {
	Append(ctx context.Context, e domain.DeliveryEntry) error
	ListByNotification(ctx context.Context, notificationID string) ([]domain.DeliveryEntry, error)
	Scan(ctx context.Context) ([]domain.DeliveryEntry, error)
}

type log struct {
	repo deliveryStore
	now  func() time.Time
}

func NewLog(repo deliveryStore) Log {
	return &log{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Record validates and appends one entry, stamping the attempt time when it
// is missing and assigning a time-ordered id when the caller did not supply one. The stored value is returned.
func (l *log) Record(ctx context.Context, e domain.DeliveryEntry) (domain.DeliveryEntry, error) {
	if strings.TrimSpace(e.NotificationID) == "" {
		return e, fmt.Errorf("delivery entry without notification id: %w", domain.ErrBadRequest)
	}
	switch e.Outcome {
	case domain.OutcomeSuccess:
		if e.Error != "" {
			return e, fmt.Errorf("successful entry carries error detail: %w", domain.ErrBadRequest)
		}
	case domain.OutcomeFailure:
		if e.Error == "" {
			e.Error = domain.ErrDeliveryFailure.Error()
		}
	default:
		return e, fmt.Errorf("outcome %q: %w", e.Outcome, domain.ErrBadRequest)
	}
	if e.AttemptedAt.IsZero() {
		e.AttemptedAt = l.now()
	}
	if e.EntryID == "" {
		entryID, err := id.NewAt(e.AttemptedAt)
		if err != nil {
			return e, fmt.Errorf("delivery entry id: %v: %w", err, domain.ErrBadRequest)
		}
		e.EntryID = entryID
	}
	if err := l.repo.Append(ctx, e); err != nil {
		return e, err
	}
	return e, nil
}

// EntriesFor returns one notification's attempts, oldest first.
func (l *log) EntriesFor(ctx context.Context, notificationID string) ([]domain.DeliveryEntry, error) {
	entries, err := l.repo.ListByNotification(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AttemptedAt.Before(entries[j].AttemptedAt)
	})
	return entries, nil
}

func (l *log) All(ctx context.Context) ([]domain.DeliveryEntry, error) {
	return l.repo.Scan(ctx)
}
