package dispatch

import (
	"context"

	"github.com/go-notification-hub/internal/domain"
)

// Batcher dispatches a batch of notifications, one result per item.
type Batcher interface {
	BatchSend(ctx context.Context, ns []*domain.Notification) []domain.DispatchResult
}

// BatchItem is one batch entry after request parsing: either a built
// notification or the error that kept it from being built.
type BatchItem struct {
	Notification *domain.Notification
	Err          error
}

// SendItems dispatches the built items through b and reports the rest as
// caller errors in their own slots. Results keep input order.
func SendItems(ctx context.Context, b Batcher, items []BatchItem) []domain.DispatchResult {
	results := make([]domain.DispatchResult, len(items))
	ns := make([]*domain.Notification, 0, len(items))
	slots := make([]int, 0, len(items))
	for i, it := range items {
		if it.Err != nil || it.Notification == nil {
			err := it.Err
			if err == nil {
				err = domain.ErrBadRequest
			}
			results[i] = domain.DispatchResult{Error: err.Error(), Err: err}
			continue
		}
		ns = append(ns, it.Notification)
		slots = append(slots, i)
	}
	if len(ns) == 0 {
		return results
	}
	for j, res := range b.BatchSend(ctx, ns) {
		if j < len(slots) {
			results[slots[j]] = res
		}
	}
	return results
}
