package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-notification-hub/internal/domain"
	"github.com/go-notification-hub/internal/logging"
	"golang.org/x/sync/errgroup"
)

// RetryCoordinator re-dispatches notifications that are in FAILED state.
type RetryCoordinator struct {
	engine *Engine
}

func NewRetryCoordinator(engine *Engine) *RetryCoordinator {
	return &RetryCoordinator{engine: engine}
}

// RetryFailed snapshots the FAILED set and re-dispatches each member once.
// A notification whose status changed after the snapshot is reported as
// skipped. Results follow snapshot order.
func (r *RetryCoordinator) RetryFailed(ctx context.Context) ([]domain.DispatchResult, error) {
	e := r.engine
	failed, err := e.notifications.ListByStatus(ctx, domain.StatusFailed)
	if err != nil {
		if !errors.Is(err, domain.ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		return nil, fmt.Errorf("list failed notifications: %w", err)
	}

	results := make([]domain.DispatchResult, len(failed))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, n := range failed {
		i, n := i, n
		g.Go(func() error {
			res, err := r.retryOne(ctx, n.NotificationID)
			if err != nil {
				res.Err = err
				if res.Error == "" {
					res.Error = err.Error()
				}
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	retried := 0
	for _, res := range results {
		if !res.Skipped && res.Entry != nil {
			retried++
		}
	}
	e.metrics.ObserveRetryPass(retried)
	logging.Get().Info().Int("candidates", len(failed)).Int("retried", retried).Msg("retry pass finished")
	return results, nil
}

func (r *RetryCoordinator) retryOne(ctx context.Context, notificationID string) (domain.DispatchResult, error) {
	e := r.engine
	unlock := e.locks.Lock(notificationID)
	defer unlock()

	n, err := e.notifications.Get(ctx, notificationID)
	if err != nil {
		return failedCall(notificationID, domain.StatusFailed, err)
	}
	if n.Status != domain.StatusFailed {
		return domain.DispatchResult{NotificationID: notificationID, Status: n.Status, Skipped: true}, nil
	}
	n.RetryCount++
	return e.dispatch(ctx, n)
}
