// Package dispatch runs delivery attempts: it renders templates, invokes the
// channel sender, records the attempt and moves the notification through
// its status lifecycle.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tmpl "github.com/go-notification-hub/internal/application/template"
	"github.com/go-notification-hub/internal/channel"
	"github.com/go-notification-hub/internal/domain"
	"github.com/go-notification-hub/internal/logging"
	"github.com/go-notification-hub/internal/pkg/id"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

type notificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	Update(ctx context.Context, n *domain.Notification) error
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Notification, error)
}

type templateStore interface {
	Get(ctx context.Context, name string) (*domain.Template, error)
}

type deliveryLog interface {
	Record(ctx context.Context, e domain.DeliveryEntry) (domain.DeliveryEntry, error)
}

type senderResolver interface {
	Resolve(c domain.Channel) (channel.Sender, error)
}

// Recorder receives per-attempt and per-pass measurements.
type Recorder interface {
	ObserveAttempt(c domain.Channel, o domain.Outcome, latency time.Duration)
	ObserveRetryPass(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAttempt(domain.Channel, domain.Outcome, time.Duration) {}
func (nopRecorder) ObserveRetryPass(int)                                          {}

type EngineDeps struct {
	Notifications notificationStore
	Templates     templateStore
	Log           deliveryLog
	Senders       senderResolver
	Locks         *KeyLock
	Metrics       Recorder
	// Timeout bounds one attempt; zero disables it.
	Timeout time.Duration
	Workers int
	// Strict rejects renders that leave placeholders unresolved.
	Strict bool
	Now    func() time.Time
}

// Engine dispatches notifications. It is safe for concurrent use; work on
// one notification id is serialised through Locks.
type Engine struct {
	notifications notificationStore
	templates     templateStore
	log           deliveryLog
	senders       senderResolver
	locks         *KeyLock
	metrics       Recorder
	timeout       time.Duration
	workers       int
	strict        bool
	now           func() time.Time
}

func NewEngine(deps EngineDeps) *Engine {
	e := &Engine{
		notifications: deps.Notifications,
		templates:     deps.Templates,
		log:           deps.Log,
		senders:       deps.Senders,
		locks:         deps.Locks,
		metrics:       deps.Metrics,
		timeout:       deps.Timeout,
		workers:       deps.Workers,
		strict:        deps.Strict,
		now:           deps.Now,
	}
	if e.locks == nil {
		e.locks = NewKeyLock()
	}
	if e.metrics == nil {
		e.metrics = nopRecorder{}
	}
	if e.workers <= 0 {
		e.workers = defaultWorkers
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	return e
}

// Locks returns the per-id lock shared with other writers of notification status.
func (e *Engine) Locks() *KeyLock { return e.locks }

// Send dispatches n once. A notification that does not exist yet is created
// PENDING first. Delivery failure is reported in the result, not as an error;
// errors are reserved for template, state and store problems.
func (e *Engine) Send(ctx context.Context, n *domain.Notification) (domain.DispatchResult, error) {
	if n == nil {
		return domain.DispatchResult{}, fmt.Errorf("nil notification: %w", domain.ErrBadRequest)
	}
	work := n.Clone()
	if work.NotificationID == "" {
		work.NotificationID = id.New()
	}

	unlock := e.locks.Lock(work.NotificationID)
	defer unlock()

	current, err := e.loadOrCreate(ctx, &work)
	if err != nil {
		return failedCall(work.NotificationID, work.Status, err)
	}
	if current.Status == domain.StatusSent || current.Status == domain.StatusRead {
		err := fmt.Errorf("notification %s is %s: %w", current.NotificationID, current.Status, domain.ErrInvalidStateTransition)
		return failedCall(current.NotificationID, current.Status, err)
	}
	return e.dispatch(ctx, current)
}

// BatchSend sends every item independently on a bounded pool. Results keep
// input order; per-item errors are carried in DispatchResult.Err.
func (e *Engine) BatchSend(ctx context.Context, ns []*domain.Notification) []domain.DispatchResult {
	results := make([]domain.DispatchResult, len(ns))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, n := range ns {
		i, n := i, n
		g.Go(func() error {
			res, err := e.Send(ctx, n)
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
	return results
}

func (e *Engine) loadOrCreate(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	stored, err := e.notifications.Get(ctx, n.NotificationID)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, domain.ErrNotificationNotFound) {
		return nil, err
	}

	if strings.TrimSpace(n.Recipient) == "" {
		return nil, fmt.Errorf("notification %s has no recipient: %w", n.NotificationID, domain.ErrBadRequest)
	}
	now := e.now()
	if n.Type == "" {
		n.Type = domain.DefaultType
	}
	n.Status = domain.StatusPending
	n.Read = false
	n.ReadAt = nil
	n.SentAt = nil
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	if err := e.notifications.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// dispatch performs one attempt. Callers hold the lock for n's id.
func (e *Engine) dispatch(ctx context.Context, n *domain.Notification) (domain.DispatchResult, error) {
	logger := logging.Get().With().Str("notification_id", n.NotificationID).Str("channel", string(n.Channel)).Logger()

	if n.Status == domain.StatusPending && n.Template != nil {
		if err := e.render(ctx, n); err != nil {
			logger.Warn().Err(err).Str("template", n.Template.Name).Msg("render failed, notification left pending")
			return failedCall(n.NotificationID, n.Status, err)
		}
	}

	start := e.now()
	var res domain.AttemptResult
	sender, err := e.senders.Resolve(n.Channel)
	if err != nil {
		res = domain.Failed(err.Error())
	} else {
		res = e.attempt(ctx, sender, *n)
	}
	latency := e.now().Sub(start)

	entry := domain.DeliveryEntry{
		NotificationID: n.NotificationID,
		Channel:        n.Channel,
		AttemptedAt:    start,
		Latency:        latency,
		Outcome:        domain.OutcomeSuccess,
	}
	if !res.Success {
		entry.Outcome = domain.OutcomeFailure
		entry.Error = res.Error
	}

	recorded, err := e.log.Record(ctx, entry)
	if err != nil {
		if !errors.Is(err, domain.ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		logger.Error().Err(err).Msg("delivery log append failed, status unchanged")
		return failedCall(n.NotificationID, n.Status, fmt.Errorf("record attempt for %s: %w", n.NotificationID, err))
	}
	e.metrics.ObserveAttempt(n.Channel, recorded.Outcome, latency)

	now := e.now()
	if recorded.Outcome == domain.OutcomeSuccess {
		n.Status = domain.StatusSent
		n.SentAt = &now
	} else {
		n.Status = domain.StatusFailed
	}
	n.UpdatedAt = now

	result := domain.DispatchResult{
		NotificationID: n.NotificationID,
		Status:         n.Status,
		Outcome:        recorded.Outcome,
		Error:          recorded.Error,
		Entry:          &recorded,
	}
	if err := e.notifications.Update(ctx, n); err != nil {
		logger.Error().Err(err).Msg("status write-back failed")
		result.Err = err
		return result, fmt.Errorf("update status of %s: %w", n.NotificationID, err)
	}

	ev := logger.Debug()
	if recorded.Outcome == domain.OutcomeFailure {
		ev = logger.Warn().Str("error", recorded.Error)
	}
	ev.Str("status", string(n.Status)).Dur("latency", latency).Msg("delivery attempt")
	return result, nil
}

func (e *Engine) render(ctx context.Context, n *domain.Notification) error {
	t, err := e.templates.Get(ctx, n.Template.Name)
	if err != nil {
		return err
	}
	out := tmpl.Render(*t, n.Template.Variables)
	if e.strict && len(out.Unresolved) > 0 {
		return fmt.Errorf("template %q: %s: %w", t.Name, strings.Join(out.Unresolved, ", "), domain.ErrUnresolvedPlaceholder)
	}
	n.Subject = out.Subject
	n.Body = out.Body
	return nil
}

// attempt runs the sender bounded by the engine timeout. A sender that
// ignores ctx is abandoned once the deadline passes.
func (e *Engine) attempt(ctx context.Context, s channel.Sender, n domain.Notification) domain.AttemptResult {
	actx, cancel := ctx, context.CancelFunc(func() {})
	if e.timeout > 0 {
		actx, cancel = context.WithTimeout(ctx, e.timeout)
	}
	defer cancel()

	done := make(chan domain.AttemptResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- domain.Failed(fmt.Sprintf("sender panic: %v", r))
			}
		}()
		done <- s.Attempt(actx, n)
	}()

	select {
	case res := <-done:
		if !res.Success && res.Error == "" {
			res = domain.Failed("")
		}
		return res
	case <-actx.Done():
		if ctx.Err() != nil {
			return domain.Failed(fmt.Sprintf("delivery cancelled: %v", ctx.Err()))
		}
		return domain.Failed(fmt.Sprintf("delivery timed out after %s", e.timeout))
	}
}

func failedCall(notificationID string, status domain.Status, err error) (domain.DispatchResult, error) {
	return domain.DispatchResult{
		NotificationID: notificationID,
		Status:         status,
		Error:          err.Error(),
		Err:            err,
	}, err
}
