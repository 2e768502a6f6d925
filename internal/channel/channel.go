// Package channel adapts each transport to the uniform attempt-delivery
// capability the dispatcher relies on.
package channel

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/go-notification-hub/internal/domain"
)

// Sender performs one delivery attempt. Transport faults are reported in
// the result, never as a Go error or panic.
type Sender interface {
	Attempt(ctx context.Context, n domain.Notification) domain.AttemptResult
}

// SenderFunc adapts a plain function to Sender.
type SenderFunc func(ctx context.Context, n domain.Notification) domain.AttemptResult

func (f SenderFunc) Attempt(ctx context.Context, n domain.Notification) domain.AttemptResult {
	return f(ctx, n)
}

// Registry maps channels to their configured sender.
type Registry struct {
	mu      sync.RWMutex
	senders map[domain.Channel]Sender
}

func NewRegistry() *Registry {
	return &Registry{senders: make(map[domain.Channel]Sender)}
}

// Register installs s for c, replacing any previous sender.
func (r *Registry) Register(c domain.Channel, s Sender) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.senders[c] = s
	return r
}

// Resolve returns the sender for c or an error wrapping domain.ErrUnsupportedChannel.
func (r *Registry) Resolve(c domain.Channel) (Sender, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.senders[c]
	if !ok {
		return nil, fmt.Errorf("channel %q: %w", c, domain.ErrUnsupportedChannel)
	}
	return s, nil
}

// Channels lists the registered channels in name order.
func (r *Registry) Channels() []domain.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Channel, 0, len(r.senders))
	for c := range r.senders {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// result turns a transport error into an attempt result.
func result(err error) domain.AttemptResult {
	if err != nil {
		return domain.Failed(err.Error())
	}
	return domain.Succeeded()
}
