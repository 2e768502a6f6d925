package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/go-notification-hub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type batchFunc func(ctx context.Context, ns []*domain.Notification) []domain.DispatchResult

func (f batchFunc) BatchSend(ctx context.Context, ns []*domain.Notification) []domain.DispatchResult {
	return f(ctx, ns)
}

func TestSendItems_InvalidItemsKeepTheirSlot(t *testing.T) {
	invalid := errors.New("field 'Recipient' failed 'required'")
	var sent []string
	b := batchFunc(func(_ context.Context, ns []*domain.Notification) []domain.DispatchResult {
		out := make([]domain.DispatchResult, len(ns))
		for i, n := range ns {
			sent = append(sent, n.NotificationID)
			out[i] = domain.DispatchResult{NotificationID: n.NotificationID, Status: domain.StatusSent}
		}
		return out
	})

	results := SendItems(context.Background(), b, []BatchItem{
		{Notification: &domain.Notification{NotificationID: "a"}},
		{Err: invalid},
		{Notification: &domain.Notification{NotificationID: "c"}},
	})

	require.Len(t, results, 3)
	assert.Equal(t, []string{"a", "c"}, sent)
	assert.Equal(t, "a", results[0].NotificationID)
	assert.Equal(t, domain.StatusSent, results[0].Status)
	assert.ErrorIs(t, results[1].Err, invalid)
	assert.Equal(t, invalid.Error(), results[1].Error)
	assert.Equal(t, "c", results[2].NotificationID)
}

func TestSendItems_AllInvalidSkipsDispatch(t *testing.T) {
	b := batchFunc(func(context.Context, []*domain.Notification) []domain.DispatchResult {
		t.Fatal("nothing to dispatch")
		return nil
	})
	results := SendItems(context.Background(), b, []BatchItem{{Err: domain.ErrBadRequest}})
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, domain.ErrBadRequest)
}

func TestSendItems_WithEngine(t *testing.T) {
	f := newFixture(t)
	results := SendItems(context.Background(), f.engine, []BatchItem{
		{Notification: note("b1", domain.ChannelEmail)},
		{Err: domain.ErrBadRequest},
		{Notification: note("b3", domain.ChannelEmail)},
	})
	require.Len(t, results, 3)
	assert.Equal(t, domain.StatusSent, results[0].Status)
	assert.Error(t, results[1].Err)
	assert.Equal(t, domain.StatusSent, results[2].Status)
}
