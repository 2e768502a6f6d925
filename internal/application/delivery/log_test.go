package delivery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-notification-hub/internal/domain"
	"github.com/go-notification-hub/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDeliveryStore struct{ mock.Mock }

func (m *mockDeliveryStore) Append(ctx context.Context, e domain.DeliveryEntry) error {
	return m.Called(ctx, e).Error(0)
}
func (m *mockDeliveryStore) ListByNotification(ctx context.Context, notificationID string) ([]domain.DeliveryEntry, error) {
	args := m.Called(ctx, notificationID)
	return args.Get(0).([]domain.DeliveryEntry), args.Error(1)
}
func (m *mockDeliveryStore) Scan(ctx context.Context) ([]domain.DeliveryEntry, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.DeliveryEntry), args.Error(1)
}

func TestRecord_AssignsIDAndAppends(t *testing.T) {
	ctx := context.Background()
	l := NewLog(memory.NewDeliveryRepo())
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	e, err := l.Record(ctx, domain.DeliveryEntry{NotificationID: "n1", Channel: domain.ChannelEmail, AttemptedAt: at, Outcome: domain.OutcomeSuccess})
	require.NoError(t, err)
	assert.Len(t, e.EntryID, 26)

	entries, err := l.EntriesFor(ctx, "n1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, e.EntryID, entries[0].EntryID)
}

func TestRecord_FailureGetsDefaultDetail(t *testing.T) {
	l := NewLog(memory.NewDeliveryRepo())
	e, err := l.Record(context.Background(), domain.DeliveryEntry{NotificationID: "n1", Outcome: domain.OutcomeFailure})
	require.NoError(t, err)
	assert.Equal(t, domain.ErrDeliveryFailure.Error(), e.Error)
}

func TestRecord_StampsMissingAttemptTime(t *testing.T) {
	fixed := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	l := &log{repo: memory.NewDeliveryRepo(), now: func() time.Time { return fixed }}

	e, err := l.Record(context.Background(), domain.DeliveryEntry{NotificationID: "n1", Outcome: domain.OutcomeSuccess})
	require.NoError(t, err)
	assert.Equal(t, fixed, e.AttemptedAt)
	assert.Len(t, e.EntryID, 26)
}

func TestRecord_PreEpochAttemptTimeRejected(t *testing.T) {
	l := NewLog(memory.NewDeliveryRepo())
	_, err := l.Record(context.Background(), domain.DeliveryEntry{
		NotificationID: "n1",
		Outcome:        domain.OutcomeSuccess,
		AttemptedAt:    time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestRecord_Rejects(t *testing.T) {
	l := NewLog(memory.NewDeliveryRepo())
	ctx := context.Background()

	_, err := l.Record(ctx, domain.DeliveryEntry{Outcome: domain.OutcomeSuccess})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	_, err = l.Record(ctx, domain.DeliveryEntry{NotificationID: "n1", Outcome: domain.OutcomeSuccess, Error: "boom"})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	_, err = l.Record(ctx, domain.DeliveryEntry{NotificationID: "n1", Outcome: "MAYBE"})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestRecord_StoreErrorPropagates(t *testing.T) {
	repo := new(mockDeliveryStore)
	storeErr := errors.Join(domain.ErrStoreUnavailable, errors.New("disk full"))
	repo.On("Append", mock.Anything, mock.Anything).Return(storeErr)

	_, err := NewLog(repo).Record(context.Background(), domain.DeliveryEntry{NotificationID: "n1", Outcome: domain.OutcomeSuccess})
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	repo.AssertExpectations(t)
}

func TestEntriesFor_SortedByAttemptTime(t *testing.T) {
	repo := new(mockDeliveryStore)
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	repo.On("ListByNotification", mock.Anything, "n1").Return([]domain.DeliveryEntry{
		{EntryID: "c", AttemptedAt: base.Add(2 * time.Second)},
		{EntryID: "a", AttemptedAt: base},
		{EntryID: "b", AttemptedAt: base.Add(time.Second)},
	}, nil)

	entries, err := NewLog(repo).EntriesFor(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, "a", entries[0].EntryID)
	assert.Equal(t, "b", entries[1].EntryID)
	assert.Equal(t, "c", entries[2].EntryID)
}
