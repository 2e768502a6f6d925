package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-notification-hub/internal/application/delivery"
	"github.com/go-notification-hub/internal/application/dispatch"
	"github.com/go-notification-hub/internal/domain"
	"github.com/go-notification-hub/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotificationStore struct{ mock.Mock }

func (m *mockNotificationStore) Get(ctx context.Context, id string) (*domain.Notification, error) {
	args := m.Called(ctx, id)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockNotificationStore) Update(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}
func (m *mockNotificationStore) ListByRecipient(ctx context.Context, recipient string) ([]domain.Notification, error) {
	args := m.Called(ctx, recipient)
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func newTestService(repo notificationStore, deliveries *memory.DeliveryRepo) Service {
	return NewService(ServiceDeps{Repo: repo, Log: delivery.NewLog(deliveries), Locks: dispatch.NewKeyLock()})
}

func seed(t *testing.T, repo *memory.NotificationRepo, id, recipient string, status domain.Status, created time.Time) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &domain.Notification{
		NotificationID: id, Recipient: recipient, Channel: domain.ChannelEmail, Status: status,
		Read: status == domain.StatusRead, CreatedAt: created,
	}))
}

func TestMarkRead_Sent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewNotificationRepo()
	seed(t, repo, "n1", "alice", domain.StatusSent, time.Now())
	svc := newTestService(repo, memory.NewDeliveryRepo())

	n, err := svc.MarkRead(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRead, n.Status)
	assert.True(t, n.Read)
	assert.NotNil(t, n.ReadAt)

	unread, err := svc.ListUnread(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, unread)

	_, err = svc.MarkRead(ctx, "n1")
	assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition))
}

func TestMarkRead_RejectsPendingAndFailed(t *testing.T) {
	repo := memory.NewNotificationRepo()
	seed(t, repo, "p", "alice", domain.StatusPending, time.Now())
	seed(t, repo, "f", "alice", domain.StatusFailed, time.Now())
	svc := newTestService(repo, memory.NewDeliveryRepo())

	for _, id := range []string{"p", "f"} {
		_, err := svc.MarkRead(context.Background(), id)
		assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition), id)
	}
}

func TestMarkRead_NotFound(t *testing.T) {
	svc := newTestService(memory.NewNotificationRepo(), memory.NewDeliveryRepo())
	_, err := svc.MarkRead(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotificationNotFound))
}

func TestMarkRead_UpdateError(t *testing.T) {
	repo := new(mockNotificationStore)
	repo.On("Get", mock.Anything, "n1").Return(&domain.Notification{NotificationID: "n1", Status: domain.StatusSent}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(domain.ErrStoreUnavailable)

	_, err := newTestService(repo, memory.NewDeliveryRepo()).MarkRead(context.Background(), "n1")
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	repo.AssertExpectations(t)
}

func TestListUnread_FiltersAndOrders(t *testing.T) {
	repo := memory.NewNotificationRepo()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seed(t, repo, "late", "alice", domain.StatusSent, base.Add(time.Hour))
	seed(t, repo, "early", "alice", domain.StatusSent, base)
	seed(t, repo, "read", "alice", domain.StatusRead, base)
	seed(t, repo, "failed", "alice", domain.StatusFailed, base)
	seed(t, repo, "bob", "bob", domain.StatusSent, base)

	unread, err := newTestService(repo, memory.NewDeliveryRepo()).ListUnread(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Equal(t, "early", unread[0].NotificationID)
	assert.Equal(t, "late", unread[1].NotificationID)
}

func TestDeliveries(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewNotificationRepo()
	deliveries := memory.NewDeliveryRepo()
	seed(t, repo, "n1", "alice", domain.StatusSent, time.Now())
	require.NoError(t, deliveries.Append(ctx, domain.DeliveryEntry{EntryID: "e1", NotificationID: "n1", Outcome: domain.OutcomeSuccess}))
	svc := newTestService(repo, deliveries)

	entries, err := svc.Deliveries(ctx, "n1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = svc.Deliveries(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotificationNotFound))
}
