package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChannel(t *testing.T) {
	c, err := ParseChannel(" Slack ")
	require.NoError(t, err)
	assert.Equal(t, ChannelSlack, c)

	_, err = ParseChannel("fax")
	assert.True(t, errors.Is(err, ErrUnsupportedChannel))
}

func TestNewNotification_Defaults(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	vars := map[string]any{"user": map[string]any{"name": "Alice"}}
	n := NewNotification("id-1", CreateNotificationRequest{
		Recipient: " alice@example.com ",
		Channel:   "EMAIL",
		Template:  &TemplateRef{Name: "welcome", Variables: vars},
	}, now)

	assert.Equal(t, DefaultType, n.Type)
	assert.Equal(t, "alice@example.com", n.Recipient)
	assert.Equal(t, ChannelEmail, n.Channel)
	assert.Equal(t, StatusPending, n.Status)
	assert.Equal(t, now, n.CreatedAt)
	assert.False(t, n.Read)

	vars["user"].(map[string]any)["name"] = "Mallory"
	assert.Equal(t, "Alice", n.Template.Variables["user"].(map[string]any)["name"])
}

func TestNewNotification_KeepsUnknownChannel(t *testing.T) {
	n := NewNotification("id-2", CreateNotificationRequest{Recipient: "x", Channel: "Pager"}, time.Now())
	assert.Equal(t, Channel("pager"), n.Channel)
	assert.False(t, n.Channel.Valid())
}

func TestClone_IsDeep(t *testing.T) {
	readAt := time.Now()
	n := Notification{ReadAt: &readAt, Metadata: map[string]string{"k": "v"}, Template: &TemplateRef{Name: "t", Variables: map[string]any{"a": 1}}}
	c := n.Clone()

	c.Metadata["k"] = "changed"
	c.Template.Variables["a"] = 2
	*c.ReadAt = readAt.Add(time.Hour)

	assert.Equal(t, "v", n.Metadata["k"])
	assert.Equal(t, 1, n.Template.Variables["a"])
	assert.Equal(t, readAt, *n.ReadAt)
}

func TestUnread(t *testing.T) {
	assert.True(t, Notification{Status: StatusSent}.Unread())
	assert.False(t, Notification{Status: StatusRead, Read: true}.Unread())
	assert.False(t, Notification{Status: StatusFailed}.Unread())
	assert.False(t, Notification{Status: StatusPending}.Unread())
}
