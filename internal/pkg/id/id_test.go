package id

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IsValidULID(t *testing.T) {
	_, err := ulid.Parse(New())
	require.NoError(t, err)
}

func TestNewAt_SortsByTime(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	earlier, err := NewAt(base)
	require.NoError(t, err)
	later, err := NewAt(base.Add(time.Second))
	require.NoError(t, err)
	assert.Less(t, earlier, later)

	parsed, err := ulid.Parse(earlier)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(base), parsed.Time())
}

func TestNewAt_RejectsOutOfRangeTimes(t *testing.T) {
	_, err := NewAt(time.Time{})
	assert.Error(t, err)

	_, err = NewAt(time.Unix(0, 0).Add(-time.Millisecond))
	assert.Error(t, err)

	_, err = NewAt(time.Date(20000, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}
