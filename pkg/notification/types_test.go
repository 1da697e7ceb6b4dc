package notification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pushkit/pkg/notification"
)

func TestPriorityOrdering(t *testing.T) {
	t.Parallel()

	assert.True(t, notification.PriorityLow < notification.PriorityMedium)
	assert.True(t, notification.PriorityMedium < notification.PriorityHigh)
	assert.True(t, notification.PriorityHigh < notification.PriorityCritical)
}

func TestParsePriority(t *testing.T) {
	t.Parallel()

	t.Run("known values", func(t *testing.T) {
		t.Parallel()

		for s, want := range map[string]notification.Priority{
			"low":      notification.PriorityLow,
			"medium":   notification.PriorityMedium,
			"high":     notification.PriorityHigh,
			"critical": notification.PriorityCritical,
		} {
			got, err := notification.ParsePriority(s)
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.Equal(t, s, got.String())
		}
	})

	t.Run("unknown value", func(t *testing.T) {
		t.Parallel()

		_, err := notification.ParsePriority("urgent")
		require.ErrorIs(t, err, notification.ErrUnknownPriority)
	})
}

func TestCategoryValid(t *testing.T) {
	t.Parallel()

	assert.True(t, notification.CategorySecurity.Valid())
	assert.True(t, notification.CategoryTrade.Valid())
	assert.False(t, notification.Category("spam").Valid())
}

func TestNotificationMarkAsRead(t *testing.T) {
	t.Parallel()

	n := notification.Notification{ID: "n1", UserID: "u1"}
	require.False(t, n.IsRead())

	n.MarkAsRead()
	require.True(t, n.IsRead())
	first := *n.ReadAt

	// Second call must not move the timestamp.
	n.MarkAsRead()
	assert.Equal(t, first, *n.ReadAt)
}
