package preferences_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pushkit/pkg/notification"
	"github.com/dmitrymomot/pushkit/pkg/preferences"
)

// newGate builds a gate over fresh in-memory stores with a controllable clock.
func newGate(t *testing.T, now *time.Time) (*preferences.Gate, preferences.Storage) {
	t.Helper()

	store := preferences.NewMemoryStorage()
	gate, err := preferences.NewGate(store, preferences.NewMemoryCounterStore(),
		preferences.WithGateClock(func() time.Time { return *now }))
	require.NoError(t, err)
	return gate, store
}

func TestNewGate(t *testing.T) {
	t.Parallel()

	_, err := preferences.NewGate(nil, preferences.NewMemoryCounterStore())
	require.ErrorIs(t, err, preferences.ErrStorageNil)

	_, err = preferences.NewGate(preferences.NewMemoryStorage(), nil)
	require.ErrorIs(t, err, preferences.ErrCounterStoreNil)
}

func TestAdmit_Bypasses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC) // inside default quiet window
	gate, _ := newGate(t, &now)

	// Enable quiet hours and disable every category; bypass rules must
	// still win.
	_, err := gate.UpdatePreferences(ctx, "u1", preferences.Update{
		Categories: map[notification.Category]bool{
			notification.CategorySecurity: false,
			notification.CategoryTrade:    false,
		},
		QuietHours: &preferences.QuietHours{Enabled: true, Start: "22:00", End: "07:00", Timezone: "UTC"},
	})
	require.NoError(t, err)

	t.Run("security category always allowed", func(t *testing.T) {
		d, err := gate.Admit(ctx, "u1", notification.CategorySecurity, notification.PriorityLow)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})

	t.Run("critical priority always allowed", func(t *testing.T) {
		d, err := gate.Admit(ctx, "u1", notification.CategoryTrade, notification.PriorityCritical)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})
}

func TestAdmit_CategoryToggle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	gate, _ := newGate(t, &now)

	_, err := gate.UpdatePreferences(ctx, "u1", preferences.Update{
		Categories: map[notification.Category]bool{notification.CategoryMarketing: false},
	})
	require.NoError(t, err)

	d, err := gate.Admit(ctx, "u1", notification.CategoryMarketing, notification.PriorityHigh)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, preferences.DenyCategoryDisabled, d.Reason)

	d, err = gate.Admit(ctx, "u1", notification.CategoryTrade, notification.PriorityHigh)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestAdmit_MinPriority(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	gate, _ := newGate(t, &now)

	high := notification.PriorityHigh
	_, err := gate.UpdatePreferences(ctx, "u1", preferences.Update{MinPriority: &high})
	require.NoError(t, err)

	d, err := gate.Admit(ctx, "u1", notification.CategoryTrade, notification.PriorityMedium)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, preferences.DenyBelowMinPriority, d.Reason)

	d, err = gate.Admit(ctx, "u1", notification.CategoryTrade, notification.PriorityHigh)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestAdmit_QuietHours(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	setup := func(t *testing.T, now *time.Time) *preferences.Gate {
		gate, _ := newGate(t, now)
		_, err := gate.UpdatePreferences(ctx, "u1", preferences.Update{
			QuietHours: &preferences.QuietHours{Enabled: true, Start: "22:00", End: "07:00", Timezone: "UTC"},
		})
		require.NoError(t, err)
		return gate
	}

	t.Run("denied late evening", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
		gate := setup(t, &now)

		d, err := gate.Admit(ctx, "u1", notification.CategoryTrade, notification.PriorityHigh)
		require.NoError(t, err)
		assert.Equal(t, preferences.DenyQuietHours, d.Reason)
	})

	t.Run("denied after midnight", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC)
		gate := setup(t, &now)

		d, err := gate.Admit(ctx, "u1", notification.CategoryTrade, notification.PriorityHigh)
		require.NoError(t, err)
		assert.Equal(t, preferences.DenyQuietHours, d.Reason)
	})

	t.Run("allowed at noon", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
		gate := setup(t, &now)

		d, err := gate.Admit(ctx, "u1", notification.CategoryTrade, notification.PriorityHigh)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})

	t.Run("window end is exclusive", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 3, 11, 7, 0, 0, 0, time.UTC)
		gate := setup(t, &now)

		d, err := gate.Admit(ctx, "u1", notification.CategoryTrade, notification.PriorityHigh)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})

	t.Run("timezone conversion", func(t *testing.T) {
		t.Parallel()

		// 03:00 UTC is 22:00 the previous evening in New York (EST).
		now := time.Date(2025, 1, 15, 3, 0, 0, 0, time.UTC)
		gate, _ := newGate(t, &now)
		_, err := gate.UpdatePreferences(ctx, "u1", preferences.Update{
			QuietHours: &preferences.QuietHours{Enabled: true, Start: "22:00", End: "07:00", Timezone: "America/New_York"},
		})
		require.NoError(t, err)

		d, err := gate.Admit(ctx, "u1", notification.CategoryTrade, notification.PriorityHigh)
		require.NoError(t, err)
		assert.Equal(t, preferences.DenyQuietHours, d.Reason)
	})
}

func TestAdmit_RateLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	gate, _ := newGate(t, &now)

	_, err := gate.UpdatePreferences(ctx, "u1", preferences.Update{
		FrequencyLimits: &preferences.FrequencyLimits{MaxPerHour: 2, MaxPerDay: 100},
	})
	require.NoError(t, err)

	// First two calls within the hour are admitted.
	for i := range 2 {
		d, err := gate.Admit(ctx, "u1", notification.CategoryTrade, notification.PriorityHigh)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "call %d", i+1)
	}

	// Third is rejected and the provisional increment rolled back.
	d, err := gate.Admit(ctx, "u1", notification.CategoryTrade, notification.PriorityHigh)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, preferences.DenyRateLimited, d.Reason)

	// The rollback means repeated rejected calls stay rejected without
	// inflating the counter past the limit.
	d, err = gate.Admit(ctx, "u1", notification.CategoryTrade, notification.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, preferences.DenyRateLimited, d.Reason)

	// After an hour elapses the window resets.
	now = now.Add(61 * time.Minute)
	d, err = gate.Admit(ctx, "u1", notification.CategoryTrade, notification.PriorityHigh)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestPreferences_LazyDefaults(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	gate, store := newGate(t, &now)

	prefs, err := gate.Preferences(ctx, "fresh-user")
	require.NoError(t, err)
	assert.Equal(t, "fresh-user", prefs.UserID)
	assert.True(t, prefs.Categories[notification.CategoryTrade])
	assert.False(t, prefs.QuietHours.Enabled)

	// Defaults are persisted on first access.
	stored, err := store.Get(ctx, "fresh-user")
	require.NoError(t, err)
	assert.Equal(t, prefs.UserID, stored.UserID)
}

func TestMerge(t *testing.T) {
	t.Parallel()

	base := preferences.Default("u1")
	high := notification.PriorityHigh

	merged := base.Merge(preferences.Update{
		Categories:  map[notification.Category]bool{notification.CategoryMarketing: false},
		MinPriority: &high,
	})

	assert.False(t, merged.Categories[notification.CategoryMarketing])
	assert.True(t, merged.Categories[notification.CategoryTrade], "untouched categories survive")
	assert.Equal(t, notification.PriorityHigh, merged.MinPriority)
	assert.Equal(t, base.FrequencyLimits, merged.FrequencyLimits, "nil fields keep current values")

	// The receiver must not be mutated.
	assert.True(t, base.Categories[notification.CategoryMarketing])
}

func TestMemoryCounterStore_DailyWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := preferences.NewMemoryCounterStore()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	_, daily, err := store.Increment(ctx, "u1", base)
	require.NoError(t, err)
	assert.Equal(t, 1, daily)

	// Two hours later the hourly window has reset but the daily has not.
	hourly, daily, err := store.Increment(ctx, "u1", base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, hourly)
	assert.Equal(t, 2, daily)

	// A day later both reset.
	hourly, daily, err = store.Increment(ctx, "u1", base.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, hourly)
	assert.Equal(t, 1, daily)
}
