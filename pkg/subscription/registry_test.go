package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pushkit/pkg/subscription"
)

func browserKeys() *subscription.Keys {
	return &subscription.Keys{P256dh: "p256dh-key", Auth: "auth-secret"}
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	_, err := subscription.NewRegistry(nil)
	require.ErrorIs(t, err, subscription.ErrStorageNil)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("creates new subscription", func(t *testing.T) {
		t.Parallel()

		reg, err := subscription.NewRegistry(subscription.NewMemoryStorage())
		require.NoError(t, err)

		sub, err := reg.Register(ctx, "u1", subscription.PlatformBrowser, "https://push.example.com/ep1", browserKeys(), nil)
		require.NoError(t, err)
		assert.NotEmpty(t, sub.ID)
		assert.True(t, sub.IsActive)
		assert.Equal(t, "u1", sub.UserID)
	})

	t.Run("idempotent re-registration updates in place", func(t *testing.T) {
		t.Parallel()

		base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
		now := base
		store := subscription.NewMemoryStorage()
		reg, err := subscription.NewRegistry(store,
			subscription.WithRegistryClock(func() time.Time { return now }))
		require.NoError(t, err)

		first, err := reg.Register(ctx, "u1", subscription.PlatformAndroid, "token-1", nil, nil)
		require.NoError(t, err)

		// Deactivate, then re-register the same token later.
		require.NoError(t, reg.Deactivate(ctx, first.ID))
		now = base.Add(time.Hour)

		second, err := reg.Register(ctx, "u1", subscription.PlatformAndroid, "token-1", nil, nil)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID, "must not create a duplicate")
		assert.True(t, second.IsActive)
		assert.Equal(t, base.Add(time.Hour), second.LastUsedAt)

		subs, err := reg.ActiveByUser(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, subs, 1)
	})

	t.Run("browser registration requires keys", func(t *testing.T) {
		t.Parallel()

		reg, err := subscription.NewRegistry(subscription.NewMemoryStorage())
		require.NoError(t, err)

		_, err = reg.Register(ctx, "u1", subscription.PlatformBrowser, "https://push.example.com/ep", nil, nil)
		require.ErrorIs(t, err, subscription.ErrKeysRequired)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		reg, err := subscription.NewRegistry(subscription.NewMemoryStorage())
		require.NoError(t, err)

		_, err = reg.Register(ctx, "", subscription.PlatformIOS, "token", nil, nil)
		require.ErrorIs(t, err, subscription.ErrUserIDRequired)

		_, err = reg.Register(ctx, "u1", subscription.PlatformIOS, "", nil, nil)
		require.ErrorIs(t, err, subscription.ErrEndpointRequired)

		_, err = reg.Register(ctx, "u1", subscription.Platform("windows"), "token", nil, nil)
		require.ErrorIs(t, err, subscription.ErrInvalidPlatform)
	})
}

func TestUnregister(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("deactivates matching subscription", func(t *testing.T) {
		t.Parallel()

		reg, err := subscription.NewRegistry(subscription.NewMemoryStorage())
		require.NoError(t, err)

		_, err = reg.Register(ctx, "u1", subscription.PlatformIOS, "token-9", nil, nil)
		require.NoError(t, err)

		ok, err := reg.Unregister(ctx, "u1", "token-9")
		require.NoError(t, err)
		assert.True(t, ok)

		subs, err := reg.ActiveByUser(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, subs)
	})

	t.Run("unknown endpoint returns false", func(t *testing.T) {
		t.Parallel()

		reg, err := subscription.NewRegistry(subscription.NewMemoryStorage())
		require.NoError(t, err)

		ok, err := reg.Unregister(ctx, "u1", "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("other user's endpoint returns false", func(t *testing.T) {
		t.Parallel()

		reg, err := subscription.NewRegistry(subscription.NewMemoryStorage())
		require.NoError(t, err)

		_, err = reg.Register(ctx, "u1", subscription.PlatformIOS, "token-x", nil, nil)
		require.NoError(t, err)

		ok, err := reg.Unregister(ctx, "u2", "token-x")
		require.NoError(t, err)
		assert.False(t, ok)

		subs, err := reg.ActiveByUser(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, subs, 1)
	})
}

func TestActiveByUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	reg, err := subscription.NewRegistry(subscription.NewMemoryStorage())
	require.NoError(t, err)

	active, err := reg.Register(ctx, "u1", subscription.PlatformAndroid, "tok-a", nil, nil)
	require.NoError(t, err)
	dead, err := reg.Register(ctx, "u1", subscription.PlatformIOS, "tok-b", nil, nil)
	require.NoError(t, err)
	require.NoError(t, reg.Deactivate(ctx, dead.ID))

	subs, err := reg.ActiveByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, active.ID, subs[0].ID)
}
