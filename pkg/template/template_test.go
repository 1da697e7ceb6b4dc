package template_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pushkit/pkg/notification"
	"github.com/dmitrymomot/pushkit/pkg/template"
)

func TestRender(t *testing.T) {
	t.Parallel()

	t.Run("substitutes named variables", func(t *testing.T) {
		t.Parallel()

		tmpl := template.Template{
			ID:            "order-filled",
			TitleTemplate: "Order {{orderId}} filled",
			BodyTemplate:  "Your {{side}} order for {{symbol}} filled at {{price}}",
		}

		title, body := tmpl.Render(map[string]string{
			"orderId": "42",
			"side":    "buy",
			"symbol":  "BTC/USD",
			"price":   "61250.00",
		})

		assert.Equal(t, "Order 42 filled", title)
		assert.Equal(t, "Your buy order for BTC/USD filled at 61250.00", body)
	})

	t.Run("unmatched keys become empty strings", func(t *testing.T) {
		t.Parallel()

		tmpl := template.Template{
			TitleTemplate: "Hello {{name}}",
			BodyTemplate:  "Balance: {{balance}} {{currency}}",
		}

		title, body := tmpl.Render(map[string]string{"balance": "100"})

		assert.Equal(t, "Hello ", title)
		assert.Equal(t, "Balance: 100 ", body)
		assert.NotContains(t, body, "{{")
	})

	t.Run("tolerates whitespace inside tokens", func(t *testing.T) {
		t.Parallel()

		tmpl := template.Template{TitleTemplate: "Hi {{ name }}"}
		title, _ := tmpl.Render(map[string]string{"name": "Ada"})
		assert.Equal(t, "Hi Ada", title)
	})

	t.Run("nil variables map", func(t *testing.T) {
		t.Parallel()

		tmpl := template.Template{TitleTemplate: "{{a}}b"}
		title, _ := tmpl.Render(nil)
		assert.Equal(t, "b", title)
	})
}

func TestMemoryStorage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("put and get", func(t *testing.T) {
		t.Parallel()

		store := template.NewMemoryStorage()
		tmpl := template.Template{
			ID:       "price-alert",
			Category: notification.CategoryTrade,
			Priority: notification.PriorityHigh,
		}
		require.NoError(t, store.Put(ctx, tmpl))

		got, err := store.Get(ctx, "price-alert")
		require.NoError(t, err)
		assert.Equal(t, tmpl, *got)
	})

	t.Run("missing ID rejected", func(t *testing.T) {
		t.Parallel()

		store := template.NewMemoryStorage()
		err := store.Put(ctx, template.Template{})
		require.ErrorIs(t, err, template.ErrTemplateIDRequired)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		store := template.NewMemoryStorage()
		_, err := store.Get(ctx, "nope")
		require.ErrorIs(t, err, template.ErrTemplateNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		store := template.NewMemoryStorage()
		require.NoError(t, store.Put(ctx, template.Template{ID: "x"}))
		require.NoError(t, store.Delete(ctx, "x"))

		_, err := store.Get(ctx, "x")
		require.ErrorIs(t, err, template.ErrTemplateNotFound)
	})
}
