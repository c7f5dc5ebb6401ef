package handlers

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebhookHandler(t *testing.T) *WebhookHandler {
	t.Helper()
	store := NewPayloadStore(filepath.Join(t.TempDir(), "webhook_data.json"))
	return NewWebhookHandler("secret-key", store)
}

func TestWebhookHandler_Receive(t *testing.T) {
	t.Run("accepts keyed payload and persists it", func(t *testing.T) {
		h := newWebhookHandler(t)

		ctx := setupTestContext("POST", "/webhook", []byte(`{"route_id": 9}`))
		ctx.Request.Header.Set("X-API-KEY", "secret-key")
		h.Receive(ctx)

		require.Equal(t, 200, ctx.Response.StatusCode())

		latest, err := h.store.Latest()
		require.NoError(t, err)
		assert.JSONEq(t, `{"route_id": 9}`, string(latest.Payload))
		assert.False(t, latest.ReceivedAt.IsZero())
	})

	t.Run("rejects a missing key", func(t *testing.T) {
		h := newWebhookHandler(t)

		ctx := setupTestContext("POST", "/webhook", []byte(`{}`))
		h.Receive(ctx)

		assert.Equal(t, 401, ctx.Response.StatusCode())
	})

	t.Run("rejects a wrong key", func(t *testing.T) {
		h := newWebhookHandler(t)

		ctx := setupTestContext("POST", "/webhook", []byte(`{}`))
		ctx.Request.Header.Set("X-API-KEY", "guess")
		h.Receive(ctx)

		assert.Equal(t, 401, ctx.Response.StatusCode())
	})

	t.Run("rejects non-JSON bodies", func(t *testing.T) {
		h := newWebhookHandler(t)

		ctx := setupTestContext("POST", "/webhook", []byte("<xml/>"))
		ctx.Request.Header.Set("X-API-KEY", "secret-key")
		h.Receive(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("keeps only the newest payload", func(t *testing.T) {
		h := newWebhookHandler(t)

		for _, body := range []string{`{"n": 1}`, `{"n": 2}`} {
			ctx := setupTestContext("POST", "/webhook", []byte(body))
			ctx.Request.Header.Set("X-API-KEY", "secret-key")
			h.Receive(ctx)
			require.Equal(t, 200, ctx.Response.StatusCode())
		}

		latest, err := h.store.Latest()
		require.NoError(t, err)

		var payload map[string]int
		require.NoError(t, json.Unmarshal(latest.Payload, &payload))
		assert.Equal(t, 2, payload["n"])
	})
}

func TestWebhookHandler_Latest(t *testing.T) {
	t.Run("empty store answers 404", func(t *testing.T) {
		h := newWebhookHandler(t)

		ctx := setupTestContext("GET", "/webhook/latest", nil)
		ctx.Request.Header.Set("X-API-KEY", "secret-key")
		h.Latest(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})

	t.Run("requires the key", func(t *testing.T) {
		h := newWebhookHandler(t)

		ctx := setupTestContext("GET", "/webhook/latest", nil)
		h.Latest(ctx)

		assert.Equal(t, 401, ctx.Response.StatusCode())
	})
}

func TestWebhookHandler_Health(t *testing.T) {
	h := newWebhookHandler(t)

	ctx := setupTestContext("GET", "/health", nil)
	h.GetHealth(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.Equal(t, "success", string(ctx.Response.Body()))
}
