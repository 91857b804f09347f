package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderwatch/backend/internal/domain/notification"
)

func testMessage(priority notification.Priority) notification.Message {
	return notification.Message{
		Title:    "Order Status Changed",
		Body:     "New Orders: 2 -> 3 (+1)",
		Priority: priority,
		SentAt:   time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC),
	}
}

func TestWebhookChannel_Send(t *testing.T) {
	t.Run("posts the expected JSON payload", func(t *testing.T) {
		var got webhookPayload
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		channel := NewWebhookChannel(&WebhookConfig{
			Enabled: true,
			URL:     server.URL,
			Color:   "#ff0000",
		})

		err := channel.Send(context.Background(), testMessage(notification.PriorityNormal))
		require.NoError(t, err)

		assert.Equal(t, "Order Status Changed", got.Title)
		assert.Equal(t, "New Orders: 2 -> 3 (+1)", got.Body)
		assert.Equal(t, "#ff0000", got.Color)
		assert.Equal(t, "NORMAL", got.Priority)
		assert.Equal(t, "2026-08-30T14:30:00Z", got.Timestamp)
	})

	t.Run("wraps ErrChannelSend on server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		channel := NewWebhookChannel(&WebhookConfig{Enabled: true, URL: server.URL})

		err := channel.Send(context.Background(), testMessage(notification.PriorityNormal))
		assert.ErrorIs(t, err, notification.ErrChannelSend)
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("wraps ErrChannelSend when the endpoint is unreachable", func(t *testing.T) {
		channel := NewWebhookChannel(&WebhookConfig{
			Enabled: true,
			URL:     "http://127.0.0.1:1/webhook",
			Timeout: time.Second,
		})

		err := channel.Send(context.Background(), testMessage(notification.PriorityNormal))
		assert.ErrorIs(t, err, notification.ErrChannelSend)
	})
}

func TestWebhookChannel_Enabled(t *testing.T) {
	t.Run("disabled without a URL", func(t *testing.T) {
		channel := NewWebhookChannel(&WebhookConfig{Enabled: true})
		assert.False(t, channel.Enabled())
	})

	t.Run("enabled with URL and flag", func(t *testing.T) {
		channel := NewWebhookChannel(&WebhookConfig{Enabled: true, URL: "http://example.com"})
		assert.True(t, channel.Enabled())
		assert.Equal(t, "webhook", channel.Name())
	})
}
