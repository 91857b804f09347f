package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/orderwatch/backend/internal/domain/notification"
)

const (
	defaultWebhookTimeout = 10 * time.Second
	defaultWebhookColor   = "#2eccfa"

	// webhookBodySnippetLen bounds how much of an error response body
	// is carried into error messages
	webhookBodySnippetLen = 200
)

// WebhookConfig contains configuration for the outbound webhook channel
type WebhookConfig struct {
	// Enabled toggles the channel on or off
	Enabled bool
	// URL is the webhook endpoint; required when enabled
	URL string
	// Color is the accent color included in the payload
	Color string
	// Timeout bounds one delivery attempt
	Timeout time.Duration
	// Logger for debug output
	Logger *zap.Logger
}

// webhookPayload is the JSON body posted to the webhook endpoint
type webhookPayload struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Color     string `json:"color"`
	Priority  string `json:"priority"`
	Timestamp string `json:"timestamp"`
}

// WebhookChannel delivers notifications by posting JSON to a configured URL
type WebhookChannel struct {
	config     *WebhookConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWebhookChannel creates a new outbound webhook channel
func NewWebhookChannel(config *WebhookConfig) *WebhookChannel {
	if config == nil {
		config = &WebhookConfig{}
	}
	if config.Color == "" {
		config.Color = defaultWebhookColor
	}
	if config.Timeout == 0 {
		config.Timeout = defaultWebhookTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WebhookChannel{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

var _ notification.Channel = (*WebhookChannel)(nil)

// Name identifies the channel in logs and configuration
func (c *WebhookChannel) Name() string {
	return "webhook"
}

// Enabled reports whether the channel should receive dispatches
func (c *WebhookChannel) Enabled() bool {
	return c.config.Enabled && c.config.URL != ""
}

// Send posts the message to the configured webhook URL
func (c *WebhookChannel) Send(ctx context.Context, msg notification.Message) error {
	payload := webhookPayload{
		Title:     msg.Title,
		Body:      msg.Body,
		Color:     c.config.Color,
		Priority:  string(msg.Priority),
		Timestamp: msg.SentAt.UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshal payload: %v", notification.ErrChannelSend, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", notification.ErrChannelSend, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", notification.ErrChannelSend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, webhookBodySnippetLen))
		return fmt.Errorf("%w: status %d: %s", notification.ErrChannelSend, resp.StatusCode, string(snippet))
	}

	c.logger.Debug("webhook notification sent",
		zap.String("title", msg.Title),
		zap.Int("status", resp.StatusCode))
	return nil
}
