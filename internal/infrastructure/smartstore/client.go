package smartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/orderwatch/backend/internal/domain/integration"
)

const (
	// maxResponseSize limits response bodies to prevent memory exhaustion
	maxResponseSize = 10 * 1024 * 1024 // 10MB
	// bodySnippetLen is how much of a failing response body is logged
	bodySnippetLen = 200
	// orderDateLayout is the fallback layout some endpoints use instead
	// of RFC3339
	orderDateLayout = "2006-01-02 15:04:05"
)

// Client pulls orders from the SmartStore seller API. It owns retry and
// backoff for transient failures and the single token-refresh retry on
// auth expiry, so callers only ever see classified errors.
type Client struct {
	config     *Config
	httpClient *http.Client
	tokens     TokenProvider
	policy     integration.RetryPolicy
	logger     *zap.Logger
}

// NewClient creates a SmartStore API client
func NewClient(config *Config, tokens TokenProvider, policy integration.RetryPolicy, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("smartstore: invalid retry policy: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		tokens: tokens,
		policy: policy,
		logger: logger,
	}, nil
}

// FetchWindow fetches all orders placed within the window. Transient
// failures are retried per the retry policy with interruptible backoff
// sleeps; a 401 triggers exactly one token refresh and one immediate
// re-issue that does not count against the retry budget.
func (c *Client) FetchWindow(ctx context.Context, window integration.TimeWindow, filter integration.FetchFilter) ([]integration.RawOrderRecord, error) {
	refreshed := false

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		records, err := c.fetchOnce(ctx, window, filter)
		if err == nil {
			return records, nil
		}

		if errors.Is(err, integration.ErrAuthExpired) && !refreshed {
			refreshed = true
			c.logger.Warn("Auth expired, refreshing token",
				zap.Time("window_start", window.Start),
				zap.Time("window_end", window.End),
			)
			if _, refreshErr := c.tokens.ForceRefresh(ctx); refreshErr != nil {
				return nil, fmt.Errorf("%w: token refresh failed: %v", integration.ErrAuthExpired, refreshErr)
			}
			// Re-issue the same call once, outside the retry budget
			attempt--
			continue
		}

		if !errors.Is(err, integration.ErrTransient) {
			return nil, err
		}

		if attempt == c.policy.MaxAttempts {
			return nil, fmt.Errorf("%w: retries exhausted after %d attempts: %v",
				integration.ErrTransient, c.policy.MaxAttempts, err)
		}

		backoff := c.policy.Backoff(attempt)
		c.logger.Warn("Transient fetch error, backing off",
			zap.Time("window_start", window.Start),
			zap.Time("window_end", window.End),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		if sleepErr := integration.Sleep(ctx, backoff); sleepErr != nil {
			return nil, fmt.Errorf("%w: cancelled during backoff: %v", integration.ErrTransient, sleepErr)
		}
	}

	// Unreachable: the loop always returns
	return nil, integration.ErrTransient
}

// fetchOnce issues a single window request and classifies the outcome
func (c *Client) fetchOnce(ctx context.Context, window integration.TimeWindow, filter integration.FetchFilter) ([]integration.RawOrderRecord, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrAuthExpired, err)
	}

	query := url.Values{}
	query.Set("from", window.Start.Format(time.RFC3339))
	query.Set("to", window.End.Format(time.RFC3339))
	query.Set("rangeType", "ORDERED_DATETIME")
	if filter.VendorStatus != "" {
		query.Set("productOrderStatus", filter.VendorStatus)
	}

	endpoint := fmt.Sprintf("%s/v1/pay-order/seller/product-orders?%s", c.config.APIBaseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", integration.ErrPermanent, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Connection errors and timeouts are retryable
		return nil, fmt.Errorf("%w: %v", integration.ErrTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", integration.ErrTransient, err)
	}

	if err := classifyHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return parseOrderList(body)
}

// classifyHTTPStatus maps an HTTP status to the sync error taxonomy
func classifyHTTPStatus(status int, body []byte) error {
	switch {
	case status < 400:
		return nil
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: HTTP 401", integration.ErrAuthExpired)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: HTTP 429", integration.ErrTransient)
	case status >= 500:
		return fmt.Errorf("%w: HTTP %d: %s", integration.ErrTransient, status, bodySnippet(body))
	default:
		return fmt.Errorf("%w: HTTP %d: %s", integration.ErrPermanent, status, bodySnippet(body))
	}
}

// parseOrderList unwraps the {"data":{"data":[...]}} envelope. Exactly that
// nesting is accepted; a missing level is a malformed (permanent) response
// rather than a silently empty result.
func parseOrderList(body []byte) ([]integration.RawOrderRecord, error) {
	var envelope orderListEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v: %s", integration.ErrPermanent, err, bodySnippet(body))
	}

	if envelope.Code != "" {
		if strings.Contains(strings.ToLower(envelope.Message), "too many requests") {
			return nil, fmt.Errorf("%w: %s - %s", integration.ErrTransient, envelope.Code, envelope.Message)
		}
		return nil, fmt.Errorf("%w: %s - %s", integration.ErrPermanent, envelope.Code, envelope.Message)
	}

	if envelope.Data == nil || envelope.Data.Data == nil {
		return nil, fmt.Errorf("%w: unexpected envelope shape: %s", integration.ErrPermanent, bodySnippet(body))
	}

	records := make([]integration.RawOrderRecord, 0, len(envelope.Data.Data))
	for i := range envelope.Data.Data {
		records = append(records, convertVendorOrder(&envelope.Data.Data[i]))
	}
	return records, nil
}

// convertVendorOrder converts a raw vendor order to a RawOrderRecord
func convertVendorOrder(o *vendorOrder) integration.RawOrderRecord {
	record := integration.RawOrderRecord{
		OrderID:      o.ProductOrderID,
		VendorStatus: o.ProductOrderStatus,
		Attributes:   make(map[string]string),
	}

	if o.OrderDate != "" {
		if ts, err := time.Parse(time.RFC3339, o.OrderDate); err == nil {
			record.OrderedAt = ts
		} else if ts, err := time.Parse(orderDateLayout, o.OrderDate); err == nil {
			record.OrderedAt = ts
		}
	}

	if o.TotalPaymentAmount != "" {
		if amount, err := decimal.NewFromString(o.TotalPaymentAmount); err == nil {
			record.TotalAmount = amount
		}
	}

	if o.ProductName != "" {
		record.Attributes["product_name"] = o.ProductName
	}
	if o.BuyerName != "" {
		record.Attributes["buyer_name"] = o.BuyerName
	}

	return record
}

// bodySnippet returns a short prefix of the body for error context
func bodySnippet(body []byte) string {
	if len(body) > bodySnippetLen {
		return string(body[:bodySnippetLen]) + "..."
	}
	return string(body)
}

// Ensure Client implements the OrderFetcher port
var _ integration.OrderFetcher = (*Client)(nil)
