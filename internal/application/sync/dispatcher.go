package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/orderwatch/backend/internal/domain/notification"
	"github.com/orderwatch/backend/internal/domain/order"
)

const (
	summaryTitle  = "Order Status Changed"
	newOrderTitle = "New Order Received"

	// desktopChannelName marks the channel that receives the dedicated
	// high-priority new-order alert
	desktopChannelName = "desktop"
)

// Dispatcher fans change events out to every enabled notification channel.
// Channel failures are logged and isolated; one failing channel never
// blocks delivery to the others.
type Dispatcher struct {
	channels []notification.Channel
	logger   *zap.Logger

	now func() time.Time
}

// NewDispatcher creates a dispatcher over the given channels
func NewDispatcher(channels []notification.Channel, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		channels: channels,
		logger:   logger,
		now:      time.Now,
	}
}

// Dispatch sends one summary message for the cycle's change events to every
// enabled channel. A strictly positive delta on new orders additionally
// raises a high-priority alert on the desktop channel. Empty events are a
// no-op: an unchanged cycle stays silent.
func (d *Dispatcher) Dispatch(ctx context.Context, events []order.ChangeEvent, snapshot *order.StatusSnapshot) {
	if len(events) == 0 {
		return
	}

	summary := notification.Message{
		Title:    summaryTitle,
		Body:     formatSummary(events, snapshot),
		Priority: notification.PriorityNormal,
		SentAt:   d.now(),
	}
	d.sendToAll(ctx, summary)

	if delta := newOrderDelta(events); delta > 0 {
		alert := notification.Message{
			Title:    newOrderTitle,
			Body:     fmt.Sprintf("%s: %+d (now %d)", order.StatusNew.DisplayName(), delta, snapshot.Count(order.StatusNew)),
			Priority: notification.PriorityHigh,
			SentAt:   d.now(),
		}
		for _, ch := range d.channels {
			if ch.Name() == desktopChannelName && ch.Enabled() {
				d.send(ctx, ch, alert)
			}
		}
	}
}

func (d *Dispatcher) sendToAll(ctx context.Context, msg notification.Message) {
	for _, ch := range d.channels {
		if !ch.Enabled() {
			continue
		}
		d.send(ctx, ch, msg)
	}
}

func (d *Dispatcher) send(ctx context.Context, ch notification.Channel, msg notification.Message) {
	if err := ch.Send(ctx, msg); err != nil {
		d.logger.Warn("notification channel failed",
			zap.String("channel", ch.Name()),
			zap.String("title", msg.Title),
			zap.Error(err),
		)
		return
	}
	d.logger.Debug("notification delivered",
		zap.String("channel", ch.Name()),
		zap.String("title", msg.Title),
	)
}

// formatSummary renders one line per change event plus the new total.
// Display names appear only here, at the formatting boundary.
func formatSummary(events []order.ChangeEvent, snapshot *order.StatusSnapshot) string {
	var b strings.Builder
	for _, ev := range events {
		fmt.Fprintf(&b, "%s: %d -> %d (%+d)\n", ev.Status.DisplayName(), ev.PreviousCount, ev.CurrentCount, ev.Delta)
	}
	fmt.Fprintf(&b, "Total: %d", snapshot.Total())
	return b.String()
}

func newOrderDelta(events []order.ChangeEvent) int {
	for _, ev := range events {
		if ev.Status == order.StatusNew {
			return ev.Delta
		}
	}
	return 0
}
