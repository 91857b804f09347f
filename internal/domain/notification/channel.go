package notification

import (
	"context"
	"errors"
	"time"
)

// ErrChannelSend indicates a channel failed to deliver a message.
// Channel failures are isolated: one channel's failure never prevents
// another enabled channel from receiving the same dispatch.
var ErrChannelSend = errors.New("notification: channel send failed")

// Priority marks how prominently a message should be rendered
type Priority string

const (
	// PriorityNormal is the generic per-cycle summary priority
	PriorityNormal Priority = "NORMAL"
	// PriorityHigh is used for the dedicated new-order alert
	PriorityHigh Priority = "HIGH"
)

// Message is a channel-agnostic notification payload
type Message struct {
	// Title is the short headline
	Title string
	// Body is the human-readable message body
	Body string
	// Priority hints at rendering prominence
	Priority Priority
	// SentAt is when the message was produced
	SentAt time.Time
}

// Channel is the port for one notification sink. Implementations
// (desktop popup, outbound webhook) live in the infrastructure layer.
type Channel interface {
	// Name identifies the channel in logs and configuration
	Name() string

	// Enabled reports whether the channel should receive dispatches
	Enabled() bool

	// Send delivers the message; failures wrap ErrChannelSend
	Send(ctx context.Context, msg Message) error
}
