package notification

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"github.com/orderwatch/backend/internal/domain/notification"
)

const defaultNotifyCommand = "notify-send"

// DesktopConfig contains configuration for the desktop popup channel
type DesktopConfig struct {
	// Enabled toggles the channel on or off
	Enabled bool
	// Command is the notifier binary, notify-send if empty.
	// If it is not an absolute path it is resolved in PATH.
	Command string
	// Logger for debug output
	Logger *zap.Logger
}

// DesktopChannel delivers notifications as desktop popups via a
// notify-send compatible command-line tool
type DesktopChannel struct {
	config *DesktopConfig
	logger *zap.Logger

	// runCommand is swapped out in tests
	runCommand func(ctx context.Context, name string, args ...string) error
}

// NewDesktopChannel creates a new desktop popup channel
func NewDesktopChannel(config *DesktopConfig) *DesktopChannel {
	if config == nil {
		config = &DesktopConfig{}
	}
	if config.Command == "" {
		config.Command = defaultNotifyCommand
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &DesktopChannel{
		config: config,
		logger: logger,
	}
	c.runCommand = c.execCommand
	return c
}

var _ notification.Channel = (*DesktopChannel)(nil)

// Name identifies the channel in logs and configuration
func (c *DesktopChannel) Name() string {
	return "desktop"
}

// Enabled reports whether the channel should receive dispatches
func (c *DesktopChannel) Enabled() bool {
	return c.config.Enabled
}

// Send shows the message as a desktop popup
func (c *DesktopChannel) Send(ctx context.Context, msg notification.Message) error {
	urgency := "normal"
	if msg.Priority == notification.PriorityHigh {
		urgency = "critical"
	}

	args := []string{"-u", urgency, msg.Title, msg.Body}
	if err := c.runCommand(ctx, c.config.Command, args...); err != nil {
		return fmt.Errorf("%w: %s: %v", notification.ErrChannelSend, c.config.Command, err)
	}

	c.logger.Debug("desktop notification sent",
		zap.String("title", msg.Title),
		zap.String("urgency", urgency))
	return nil
}

func (c *DesktopChannel) execCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("%v: %s", err, stderr.String())
		}
		return err
	}
	return nil
}
