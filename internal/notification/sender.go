package notification

import (
	"context"
	"os/exec"
	"time"
)

const (
	defaultCommand = "openclaw"
	defaultTimeout = 10 * time.Second
)

// Notifier delivers messages through the openclaw CLI.
type Notifier struct {
	Webhook string
	Channel string
	ChatID  string

	// Command is the executable to run; defaults to openclaw.
	Command string
	Timeout time.Duration
}

// Enabled reports whether a chat target is configured.
func (n Notifier) Enabled() bool { return n.ChatID != "" }

// Send delivers message. It never fails the session: errors are returned
// for logging only, and nothing is sent when no chat id is configured.
func (n Notifier) Send(message string) error {
	if !n.Enabled() {
		return nil
	}

	command := n.Command
	if command == "" {
		command = defaultCommand
	}
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, command, "message", "send",
		"--webhook", n.Webhook,
		"--channel", n.Channel,
		"--chat-id", n.ChatID,
		"--message", message,
	)
	return cmd.Run()
}
