package notifier

import "context"

// TextNotifier is the minimal outbound alert channel.
type TextNotifier interface {
	SendText(ctx context.Context, text string) error
}

// Nop drops every message.
type Nop struct{}

func (Nop) SendText(context.Context, string) error { return nil }
