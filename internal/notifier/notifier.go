// Package notifier forwards stored events to a Telegram chat.
package notifier

import (
	"github.com/user/gitfeed/internal/storage"
	"github.com/user/gitfeed/internal/telegram"
	"github.com/user/gitfeed/pkg/logger"
)

// Sender delivers a formatted message to a chat.
type Sender interface {
	Send(chatID int64, text string) error
}

// Notifier sends one message per stored event.
type Notifier struct {
	sender     Sender
	chatID     int64
	msgBuilder *telegram.MessageBuilder
}

// NewNotifier creates a new notifier instance.
func NewNotifier(sender Sender, chatID int64, msgBuilder *telegram.MessageBuilder) *Notifier {
	return &Notifier{
		sender:     sender,
		chatID:     chatID,
		msgBuilder: msgBuilder,
	}
}

// Run handles events until the channel is closed.
func (n *Notifier) Run(events <-chan storage.Event) {
	for event := range events {
		if err := n.HandleEvent(event); err != nil {
			logger.Error().
				Err(err).
				Str("id", event.ID).
				Int64("chat_id", n.chatID).
				Msg("Failed to send notification")
		}
	}
}

// HandleEvent sends the notification for a single event.
func (n *Notifier) HandleEvent(event storage.Event) error {
	message := n.msgBuilder.BuildEventMessage(event)
	if err := n.sender.Send(n.chatID, message); err != nil {
		return err
	}

	logger.Debug().Str("id", event.ID).Int64("chat_id", n.chatID).Msg("Notification sent")
	return nil
}
