// Package telegram provides Telegram bot functionality.
package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/user/gitfeed/internal/feed"
	"github.com/user/gitfeed/pkg/logger"
)

// Feed supplies the recent events listed by /recent.
type Feed interface {
	Recent(ctx context.Context) ([]feed.DisplayEvent, error)
}

// Bot represents the Telegram bot.
type Bot struct {
	api     *tgbotapi.BotAPI
	feed    Feed
	builder *MessageBuilder
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewBot creates a new Telegram bot instance.
func NewBot(token string, debug bool, f Feed, builder *MessageBuilder) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	api.Debug = debug

	logger.Info().Str("username", api.Self.UserName).Msg("Telegram bot authorized")

	ctx, cancel := context.WithCancel(context.Background())

	return &Bot{
		api:     api,
		feed:    f,
		builder: builder,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start begins listening for updates.
func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-b.ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message != nil && update.Message.IsCommand() {
					b.handleCommand(update.Message)
				}
			}
		}
	}()

	logger.Info().Msg("Telegram bot started, listening for updates")
}

// Stop gracefully stops the bot.
func (b *Bot) Stop() {
	logger.Info().Msg("Stopping Telegram bot")
	b.cancel()
	b.api.StopReceivingUpdates()
	b.wg.Wait()
}

// Send sends a MarkdownV2 message to a chat.
func (b *Bot) Send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send to chat %d: %w", chatID, err)
	}
	return nil
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	logger.Debug().
		Str("command", msg.Command()).
		Int64("chat_id", msg.Chat.ID).
		Msg("Received command")

	ctx, cancel := context.WithTimeout(b.ctx, 10*time.Second)
	defer cancel()

	if err := b.Send(msg.Chat.ID, b.reply(ctx, msg.Command())); err != nil {
		logger.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("Failed to send reply")
	}
}

// reply builds the answer to a command.
func (b *Bot) reply(ctx context.Context, command string) string {
	switch command {
	case "start", "help":
		return "🤖 *GitHub activity feed*\n\n" +
			"I report pushes and pull requests received by the webhook\\.\n\n" +
			"/recent \\- list the latest activity"
	case "recent":
		events, err := b.feed.Recent(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to load recent events")
			return "⚠️ Could not load recent activity"
		}
		return b.builder.BuildFeedMessage(events)
	default:
		return "Unknown command\\. Use /help to see what I can do\\."
	}
}
