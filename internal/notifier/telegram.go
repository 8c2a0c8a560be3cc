// Package notifier implements the outbound notification channels (Telegram,
// SMTP email) and the formatting of operator-facing messages.
package notifier

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// CommandHandler is called with the text of a received bot command and
// returns the reply to send, or "" for no reply.
type CommandHandler func(command string) string

// TelegramNotifier sends alerts and handles bot commands via the Telegram
// Bot API.
type TelegramNotifier struct {
	bot        *tgbotapi.BotAPI
	chatID     int64
	maxRetries uint64
}

// NewTelegramNotifier creates the notifier and verifies the bot token.
func NewTelegramNotifier(botToken, chatID string) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id: %w", err)
	}
	return &TelegramNotifier{
		bot:        bot,
		chatID:     chatIDInt,
		maxRetries: 3,
	}, nil
}

func (t *TelegramNotifier) Name() string { return "telegram" }

// Notify sends a message to the configured chat, retrying transient failures
// with exponential backoff.
func (t *TelegramNotifier) Notify(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	op := func() error {
		_, err := t.bot.Send(msg)
		return err
	}
	if err := backoff.Retry(op, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), t.maxRetries)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// ListenForCommands long-polls for bot messages and feeds them to handler.
// Blocks until ctx is cancelled.
func (t *TelegramNotifier) ListenForCommands(ctx context.Context, handler CommandHandler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			log.Println("[INFO] telegram polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			reply := handler(update.Message.Text)
			if reply == "" {
				continue
			}
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, reply)
			if _, err := t.bot.Send(msg); err != nil {
				log.Printf("[ERROR] telegram reply: %v", err)
				time.Sleep(time.Second)
			}
		}
	}
}
