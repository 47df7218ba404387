// Package bot delivers review reminders through a Telegram bot.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/example/tutorcore/internal/scheduler"
)

// sender is the part of tgbotapi.BotAPI the notifier uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends scheduler reminders as chat messages
type TelegramNotifier struct {
	api sender
	log zerolog.Logger
}

var _ scheduler.Notifier = (*TelegramNotifier)(nil)

// NewTelegramNotifier authorizes the bot token with Telegram
func NewTelegramNotifier(token string, debug bool, log zerolog.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	api.Debug = debug

	n := newNotifier(api, log)
	n.log.Info().Str("account", api.Self.UserName).Msg("authorized on telegram")
	return n, nil
}

func newNotifier(api sender, log zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		api: api,
		log: log.With().Str("component", "bot").Logger(),
	}
}

// SendReminder implements scheduler.Notifier
func (n *TelegramNotifier) SendReminder(ctx context.Context, r scheduler.Reminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(r.ChatID, FormatReminder(r))
	if _, err := n.api.Send(msg); err != nil {
		n.log.Warn().Err(err).Int64("chat_id", r.ChatID).Msg("error sending reminder")
		return err
	}
	n.log.Debug().
		Int64("chat_id", r.ChatID).
		Str("course", r.Course).
		Int("due", r.DueCount).
		Msg("reminder sent")
	return nil
}

// FormatReminder renders the reminder text
func FormatReminder(r scheduler.Reminder) string {
	text := fmt.Sprintf("You have %d %s to review in %s.", r.DueCount, plural(r.DueCount, "concept", "concepts"), r.Course)
	switch {
	case r.NextReviewDays == 1:
		text += " After that, the next review is due tomorrow."
	case r.NextReviewDays > 1:
		text += fmt.Sprintf(" After that, the next review is due in %d days.", r.NextReviewDays)
	}
	return text + " A short session now keeps them from slipping."
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
