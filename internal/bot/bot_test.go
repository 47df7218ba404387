package bot

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tutorcore/internal/scheduler"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func TestFormatReminder(t *testing.T) {
	tests := []struct {
		name string
		r    scheduler.Reminder
		want string
	}{
		{
			name: "one concept, nothing waiting",
			r:    scheduler.Reminder{Course: "go", DueCount: 1},
			want: "You have 1 concept to review in go. A short session now keeps them from slipping.",
		},
		{
			name: "tomorrow",
			r:    scheduler.Reminder{Course: "go", DueCount: 3, NextReviewDays: 1},
			want: "You have 3 concepts to review in go. After that, the next review is due tomorrow. A short session now keeps them from slipping.",
		},
		{
			name: "days",
			r:    scheduler.Reminder{Course: "rust", DueCount: 2, NextReviewDays: 6},
			want: "You have 2 concepts to review in rust. After that, the next review is due in 6 days. A short session now keeps them from slipping.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatReminder(tt.r))
		})
	}
}

func TestSendReminder(t *testing.T) {
	api := &fakeSender{}
	n := newNotifier(api, zerolog.Nop())

	r := scheduler.Reminder{ChatID: 42, Course: "go", DueCount: 2}
	require.NoError(t, n.SendReminder(context.Background(), r))
	require.Len(t, api.sent, 1)

	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, FormatReminder(r), msg.Text)
}

func TestSendReminderErrors(t *testing.T) {
	api := &fakeSender{err: errors.New("Forbidden: bot was blocked by the user")}
	n := newNotifier(api, zerolog.Nop())
	assert.Error(t, n.SendReminder(context.Background(), scheduler.Reminder{ChatID: 1, DueCount: 1}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n = newNotifier(&fakeSender{}, zerolog.Nop())
	assert.ErrorIs(t, n.SendReminder(ctx, scheduler.Reminder{ChatID: 1, DueCount: 1}), context.Canceled)
}
