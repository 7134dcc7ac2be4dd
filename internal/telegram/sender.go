package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Sender is the delivery side consumed by the pipeline and the
// scheduler. Sends are throttled so a burst of category notices does
// not trip the chat API flood limits.
type Sender struct {
	bot     *tgbotapi.BotAPI
	chats   Chats
	limiter *rate.Limiter
}

func NewSender(bot *tgbotapi.BotAPI, chats Chats) *Sender {
	return &Sender{
		bot:   bot,
		chats: chats,
		// One message a second with a little burst headroom.
		limiter: rate.NewLimiter(rate.Limit(1), 3),
	}
}

// Deliver posts one batched notice. This makes Sender satisfy
// pipeline.Deliverer.
func (s *Sender) Deliver(chatID int64, text string) error {
	if err := s.limiter.Wait(context.Background()); err != nil {
		return err
	}
	_, err := s.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Remind posts a personal timer reminder to the timer chat, mentioning
// the owner. This makes Sender satisfy scheduler.ReminderSender.
func (s *Sender) Remind(timerName string) error {
	if err := s.limiter.Wait(context.Background()); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(s.chats.Timer, reminderText(s.chats.Owner, timerName))
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := s.bot.Send(msg)
	return err
}

// reminderText renders the owner mention. The timer name is escaped:
// names carrying Markdown metacharacters must not break the mention
// markup around them.
func reminderText(owner int64, timerName string) string {
	return fmt.Sprintf("⏰ Reminder [owner](tg://user?id=%d): %s!",
		owner, tgbotapi.EscapeText(tgbotapi.ModeMarkdown, timerName))
}
