package telegram

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	confirmYes = "confirm:yes"
	confirmNo  = "confirm:no"

	// confirmTimeout bounds how long a prompt waits for a reaction.
	confirmTimeout = 30 * time.Second
)

// confirmFuture carries the pending answer of one ✅/❌ prompt.
type confirmFuture struct {
	ch chan bool
}

// await blocks until the prompt is answered or the deadline passes.
// Deadline elapse is an implicit decline, never an error.
func (f *confirmFuture) await(timeout time.Duration) bool {
	select {
	case ok := <-f.ch:
		return ok
	case <-time.After(timeout):
		return false
	}
}

// askConfirm posts a prompt with ✅/❌ buttons and blocks until the
// user answers or the deadline passes. Deadline elapse is an implicit
// decline, never an error: the prompt is withdrawn and the operation
// abandoned cleanly. Callers run on their own goroutine.
//
// Each prompt is keyed by its own message ID, so overlapping prompts
// in the same chat resolve independently: an answer on one prompt can
// only ever reach that prompt's future.
func (r *Router) askConfirm(chatID int64, prompt string) bool {
	msg := tgbotapi.NewMessage(chatID, prompt)
	msg.ReplyMarkup = confirmKeyboard()
	sent, err := r.bot.Send(msg)
	if err != nil {
		return false
	}

	fut := &confirmFuture{ch: make(chan bool, 1)}
	r.mu.Lock()
	r.pending[sent.MessageID] = fut
	r.mu.Unlock()

	answered := fut.await(confirmTimeout)
	r.forgetConfirm(sent.MessageID, fut)
	// Withdraw the prompt either way.
	_, _ = r.bot.Request(tgbotapi.NewDeleteMessage(chatID, sent.MessageID))
	return answered
}

// forgetConfirm drops a prompt's pending entry, but only when the
// entry still belongs to this prompt. A stale cleanup must never
// remove a future registered by someone else.
func (r *Router) forgetConfirm(messageID int, fut *confirmFuture) {
	r.mu.Lock()
	if r.pending[messageID] == fut {
		delete(r.pending, messageID)
	}
	r.mu.Unlock()
}

// resolveConfirm hands a callback answer to the prompt it was pressed
// on, if that prompt is still waiting.
func (r *Router) resolveConfirm(messageID int, ok bool) {
	r.mu.Lock()
	fut := r.pending[messageID]
	delete(r.pending, messageID)
	r.mu.Unlock()
	if fut != nil {
		select {
		case fut.ch <- ok:
		default:
		}
	}
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅", confirmYes),
			tgbotapi.NewInlineKeyboardButtonData("❌", confirmNo),
		),
	)
}
